package reflection

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"dynamic-reflections/internal/engine2D"
	"dynamic-reflections/internal/engine2D/software"
	"dynamic-reflections/internal/world"
)

func TestReflectedMirrorPose(t *testing.T) {
	opts := DefaultPoseOptions()
	m := mirrorAt(image.Pt(3, 4), mgl32.Vec2{200, 300})
	m.Settings.ReflectionOffset = mgl32.Vec2{1, -2}

	tests := []struct {
		facing     world.Direction
		wantFacing world.Direction
		wantSprite string
	}{
		{world.Down, world.Up, "mirror-reflection"},
		{world.Right, world.Right, "default"},
		{world.Up, world.Down, "default"},
		{world.Left, world.Left, "default"},
	}

	for _, tt := range tests {
		t.Run(tt.facing.String(), func(t *testing.T) {
			base := Pose{
				Position:  mgl32.Vec2{1, 1},
				Direction: tt.facing,
				SpriteSet: "default",
				Metadata:  map[string]string{"outfit": "overalls"},
			}
			got := ReflectedMirrorPose(base, m, opts)

			if want := (mgl32.Vec2{184, 332}); got.Position != want {
				t.Errorf("Expected position %v, got %v", want, got.Position)
			}
			if got.Direction != tt.wantFacing {
				t.Errorf("Expected facing %v, got %v", tt.wantFacing, got.Direction)
			}
			if got.SpriteSet != tt.wantSprite {
				t.Errorf("Expected sprite set %q, got %q", tt.wantSprite, got.SpriteSet)
			}
			if got.Metadata[opts.DirectionKey] != tt.wantFacing.Code() {
				t.Errorf("Expected %s=%s, got %q", opts.DirectionKey, tt.wantFacing.Code(), got.Metadata[opts.DirectionKey])
			}
			if got.Metadata["outfit"] != "overalls" {
				t.Error("Expected other metadata carried over")
			}
			if _, ok := base.Metadata[opts.DirectionKey]; ok || base.Direction != tt.facing {
				t.Error("Expected base pose untouched")
			}
		})
	}
}

func TestMirrorRenderRestoresActor(t *testing.T) {
	fx := newFixture(t, 256, 192, 2)
	fx.farmer.Facing = world.Down
	fx.farmer.Metadata["appearance.facing-direction"] = "0"
	before := fx.farmer.Pose()

	// An outfit system rewrites keys, including ones it did not own before.
	fx.farmer.Appearance = func(f *world.Farmer) {
		f.Metadata["appearance.facing-direction"] = "99"
		f.Metadata["appearance.cache"] = "stale"
		f.Metadata["outfit"] = "suit"
		f.Position = mgl32.Vec2{-1, -1}
	}

	mirrors := NewMirrorSet()
	mirrors.Add(mirrorAt(image.Pt(1, 1), mgl32.Vec2{96, 150}))
	mirrors.Add(mirrorAt(image.Pt(2, 1), mgl32.Vec2{160, 150}))

	if err := fx.compositor().Render(fx.rc, nil, fx.farmer, mirrors); err != nil {
		t.Fatalf("Render: %v", err)
	}

	if got := fx.farmer.Pose(); !got.Equal(before) {
		t.Errorf("Expected actor restored to %+v, got %+v", before, got)
	}
	if _, ok := fx.farmer.Metadata["appearance.cache"]; ok {
		t.Error("Expected key added during the pipeline to be removed")
	}
}

// failingActor draws nothing and fails.
type failingActor struct {
	*world.Farmer
}

func (a failingActor) Draw(*engine2D.Batch) error { return errors.New("sprite missing") }

func TestMirrorRenderRestoresOnError(t *testing.T) {
	fx := newFixture(t, 64, 64, 1)
	before := fx.farmer.Pose()
	mirrors := NewMirrorSet()
	mirrors.Add(mirrorAt(image.Pt(0, 0), mgl32.Vec2{0, 64}))

	err := fx.compositor().Render(fx.rc, nil, failingActor{fx.farmer}, mirrors)
	if err == nil {
		t.Fatal("Expected error")
	}
	if !fx.farmer.Pose().Equal(before) {
		t.Error("Expected actor restored after error")
	}
	if fx.rc.Batch.IsOpen() {
		t.Error("Expected batch closed after error")
	}
	if fx.dev.RenderTarget() != nil {
		t.Error("Expected back buffer selected after error")
	}
}

func TestMirrorFlipOffset(t *testing.T) {
	const width = 256

	tests := []struct {
		name    string
		facing  world.Direction
		flipped bool
	}{
		{"down is flipped", world.Down, true},
		{"up is flipped", world.Up, true},
		{"right is not flipped", world.Right, false},
		{"left is not flipped", world.Left, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t, width, 192, 1)
			fx.farmer.Facing = tt.facing

			m := mirrorAt(image.Pt(0, 0), mgl32.Vec2{96, 150})
			m.Settings.ReflectionOffset = mgl32.Vec2{1, 0}
			mirrors := NewMirrorSet()
			mirrors.Add(m)

			if err := fx.compositor().Render(fx.rc, nil, fx.farmer, mirrors); err != nil {
				t.Fatalf("Render: %v", err)
			}

			raw := fx.dev.Snapshot(fx.targets.MirrorRaw[0])
			composite := fx.dev.Snapshot(fx.targets.MirrorComposite[0])
			if isEmpty(raw) {
				t.Fatal("Expected actor in raw target")
			}

			// Reflected actor stands at x = 96 - 16.
			sx := 80
			offset := FlipOffset(fx.dev.Viewport(), mgl32.Vec2{float32(sx), 0})
			if tt.flipped && offset != width-2*float32(sx)-64 {
				t.Errorf("Expected offset %v, got %v", width-2*float32(sx)-64, offset)
			}

			for y := 0; y < 192; y++ {
				for x := sx; x < sx+64; x++ {
					srcX := x
					if tt.flipped {
						srcX = 2*sx + 63 - x
					}
					if got, want := composite.RGBAAt(x, y), raw.RGBAAt(srcX, y); got != want {
						t.Fatalf("Pixel (%d,%d): expected %v, got %v", x, y, want, got)
					}
				}
			}
			if !tt.flipped && string(raw.Pix) != string(composite.Pix) {
				t.Error("Expected composite identical to raw without a flip")
			}
		})
	}
}

func TestMirrorOverlayTint(t *testing.T) {
	fx := newFixture(t, 128, 192, 1)
	fx.farmer.Facing = world.Right
	m := mirrorAt(image.Pt(0, 0), mgl32.Vec2{0, 150})
	m.Settings.ReflectionOverlay = color.RGBA{255, 0, 255, 255}
	mirrors := NewMirrorSet()
	mirrors.Add(m)

	if err := fx.compositor().Render(fx.rc, nil, fx.farmer, mirrors); err != nil {
		t.Fatalf("Render: %v", err)
	}
	composite := fx.dev.Snapshot(fx.targets.MirrorComposite[0])
	// Right-facing row, left half is blue; the tint keeps blue.
	if got := composite.RGBAAt(1, 100); got != (color.RGBA{0, 0, 200, 255}) {
		t.Errorf("Expected {0 0 200 255}, got %v", got)
	}
	// Right half is yellow; the tint drops green.
	if got := composite.RGBAAt(40, 100); got != (color.RGBA{200, 0, 0, 255}) {
		t.Errorf("Expected {200 0 0 255}, got %v", got)
	}
}

func TestMirrorEmptyListClearsBackOnce(t *testing.T) {
	fx := newFixture(t, 64, 64, 0)
	fx.dev.ResetStats()

	if err := fx.compositor().Render(fx.rc, nil, fx.farmer, NewMirrorSet()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if fx.dev.Stats.Clears != 1 {
		t.Errorf("Expected exactly 1 clear, got %d", fx.dev.Stats.Clears)
	}
	if fx.dev.Stats.Draws != 0 || fx.dev.Stats.Passes != 0 {
		t.Errorf("Expected no passes, got %d passes %d draws", fx.dev.Stats.Passes, fx.dev.Stats.Draws)
	}
	if !isFilled(fx.dev.Snapshot(nil), background) {
		t.Error("Expected back buffer cleared to the background")
	}
}

func TestMirrorWithoutFurnitureIsUnmasked(t *testing.T) {
	fx := newFixture(t, 128, 192, 1)
	mirrors := NewMirrorSet()
	mirrors.Add(mirrorAt(image.Pt(0, 0), mgl32.Vec2{32, 150}))

	// A stale mask must not leak into an unlinked mirror.
	fx.dev.SetRenderTarget(fx.targets.FurnitureMask)
	fx.dev.Clear(color.RGBA{0, 0, 0, 255})
	fx.dev.SetRenderTarget(nil)

	if err := fx.compositor().Render(fx.rc, nil, fx.farmer, mirrors); err != nil {
		t.Fatalf("Render: %v", err)
	}
	composite := fx.dev.Snapshot(fx.targets.MirrorComposite[0])
	masked := fx.dev.Snapshot(fx.targets.MirrorMasked[0])
	if isEmpty(composite) {
		t.Fatal("Expected reflection content")
	}
	if string(composite.Pix) != string(masked.Pix) {
		t.Error("Expected masked output equal to composite for an unlinked mirror")
	}

	last := fx.rec.begins[len(fx.rec.begins)-1]
	if last.Effect != fx.mask || last.Blend != engine2D.BlendNonPremultiplied || last.Sampler != engine2D.SamplerPointClamp {
		t.Errorf("Expected masked pass with mask effect, got %+v", last)
	}
	if fx.mask.Texture(engine2D.ParamMask) != nil {
		t.Error("Expected no mask bound")
	}
}

func TestMirrorLinkedFurnitureMasks(t *testing.T) {
	fx := newFixture(t, 128, 192, 1)
	fx.farmer.Facing = world.Right

	// Frame covers the whole screen, its reflective surface only the top-left tile.
	furniture := world.NewFurniture("mirror", mgl32.Vec2{0, 0}, fx.dev.LoadTexture(solidImage(32, 48, color.RGBA{90, 90, 90, 255})))
	furniture.MaskTexture = fx.dev.LoadTexture(solidImage(16, 16, color.RGBA{255, 255, 255, 255}))
	loc := &world.Location{Name: "room", Furniture: []*world.Furniture{furniture}}

	m := mirrorAt(image.Pt(0, 0), mgl32.Vec2{0, 150})
	m.FurnitureLink = furniture.ID
	mirrors := NewMirrorSet()
	mirrors.Add(m)

	if err := fx.compositor().Render(fx.rc, loc, fx.farmer, mirrors); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if fx.filter.Active() {
		t.Error("Expected filter reset after render")
	}

	composite := fx.dev.Snapshot(fx.targets.MirrorComposite[0])
	masked := fx.dev.Snapshot(fx.targets.MirrorMasked[0])
	// Actor covers x [0,64), y [22,150); the mask covers [0,64) x [0,64).
	if got, want := masked.RGBAAt(10, 40), composite.RGBAAt(10, 40); got != want || got == (color.RGBA{}) {
		t.Errorf("Expected reflection inside the mask, got %v want %v", got, want)
	}
	if got := masked.RGBAAt(10, 100); got != (color.RGBA{}) {
		t.Errorf("Expected nothing outside the mask, got %v", got)
	}
	if fx.mask.Texture(engine2D.ParamMask) != fx.targets.FurnitureMask {
		t.Error("Expected furniture mask bound")
	}
}

func TestMirrorBrokenLinkFallsBackToUnmasked(t *testing.T) {
	fx := newFixture(t, 128, 192, 1)
	loc := &world.Location{Furniture: []*world.Furniture{world.NewFurniture("other", mgl32.Vec2{}, fx.dev.LoadTexture(solidImage(4, 4, color.RGBA{1, 1, 1, 255})))}}

	m := mirrorAt(image.Pt(0, 0), mgl32.Vec2{32, 150})
	m.FurnitureLink = world.NewFurniture("gone", mgl32.Vec2{}, nil).ID
	mirrors := NewMirrorSet()
	mirrors.Add(m)

	if err := fx.compositor().Render(fx.rc, loc, fx.farmer, mirrors); err != nil {
		t.Fatalf("Render: %v", err)
	}
	composite := fx.dev.Snapshot(fx.targets.MirrorComposite[0])
	masked := fx.dev.Snapshot(fx.targets.MirrorMasked[0])
	if string(composite.Pix) != string(masked.Pix) {
		t.Error("Expected unmasked output for a link to missing furniture")
	}
}

func TestDrawFurnitureReflectionsNeedsFurniture(t *testing.T) {
	tests := []struct {
		name      string
		present   bool
		wantDraws int
	}{
		{"furniture present", true, 1},
		{"furniture removed", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t, 128, 192, 1)
			// Covers [0,64) x [0,64), across the reflected actor.
			furniture := world.NewFurniture("mirror", mgl32.Vec2{}, fx.dev.LoadTexture(solidImage(16, 16, engine2D.White)))
			loc := &world.Location{}
			if tt.present {
				loc.Furniture = append(loc.Furniture, furniture)
			} else {
				loc.Furniture = append(loc.Furniture, world.NewFurniture("other", mgl32.Vec2{}, furniture.Texture))
			}

			m := mirrorAt(image.Pt(0, 0), mgl32.Vec2{32, 150})
			m.FurnitureLink = furniture.ID
			mirrors := NewMirrorSet()
			mirrors.Add(m)

			c := fx.compositor()
			if err := c.Render(fx.rc, loc, fx.farmer, mirrors); err != nil {
				t.Fatalf("Render: %v", err)
			}

			fx.dev.SetRenderTarget(nil)
			fx.dev.Clear(engine2D.Transparent)
			fx.dev.ResetStats()
			if err := c.DrawFurnitureReflections(fx.rc, mirrors); err != nil {
				t.Fatalf("DrawFurnitureReflections: %v", err)
			}

			if fx.dev.Stats.Draws != tt.wantDraws {
				t.Errorf("Expected %d draws, got %d", tt.wantDraws, fx.dev.Stats.Draws)
			}
			if empty := isEmpty(fx.dev.Snapshot(nil)); empty == tt.present {
				t.Errorf("Expected back buffer empty=%v, got %v", !tt.present, empty)
			}
		})
	}
}

func TestFilterActiveOnlyDuringMaskDraw(t *testing.T) {
	dev := software.New(64, 64)
	furniture := world.NewFurniture("mirror", mgl32.Vec2{}, dev.LoadTexture(solidImage(16, 16, color.RGBA{255, 0, 0, 255})))
	furniture.MaskTexture = dev.LoadTexture(solidImage(8, 8, color.RGBA{0, 255, 0, 255}))
	batch := engine2D.NewBatch(dev)

	var none *Filter
	if none.Active() {
		t.Error("Expected a nil filter inactive")
	}

	filter := &Filter{}
	tests := []struct {
		name string
		draw func() error
		want color.RGBA
	}{
		{"host draw", func() error { return furniture.Draw(batch, filter) }, color.RGBA{255, 0, 0, 255}},
		{"mask draw", func() error { return filter.drawMask(batch, furniture) }, color.RGBA{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev.Clear(engine2D.Transparent)
			if err := batch.Pass(engine2D.DefaultPass(), tt.draw); err != nil {
				t.Fatalf("Pass: %v", err)
			}
			if filter.Active() {
				t.Error("Expected the flag lowered after the draw")
			}
			if got := dev.Snapshot(nil).RGBAAt(40, 40); got != tt.want {
				t.Errorf("Expected %v outside the reflective surface, got %v", tt.want, got)
			}
		})
	}
}

func TestMirrorDrawComposited(t *testing.T) {
	fx := newFixture(t, 128, 192, 2)
	fx.farmer.Facing = world.Right

	furniture := world.NewFurniture("mirror", mgl32.Vec2{}, fx.dev.LoadTexture(solidImage(1, 1, engine2D.White)))
	linked := mirrorAt(image.Pt(1, 0), mgl32.Vec2{0, 150})
	linked.FurnitureLink = furniture.ID
	mirrors := NewMirrorSet()
	mirrors.Add(mirrorAt(image.Pt(0, 0), mgl32.Vec2{0, 150}))
	mirrors.Add(linked)

	// Mirrors layer covers only the top half of the screen.
	fx.dev.SetRenderTarget(fx.targets.MirrorsLayer)
	fx.dev.Clear(engine2D.Transparent)
	fx.dev.Begin(engine2D.DefaultPass())
	fx.dev.Draw(engine2D.DrawCommand{Texture: fx.dev.LoadTexture(solidImage(128, 96, engine2D.White)), Tint: engine2D.White})
	fx.dev.End()
	fx.dev.SetRenderTarget(nil)

	c := fx.compositor()
	if err := c.Render(fx.rc, &world.Location{Furniture: []*world.Furniture{furniture}}, fx.farmer, mirrors); err != nil {
		t.Fatalf("Render: %v", err)
	}

	fx.dev.Clear(engine2D.Transparent)
	fx.rec.begins = nil
	fx.dev.ResetStats()
	if err := c.DrawComposited(fx.rc, mirrors); err != nil {
		t.Fatalf("DrawComposited: %v", err)
	}

	if fx.dev.Stats.Draws != 1 {
		t.Errorf("Expected only the unlinked mirror drawn, got %d draws", fx.dev.Stats.Draws)
	}
	if s := fx.rec.begins[0]; s.Effect != fx.mask || s.Blend != engine2D.BlendNonPremultiplied || s.Sort != engine2D.SortFrontToBack {
		t.Errorf("Expected masked front-to-back pass, got %+v", s)
	}
	out := fx.dev.Snapshot(nil)
	if got := out.RGBAAt(10, 50); got == (color.RGBA{}) {
		t.Error("Expected reflection inside the mirrors layer")
	}
	if got := out.RGBAAt(10, 120); got != (color.RGBA{}) {
		t.Errorf("Expected nothing outside the mirrors layer, got %v", got)
	}
}

package reflection

import (
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"dynamic-reflections/internal/engine2D"
	"dynamic-reflections/internal/engine2D/software"
	"dynamic-reflections/internal/world"
)

var background = color.RGBA{10, 20, 30, 255}

type fixture struct {
	dev     *software.Device
	rec     *beginRecorder
	rc      *RenderContext
	targets *engine2D.TargetSet
	farmer  *world.Farmer
	mask    engine2D.Effect
	wave    engine2D.Effect
	filter  *Filter
}

// beginRecorder remembers the state every pass was opened with.
type beginRecorder struct {
	engine2D.Device
	begins []engine2D.PassState
}

func (r *beginRecorder) Begin(state engine2D.PassState) {
	r.begins = append(r.begins, state)
	r.Device.Begin(state)
}

func newFixture(t *testing.T, w, h, mirrors int) *fixture {
	t.Helper()
	dev := software.New(w, h)
	rec := &beginRecorder{Device: dev}
	targets := &engine2D.TargetSet{}
	targets.Ensure(dev, mirrors, w, h)

	mask, err := dev.LoadEffect(engine2D.EffectMask)
	if err != nil {
		t.Fatalf("LoadEffect: %v", err)
	}
	wave, err := dev.LoadEffect(engine2D.EffectWave)
	if err != nil {
		t.Fatalf("LoadEffect: %v", err)
	}

	return &fixture{
		dev:     dev,
		rec:     rec,
		rc:      &RenderContext{Device: rec, Batch: engine2D.NewBatch(rec), Targets: targets, Background: background},
		targets: targets,
		farmer:  newFarmer(dev, mgl32.Vec2{100, 150}),
		mask:    mask,
		wave:    wave,
		filter:  &Filter{},
	}
}

func (f *fixture) compositor() *MirrorCompositor {
	return &MirrorCompositor{Mask: f.mask, Filter: f.filter, Options: DefaultPoseOptions()}
}

// rowColors gives each facing row a left and right half colour so flips show.
var rowColors = [4][2]color.RGBA{
	{{200, 0, 0, 255}, {0, 200, 0, 255}},
	{{0, 0, 200, 255}, {200, 200, 0, 255}},
	{{200, 0, 200, 255}, {0, 200, 200, 255}},
	{{100, 50, 0, 255}, {0, 50, 100, 255}},
}

var mirrorSpriteColor = color.RGBA{255, 128, 0, 255}

func newFarmer(dev engine2D.Device, pos mgl32.Vec2) *world.Farmer {
	sheet := image.NewRGBA(image.Rect(0, 0, 16, 128))
	back := image.NewRGBA(image.Rect(0, 0, 16, 128))
	for y := 0; y < 128; y++ {
		for x := 0; x < 16; x++ {
			sheet.SetRGBA(x, y, rowColors[y/32][x/8])
			if x < 12 {
				back.SetRGBA(x, y, mirrorSpriteColor)
			}
		}
	}

	f := world.NewFarmer(pos, "default")
	f.Sprites["default"] = &world.SpriteSet{Texture: dev.LoadTexture(sheet), FrameWidth: 16, FrameHeight: 32, FrameCount: 1}
	f.Sprites["mirror-reflection"] = &world.SpriteSet{Texture: dev.LoadTexture(back), FrameWidth: 16, FrameHeight: 32, FrameCount: 1}
	f.Metadata["outfit"] = "overalls"
	return f
}

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func mirrorAt(pos image.Point, reflection mgl32.Vec2) *Mirror {
	return &Mirror{
		Position:                 pos,
		Enabled:                  true,
		Settings:                 DefaultSettings(),
		PlayerReflectionPosition: reflection,
	}
}

func isEmpty(img *image.RGBA) bool {
	for _, b := range img.Pix {
		if b != 0 {
			return false
		}
	}
	return true
}

func isFilled(img *image.RGBA, c color.RGBA) bool {
	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		for x := img.Rect.Min.X; x < img.Rect.Max.X; x++ {
			if img.RGBAAt(x, y) != c {
				return false
			}
		}
	}
	return true
}

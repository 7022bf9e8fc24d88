// Package debug draws the F8 overlay: mirror boxes, the water anchor and
// thumbnails of every reflection buffer.
package debug

import (
	"fmt"
	"image"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"dynamic-reflections/internal/engine2D"
	"dynamic-reflections/internal/reflection"
	"dynamic-reflections/internal/world"
)

var (
	activeColour   = color.RGBA{0, 255, 0, 255}
	inactiveColour = color.RGBA{128, 128, 128, 255}
	linkedColour   = color.RGBA{255, 255, 0, 255}
	anchorColour   = color.RGBA{255, 0, 0, 255}
)

// Thumbnailer draws a render target scaled into a screen rectangle.
type Thumbnailer interface {
	DrawThumbnail(t engine2D.Target, dst image.Rectangle)
}

// Box is one outlined rectangle in screen space.
type Box struct {
	Rect   image.Rectangle
	Colour color.RGBA
	Label  string
}

type Overlay struct {
	ShowBoundingBoxes bool
	ShowTargets       bool

	fontHeight int32
	thumbWidth int
}

func NewOverlay() *Overlay {
	return &Overlay{
		ShowBoundingBoxes: true,
		ShowTargets:       true,
		fontHeight:        10,
		thumbWidth:        160,
	}
}

// MirrorBoxes lays out one box per mirror tile plus a marker on each active
// mirror's reflection anchor.
func MirrorBoxes(vp engine2D.Viewport, mirrors *reflection.MirrorSet) []Box {
	if mirrors == nil {
		return nil
	}

	slots := make(map[image.Point]int, len(mirrors.Active))
	for i, pos := range mirrors.Active {
		slots[pos] = i
	}

	var boxes []Box
	for _, m := range mirrors.Sorted() {
		slot, active := slots[m.Position]
		c := inactiveColour
		label := fmt.Sprintf("%d,%d", m.Position.X, m.Position.Y)
		if active {
			c = activeColour
			label = fmt.Sprintf("#%d %s", slot, label)
		}
		if m.Linked() {
			c = linkedColour
		}

		tile := mgl32.Vec2{float32(m.Position.X * world.TileSize), float32(m.Position.Y * world.TileSize)}
		screen := vp.GlobalToLocal(tile)
		x, y := int(screen.X()), int(screen.Y())
		boxes = append(boxes, Box{Rect: image.Rect(x, y, x+world.TileSize, y+world.TileSize), Colour: c, Label: label})

		if active {
			boxes = append(boxes, marker(vp, m.PlayerReflectionPosition, c))
		}
	}
	return boxes
}

func marker(vp engine2D.Viewport, p mgl32.Vec2, c color.RGBA) Box {
	s := vp.GlobalToLocal(p)
	x, y := int(s.X()), int(s.Y())
	return Box{Rect: image.Rect(x-2, y-2, x+2, y+2), Colour: c}
}

// WaterBox marks the water reflection anchor, or nothing when there is none.
func WaterBox(vp engine2D.Viewport, anchor *mgl32.Vec2) []Box {
	if anchor == nil {
		return nil
	}
	b := marker(vp, *anchor, anchorColour)
	b.Label = "water"
	return []Box{b}
}

// ThumbnailSlots names every allocated buffer in draw order.
func ThumbnailSlots(targets *engine2D.TargetSet) []engine2D.Target {
	var out []engine2D.Target
	for _, t := range []engine2D.Target{targets.MirrorsLayer, targets.FurnitureMask, targets.WaterRaw} {
		if t != nil {
			out = append(out, t)
		}
	}
	for i := range targets.MirrorRaw {
		out = append(out, targets.MirrorRaw[i], targets.MirrorComposite[i], targets.MirrorMasked[i])
	}
	return out
}

func rlColour(c color.RGBA) rl.Color { return rl.NewColor(c.R, c.G, c.B, c.A) }

// Draw renders the overlay onto the back buffer. Call it after the frame is
// composited and outside any batch pass.
func (o *Overlay) Draw(vp engine2D.Viewport, mirrors *reflection.MirrorSet, water *mgl32.Vec2, targets *engine2D.TargetSet, thumbs Thumbnailer) {
	if o.ShowBoundingBoxes {
		for _, b := range append(MirrorBoxes(vp, mirrors), WaterBox(vp, water)...) {
			r := b.Rect
			rl.DrawRectangleLines(int32(r.Min.X), int32(r.Min.Y), int32(r.Dx()), int32(r.Dy()), rlColour(b.Colour))
			if b.Label != "" {
				rl.DrawText(b.Label, int32(r.Min.X), int32(r.Min.Y)-o.fontHeight-2, o.fontHeight, rlColour(b.Colour))
			}
		}
	}

	if o.ShowTargets && thumbs != nil && vp.Width > 0 {
		w := o.thumbWidth
		h := w * vp.Height / vp.Width
		x := vp.Width - w - 10
		y := 10
		for _, t := range ThumbnailSlots(targets) {
			if y+h > vp.Height {
				break
			}
			dst := image.Rect(x, y, x+w, y+h)
			rl.DrawRectangle(int32(x), int32(y), int32(w), int32(h), rl.NewColor(0, 0, 0, 160))
			thumbs.DrawThumbnail(t, dst)
			rl.DrawRectangleLines(int32(x), int32(y), int32(w), int32(h), rl.White)
			rl.DrawText(t.Name(), int32(x+4), int32(y+4), o.fontHeight, rl.White)
			y += h + 6
		}
	}

	rl.DrawFPS(10, 10)
}

package world

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"dynamic-reflections/internal/engine2D"
)

// TileSize is the on-screen size of one map tile in pixels.
const TileSize = 16 * SpriteScale

// Filtering is the shared flag a mask pass raises while it redraws furniture.
type Filtering interface {
	Active() bool
}

type Furniture struct {
	ID           uuid.UUID
	Name         string
	TileLocation mgl32.Vec2
	Texture      engine2D.Texture
	// MaskTexture is the reflective surface only; drawn instead of Texture while filtering.
	MaskTexture engine2D.Texture
}

func NewFurniture(name string, tile mgl32.Vec2, tex engine2D.Texture) *Furniture {
	return &Furniture{ID: uuid.New(), Name: name, TileLocation: tile, Texture: tex}
}

// Position is the world pixel position of the top-left corner.
func (f *Furniture) Position() mgl32.Vec2 {
	return f.TileLocation.Mul(TileSize)
}

// Draw submits the furniture. While filter is active only the reflective
// surface is drawn, so a mask pass picks up the mirror area without the frame
// around it. A nil filter never filters.
func (f *Furniture) Draw(batch *engine2D.Batch, filter Filtering) error {
	tex := f.Texture
	if filter != nil && filter.Active() && f.MaskTexture != nil {
		tex = f.MaskTexture
	}
	if tex == nil {
		return nil
	}
	vp := batch.Device().Viewport()
	return batch.Draw(engine2D.DrawCommand{
		Texture:  tex,
		Position: vp.GlobalToLocal(f.Position()),
		Tint:     engine2D.White,
		Scale:    mgl32.Vec2{SpriteScale, SpriteScale},
		Depth:    f.Position().Y() / 10000,
	})
}

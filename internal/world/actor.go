package world

import (
	"image"
	"maps"

	"github.com/go-gl/mathgl/mgl32"

	"dynamic-reflections/internal/engine2D"
	"dynamic-reflections/internal/utils"
)

// SpriteScale is the on-screen magnification of sprite sheet pixels.
const SpriteScale = 4

// SpriteSet is a sheet with one row per facing direction and FrameCount frames per row.
type SpriteSet struct {
	Texture     engine2D.Texture
	FrameWidth  int
	FrameHeight int
	FrameCount  int
}

func (s *SpriteSet) frame(d Direction, index int) image.Rectangle {
	if s.FrameCount > 0 {
		index %= s.FrameCount
	} else {
		index = 0
	}
	x := index * s.FrameWidth
	y := int(d) * s.FrameHeight
	return image.Rect(x, y, x+s.FrameWidth, y+s.FrameHeight)
}

// Pose is the part of an actor the reflection pipeline overrides while drawing.
type Pose struct {
	Position  mgl32.Vec2
	Direction Direction
	SpriteSet string
	Metadata  map[string]string
}

// Clone copies the pose including its metadata map.
func (p Pose) Clone() Pose {
	p.Metadata = maps.Clone(p.Metadata)
	if p.Metadata == nil {
		p.Metadata = make(map[string]string)
	}
	return p
}

func (p Pose) Equal(o Pose) bool {
	return p.Position == o.Position &&
		p.Direction == o.Direction &&
		p.SpriteSet == o.SpriteSet &&
		maps.Equal(p.Metadata, o.Metadata)
}

// Farmer is the player actor. Position is the world pixel position of the feet;
// the sprite is drawn upward from there.
type Farmer struct {
	Position  mgl32.Vec2
	Facing    Direction
	SpriteSet string
	Metadata  map[string]string
	Frame     int

	Sprites map[string]*SpriteSet

	// Appearance runs at the start of every draw and may read or rewrite Metadata,
	// standing in for outfit systems that key off the facing direction.
	Appearance func(f *Farmer)
}

func NewFarmer(position mgl32.Vec2, spriteSet string) *Farmer {
	return &Farmer{
		Position:  position,
		SpriteSet: spriteSet,
		Metadata:  make(map[string]string),
		Sprites:   make(map[string]*SpriteSet),
	}
}

func (f *Farmer) Pose() Pose {
	return Pose{
		Position:  f.Position,
		Direction: f.Facing,
		SpriteSet: f.SpriteSet,
		Metadata:  f.Metadata,
	}.Clone()
}

// SetPose replaces the transient state. Metadata is replaced wholesale,
// so keys absent from p are removed.
func (f *Farmer) SetPose(p Pose) {
	f.Position = p.Position
	f.Facing = p.Direction
	f.SpriteSet = p.SpriteSet
	f.Metadata = maps.Clone(p.Metadata)
	if f.Metadata == nil {
		f.Metadata = make(map[string]string)
	}
}

// Draw submits the current frame of the active sprite set.
func (f *Farmer) Draw(batch *engine2D.Batch) error {
	if f.Appearance != nil {
		f.Appearance(f)
	}

	set, ok := f.Sprites[f.SpriteSet]
	if !ok || set.Texture == nil {
		utils.Debug("Farmer: no sprite set %q", f.SpriteSet)
		return nil
	}

	vp := batch.Device().Viewport()
	screen := vp.GlobalToLocal(f.Position)
	return batch.Draw(engine2D.DrawCommand{
		Texture:  set.Texture,
		Position: screen,
		Source:   set.frame(f.Facing, f.Frame),
		Tint:     engine2D.White,
		Origin:   mgl32.Vec2{0, float32(set.FrameHeight)},
		Scale:    mgl32.Vec2{SpriteScale, SpriteScale},
		Depth:    f.Position.Y() / 10000,
	})
}

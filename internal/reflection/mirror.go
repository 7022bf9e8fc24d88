// Package reflection builds mirror and water reflections of the player in
// off-screen targets and composites them back into the frame.
//
// Every stage takes its device, batch and targets from a RenderContext and
// returns to the back buffer before it yields, so stages can run in any
// order the frame loop needs.
package reflection

import (
	"cmp"
	"image"
	"image/color"
	"maps"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"dynamic-reflections/internal/world"
)

// OffsetScale converts mirror offsets from tile units to pixels.
const OffsetScale = 16

type Settings struct {
	// ReflectionOffset shifts the reflected actor, in tile units.
	ReflectionOffset mgl32.Vec2
	// ReflectionOverlay tints the reflection multiplicatively.
	ReflectionOverlay color.RGBA
	// ReflectionScale is loaded and stored but not applied yet.
	ReflectionScale float32
}

func DefaultSettings() Settings {
	return Settings{ReflectionOverlay: color.RGBA{255, 255, 255, 255}, ReflectionScale: 1}
}

type Mirror struct {
	Position image.Point
	Enabled  bool
	// FurnitureLink names the furniture this mirror belongs to, or uuid.Nil.
	// It is resolved against the current location every frame.
	FurnitureLink uuid.UUID
	Settings      Settings
	// PlayerReflectionPosition is where the reflected player stands, in world pixels.
	PlayerReflectionPosition mgl32.Vec2
}

func (m *Mirror) Linked() bool { return m.FurnitureLink != uuid.Nil }

// MirrorSet is the frame's mirrors. Active order decides render target slots
// and must not change during a frame.
type MirrorSet struct {
	Active  []image.Point
	Mirrors map[image.Point]*Mirror
}

func NewMirrorSet() *MirrorSet {
	return &MirrorSet{Mirrors: make(map[image.Point]*Mirror)}
}

// Add registers m and appends it to the active list when enabled.
func (s *MirrorSet) Add(m *Mirror) {
	if _, exists := s.Mirrors[m.Position]; !exists && m.Enabled {
		s.Active = append(s.Active, m.Position)
	}
	s.Mirrors[m.Position] = m
}

// each calls fn for every active mirror with its render target slot.
// Positions without a mirror keep their slot but are skipped.
func (s *MirrorSet) each(fn func(slot int, m *Mirror) error) error {
	if s == nil {
		return nil
	}
	for slot, pos := range s.Active {
		m, ok := s.Mirrors[pos]
		if !ok {
			continue
		}
		if err := fn(slot, m); err != nil {
			return err
		}
	}
	return nil
}

// Linked returns the mirrors that point at furniture, in active order then by
// position for inactive ones.
func (s *MirrorSet) Linked() []*Mirror {
	if s == nil {
		return nil
	}
	seen := make(map[image.Point]bool, len(s.Mirrors))
	var out []*Mirror
	for _, pos := range s.Active {
		if m, ok := s.Mirrors[pos]; ok && m.Linked() {
			out = append(out, m)
			seen[pos] = true
		}
	}
	var rest []*Mirror
	for pos, m := range s.Mirrors {
		if !seen[pos] && m.Linked() {
			rest = append(rest, m)
		}
	}
	slices.SortFunc(rest, byPosition)
	return append(out, rest...)
}

// Sorted returns every mirror ordered by position, row first.
func (s *MirrorSet) Sorted() []*Mirror {
	if s == nil {
		return nil
	}
	out := slices.Collect(maps.Values(s.Mirrors))
	slices.SortFunc(out, byPosition)
	return out
}

func byPosition(a, b *Mirror) int {
	if c := cmp.Compare(a.Position.Y, b.Position.Y); c != 0 {
		return c
	}
	return cmp.Compare(a.Position.X, b.Position.X)
}

// Refresh recomputes every mirror's reflection anchor for an actor standing at
// player and activates the enabled mirrors within maxDistance tiles of it,
// ordered by position. A maxDistance of zero activates every enabled mirror.
func (s *MirrorSet) Refresh(player mgl32.Vec2, maxDistance float32) {
	var active []*Mirror
	for _, m := range s.Mirrors {
		m.PlayerReflectionPosition = reflectionAnchor(m.Position, player)
		if !m.Enabled {
			continue
		}
		center := mgl32.Vec2{float32(m.Position.X) + 0.5, float32(m.Position.Y) + 0.5}.Mul(world.TileSize)
		if maxDistance > 0 && player.Sub(center).Len() > maxDistance*world.TileSize {
			continue
		}
		active = append(active, m)
	}
	slices.SortFunc(active, byPosition)

	s.Active = s.Active[:0]
	for _, m := range active {
		s.Active = append(s.Active, m.Position)
	}
}

// reflectionAnchor mirrors the actor's feet about the bottom edge of the mirror tile.
func reflectionAnchor(tile image.Point, player mgl32.Vec2) mgl32.Vec2 {
	base := float32(tile.Y+1) * world.TileSize
	return mgl32.Vec2{player.X(), 2*base - player.Y()}
}

package config

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"dynamic-reflections/internal/reflection"
	"dynamic-reflections/internal/utils"
)

// Store holds per-mirror settings keyed by tile position.
type Store struct {
	entries map[image.Point]MirrorEntry
	order   []image.Point
}

func NewStore(entries []MirrorEntry) *Store {
	s := &Store{entries: make(map[image.Point]MirrorEntry, len(entries))}
	for _, e := range entries {
		pos := image.Pt(e.X, e.Y)
		if _, dup := s.entries[pos]; !dup {
			s.order = append(s.order, pos)
		} else {
			utils.Warn("Config: duplicate mirror at %v, last entry wins", pos)
		}
		s.entries[pos] = e
	}
	return s
}

func (s *Store) Len() int { return len(s.order) }

// Settings returns the stored settings for pos, or the defaults.
func (s *Store) Settings(pos image.Point) reflection.Settings {
	settings := reflection.DefaultSettings()
	e, ok := s.entries[pos]
	if !ok {
		return settings
	}
	settings.ReflectionOffset = mgl32.Vec2{e.Offset[0], e.Offset[1]}
	if e.Overlay != nil {
		settings.ReflectionOverlay = e.Overlay.RGBA()
	}
	if e.Scale != 0 {
		settings.ReflectionScale = e.Scale
	}
	return settings
}

func (s *Store) enabled(pos image.Point) bool {
	e, ok := s.entries[pos]
	return !ok || e.Enabled == nil || *e.Enabled
}

func (s *Store) link(pos image.Point) uuid.UUID {
	e, ok := s.entries[pos]
	if !ok || e.Furniture == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(e.Furniture)
	if err != nil {
		utils.Warn("Config: mirror %v has bad furniture id %q: %v", pos, e.Furniture, err)
		return uuid.Nil
	}
	return id
}

// Mirrors builds one mirror per stored entry, in file order.
func (s *Store) Mirrors() *reflection.MirrorSet {
	set := reflection.NewMirrorSet()
	for _, pos := range s.order {
		set.Add(&reflection.Mirror{
			Position:      pos,
			Enabled:       s.enabled(pos),
			FurnitureLink: s.link(pos),
			Settings:      s.Settings(pos),
		})
	}
	return set
}

// Apply copies stored settings onto mirrors already placed in set.
func (s *Store) Apply(set *reflection.MirrorSet) {
	for pos, m := range set.Mirrors {
		m.Settings = s.Settings(pos)
		m.Enabled = s.enabled(pos)
		m.FurnitureLink = s.link(pos)
	}
}

// PipelineOptions maps the file sections onto pipeline options.
func (c Config) PipelineOptions() reflection.Options {
	opts := reflection.DefaultOptions()
	opts.Mirrors = c.Mirrors.Enabled
	opts.Water = c.Water.Enabled
	opts.Wavy = c.Water.Wavy
	opts.Pose = reflection.PoseOptions{
		MirrorSpriteSet: c.Mirrors.SpriteSet,
		DirectionKey:    c.Mirrors.DirectionKey,
	}
	opts.Wave = reflection.WaveParams{
		Amplitude: c.Water.Amplitude,
		Frequency: c.Water.Frequency,
		Speed:     c.Water.Speed,
	}
	return opts
}

package reflection

import (
	"dynamic-reflections/internal/engine2D"
	"dynamic-reflections/internal/world"
)

// Filter is the flag furniture reads to draw only its reflective surface.
// It is set for exactly the duration of one mask draw.
type Filter struct {
	active bool
}

func (f *Filter) Active() bool { return f != nil && f.active }

func (f *Filter) run(fn func() error) error {
	f.active = true
	defer func() { f.active = false }()
	return fn()
}

// drawMask draws one piece of furniture with the flag set.
func (f *Filter) drawMask(batch *engine2D.Batch, furniture *world.Furniture) error {
	return f.run(func() error {
		return furniture.Draw(batch, f)
	})
}

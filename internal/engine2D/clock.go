package engine2D

import (
	"time"
)

// Clock feeds animated shader parameters. A fixed step makes it deterministic
// for headless snapshots.
type Clock struct {
	start     time.Time
	last      time.Time
	fixedStep time.Duration
	frames    int

	Total float64
	Delta float64
}

func NewClock(now time.Time) *Clock {
	return &Clock{start: now, last: now}
}

// NewFixedClock advances by step on every Tick regardless of wall time.
func NewFixedClock(step time.Duration) *Clock {
	return &Clock{fixedStep: step}
}

func (c *Clock) Tick(now time.Time) {
	c.frames++
	if c.fixedStep > 0 {
		c.Delta = c.fixedStep.Seconds()
		c.Total = float64(c.frames) * c.Delta
		return
	}
	c.Delta = now.Sub(c.last).Seconds()
	c.Total = now.Sub(c.start).Seconds()
	c.last = now
}

func (c *Clock) Frames() int { return c.frames }

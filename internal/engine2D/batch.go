package engine2D

import (
	"sort"
)

// Batch is the shared sprite batch. The host and the reflection pipeline
// take turns on the same instance, so its configuration is observable via State.
type Batch struct {
	device  Device
	state   PassState
	open    bool
	pending []DrawCommand
}

func NewBatch(device Device) *Batch {
	return &Batch{device: device, state: DefaultPass()}
}

func (b *Batch) Device() Device { return b.device }

func (b *Batch) IsOpen() bool { return b.open }

// State returns the configuration of the current pass, or of the last one once ended.
func (b *Batch) State() PassState { return b.state }

func (b *Batch) Begin(state PassState) error {
	if b.open {
		return ErrBatchOpen
	}
	b.state = state
	b.open = true
	b.pending = b.pending[:0]
	b.device.Begin(state)
	return nil
}

func (b *Batch) Draw(cmd DrawCommand) error {
	if !b.open {
		return ErrBatchClosed
	}
	if cmd.Texture == nil {
		return ErrNilTexture
	}
	if b.state.Transform != nil {
		cmd = TransformCommand(cmd, *b.state.Transform)
	}
	if b.state.Sort == SortImmediate {
		b.device.Draw(cmd)
		return nil
	}
	b.pending = append(b.pending, cmd)
	return nil
}

func (b *Batch) End() error {
	if !b.open {
		return ErrBatchClosed
	}
	b.flush()
	b.device.End()
	b.open = false
	return nil
}

func (b *Batch) flush() {
	switch b.state.Sort {
	case SortFrontToBack:
		sort.SliceStable(b.pending, func(i, j int) bool { return b.pending[i].Depth < b.pending[j].Depth })
	case SortBackToFront:
		sort.SliceStable(b.pending, func(i, j int) bool { return b.pending[i].Depth > b.pending[j].Depth })
	case SortTexture:
		// Group by texture in first-use order.
		order := make(map[Texture]int)
		for _, cmd := range b.pending {
			if _, ok := order[cmd.Texture]; !ok {
				order[cmd.Texture] = len(order)
			}
		}
		sort.SliceStable(b.pending, func(i, j int) bool { return order[b.pending[i].Texture] < order[b.pending[j].Texture] })
	}
	for _, cmd := range b.pending {
		b.device.Draw(cmd)
	}
	b.pending = b.pending[:0]
}

// Pass opens a pass, runs fn and always closes it again.
func (b *Batch) Pass(state PassState, fn func() error) (err error) {
	if err := b.Begin(state); err != nil {
		return err
	}
	defer func() {
		if endErr := b.End(); err == nil {
			err = endErr
		}
	}()
	return fn()
}

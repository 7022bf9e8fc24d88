package engine2D

// Cache is a single-slot snapshot of a batch's pass configuration.
// A second Capture before Resume replaces the first snapshot.
type Cache struct {
	valid bool
	state PassState
}

// Capture records the batch's current configuration. With alsoEnd the open
// pass is closed so another pass can begin on the same batch.
func (c *Cache) Capture(batch *Batch, alsoEnd bool) error {
	c.state = batch.State().Clone()
	c.valid = true

	if alsoEnd {
		return batch.End()
	}
	return nil
}

// Resume reopens the batch with the captured configuration and empties the cache.
// It reports false and leaves the batch alone when nothing was captured.
func (c *Cache) Resume(batch *Batch) (bool, error) {
	if !c.valid {
		return false, nil
	}
	c.valid = false

	if err := batch.Begin(c.state.Clone()); err != nil {
		return true, err
	}
	return true, nil
}

func (c *Cache) Valid() bool { return c.valid }

// Lease is a borrowed batch. It owns its snapshot, so leases may nest.
type Lease struct {
	batch    *Batch
	state    PassState
	wasOpen  bool
	returned bool
}

// Borrow closes the batch if it is open and remembers how to hand it back.
func Borrow(batch *Batch) (*Lease, error) {
	l := &Lease{batch: batch, state: batch.State().Clone(), wasOpen: batch.IsOpen()}
	if l.wasOpen {
		if err := batch.End(); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Return reopens the batch exactly as it was borrowed. Calling it again is a no-op.
func (l *Lease) Return() error {
	if l.returned {
		return nil
	}
	l.returned = true

	if l.batch.IsOpen() {
		if err := l.batch.End(); err != nil {
			return err
		}
	}
	if !l.wasOpen {
		return nil
	}
	return l.batch.Begin(l.state.Clone())
}

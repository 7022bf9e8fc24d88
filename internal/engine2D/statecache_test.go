package engine2D

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func hostState() PassState {
	m := mgl32.Translate3D(10, -4, 0).Mul4(mgl32.Scale3D(2, 2, 1))
	return PassState{
		Sort:       SortBackToFront,
		Blend:      BlendAdditive,
		Sampler:    SamplerPointWrap,
		Depth:      DepthRead,
		Rasterizer: RasterizerState{Cull: CullClockwise, Scissor: true},
		Effect:     &fakeEffect{kind: EffectWave},
		Transform:  &m,
	}
}

func TestCacheCaptureResume(t *testing.T) {
	tests := []struct {
		name    string
		state   PassState
		alsoEnd bool
	}{
		{"default state, keep open", DefaultPass(), false},
		{"default state, end", DefaultPass(), true},
		{"full state with matrix, end", hostState(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device := &recordingDevice{}
			batch := NewBatch(device)
			if err := batch.Begin(tt.state); err != nil {
				t.Fatalf("Begin: %v", err)
			}

			var cache Cache
			if err := cache.Capture(batch, tt.alsoEnd); err != nil {
				t.Fatalf("Capture: %v", err)
			}
			if batch.IsOpen() == tt.alsoEnd {
				t.Errorf("Expected open=%v after capture, got %v", !tt.alsoEnd, batch.IsOpen())
			}
			if !tt.alsoEnd {
				if err := batch.End(); err != nil {
					t.Fatalf("End: %v", err)
				}
			}

			// Someone else uses the batch in between.
			other := DefaultPass()
			other.Sort = SortImmediate
			if err := batch.Pass(other, func() error { return nil }); err != nil {
				t.Fatalf("Pass: %v", err)
			}

			ok, err := cache.Resume(batch)
			if err != nil || !ok {
				t.Fatalf("Expected resume to succeed, got ok=%v err=%v", ok, err)
			}
			if !batch.State().Equal(tt.state) {
				t.Errorf("Expected restored state %+v, got %+v", tt.state, batch.State())
			}
			if cache.Valid() {
				t.Error("Expected cache to be empty after resume")
			}
		})
	}
}

func TestCacheResumeWithoutCapture(t *testing.T) {
	device := &recordingDevice{}
	batch := NewBatch(device)

	var cache Cache
	ok, err := cache.Resume(batch)
	if ok || err != nil {
		t.Errorf("Expected (false, nil), got (%v, %v)", ok, err)
	}
	if batch.IsOpen() || len(device.calls) != 0 {
		t.Errorf("Expected batch untouched, got calls %v", device.calls)
	}
}

func TestCacheSecondResumeIsNoop(t *testing.T) {
	device := &recordingDevice{}
	batch := NewBatch(device)
	_ = batch.Begin(hostState())

	var cache Cache
	_ = cache.Capture(batch, true)
	if ok, _ := cache.Resume(batch); !ok {
		t.Fatal("Expected first resume to succeed")
	}
	calls := len(device.calls)
	if ok, _ := cache.Resume(batch); ok {
		t.Error("Expected second resume to report false")
	}
	if len(device.calls) != calls {
		t.Errorf("Expected no device calls, got %v", device.calls[calls:])
	}
}

func TestCacheSnapshotDoesNotAliasMatrix(t *testing.T) {
	device := &recordingDevice{}
	batch := NewBatch(device)
	state := hostState()
	want := *state.Transform
	_ = batch.Begin(state)

	var cache Cache
	_ = cache.Capture(batch, true)
	*state.Transform = mgl32.Ident4()

	_, _ = cache.Resume(batch)
	if *batch.State().Transform != want {
		t.Errorf("Expected captured matrix %v, got %v", want, *batch.State().Transform)
	}
}

func TestLeaseNestedBorrow(t *testing.T) {
	device := &recordingDevice{}
	batch := NewBatch(device)
	outer := hostState()
	_ = batch.Begin(outer)

	l1, err := Borrow(batch)
	if err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	inner := DefaultPass()
	inner.Sort = SortImmediate
	_ = batch.Begin(inner)

	l2, err := Borrow(batch)
	if err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	if batch.IsOpen() {
		t.Fatal("Expected batch closed while borrowed")
	}

	if err := l2.Return(); err != nil {
		t.Fatalf("Return: %v", err)
	}
	if !batch.State().Equal(inner) {
		t.Errorf("Expected inner state after inner return")
	}
	if err := l1.Return(); err != nil {
		t.Fatalf("Return: %v", err)
	}
	if !batch.IsOpen() || !batch.State().Equal(outer) {
		t.Errorf("Expected outer state restored and open, got open=%v", batch.IsOpen())
	}

	calls := len(device.calls)
	if err := l1.Return(); err != nil {
		t.Fatalf("Return: %v", err)
	}
	if len(device.calls) != calls {
		t.Error("Expected second Return to be a no-op")
	}
}

func TestLeaseClosesPassLeftOpen(t *testing.T) {
	device := &recordingDevice{}
	batch := NewBatch(device)

	lease, _ := Borrow(batch)
	_ = batch.Begin(DefaultPass())
	if err := lease.Return(); err != nil {
		t.Fatalf("Return: %v", err)
	}
	if batch.IsOpen() {
		t.Error("Expected batch closed again, it was closed when borrowed")
	}
}

package engine2D

import (
	"fmt"

	"dynamic-reflections/internal/utils"
)

// TargetSet holds every intermediate buffer of the reflection pipeline.
// Per-mirror slices are indexed by position in the active mirror list.
type TargetSet struct {
	MirrorRaw       []Target
	MirrorComposite []Target
	MirrorMasked    []Target
	FurnitureMask   Target
	MirrorsLayer    Target
	WaterRaw        Target

	width, height int
}

func (s *TargetSet) Size() (int, int) { return s.width, s.height }

// Ensure sizes the set for count mirrors at width x height, releasing stale buffers.
// Shared buffers are only recreated on a resolution change.
func (s *TargetSet) Ensure(device Device, count, width, height int) {
	resized := width != s.width || height != s.height
	if resized {
		utils.Debug("Targets: resizing to %dx%d", width, height)
		s.Release(device)
		s.width, s.height = width, height
	}

	if s.FurnitureMask == nil {
		s.FurnitureMask = device.NewTarget("furniture-mask", width, height)
	}
	if s.MirrorsLayer == nil {
		s.MirrorsLayer = device.NewTarget("mirrors-layer", width, height)
	}
	if s.WaterRaw == nil {
		s.WaterRaw = device.NewTarget("water-raw", width, height)
	}

	if len(s.MirrorRaw) > count {
		s.release(device, count)
	}
	for i := len(s.MirrorRaw); i < count; i++ {
		s.MirrorRaw = append(s.MirrorRaw, device.NewTarget(fmt.Sprintf("mirror-raw-%d", i), width, height))
		s.MirrorComposite = append(s.MirrorComposite, device.NewTarget(fmt.Sprintf("mirror-composite-%d", i), width, height))
		s.MirrorMasked = append(s.MirrorMasked, device.NewTarget(fmt.Sprintf("mirror-masked-%d", i), width, height))
	}
}

// Release frees every buffer in the set.
func (s *TargetSet) Release(device Device) {
	s.release(device, 0)
	for _, t := range []*Target{&s.FurnitureMask, &s.MirrorsLayer, &s.WaterRaw} {
		if *t != nil {
			device.ReleaseTarget(*t)
			*t = nil
		}
	}
	s.width, s.height = 0, 0
}

func (s *TargetSet) release(device Device, keep int) {
	for i := keep; i < len(s.MirrorRaw); i++ {
		device.ReleaseTarget(s.MirrorRaw[i])
		device.ReleaseTarget(s.MirrorComposite[i])
		device.ReleaseTarget(s.MirrorMasked[i])
	}
	s.MirrorRaw = s.MirrorRaw[:keep]
	s.MirrorComposite = s.MirrorComposite[:keep]
	s.MirrorMasked = s.MirrorMasked[:keep]
}

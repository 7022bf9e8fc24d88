package reflection

import (
	"dynamic-reflections/internal/engine2D"
	"dynamic-reflections/internal/world"
)

type Pose = world.Pose

// Actor is anything the pipeline can pose and draw. The player is a *world.Farmer.
type Actor interface {
	Pose() Pose
	SetPose(p Pose)
	Draw(batch *engine2D.Batch) error
}

type PoseOptions struct {
	// MirrorSpriteSet replaces the sprite set when the actor faces down,
	// so the reflection shows the back of the actor.
	MirrorSpriteSet string
	// DirectionKey is the metadata key outfit systems read the facing from.
	DirectionKey string
}

func DefaultPoseOptions() PoseOptions {
	return PoseOptions{
		MirrorSpriteSet: "mirror-reflection",
		DirectionKey:    "appearance.facing-direction",
	}
}

// ReflectedMirrorPose derives the pose the actor is drawn with inside mirror m.
// base is not modified.
func ReflectedMirrorPose(base Pose, m *Mirror, opts PoseOptions) Pose {
	p := base.Clone()
	p.Position = m.PlayerReflectionPosition.Sub(m.Settings.ReflectionOffset.Mul(OffsetScale))
	p.Direction = world.ReflectedDirection(base.Direction, true)
	if base.Direction == world.Down && opts.MirrorSpriteSet != "" {
		p.SpriteSet = opts.MirrorSpriteSet
	}
	if opts.DirectionKey != "" {
		p.Metadata[opts.DirectionKey] = p.Direction.Code()
	}
	return p
}

// withPose draws with actor temporarily set to pose and restores the pose it
// had before, including metadata written by anyone during fn.
func withPose(actor Actor, pose Pose, fn func() error) error {
	saved := actor.Pose()
	defer actor.SetPose(saved)

	actor.SetPose(pose)
	return fn()
}

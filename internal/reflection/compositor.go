package reflection

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"dynamic-reflections/internal/engine2D"
	"dynamic-reflections/internal/world"
)

// flipInset is the on-screen width of the actor sprite. A flipped full-screen
// image is shifted by it so the actor lands back on its own column.
const flipInset = 64

// FlipOffset is how far left a horizontally flipped full-screen image must be
// drawn to keep an actor at position in place.
func FlipOffset(vp engine2D.Viewport, position mgl32.Vec2) float32 {
	return float32(vp.Width) - vp.GlobalToLocal(position).X()*2 - flipInset
}

// slotState is how far a mirror's buffers got in the last Render.
type slotState uint8

const (
	slotEmpty slotState = iota
	slotComposited
	slotMasked // composited and clipped to its linked furniture
)

// MirrorCompositor renders one reflection per active mirror.
type MirrorCompositor struct {
	// Mask is the masking effect used for the final stage and for DrawComposited.
	Mask    engine2D.Effect
	Filter  *Filter
	Options PoseOptions

	slots []slotState
}

// Discard forgets every buffer built by the last Render, so the draw entry
// points draw nothing until the next one.
func (c *MirrorCompositor) Discard() { c.slots = c.slots[:0] }

func (c *MirrorCompositor) state(slot int) slotState {
	if slot >= len(c.slots) {
		return slotEmpty
	}
	return c.slots[slot]
}

// Render produces, for every active mirror i, the raw pose in MirrorRaw[i],
// the flipped and tinted image in MirrorComposite[i] and the furniture-masked
// result in MirrorMasked[i]. The actor's pose is restored and the back buffer
// cleared to the background on every return path.
func (c *MirrorCompositor) Render(rc *RenderContext, loc *world.Location, actor Actor, mirrors *MirrorSet) error {
	c.Discard()
	if mirrors != nil {
		c.slots = append(c.slots, make([]slotState, len(mirrors.Active))...)
	}

	base := actor.Pose()
	defer func() {
		actor.SetPose(base)
		rc.clearBackground()
	}()

	return mirrors.each(func(slot int, m *Mirror) error {
		if err := c.renderMirror(rc, loc, actor, base, m, slot); err != nil {
			return fmt.Errorf("mirror %v: %w", m.Position, err)
		}
		return nil
	})
}

func (c *MirrorCompositor) renderMirror(rc *RenderContext, loc *world.Location, actor Actor, base Pose, m *Mirror, slot int) error {
	raw := rc.Targets.MirrorRaw[slot]
	composite := rc.Targets.MirrorComposite[slot]
	masked := rc.Targets.MirrorMasked[slot]
	pose := ReflectedMirrorPose(base, m, c.Options)

	// Raw pose.
	err := rc.into(raw, func() error {
		return rc.Batch.Pass(pass(engine2D.SortFrontToBack, engine2D.BlendAlpha, nil), func() error {
			return withPose(actor, pose, func() error {
				return actor.Draw(rc.Batch)
			})
		})
	})
	if err != nil {
		return fmt.Errorf("raw pose: %w", err)
	}

	// Flip and tint. Facing down or up shows the actor front or back, which a
	// mirror shows swapped left to right.
	cmd := engine2D.DrawCommand{Texture: raw, Tint: m.Settings.ReflectionOverlay, Depth: 1}
	if pose.Direction == world.Down || pose.Direction == world.Up {
		cmd.Flip = engine2D.FlipHorizontal
		cmd.Position = mgl32.Vec2{-FlipOffset(rc.Device.Viewport(), pose.Position), 0}
	}
	err = rc.into(composite, func() error {
		return rc.Batch.Pass(pass(engine2D.SortFrontToBack, engine2D.BlendAlpha, nil), func() error {
			return rc.Batch.Draw(cmd)
		})
	})
	if err != nil {
		return fmt.Errorf("composite: %w", err)
	}
	c.slots[slot] = slotComposited

	// Mask for this mirror only.
	hasMask, err := renderMirrorFurniture(rc, loc, m, c.Filter)
	if err != nil {
		return fmt.Errorf("furniture mask: %w", err)
	}

	if c.Mask != nil {
		var mask engine2D.Texture
		if hasMask {
			mask = rc.Targets.FurnitureMask
		}
		c.Mask.SetTexture(engine2D.ParamMask, mask)
	}
	err = rc.into(masked, func() error {
		return rc.Batch.Pass(pass(engine2D.SortFrontToBack, engine2D.BlendNonPremultiplied, c.Mask), func() error {
			return rc.Batch.Draw(fullScreen(composite))
		})
	})
	if err != nil {
		return fmt.Errorf("masked: %w", err)
	}
	if hasMask {
		c.slots[slot] = slotMasked
	}
	return nil
}

// DrawComposited draws the reflection of every active mirror without furniture
// into the current target, clipped to the mirrors layer. Only mirrors built by
// the last Render are drawn. The batch must be closed.
func (c *MirrorCompositor) DrawComposited(rc *RenderContext, mirrors *MirrorSet) error {
	if c.Mask != nil {
		c.Mask.SetTexture(engine2D.ParamMask, rc.Targets.MirrorsLayer)
	}
	return rc.Batch.Pass(pass(engine2D.SortFrontToBack, engine2D.BlendNonPremultiplied, c.Mask), func() error {
		return mirrors.each(func(slot int, m *Mirror) error {
			if m.Linked() || c.state(slot) == slotEmpty {
				return nil
			}
			return rc.Batch.Draw(fullScreen(rc.Targets.MirrorComposite[slot]))
		})
	})
}

// DrawFurnitureReflections draws the masked reflection of every active mirror
// whose linked furniture was found by the last Render. A mirror linked to
// furniture that has since gone draws nothing. The batch must be closed.
func (c *MirrorCompositor) DrawFurnitureReflections(rc *RenderContext, mirrors *MirrorSet) error {
	return rc.Batch.Pass(pass(engine2D.SortFrontToBack, engine2D.BlendNonPremultiplied, nil), func() error {
		return mirrors.each(func(slot int, m *Mirror) error {
			if !m.Linked() || !m.Enabled || c.state(slot) != slotMasked {
				return nil
			}
			return rc.Batch.Draw(fullScreen(rc.Targets.MirrorMasked[slot]))
		})
	})
}

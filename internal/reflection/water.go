package reflection

import (
	"github.com/go-gl/mathgl/mgl32"

	"dynamic-reflections/internal/engine2D"
)

// WaterCompositor renders the single water reflection.
type WaterCompositor struct {
	// Wave is the distortion effect for wavy water.
	Wave engine2D.Effect
	// Rasterizer is used for the flipped pass; mirrored geometry turns its winding around.
	Rasterizer engine2D.RasterizerState
}

func NewWaterCompositor(wave engine2D.Effect) *WaterCompositor {
	return &WaterCompositor{Wave: wave, Rasterizer: engine2D.RasterizerCullNone}
}

// WaterTransform flips about the horizontal line through anchor in screen space.
func WaterTransform(vp engine2D.Viewport, anchor mgl32.Vec2) mgl32.Mat4 {
	return engine2D.FlipTranslate(vp.GlobalToLocal(anchor).Y() * 2)
}

// RenderReflection draws the actor standing at anchor, mirrored about anchor's
// row, into WaterRaw. The actor's position is restored before returning.
func (w *WaterCompositor) RenderReflection(rc *RenderContext, actor Actor, anchor mgl32.Vec2) error {
	transform := WaterTransform(rc.Device.Viewport(), anchor)

	state := pass(engine2D.SortFrontToBack, engine2D.BlendAlpha, nil)
	state.Rasterizer = w.Rasterizer
	state.Transform = &transform

	err := rc.into(rc.Targets.WaterRaw, func() error {
		return rc.Batch.Pass(state, func() error {
			pose := actor.Pose()
			pose.Position = anchor
			return withPose(actor, pose, func() error {
				return actor.Draw(rc.Batch)
			})
		})
	})
	rc.clearBackground()
	return err
}

// DrawComposited draws WaterRaw into the current target, through the wave
// effect when isWavy. The batch must be closed.
func (w *WaterCompositor) DrawComposited(rc *RenderContext, isWavy bool) error {
	var effect engine2D.Effect
	if isWavy {
		effect = w.Wave
	}
	return rc.Batch.Pass(pass(engine2D.SortFrontToBack, engine2D.BlendAlpha, effect), func() error {
		return rc.Batch.Draw(fullScreen(rc.Targets.WaterRaw))
	})
}

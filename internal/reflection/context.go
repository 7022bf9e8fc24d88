package reflection

import (
	"image/color"

	"dynamic-reflections/internal/engine2D"
	"dynamic-reflections/internal/utils"
)

// RenderContext carries the device, shared batch and targets through every stage.
type RenderContext struct {
	Device     engine2D.Device
	Batch      *engine2D.Batch
	Targets    *engine2D.TargetSet
	Background color.RGBA
}

// into selects target, clears it to transparent and runs fn. The back buffer
// is selected again on return, whatever fn did.
func (rc *RenderContext) into(target engine2D.Target, fn func() error) error {
	utils.Debug("Reflection: rendering into %s", target.Name())
	rc.Device.SetRenderTarget(target)
	defer rc.Device.SetRenderTarget(nil)

	rc.Device.Clear(engine2D.Transparent)
	if fn == nil {
		return nil
	}
	return fn()
}

func (rc *RenderContext) clearBackground() {
	rc.Device.Clear(rc.Background)
}

// pass describes a pass with point sampling and no transform.
func pass(sort engine2D.SortMode, blend engine2D.BlendState, effect engine2D.Effect) engine2D.PassState {
	s := engine2D.DefaultPass()
	s.Sort = sort
	s.Blend = blend
	s.Sampler = engine2D.SamplerPointClamp
	s.Effect = effect
	return s
}

// fullScreen draws tex unscaled at the target origin.
func fullScreen(tex engine2D.Texture) engine2D.DrawCommand {
	return engine2D.DrawCommand{Texture: tex, Tint: engine2D.White, Depth: 1}
}

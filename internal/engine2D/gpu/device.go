// Package gpu implements engine2D.Device on raylib render textures and GLSL shaders.
// All calls must happen on the thread that owns the raylib window.
package gpu

import (
	"image"
	"image/color"

	"dynamic-reflections/internal/engine2D"
	"dynamic-reflections/internal/utils"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type texture struct {
	tex rl.Texture2D
}

func (t *texture) Width() int  { return int(t.tex.Width) }
func (t *texture) Height() int { return int(t.tex.Height) }

type target struct {
	name string
	rt   rl.RenderTexture2D
}

func (t *target) Width() int   { return int(t.rt.Texture.Width) }
func (t *target) Height() int  { return int(t.rt.Texture.Height) }
func (t *target) Name() string { return t.name }

type Device struct {
	viewport engine2D.Viewport
	current  *target
	state    engine2D.PassState
	effects  []*effect
}

func New() *Device {
	return &Device{
		viewport: engine2D.Viewport{Width: rl.GetScreenWidth(), Height: rl.GetScreenHeight()},
	}
}

// SetCamera moves the viewport origin and picks up window resizes.
func (d *Device) SetCamera(x, y int) {
	d.viewport = engine2D.Viewport{X: x, Y: y, Width: rl.GetScreenWidth(), Height: rl.GetScreenHeight()}
}

func (d *Device) Viewport() engine2D.Viewport { return d.viewport }

func (d *Device) NewTarget(name string, width, height int) engine2D.Target {
	rt := rl.LoadRenderTexture(int32(width), int32(height))
	rl.SetTextureFilter(rt.Texture, rl.FilterPoint)
	utils.Debug("GPU: allocated %s %dx%d (ID: %d)", name, width, height, rt.ID)
	return &target{name: name, rt: rt}
}

func (d *Device) ReleaseTarget(t engine2D.Target) {
	if rt, ok := t.(*target); ok {
		if d.current == rt {
			d.SetRenderTarget(nil)
		}
		rl.UnloadRenderTexture(rt.rt)
	}
}

func (d *Device) LoadTexture(img image.Image) engine2D.Texture {
	rlImage := rl.NewImageFromImage(img)
	tex := rl.LoadTextureFromImage(rlImage)
	rl.UnloadImage(rlImage)
	return &texture{tex: tex}
}

func (d *Device) LoadEffect(kind engine2D.EffectKind) (engine2D.Effect, error) {
	e, err := loadEffect(kind)
	if err != nil {
		return nil, err
	}
	d.effects = append(d.effects, e)
	return e, nil
}

// Close unloads every shader created through this device.
func (d *Device) Close() {
	for _, e := range d.effects {
		rl.UnloadShader(e.shader)
	}
	d.effects = nil
}

func (d *Device) SetRenderTarget(t engine2D.Target) {
	if d.current != nil {
		rl.EndTextureMode()
		d.current = nil
	}
	if t == nil {
		return
	}
	rt, ok := t.(*target)
	if !ok {
		utils.Error("GPU: foreign render target %s", t.Name())
		return
	}
	rl.BeginTextureMode(rt.rt)
	d.current = rt
}

func (d *Device) RenderTarget() engine2D.Target {
	if d.current == nil {
		return nil
	}
	return d.current
}

func (d *Device) Clear(c color.RGBA) {
	rl.ClearBackground(rl.NewColor(c.R, c.G, c.B, c.A))
}

func (d *Device) Begin(state engine2D.PassState) {
	d.state = state
	rl.BeginBlendMode(blendMode(state.Blend))

	if state.Rasterizer.Cull == engine2D.CullNone {
		rl.DisableBackfaceCulling()
	}
	if state.Depth == engine2D.DepthNone {
		rl.DisableDepthTest()
	} else {
		rl.EnableDepthTest()
	}

	if e, ok := state.Effect.(*effect); ok {
		rl.BeginShaderMode(e.shader)
		e.apply()
	}
}

func (d *Device) Draw(cmd engine2D.DrawCommand) {
	var tex rl.Texture2D
	isRenderTexture := false

	switch t := cmd.Texture.(type) {
	case *texture:
		tex = t.tex
	case *target:
		tex = t.rt.Texture
		isRenderTexture = true
	default:
		utils.Error("GPU: foreign texture in draw")
		return
	}

	applySampler(tex, d.state.Sampler)

	sr := cmd.SourceRect()
	sourceRec := rl.NewRectangle(float32(sr.Min.X), float32(sr.Min.Y), float32(sr.Dx()), float32(sr.Dy()))
	flipY := cmd.Flip&engine2D.FlipVertical != 0
	if isRenderTexture {
		flipY = !flipY
	}
	if flipY {
		sourceRec.Height = -sourceRec.Height
	}
	if cmd.Flip&engine2D.FlipHorizontal != 0 {
		sourceRec.Width = -sourceRec.Width
	}

	topLeft, size := engine2D.DestRect(cmd)
	destRec := rl.NewRectangle(topLeft.X(), topLeft.Y(), size.X(), size.Y())

	tint := rl.NewColor(cmd.Tint.R, cmd.Tint.G, cmd.Tint.B, cmd.Tint.A)
	rl.DrawTexturePro(tex, sourceRec, destRec, rl.NewVector2(0, 0), 0, tint)
}

func (d *Device) End() {
	if d.state.Effect != nil {
		rl.EndShaderMode()
	}
	if d.state.Rasterizer.Cull == engine2D.CullNone {
		rl.EnableBackfaceCulling()
	}
	if d.state.Depth != engine2D.DepthNone {
		rl.DisableDepthTest()
	}
	rl.EndBlendMode()
}

func blendMode(b engine2D.BlendState) rl.BlendMode {
	switch b {
	case engine2D.BlendNonPremultiplied:
		return rl.BlendAlpha
	case engine2D.BlendAdditive:
		return rl.BlendAdditive
	case engine2D.BlendOpaque:
		// Only used with opaque sources, where straight alpha is a plain copy.
		return rl.BlendAlpha
	}
	return rl.BlendAlphaPremultiply
}

func applySampler(tex rl.Texture2D, s engine2D.SamplerState) {
	switch s {
	case engine2D.SamplerLinearClamp:
		rl.SetTextureFilter(tex, rl.FilterBilinear)
		rl.SetTextureWrap(tex, rl.WrapClamp)
	case engine2D.SamplerPointWrap:
		rl.SetTextureFilter(tex, rl.FilterPoint)
		rl.SetTextureWrap(tex, rl.WrapRepeat)
	default:
		rl.SetTextureFilter(tex, rl.FilterPoint)
		rl.SetTextureWrap(tex, rl.WrapClamp)
	}
}

// DrawThumbnail draws t scaled into dst on whatever target is selected,
// outside of any pass.
func (d *Device) DrawThumbnail(t engine2D.Target, dst image.Rectangle) {
	rt, ok := t.(*target)
	if !ok {
		return
	}
	w, h := float32(rt.rt.Texture.Width), float32(rt.rt.Texture.Height)
	rl.DrawTexturePro(rt.rt.Texture,
		rl.NewRectangle(0, 0, w, -h),
		rl.NewRectangle(float32(dst.Min.X), float32(dst.Min.Y), float32(dst.Dx()), float32(dst.Dy())),
		rl.NewVector2(0, 0), 0, rl.White)
}

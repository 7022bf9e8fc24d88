package engine2D

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	Transparent = color.RGBA{}
	White       = color.RGBA{255, 255, 255, 255}
)

type Texture interface {
	Width() int
	Height() int
}

// Target is an off-screen buffer that can be drawn into and sampled from.
type Target interface {
	Texture
	Name() string
}

type EffectKind int

const (
	// EffectMask multiplies the source by the alpha of the "Mask" texture.
	// With no mask bound the source passes through unchanged.
	EffectMask EffectKind = iota
	// EffectWave displaces sample coordinates horizontally along a sine.
	EffectWave
)

func (k EffectKind) String() string {
	switch k {
	case EffectMask:
		return "mask"
	case EffectWave:
		return "wave"
	}
	return "unknown"
}

const (
	ParamMask      = "Mask"
	ParamTime      = "Time"
	ParamAmplitude = "Amplitude"
	ParamFrequency = "Frequency"
	ParamSpeed     = "Speed"
)

// Effect is a backend shader program with named parameters.
// Implementations must be pointer types so PassState comparison is by identity.
type Effect interface {
	Kind() EffectKind
	SetTexture(name string, tex Texture)
	SetFloat(name string, v float32)
	Texture(name string) Texture
}

type Flip uint8

const (
	FlipNone       Flip = 0
	FlipHorizontal Flip = 1 << 0
	FlipVertical   Flip = 1 << 1
)

type DrawCommand struct {
	Texture  Texture
	Position mgl32.Vec2
	// Source selects a sub-rectangle of Texture. Empty means the whole texture.
	Source image.Rectangle
	Tint   color.RGBA
	Origin mgl32.Vec2
	// Scale of zero is treated as (1, 1).
	Scale mgl32.Vec2
	Flip  Flip
	Depth float32
}

func (c DrawCommand) SourceRect() image.Rectangle {
	if c.Source.Empty() {
		return image.Rect(0, 0, c.Texture.Width(), c.Texture.Height())
	}
	return c.Source
}

func (c DrawCommand) EffectiveScale() mgl32.Vec2 {
	if c.Scale == (mgl32.Vec2{}) {
		return mgl32.Vec2{1, 1}
	}
	return c.Scale
}

// Device is the graphics device shared by the host and the reflection pipeline.
// Exactly one render target is selected at a time; nil selects the back buffer.
type Device interface {
	NewTarget(name string, width, height int) Target
	ReleaseTarget(t Target)
	LoadTexture(img image.Image) Texture
	LoadEffect(kind EffectKind) (Effect, error)

	SetRenderTarget(t Target)
	RenderTarget() Target
	Clear(c color.RGBA)

	Begin(state PassState)
	Draw(cmd DrawCommand)
	End()

	Viewport() Viewport
}

type Viewport struct {
	X, Y          int
	Width, Height int
}

// GlobalToLocal converts a world pixel position to screen space.
func (v Viewport) GlobalToLocal(p mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{p.X() - float32(v.X), p.Y() - float32(v.Y)}
}

func (v Viewport) Bounds() image.Rectangle {
	return image.Rect(v.X, v.Y, v.X+v.Width, v.Y+v.Height)
}

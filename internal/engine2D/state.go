package engine2D

import (
	"github.com/go-gl/mathgl/mgl32"
)

type SortMode int

const (
	SortDeferred SortMode = iota
	SortImmediate
	SortFrontToBack
	SortBackToFront
	SortTexture
)

type BlendState int

const (
	// BlendAlpha expects premultiplied source colour.
	BlendAlpha BlendState = iota
	BlendNonPremultiplied
	BlendAdditive
	BlendOpaque
)

type SamplerState int

const (
	SamplerPointClamp SamplerState = iota
	SamplerLinearClamp
	SamplerPointWrap
)

type DepthStencilState int

const (
	DepthNone DepthStencilState = iota
	DepthDefault
	DepthRead
)

type CullMode int

const (
	CullCounterClockwise CullMode = iota
	CullClockwise
	CullNone
)

type RasterizerState struct {
	Cull    CullMode
	Scissor bool
}

var (
	RasterizerCullCounterClockwise = RasterizerState{Cull: CullCounterClockwise}
	RasterizerCullNone             = RasterizerState{Cull: CullNone}
)

// PassState is everything a drawing pass is opened with.
type PassState struct {
	Sort       SortMode
	Blend      BlendState
	Sampler    SamplerState
	Depth      DepthStencilState
	Rasterizer RasterizerState
	Effect     Effect
	Transform  *mgl32.Mat4
}

// DefaultPass mirrors an unconfigured Begin: deferred, premultiplied alpha, linear clamp.
func DefaultPass() PassState {
	return PassState{
		Sort:       SortDeferred,
		Blend:      BlendAlpha,
		Sampler:    SamplerLinearClamp,
		Depth:      DepthNone,
		Rasterizer: RasterizerCullCounterClockwise,
	}
}

// Equal compares the five states, the effect identity and the matrix value.
func (s PassState) Equal(o PassState) bool {
	if s.Sort != o.Sort || s.Blend != o.Blend || s.Sampler != o.Sampler ||
		s.Depth != o.Depth || s.Rasterizer != o.Rasterizer || s.Effect != o.Effect {
		return false
	}
	if (s.Transform == nil) != (o.Transform == nil) {
		return false
	}
	return s.Transform == nil || *s.Transform == *o.Transform
}

// Clone deep-copies the transform so a snapshot cannot alias the live matrix.
func (s PassState) Clone() PassState {
	if s.Transform != nil {
		m := *s.Transform
		s.Transform = &m
	}
	return s
}

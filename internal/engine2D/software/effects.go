package software

import (
	"image/color"
	"math"

	"dynamic-reflections/internal/engine2D"
)

type effect struct {
	kind     engine2D.EffectKind
	textures map[string]engine2D.Texture
	floats   map[string]float32
}

func newEffect(kind engine2D.EffectKind) *effect {
	e := &effect{
		kind:     kind,
		textures: make(map[string]engine2D.Texture),
		floats:   make(map[string]float32),
	}
	if kind == engine2D.EffectWave {
		e.floats[engine2D.ParamAmplitude] = 0.01
		e.floats[engine2D.ParamFrequency] = 40
		e.floats[engine2D.ParamSpeed] = 2
	}
	return e
}

func (e *effect) Kind() engine2D.EffectKind { return e.kind }

func (e *effect) SetTexture(name string, tex engine2D.Texture) {
	if tex == nil {
		delete(e.textures, name)
		return
	}
	e.textures[name] = tex
}

func (e *effect) SetFloat(name string, v float32) { e.floats[name] = v }

func (e *effect) Texture(name string) engine2D.Texture { return e.textures[name] }

// mask scales c by the mask alpha sampled at the same texture coordinate.
func (e *effect) mask(c color.RGBA, u, v float64) color.RGBA {
	tex, ok := e.textures[engine2D.ParamMask].(*texture)
	if !ok {
		return c
	}
	mx := clamp(int(u*float64(tex.Width())), 0, tex.Width()-1)
	my := clamp(int(v*float64(tex.Height())), 0, tex.Height()-1)
	a := tex.img.RGBAAt(tex.img.Rect.Min.X+mx, tex.img.Rect.Min.Y+my).A
	return color.RGBA{mul8(c.R, a), mul8(c.G, a), mul8(c.B, a), mul8(c.A, a)}
}

// displace shifts u along a sine of v travelling with Time.
func (e *effect) displace(u, v float64) float64 {
	amp := float64(e.floats[engine2D.ParamAmplitude])
	freq := float64(e.floats[engine2D.ParamFrequency])
	speed := float64(e.floats[engine2D.ParamSpeed])
	t := float64(e.floats[engine2D.ParamTime])
	return u + amp*math.Sin(v*freq+t*speed)
}

package gpu

import (
	"dynamic-reflections/internal/engine2D"
	"dynamic-reflections/internal/utils"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const maskFragment = `
#version 120
uniform sampler2D texture0;
uniform sampler2D Mask;
uniform vec4 colDiffuse;
varying vec2 fragTexCoord;
varying vec4 fragColor;
void main() {
    vec4 c = texture2D(texture0, fragTexCoord) * colDiffuse * fragColor;
    gl_FragColor = c * texture2D(Mask, fragTexCoord).a;
}
`

const waveFragment = `
#version 120
uniform sampler2D texture0;
uniform vec4 colDiffuse;
uniform float Time;
uniform float Amplitude;
uniform float Frequency;
uniform float Speed;
varying vec2 fragTexCoord;
varying vec4 fragColor;
void main() {
    vec2 uv = fragTexCoord;
    uv.x += Amplitude * sin(uv.y * Frequency + Time * Speed);
    if (uv.x < 0.0 || uv.x > 1.0) {
        discard;
    }
    gl_FragColor = texture2D(texture0, uv) * colDiffuse * fragColor;
}
`

// whiteTexture stands in for an unbound mask so the mask shader passes colour through.
var whiteTexture *rl.Texture2D

func ensureDefaults() {
	if whiteTexture != nil {
		return
	}
	img := rl.GenImageColor(1, 1, rl.White)
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	whiteTexture = &tex
}

type effect struct {
	kind      engine2D.EffectKind
	shader    rl.Shader
	locations map[string]int32
	textures  map[string]engine2D.Texture
	floats    map[string]float32
}

func loadEffect(kind engine2D.EffectKind) (*effect, error) {
	var source string
	var params []string
	switch kind {
	case engine2D.EffectMask:
		source = maskFragment
		params = []string{engine2D.ParamMask}
	case engine2D.EffectWave:
		source = waveFragment
		params = []string{engine2D.ParamTime, engine2D.ParamAmplitude, engine2D.ParamFrequency, engine2D.ParamSpeed}
	default:
		return nil, engine2D.ErrUnknownEffect
	}

	ensureDefaults()
	shader := rl.LoadShaderFromMemory("", source)
	if !rl.IsShaderValid(shader) {
		utils.Warn("GPU: %s shader failed to compile, using default", kind)
	}

	e := &effect{
		kind:      kind,
		shader:    shader,
		locations: make(map[string]int32, len(params)),
		textures:  make(map[string]engine2D.Texture),
		floats:    make(map[string]float32),
	}
	for _, name := range params {
		e.locations[name] = rl.GetShaderLocation(shader, name)
	}
	if kind == engine2D.EffectWave {
		e.floats[engine2D.ParamAmplitude] = 0.01
		e.floats[engine2D.ParamFrequency] = 40
		e.floats[engine2D.ParamSpeed] = 2
	}
	return e, nil
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

// apply uploads uniforms; must be called inside BeginShaderMode.
func (e *effect) apply() {
	for name, v := range e.floats {
		if loc, ok := e.locations[name]; ok && loc != -1 {
			rl.SetShaderValue(e.shader, loc, []float32{v}, rl.ShaderUniformFloat)
		}
	}

	if e.kind != engine2D.EffectMask {
		return
	}
	loc := e.locations[engine2D.ParamMask]
	if loc == -1 {
		return
	}
	mask := *whiteTexture
	switch t := e.textures[engine2D.ParamMask].(type) {
	case *texture:
		mask = t.tex
	case *target:
		mask = t.rt.Texture
	}
	rl.SetShaderValueTexture(e.shader, loc, mask)
}

package engine2D

import (
	"fmt"
	"image"
	"image/color"
)

type fakeTexture struct {
	name string
	w, h int
}

func (t *fakeTexture) Width() int   { return t.w }
func (t *fakeTexture) Height() int  { return t.h }
func (t *fakeTexture) Name() string { return t.name }

type fakeEffect struct {
	kind     EffectKind
	textures map[string]Texture
}

func (e *fakeEffect) Kind() EffectKind { return e.kind }
func (e *fakeEffect) SetTexture(name string, tex Texture) {
	if e.textures == nil {
		e.textures = make(map[string]Texture)
	}
	e.textures[name] = tex
}
func (e *fakeEffect) SetFloat(string, float32)    {}
func (e *fakeEffect) Texture(name string) Texture { return e.textures[name] }

// recordingDevice logs every call as a short string.
type recordingDevice struct {
	calls    []string
	draws    []DrawCommand
	begins   []PassState
	current  Target
	released []Target
	viewport Viewport
}

func (d *recordingDevice) NewTarget(name string, w, h int) Target {
	d.calls = append(d.calls, "new "+name)
	return &fakeTexture{name: name, w: w, h: h}
}

func (d *recordingDevice) ReleaseTarget(t Target) {
	d.calls = append(d.calls, "release "+t.Name())
	d.released = append(d.released, t)
}

func (d *recordingDevice) LoadTexture(img image.Image) Texture {
	return &fakeTexture{name: "tex", w: img.Bounds().Dx(), h: img.Bounds().Dy()}
}

func (d *recordingDevice) LoadEffect(kind EffectKind) (Effect, error) {
	return &fakeEffect{kind: kind}, nil
}

func (d *recordingDevice) SetRenderTarget(t Target) {
	d.current = t
	if t == nil {
		d.calls = append(d.calls, "target back")
		return
	}
	d.calls = append(d.calls, "target "+t.Name())
}

func (d *recordingDevice) RenderTarget() Target { return d.current }

func (d *recordingDevice) Clear(c color.RGBA) {
	d.calls = append(d.calls, fmt.Sprintf("clear %v", c))
}

func (d *recordingDevice) Begin(state PassState) {
	d.calls = append(d.calls, "begin")
	d.begins = append(d.begins, state)
}

func (d *recordingDevice) Draw(cmd DrawCommand) {
	d.calls = append(d.calls, "draw")
	d.draws = append(d.draws, cmd)
}

func (d *recordingDevice) End() { d.calls = append(d.calls, "end") }

func (d *recordingDevice) Viewport() Viewport { return d.viewport }

// Package software renders the engine2D contract on the CPU into image.RGBA buffers.
// It backs headless snapshots and pixel-exact tests.
package software

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"dynamic-reflections/internal/engine2D"
	"dynamic-reflections/internal/utils"
)

// texture doubles as render target; pixels are premultiplied like image.RGBA.
type texture struct {
	name     string
	img      *image.RGBA
	released bool
}

func (t *texture) Width() int   { return t.img.Rect.Dx() }
func (t *texture) Height() int  { return t.img.Rect.Dy() }
func (t *texture) Name() string { return t.name }

type Device struct {
	viewport engine2D.Viewport
	back     *texture
	current  *texture
	state    engine2D.PassState
	inPass   bool

	// Stats counts work per frame; reset with ResetStats.
	Stats Stats
}

type Stats struct {
	Clears int
	Passes int
	Draws  int
}

func New(width, height int) *Device {
	back := &texture{name: "backbuffer", img: image.NewRGBA(image.Rect(0, 0, width, height))}
	return &Device{
		viewport: engine2D.Viewport{Width: width, Height: height},
		back:     back,
		current:  back,
	}
}

// SetViewport moves the camera. A size change reallocates the back buffer.
func (d *Device) SetViewport(v engine2D.Viewport) {
	if v.Width != d.viewport.Width || v.Height != d.viewport.Height {
		resized := &texture{name: "backbuffer", img: image.NewRGBA(image.Rect(0, 0, v.Width, v.Height))}
		if d.current == d.back {
			d.current = resized
		}
		d.back = resized
	}
	d.viewport = v
}

func (d *Device) Viewport() engine2D.Viewport { return d.viewport }

func (d *Device) BackBuffer() engine2D.Target { return d.back }

func (d *Device) ResetStats() { d.Stats = Stats{} }

func (d *Device) NewTarget(name string, width, height int) engine2D.Target {
	return &texture{name: name, img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

func (d *Device) ReleaseTarget(t engine2D.Target) {
	if tex, ok := t.(*texture); ok {
		tex.released = true
	}
}

func (d *Device) LoadTexture(img image.Image) engine2D.Texture {
	rgba := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	xdraw.Copy(rgba, image.Point{}, img, img.Bounds(), draw.Src, nil)
	return &texture{name: "texture", img: rgba}
}

func (d *Device) LoadEffect(kind engine2D.EffectKind) (engine2D.Effect, error) {
	switch kind {
	case engine2D.EffectMask, engine2D.EffectWave:
		return newEffect(kind), nil
	}
	return nil, engine2D.ErrUnknownEffect
}

func (d *Device) SetRenderTarget(t engine2D.Target) {
	if t == nil {
		d.current = d.back
		return
	}
	tex, ok := t.(*texture)
	if !ok {
		utils.Error("Software: foreign render target %s", t.Name())
		return
	}
	d.current = tex
}

// RenderTarget returns nil while the back buffer is selected.
func (d *Device) RenderTarget() engine2D.Target {
	if d.current == d.back {
		return nil
	}
	return d.current
}

func (d *Device) Clear(c color.RGBA) {
	d.Stats.Clears++
	draw.Draw(d.current.img, d.current.img.Rect, image.NewUniform(c), image.Point{}, draw.Src)
}

func (d *Device) Begin(state engine2D.PassState) {
	d.Stats.Passes++
	d.state = state
	d.inPass = true
}

func (d *Device) End() {
	d.inPass = false
}

func (d *Device) Draw(cmd engine2D.DrawCommand) {
	src, ok := cmd.Texture.(*texture)
	if !ok {
		utils.Error("Software: foreign texture in draw")
		return
	}
	if src.released {
		utils.Warn("Software: drawing released target %s", src.name)
	}
	d.Stats.Draws++
	rasterize(d.current.img, src.img, cmd, d.state)
}

// Snapshot copies the pixels of a texture or target. Nil means the back buffer.
func (d *Device) Snapshot(t engine2D.Texture) *image.RGBA {
	tex := d.back
	if t != nil {
		var ok bool
		if tex, ok = t.(*texture); !ok {
			return nil
		}
	}
	out := image.NewRGBA(tex.img.Rect)
	copy(out.Pix, tex.img.Pix)
	return out
}

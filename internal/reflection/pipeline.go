package reflection

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"

	"dynamic-reflections/internal/engine2D"
	"dynamic-reflections/internal/world"
)

type WaveParams struct {
	Amplitude float32
	Frequency float32
	Speed     float32
}

type Options struct {
	Mirrors bool
	Water   bool
	Wavy    bool
	Pose    PoseOptions
	Wave    WaveParams
}

func DefaultOptions() Options {
	return Options{
		Mirrors: true,
		Water:   true,
		Pose:    DefaultPoseOptions(),
		Wave:    WaveParams{Amplitude: 0.01, Frequency: 40, Speed: 2},
	}
}

// Frame is the world state one frame of reflections is built from.
type Frame struct {
	Location *world.Location
	Actor    Actor
	Mirrors  *MirrorSet
	// WaterAnchor is where the water reflection stands; nil means no water in view.
	WaterAnchor *mgl32.Vec2
	// Time drives the wave effect, in seconds.
	Time float64
}

// Pipeline owns the targets and effects and runs the stages in order.
type Pipeline struct {
	Options Options

	rc      RenderContext
	targets engine2D.TargetSet
	cache   engine2D.Cache
	filter  Filter
	mirror  MirrorCompositor
	water   *WaterCompositor
}

func NewPipeline(device engine2D.Device, batch *engine2D.Batch, background color.RGBA, opts Options) (*Pipeline, error) {
	mask, err := device.LoadEffect(engine2D.EffectMask)
	if err != nil {
		return nil, fmt.Errorf("load mask effect: %w", err)
	}
	wave, err := device.LoadEffect(engine2D.EffectWave)
	if err != nil {
		return nil, fmt.Errorf("load wave effect: %w", err)
	}

	p := &Pipeline{Options: opts}
	p.rc = RenderContext{Device: device, Batch: batch, Targets: &p.targets, Background: background}
	p.mirror = MirrorCompositor{Mask: mask, Filter: &p.filter, Options: opts.Pose}
	p.water = NewWaterCompositor(wave)
	p.SetWave(opts.Wave)
	return p, nil
}

func (p *Pipeline) SetWave(w WaveParams) {
	p.Options.Wave = w
	p.water.Wave.SetFloat(engine2D.ParamAmplitude, w.Amplitude)
	p.water.Wave.SetFloat(engine2D.ParamFrequency, w.Frequency)
	p.water.Wave.SetFloat(engine2D.ParamSpeed, w.Speed)
}

func (p *Pipeline) SetBackground(c color.RGBA) { p.rc.Background = c }

func (p *Pipeline) Background() color.RGBA { return p.rc.Background }

func (p *Pipeline) Targets() *engine2D.TargetSet { return &p.targets }

func (p *Pipeline) Filter() *Filter { return &p.filter }

// Render builds every off-screen buffer for f. An open host pass is suspended
// for the duration and reopened with its original configuration.
func (p *Pipeline) Render(f Frame) (err error) {
	vp := p.rc.Device.Viewport()
	count := 0
	if f.Mirrors != nil {
		count = len(f.Mirrors.Active)
	}
	p.targets.Ensure(p.rc.Device, count, vp.Width, vp.Height)

	if p.rc.Batch.IsOpen() {
		if err := p.cache.Capture(p.rc.Batch, true); err != nil {
			return err
		}
		defer func() {
			if _, resumeErr := p.cache.Resume(p.rc.Batch); err == nil {
				err = resumeErr
			}
		}()
	}

	if p.Options.Mirrors {
		if err := RenderMirrorsLayer(&p.rc, f.Location); err != nil {
			return fmt.Errorf("mirrors layer: %w", err)
		}
		if err := RenderFurnitureMask(&p.rc, f.Location, f.Mirrors, &p.filter); err != nil {
			return fmt.Errorf("furniture mask: %w", err)
		}
		if f.Actor != nil && f.Mirrors != nil {
			if err := p.mirror.Render(&p.rc, f.Location, f.Actor, f.Mirrors); err != nil {
				p.mirror.Discard()
				return err
			}
		} else {
			p.mirror.Discard()
		}
	} else {
		p.mirror.Discard()
	}

	if p.Options.Water && f.WaterAnchor != nil && f.Actor != nil {
		if err := p.water.RenderReflection(&p.rc, f.Actor, *f.WaterAnchor); err != nil {
			return fmt.Errorf("water: %w", err)
		}
	}
	return nil
}

// Composite draws the finished buffers into the currently selected target.
func (p *Pipeline) Composite(f Frame) (err error) {
	lease, err := engine2D.Borrow(p.rc.Batch)
	if err != nil {
		return err
	}
	defer func() {
		if returnErr := lease.Return(); err == nil {
			err = returnErr
		}
	}()

	if p.Options.Water && f.WaterAnchor != nil && f.Actor != nil {
		p.water.Wave.SetFloat(engine2D.ParamTime, float32(f.Time))
		if err := p.water.DrawComposited(&p.rc, p.Options.Wavy); err != nil {
			return fmt.Errorf("water: %w", err)
		}
	}
	if p.Options.Mirrors && f.Mirrors != nil && f.Actor != nil {
		if err := p.mirror.DrawComposited(&p.rc, f.Mirrors); err != nil {
			return fmt.Errorf("mirrors: %w", err)
		}
		if err := p.mirror.DrawFurnitureReflections(&p.rc, f.Mirrors); err != nil {
			return fmt.Errorf("furniture mirrors: %w", err)
		}
	}
	return nil
}

// Close releases every target the pipeline allocated.
func (p *Pipeline) Close() {
	p.targets.Release(p.rc.Device)
}

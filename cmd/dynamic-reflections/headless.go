package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"golang.org/x/image/draw"

	"dynamic-reflections/internal/config"
	"dynamic-reflections/internal/engine2D"
	"dynamic-reflections/internal/engine2D/software"
	"dynamic-reflections/internal/reflection"
	"dynamic-reflections/internal/scene"
	"dynamic-reflections/internal/utils"
)

// runHeadless simulates opts.frames frames on the CPU backend and writes the
// last back buffer to opts.headless.
func runHeadless(cfg config.Config, def *config.Scene, opts options) error {
	w, h := cfg.General.Width, cfg.General.Height
	device := software.New(w, h)
	batch := engine2D.NewBatch(device)

	pipeline, err := reflection.NewPipeline(device, batch, cfg.General.Background.RGBA(), cfg.PipelineOptions())
	if err != nil {
		return err
	}
	defer pipeline.Close()

	s, err := scene.Load(device, def, cfg)
	if err != nil {
		return fmt.Errorf("load scene: %w", err)
	}

	clock := engine2D.NewFixedClock(time.Second / time.Duration(max(cfg.General.TargetFPS, 1)))
	for i := 0; i < max(opts.frames, 1); i++ {
		clock.Tick(time.Time{})
		x, y := s.Camera(w, h)
		device.SetViewport(engine2D.Viewport{X: x, Y: y, Width: w, Height: h})
		device.ResetStats()

		if _, err := s.Step(device, batch, pipeline, clock.Total); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	utils.Debug("Headless: last frame %d clears, %d passes, %d draws", device.Stats.Clears, device.Stats.Passes, device.Stats.Draws)

	return writeSnapshot(opts.headless, device.Snapshot(nil), opts.outputScale)
}

func writeSnapshot(path string, img *image.RGBA, scale float64) error {
	var out image.Image = img
	if scale > 0 && scale != 1 {
		b := img.Bounds()
		scaled := image.NewRGBA(image.Rect(0, 0, int(float64(b.Dx())*scale), int(float64(b.Dy())*scale)))
		draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, b, draw.Src, nil)
		out = scaled
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, out); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

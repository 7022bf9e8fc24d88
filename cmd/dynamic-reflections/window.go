package main

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"dynamic-reflections/internal/config"
	"dynamic-reflections/internal/debug"
	"dynamic-reflections/internal/engine2D"
	"dynamic-reflections/internal/engine2D/gpu"
	"dynamic-reflections/internal/reflection"
	"dynamic-reflections/internal/scene"
	"dynamic-reflections/internal/utils"
	"dynamic-reflections/internal/world"
)

// walkSpeed is in world pixels per second.
const walkSpeed = 4 * world.TileSize

type Window struct {
	device   *gpu.Device
	batch    *engine2D.Batch
	pipeline *reflection.Pipeline
	scene    *scene.Scene
	clock    *engine2D.Clock

	debugOverlay *debug.Overlay
	watcher      *config.Watcher
	pointer      *utils.Pointer
}

func runWindow(cfg config.Config, def *config.Scene, opts options) error {
	rl.SetTraceLogCallback(utils.RaylibLogCallback)
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.General.Width), int32(cfg.General.Height), "Dynamic Reflections")
	defer rl.CloseWindow()

	window, err := NewWindow(cfg, def, opts)
	if err != nil {
		return err
	}
	defer window.Close()

	window.Run(cfg.General.TargetFPS)
	return nil
}

func NewWindow(cfg config.Config, def *config.Scene, opts options) (*Window, error) {
	device := gpu.New()
	batch := engine2D.NewBatch(device)

	pipeline, err := reflection.NewPipeline(device, batch, cfg.General.Background.RGBA(), cfg.PipelineOptions())
	if err != nil {
		return nil, err
	}

	s, err := scene.Load(device, def, cfg)
	if err != nil {
		pipeline.Close()
		return nil, fmt.Errorf("load scene: %w", err)
	}

	window := &Window{
		device:       device,
		batch:        batch,
		pipeline:     pipeline,
		scene:        s,
		clock:        engine2D.NewClock(time.Now()),
		debugOverlay: debug.NewOverlay(),
	}

	if w, err := config.Watch(opts.configPath, 0); err != nil {
		utils.Warn("Config hot reload disabled: %v", err)
	} else {
		window.watcher = w
	}

	if opts.followPointer {
		if p, err := utils.OpenPointer(); err != nil {
			utils.Warn("Pointer following disabled: %v", err)
		} else {
			window.pointer = p
		}
	}
	return window, nil
}

func (window *Window) Run(fps int) {
	rl.SetTargetFPS(int32(fps))

	for !rl.WindowShouldClose() {
		window.Update()

		rl.BeginDrawing()
		window.Draw()
		rl.EndDrawing()
	}
}

func (window *Window) Update() {
	window.clock.Tick(time.Now())

	// Settings only change between frames.
	if window.watcher != nil {
		select {
		case cfg := <-window.watcher.Updates():
			window.apply(cfg)
		default:
		}
	}

	if rl.IsKeyPressed(rl.KeyF8) {
		utils.ShowDebugUI = !utils.ShowDebugUI
	}
	if rl.IsKeyPressed(rl.KeyF9) {
		window.pipeline.Options.Wavy = !window.pipeline.Options.Wavy
	}

	window.move(float32(window.clock.Delta))

	// A pointer-driven player would drag a following camera along with it.
	if window.pointer != nil {
		window.device.SetCamera(0, 0)
		return
	}
	vp := window.device.Viewport()
	x, y := window.scene.Camera(vp.Width, vp.Height)
	window.device.SetCamera(x, y)
}

func (window *Window) apply(cfg config.Config) {
	utils.SetLevel(cfg.General.LogLevel)
	utils.ShowDebugUI = cfg.General.Debug
	rl.SetTargetFPS(int32(cfg.General.TargetFPS))

	window.scene.Apply(cfg)
	window.pipeline.Options = cfg.PipelineOptions()
	window.pipeline.SetWave(window.pipeline.Options.Wave)
	window.pipeline.SetBackground(cfg.General.Background.RGBA())
}

var walkKeys = []struct {
	keys   []int32
	facing world.Direction
	step   mgl32.Vec2
}{
	{[]int32{rl.KeyDown, rl.KeyS}, world.Down, mgl32.Vec2{0, 1}},
	{[]int32{rl.KeyUp, rl.KeyW}, world.Up, mgl32.Vec2{0, -1}},
	{[]int32{rl.KeyLeft, rl.KeyA}, world.Left, mgl32.Vec2{-1, 0}},
	{[]int32{rl.KeyRight, rl.KeyD}, world.Right, mgl32.Vec2{1, 0}},
}

func (window *Window) move(dt float32) {
	farmer := window.scene.Farmer

	if window.pointer != nil {
		px, py, err := window.pointer.Position()
		if err != nil {
			utils.Debug("Pointer: %v", err)
			return
		}
		origin := rl.GetWindowPosition()
		farmer.Position = mgl32.Vec2{float32(px) - origin.X, float32(py) - origin.Y}
		return
	}

	for _, k := range walkKeys {
		for _, key := range k.keys {
			if rl.IsKeyDown(key) {
				farmer.Facing = k.facing
				farmer.Position = farmer.Position.Add(k.step.Mul(walkSpeed * dt))
				break
			}
		}
	}
}

func (window *Window) Draw() {
	frame, err := window.scene.Step(window.device, window.batch, window.pipeline, window.clock.Total)
	if err != nil {
		utils.Error("Frame failed: %v", err)
	}

	if utils.ShowDebugUI {
		window.debugOverlay.Draw(window.device.Viewport(), frame.Mirrors, frame.WaterAnchor, window.pipeline.Targets(), window.device)
	}
}

func (window *Window) Close() {
	if window.watcher != nil {
		window.watcher.Close()
	}
	if window.pointer != nil {
		window.pointer.Close()
	}
	window.pipeline.Close()
	window.device.Close()
}

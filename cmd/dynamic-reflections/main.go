package main

import (
	"flag"
	"os"
	"path/filepath"

	"dynamic-reflections/internal/config"
	"dynamic-reflections/internal/convert"
	"dynamic-reflections/internal/utils"
)

type options struct {
	configPath    string
	scenePath     string
	pkgPath       string
	convertDir    string
	headless      string
	frames        int
	outputScale   float64
	followPointer bool
	logLevel      string
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.configPath, "config", "reflections.toml", "Path to the mod configuration file")
	flag.StringVar(&o.scenePath, "scene", "", "Scene file to load (overrides [general] scene)")
	flag.StringVar(&o.pkgPath, "pkg", "", "Asset package to extract and add to the asset roots")
	flag.StringVar(&o.convertDir, "convert", "", "Decode every .tex under this directory to PNG and exit")
	flag.StringVar(&o.headless, "headless", "", "Render without a window and write the frame to this PNG")
	flag.IntVar(&o.frames, "frames", 1, "Frames to simulate before a headless snapshot")
	flag.Float64Var(&o.outputScale, "scale", 1, "Scale applied to the headless snapshot")
	flag.BoolVar(&o.followPointer, "follow-pointer", false, "Move the player to the desktop pointer (X11)")
	flag.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error (overrides [general] log_level)")
	flag.Parse()
	return o
}

func main() {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		utils.Error("Failed to load config: %v", err)
		os.Exit(1)
	}
	level := cfg.General.LogLevel
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	utils.SetLevel(level)
	utils.ShowDebugUI = cfg.General.Debug

	if opts.convertDir != "" {
		if _, err := convert.BulkConvertTextures(opts.convertDir, ""); err != nil {
			utils.Error("Conversion failed: %v", err)
			os.Exit(1)
		}
		return
	}

	if opts.pkgPath != "" {
		dir, err := extractPackage(opts.pkgPath)
		if err != nil {
			utils.Error("Failed to extract %s: %v", opts.pkgPath, err)
			os.Exit(1)
		}
		utils.AssetRoots = append(utils.AssetRoots, dir)
	}

	scenePath := cfg.General.Scene
	if opts.scenePath != "" {
		scenePath = opts.scenePath
	}
	scenePath = findScene(scenePath)
	def, err := config.LoadScene(scenePath)
	if err != nil {
		utils.Error("Failed to load scene: %v", err)
		os.Exit(1)
	}

	if opts.headless != "" {
		if err := runHeadless(cfg, def, opts); err != nil {
			utils.Error("Headless render failed: %v", err)
			os.Exit(1)
		}
		utils.Info("Wrote %s", opts.headless)
		return
	}

	if err := runWindow(cfg, def, opts); err != nil {
		utils.Error("%v", err)
		os.Exit(1)
	}
}

// extractPackage unpacks a .pkg next to the working directory once; later
// runs reuse the extracted tree.
func extractPackage(pkgPath string) (string, error) {
	base := filepath.Base(pkgPath)
	dir := filepath.Join("tmp", base[:len(base)-len(filepath.Ext(base))])
	if _, err := os.Stat(dir); err == nil {
		utils.Debug("Reusing extracted package %s", dir)
		return dir, nil
	}
	utils.Info("Unpacking %s...", pkgPath)
	if err := convert.ExtractPkg(pkgPath, dir); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return dir, nil
}

// findScene falls back to a scene.toml inside the asset roots.
func findScene(path string) string {
	if path != "" {
		return path
	}
	return utils.ResolveAssetPath("scene.toml")
}

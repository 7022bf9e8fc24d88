//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

// Renders SCENE headless into SNAPSHOT (defaults assets/scene.toml and snapshot.png).
func Snapshot() error {
	mg.Deps(Build.Binary)

	scene := envOr("SCENE", "assets/scene.toml")
	out := envOr("SNAPSHOT", "snapshot.png")
	frames := envOr("FRAMES", "30")

	_, err := executeCmd(binary, withArgs(
		"-config", envOr("CONFIG", "reflections.toml"),
		"-scene", scene,
		"-headless", out,
		"-frames", frames,
	), withStream())
	if err != nil {
		return err
	}
	fmt.Println("Snapshot written to", out)
	return nil
}

// Decodes every .tex under ASSETS (default assets/) to PNG.
func Textures() error {
	mg.Deps(Build.Binary)
	_, err := executeCmd(binary, withArgs("-convert", envOr("ASSETS", "assets")), withStream())
	return err
}

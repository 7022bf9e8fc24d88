//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs the CPU-only packages; the raylib backend needs a display.
func (Test) Unit() error {
	_, err := executeCmd("go", withArgs("test",
		"./internal/engine2D/", "./internal/engine2D/software/",
		"./internal/world/", "./internal/reflection/", "./internal/scene/",
		"./internal/config/", "./internal/convert/",
	), withStream())
	return err
}

// Runs the unit tests under the race detector.
func (Test) Race() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./internal/config/", "./internal/convert/"), withStream(), withEnv("CGO_ENABLED", "1"))
	return err
}

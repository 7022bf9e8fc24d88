//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

const binary = "bin/dynamic-reflections"

type Build mg.Namespace

// Compiles the demo binary into bin/.
func (Build) Binary() error {
	_, err := executeCmd("go", withArgs("build", "-o", binary, "./cmd/dynamic-reflections"), withStream())
	return err
}

// Runs go vet over every package.
func (Build) Vet() error {
	_, err := executeCmd("go", withArgs("vet", "./..."), withStream())
	return err
}

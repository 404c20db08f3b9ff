//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Compiles the GLSL shaders to SPIR-V with glslc.
func (Build) Shaders() error {
	return buildShaders()
}

// Builds the binary with the Khronos validation layer enabled.
func (Build) Debug() error {
	mg.Deps(Build.Shaders)
	_, err := executeCmd("go", withArgs("build", "-tags", "validation", "-o", "bin/tricore-debug", "."), withStream())
	return err
}

// Builds the binary without validation layers.
func (Build) Release() error {
	mg.Deps(Build.Shaders)
	_, err := executeCmd("go", withArgs("build", "-trimpath", "-ldflags", "-s -w", "-o", "bin/tricore", "."), withStream())
	return err
}

func buildShaders() error {
	if _, err := executeCmd("glslc", withArgs("shaders/shader.vert", "-o", "shaders/vert.spv"), withStream()); err != nil {
		return err
	}
	if _, err := executeCmd("glslc", withArgs("shaders/shader.frag", "-o", "shaders/frag.spv"), withStream()); err != nil {
		return err
	}
	return nil
}

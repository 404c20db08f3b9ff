//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Compiles the shaders and draws the triangle with validation enabled.
func (Run) Triangle() error {
	if err := buildShaders(); err != nil {
		return err
	}
	fmt.Println("Run triangle...")
	if _, err := executeCmd("go", withArgs("run", "-tags", "validation", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the unit tests against the in-memory driver.
func (Run) Tests() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}

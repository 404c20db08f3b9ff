package renderer

import (
	"github.com/pkg/errors"
	"github.com/spaghettifunk/tricore/engine/core"
	"github.com/spaghettifunk/tricore/engine/renderer/export"
)

type RendererType uint8

const (
	Vulkan RendererType = iota
)

type Renderer struct {
	backend RendererBackend
}

func New(backend RendererBackend) *Renderer {
	return &Renderer{backend: backend}
}

func (r *Renderer) Initialize(cfg core.Config) error {
	if err := r.backend.Initialize(cfg); err != nil {
		core.LogError("failed to initialize the renderer backend: %s", err)
		return err
	}
	return nil
}

func (r *Renderer) DrawFrame() error {
	if err := r.backend.DrawFrame(); err != nil {
		core.LogError("failed to draw frame: %s", err)
		return err
	}
	return nil
}

// Capture reads the last frame back and writes it to path as a bitmap.
func (r *Renderer) Capture(path string) error {
	pixels, err := r.backend.ReadPixels()
	if err != nil {
		return errors.Wrap(err, "capture")
	}
	if err := export.WriteBitmap(path, pixels); err != nil {
		return errors.Wrap(err, "capture")
	}
	core.LogInfo("Frame written to %s.", path)
	return nil
}

func (r *Renderer) Shutdown() error {
	return r.backend.Shutdown()
}

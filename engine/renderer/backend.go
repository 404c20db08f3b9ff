package renderer

import (
	"image"

	"github.com/spaghettifunk/tricore/engine/core"
)

type RendererBackend interface {
	Initialize(cfg core.Config) error
	DrawFrame() error
	ReadPixels() (*image.RGBA, error)
	Shutdown() error
}

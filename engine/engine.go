package engine

import (
	stderrors "errors"

	"github.com/pkg/errors"
	"github.com/spaghettifunk/tricore/engine/core"
	"github.com/spaghettifunk/tricore/engine/platform"
	"github.com/spaghettifunk/tricore/engine/renderer"
	"github.com/spaghettifunk/tricore/engine/renderer/vulkan"
	"github.com/spaghettifunk/tricore/engine/renderer/vulkan/native"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine released everything it created
	EngineStageShutdown
)

// Engine draws one triangle offscreen and optionally writes it to disk.
type Engine struct {
	currentStage Stage
	config       core.Config
	platform     *platform.Platform
	renderer     *renderer.Renderer
}

func New(cfg core.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	p, err := platform.New(cfg.Platform.Loader)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return &Engine{
		currentStage: EngineStageUninitialized,
		config:       cfg,
		platform:     p,
	}, nil
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return errors.New("engine is already initialized")
	}
	e.currentStage = EngineStageInitializing

	if err := e.platform.Startup(); err != nil {
		return err
	}

	stages, err := vulkan.LoadShaderStages(e.config.Shaders.Vertex, e.config.Shaders.Fragment)
	if err != nil {
		core.LogError(err.Error())
		return err
	}

	e.renderer = renderer.New(vulkan.New(native.New(), stages))
	if err := e.renderer.Initialize(e.config); err != nil {
		return err
	}

	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return errors.New("engine is not initialized")
	}
	e.currentStage = EngineStageRunning

	if err := e.renderer.DrawFrame(); err != nil {
		return err
	}
	if path := e.config.Output.Bitmap; path != "" {
		if err := e.renderer.Capture(path); err != nil {
			core.LogError(err.Error())
			return err
		}
	}
	return nil
}

// Shutdown releases everything Initialize created, also after a failed
// Initialize or Run.
func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShutdown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown

	var errs []error
	if e.renderer != nil {
		if err := e.renderer.Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := e.platform.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	e.currentStage = EngineStageShutdown
	if len(errs) > 0 {
		return errors.Wrap(stderrors.Join(errs...), "shutdown")
	}
	return nil
}

package platform

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/pkg/errors"
	"github.com/spaghettifunk/tricore/engine/core"
)

const (
	LoaderDefault = "default"
	LoaderGLFW    = "glfw"
)

func init() {
	// GLFW must run on the main OS thread
	runtime.LockOSThread()
}

// Platform resolves the Vulkan entry points. With the glfw loader the
// instance proc address comes from GLFW, which finds the loader the same way
// a windowed application would; no window is ever created.
type Platform struct {
	Loader string

	glfwStarted bool
}

func New(loader string) (*Platform, error) {
	switch loader {
	case LoaderDefault, LoaderGLFW:
	default:
		return nil, errors.Errorf("unknown Vulkan loader %q", loader)
	}
	return &Platform{Loader: loader}, nil
}

func (p *Platform) Startup() error {
	if p.Loader == LoaderGLFW {
		if err := glfw.Init(); err != nil {
			core.LogError("failed to initialize glfw: %s", err)
			return errors.Wrap(err, "glfw init")
		}
		p.glfwStarted = true

		if !glfw.VulkanSupported() {
			return errors.New("glfw: Vulkan loader not found")
		}
		procAddr := glfw.GetVulkanGetInstanceProcAddress()
		if procAddr == nil {
			return errors.New("GetInstanceProcAddress is nil")
		}
		vk.SetGetInstanceProcAddr(procAddr)
	} else {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			core.LogError("failed to load the Vulkan loader: %s", err)
			return errors.Wrap(err, "load vulkan")
		}
	}

	if err := vk.Init(); err != nil {
		core.LogError("failed to initialize vk: %s", err)
		return errors.Wrap(err, "vk init")
	}
	core.LogDebug("Vulkan entry points loaded through the %s loader.", p.Loader)
	return nil
}

func (p *Platform) Shutdown() error {
	if p.glfwStarted {
		glfw.Terminate()
		p.glfwStarted = false
	}
	return nil
}

package vulkan

import (
	"image"

	"github.com/pkg/errors"
	"github.com/spaghettifunk/tricore/engine/core"
)

// VulkanRenderer owns the whole offscreen chain: an instance, a device, one
// command buffer, a color target with its render pass, pipeline and
// framebuffer, and a linear image the target is copied into for read-back.
type VulkanRenderer struct {
	driver Driver
	stages ShaderStages

	width  uint32
	height uint32

	instance    *VulkanInstance
	device      *VulkanDevice
	pool        *VulkanCommandPool
	buffer      *VulkanCommandBuffer
	target      *VulkanImage
	readback    *VulkanImage
	renderpass  *VulkanRenderpass
	pipeline    *VulkanPipeline
	framebuffer *VulkanFramebuffer

	releaser *core.AutoReleaser
}

func New(drv Driver, stages ShaderStages) *VulkanRenderer {
	return &VulkanRenderer{
		driver:   drv,
		stages:   stages,
		releaser: core.NewAutoReleaser(),
	}
}

// Initialize creates every object in dependency order. On failure whatever
// was created is destroyed again before returning.
func (vr *VulkanRenderer) Initialize(cfg core.Config) error {
	if err := vr.initialize(cfg); err != nil {
		if rerr := vr.releaser.Release(); rerr != nil {
			core.LogError("failed to release partially initialized renderer: %s", rerr)
		}
		return err
	}
	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

func (vr *VulkanRenderer) initialize(cfg core.Config) error {
	vr.width = cfg.Render.Width
	vr.height = cfg.Render.Height

	instance, err := NewVulkanInstance(vr.driver, InstanceConfig{
		ApplicationName:  cfg.Application.Name,
		EngineName:       cfg.Application.Engine,
		ValidationLayers: cfg.RequestedLayers(),
	})
	if err != nil {
		return err
	}
	vr.instance = instance
	vr.releaser.Track(instance)

	devices, err := instance.EnumeratePhysicalDevices()
	if err != nil {
		return err
	}
	pd, err := SelectPhysicalDevice(devices, VulkanPhysicalDeviceRequirements{Graphics: true})
	if err != nil {
		return err
	}

	if vr.device, err = instance.CreateLogicalDevice(pd); err != nil {
		return err
	}
	vr.releaser.Track(vr.device)

	if vr.pool, err = vr.device.CreateCommandPool(); err != nil {
		return err
	}
	vr.releaser.Track(vr.pool)

	if vr.buffer, err = vr.pool.AllocateCommandBuffer(); err != nil {
		return err
	}
	vr.releaser.Track(vr.buffer)

	if vr.target, err = vr.device.CreateOptimizedImage(vr.width, vr.height); err != nil {
		return err
	}
	vr.releaser.Track(vr.target)

	if vr.readback, err = vr.device.CreateLinearImage(vr.width, vr.height); err != nil {
		return err
	}
	vr.releaser.Track(vr.readback)

	if vr.renderpass, err = vr.device.CreateRenderpass(); err != nil {
		return err
	}
	vr.releaser.Track(vr.renderpass)

	if vr.pipeline, err = vr.renderpass.CreateGraphicsPipeline(vr.width, vr.height, vr.stages); err != nil {
		return err
	}
	vr.releaser.Track(vr.pipeline)

	if vr.framebuffer, err = vr.device.CreateFramebuffer(vr.renderpass, vr.target, vr.width, vr.height); err != nil {
		return err
	}
	vr.releaser.Track(vr.framebuffer)
	return nil
}

func (vr *VulkanRenderer) DrawFrame() error {
	if vr.buffer == nil {
		return errors.New("draw frame: renderer is not initialized")
	}
	return vr.buffer.DrawTriangle(vr.device.GraphicsQueue(), vr.renderpass, vr.framebuffer, vr.pipeline, vr.width, vr.height)
}

// ReadPixels copies the last frame into host memory and returns it.
func (vr *VulkanRenderer) ReadPixels() (*image.RGBA, error) {
	if vr.buffer == nil {
		return nil, errors.New("read pixels: renderer is not initialized")
	}
	if err := vr.buffer.CopyImage(vr.device.GraphicsQueue(), vr.target, vr.readback, vr.width, vr.height); err != nil {
		return nil, err
	}
	return vr.readback.ReadPixels()
}

// Shutdown waits for the device and destroys the chain in reverse order of
// creation.
func (vr *VulkanRenderer) Shutdown() error {
	if vr.device != nil && vr.device.lifetime.Alive() {
		if err := vr.device.WaitIdle(); err != nil {
			core.LogWarn("wait idle before shutdown failed: %s", err)
		}
	}
	err := vr.releaser.Release()
	vr.buffer = nil
	if err != nil {
		return err
	}
	core.LogInfo("Vulkan renderer shut down.")
	return nil
}

package vulkan_test

import (
	qt "github.com/frankban/quicktest"
	"github.com/spaghettifunk/tricore/engine/core"
	"github.com/spaghettifunk/tricore/engine/renderer/vulkan"
	"github.com/spaghettifunk/tricore/engine/renderer/vulkan/vulkantest"
)

var testStages = vulkan.ShaderStages{
	Vertex:   []uint32{0x07230203, 0x00010000, 1},
	Fragment: []uint32{0x07230203, 0x00010000, 2},
}

var testConfig = vulkan.InstanceConfig{
	ApplicationName:  "Hello Triangle",
	EngineName:       "No Engine",
	ValidationLayers: []string{core.KhronosValidationLayer},
}

// newDevice creates an instance and a logical device on its first physical
// device.
func newDevice(c *qt.C, fake *vulkantest.Driver) (*vulkan.VulkanInstance, *vulkan.VulkanDevice) {
	c.Helper()
	instance, err := vulkan.NewVulkanInstance(fake, testConfig)
	c.Assert(err, qt.IsNil)
	devices, err := instance.EnumeratePhysicalDevices()
	c.Assert(err, qt.IsNil)
	c.Assert(devices, qt.Not(qt.HasLen), 0)
	device, err := instance.CreateLogicalDevice(devices[0])
	c.Assert(err, qt.IsNil)
	return instance, device
}

// chain is every object needed to draw one triangle offscreen, plus a linear
// image to read it back.
type chain struct {
	fake *vulkantest.Driver

	instance    *vulkan.VulkanInstance
	device      *vulkan.VulkanDevice
	pool        *vulkan.VulkanCommandPool
	buffer      *vulkan.VulkanCommandBuffer
	target      *vulkan.VulkanImage
	readback    *vulkan.VulkanImage
	renderpass  *vulkan.VulkanRenderpass
	pipeline    *vulkan.VulkanPipeline
	framebuffer *vulkan.VulkanFramebuffer

	width, height uint32
}

func newChain(c *qt.C, width, height uint32) *chain {
	c.Helper()
	ch := &chain{fake: vulkantest.New(), width: width, height: height}
	ch.instance, ch.device = newDevice(c, ch.fake)

	var err error
	ch.pool, err = ch.device.CreateCommandPool()
	c.Assert(err, qt.IsNil)
	ch.buffer, err = ch.pool.AllocateCommandBuffer()
	c.Assert(err, qt.IsNil)
	ch.target, err = ch.device.CreateOptimizedImage(width, height)
	c.Assert(err, qt.IsNil)
	ch.readback, err = ch.device.CreateLinearImage(width, height)
	c.Assert(err, qt.IsNil)
	ch.renderpass, err = ch.device.CreateRenderpass()
	c.Assert(err, qt.IsNil)
	ch.pipeline, err = ch.renderpass.CreateGraphicsPipeline(width, height, testStages)
	c.Assert(err, qt.IsNil)
	ch.framebuffer, err = ch.device.CreateFramebuffer(ch.renderpass, ch.target, width, height)
	c.Assert(err, qt.IsNil)
	return ch
}

// destroyers lists the chain in creation order.
func (ch *chain) destroyers() []core.Destroyer {
	return []core.Destroyer{
		ch.instance,
		ch.device,
		ch.pool,
		ch.buffer,
		ch.target,
		ch.readback,
		ch.renderpass,
		ch.pipeline,
		ch.framebuffer,
	}
}

// teardown destroys the chain in reverse creation order.
func (ch *chain) teardown(c *qt.C) {
	c.Helper()
	arp := core.NewAutoReleaser()
	for _, d := range ch.destroyers() {
		arp.Track(d)
	}
	c.Assert(arp.Release(), qt.IsNil)
}

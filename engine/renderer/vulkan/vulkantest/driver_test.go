package vulkantest_test

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/spaghettifunk/tricore/engine/renderer/vulkan"
	"github.com/spaghettifunk/tricore/engine/renderer/vulkan/vulkantest"
)

func newDevice(c *qt.C, d *vulkantest.Driver) (vulkan.Handle, vulkan.Handle) {
	instance, err := d.CreateInstance("test", "test", nil)
	c.Assert(err, qt.IsNil)
	pds, err := d.EnumeratePhysicalDevices(instance)
	c.Assert(err, qt.IsNil)
	c.Assert(pds, qt.HasLen, 1)
	device, err := d.CreateDevice(pds[0], 0)
	c.Assert(err, qt.IsNil)
	return instance, device
}

func TestDriverRecordsDestroyWithLiveChildren(t *testing.T) {
	c := qt.New(t)

	d := vulkantest.New()
	instance, device := newDevice(c, d)
	_, err := d.CreateRenderPass(device, vulkan.RenderPassCreateInfo{})
	c.Assert(err, qt.IsNil)

	d.DestroyDevice(device)
	d.DestroyInstance(instance)
	c.Assert(d.Violations(), qt.HasLen, 1)
	c.Assert(d.Violations()[0], qt.Matches, `vkDestroyDevice: Device \d+ destroyed while RenderPass \d+ is alive`)
}

func TestDriverRecordsDoubleDestroy(t *testing.T) {
	c := qt.New(t)

	d := vulkantest.New()
	instance, device := newDevice(c, d)
	d.DestroyDevice(device)
	d.DestroyDevice(device)
	d.DestroyInstance(instance)

	c.Assert(d.Violations(), qt.DeepEquals, []string{
		"vkDestroyDevice: Device 3 destroyed twice",
	})
	c.Assert(d.Live(), qt.HasLen, 0)
}

func TestDriverPoolFreesBuffers(t *testing.T) {
	c := qt.New(t)

	d := vulkantest.New()
	instance, device := newDevice(c, d)
	pool, err := d.CreateCommandPool(device, 0)
	c.Assert(err, qt.IsNil)
	cb, err := d.AllocateCommandBuffer(device, pool)
	c.Assert(err, qt.IsNil)

	d.DestroyCommandPool(device, pool)
	c.Assert(d.Violations(), qt.HasLen, 0)

	c.Assert(d.BeginCommandBuffer(cb, 0), qt.IsNil)
	c.Assert(d.Violations(), qt.HasLen, 1)
	c.Assert(d.Violations()[0], qt.Matches, `vkBeginCommandBuffer: CommandBuffer \d+ used after destruction`)

	d.DestroyDevice(device)
	d.DestroyInstance(instance)
	c.Assert(d.Live(), qt.HasLen, 0)
}

func TestDriverDestroyDeviceInFlight(t *testing.T) {
	c := qt.New(t)

	d := vulkantest.New()
	instance, device := newDevice(c, d)
	queue := d.DeviceQueue(device, 0, 0)
	pool, err := d.CreateCommandPool(device, 0)
	c.Assert(err, qt.IsNil)
	cb, err := d.AllocateCommandBuffer(device, pool)
	c.Assert(err, qt.IsNil)

	c.Assert(d.BeginCommandBuffer(cb, vulkan.CommandBufferUsageOneTimeSubmitBit), qt.IsNil)
	c.Assert(d.EndCommandBuffer(cb), qt.IsNil)
	c.Assert(d.QueueSubmit(queue, cb), qt.IsNil)
	c.Assert(d.Idle(), qt.IsFalse)

	d.DestroyCommandPool(device, pool)
	d.DestroyDevice(device)
	d.DestroyInstance(instance)
	c.Assert(d.Violations(), qt.DeepEquals, []string{
		"vkDestroyDevice: device destroyed with 1 submissions in flight",
	})
}

func TestDriverCreateInstanceUnknownLayer(t *testing.T) {
	c := qt.New(t)

	d := vulkantest.New()
	_, err := d.CreateInstance("test", "test", []string{"VK_LAYER_does_not_exist"})
	c.Assert(err, qt.ErrorIs, vulkantest.ErrLayerNotPresent)
	c.Assert(d.Live(), qt.HasLen, 0)
}

func TestDriverLinearRowPitch(t *testing.T) {
	c := qt.New(t)

	d := vulkantest.New()
	_, device := newDevice(c, d)
	img, err := d.CreateImage(device, vulkan.ImageCreateInfo{
		Width: 10, Height: 3, Format: vulkan.FormatR8G8B8A8Unorm, Tiling: vulkan.ImageTilingLinear,
		Usage: vulkan.ImageUsageTransferDstBit,
	})
	c.Assert(err, qt.IsNil)

	layout := d.ImageSubresourceLayout(device, img)
	c.Assert(layout.RowPitch, qt.Equals, uint64(64))
	c.Assert(layout.Size, qt.Equals, uint64(192))
	c.Assert(d.ImageMemoryRequirements(device, img).MemoryTypeBits, qt.Equals, uint32(0b111))
	c.Assert(d.Violations(), qt.HasLen, 0)
}

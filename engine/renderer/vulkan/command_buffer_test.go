package vulkan_test

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/spaghettifunk/tricore/engine/core"
	"github.com/spaghettifunk/tricore/engine/renderer/vulkan"
	"github.com/spaghettifunk/tricore/engine/renderer/vulkan/vulkantest"
)

func TestCommandBufferStates(t *testing.T) {
	c := qt.New(t)

	ch := newChain(c, 64, 64)
	cb := ch.buffer
	queue := ch.device.GraphicsQueue()
	c.Assert(cb.State, qt.Equals, vulkan.COMMAND_BUFFER_STATE_READY)

	c.Assert(cb.End(), qt.ErrorIs, core.ErrInvalidState)
	c.Assert(cb.Draw(3, 1, 0, 0), qt.ErrorIs, core.ErrInvalidState)
	c.Assert(cb.Submit(queue), qt.ErrorIs, core.ErrInvalidState)
	c.Assert(cb.EndRenderpass(), qt.ErrorIs, core.ErrInvalidState)

	c.Assert(cb.Begin(true, false, false), qt.IsNil)
	c.Assert(cb.State, qt.Equals, vulkan.COMMAND_BUFFER_STATE_RECORDING)
	c.Assert(cb.Begin(true, false, false), qt.ErrorMatches, `begin command buffer: command buffer is recording: .*`)
	c.Assert(cb.Draw(3, 1, 0, 0), qt.ErrorIs, core.ErrInvalidState)

	c.Assert(cb.BeginRenderpass(ch.renderpass, ch.framebuffer, 64, 64), qt.IsNil)
	c.Assert(cb.State, qt.Equals, vulkan.COMMAND_BUFFER_STATE_IN_RENDER_PASS)
	c.Assert(cb.End(), qt.ErrorIs, core.ErrInvalidState)
	c.Assert(cb.EndRenderpass(), qt.IsNil)
	c.Assert(cb.End(), qt.IsNil)
	c.Assert(cb.State, qt.Equals, vulkan.COMMAND_BUFFER_STATE_RECORDING_ENDED)

	c.Assert(cb.Submit(queue), qt.IsNil)
	c.Assert(cb.State, qt.Equals, vulkan.COMMAND_BUFFER_STATE_SUBMITTED)
	c.Assert(ch.fake.Idle(), qt.IsFalse)
	c.Assert(ch.device.WaitIdle(), qt.IsNil)
	c.Assert(ch.fake.Idle(), qt.IsTrue)

	ch.teardown(c)
	c.Assert(ch.fake.Violations(), qt.HasLen, 0)
}

func TestCommandBufferBeginFailure(t *testing.T) {
	c := qt.New(t)

	fake := vulkantest.New()
	_, device := newDevice(c, fake)
	pool, err := device.CreateCommandPool()
	c.Assert(err, qt.IsNil)
	c.Assert(pool.QueueFamilyIndex, qt.Equals, device.GraphicsQueueIndex)
	c.Assert(pool.Device(), qt.Equals, device)

	cb, err := pool.AllocateCommandBuffer()
	c.Assert(err, qt.IsNil)

	cause := errors.New("VK_ERROR_OUT_OF_HOST_MEMORY")
	fake.Fail("vkBeginCommandBuffer", cause)
	err = cb.Begin(true, true, true)
	c.Assert(err, qt.ErrorIs, cause)
	c.Assert(cb.State, qt.Equals, vulkan.COMMAND_BUFFER_STATE_READY)
}

func TestCommandPoolDestroyFreesBuffers(t *testing.T) {
	c := qt.New(t)

	fake := vulkantest.New()
	instance, device := newDevice(c, fake)
	pool, err := device.CreateCommandPool()
	c.Assert(err, qt.IsNil)
	first, err := pool.AllocateCommandBuffer()
	c.Assert(err, qt.IsNil)
	second, err := pool.AllocateCommandBuffer()
	c.Assert(err, qt.IsNil)

	c.Assert(first.Free(), qt.IsNil)
	c.Assert(first.State, qt.Equals, vulkan.COMMAND_BUFFER_STATE_NOT_ALLOCATED)

	// live buffers do not keep the pool alive
	c.Assert(pool.Destroy(), qt.IsNil)
	c.Assert(fake.Count("vkFreeCommandBuffers"), qt.Equals, 1)

	c.Assert(second.Begin(true, false, false), qt.ErrorIs, core.ErrParentDestroyed)
	c.Assert(second.Free(), qt.ErrorIs, core.ErrParentDestroyed)
	c.Assert(fake.Count("vkBeginCommandBuffer"), qt.Equals, 0)
	c.Assert(fake.Count("vkFreeCommandBuffers"), qt.Equals, 1)

	_, err = pool.AllocateCommandBuffer()
	c.Assert(err, qt.ErrorIs, core.ErrAlreadyDestroyed)

	c.Assert(device.Destroy(), qt.IsNil)
	c.Assert(instance.Destroy(), qt.IsNil)
	c.Assert(fake.Live(), qt.HasLen, 0)
	c.Assert(fake.Violations(), qt.HasLen, 0)
}

func TestCommandBufferUseAfterTargetDestroyed(t *testing.T) {
	c := qt.New(t)

	ch := newChain(c, 16, 16)
	c.Assert(ch.framebuffer.Destroy(), qt.IsNil)

	err := ch.buffer.DrawTriangle(ch.device.GraphicsQueue(), ch.renderpass, ch.framebuffer, ch.pipeline, 16, 16)
	c.Assert(err, qt.ErrorIs, core.ErrAlreadyDestroyed)
	c.Assert(ch.fake.Count("vkCmdBeginRenderPass"), qt.Equals, 0)
	c.Assert(ch.fake.Violations(), qt.HasLen, 0)
}

func TestCommandBufferStateString(t *testing.T) {
	c := qt.New(t)

	c.Assert(vulkan.COMMAND_BUFFER_STATE_READY.String(), qt.Equals, "ready")
	c.Assert(vulkan.COMMAND_BUFFER_STATE_IN_RENDER_PASS.String(), qt.Equals, "in render pass")
	c.Assert(vulkan.COMMAND_BUFFER_STATE_NOT_ALLOCATED.String(), qt.Equals, "not allocated")
}

func TestCommandBufferResetAfterFailure(t *testing.T) {
	tests := []struct {
		call  string
		stuck vulkan.VulkanCommandBufferState
	}{
		{call: "vkEndCommandBuffer", stuck: vulkan.COMMAND_BUFFER_STATE_RECORDING},
		{call: "vkQueueSubmit", stuck: vulkan.COMMAND_BUFFER_STATE_RECORDING_ENDED},
	}
	for _, test := range tests {
		t.Run(test.call, func(t *testing.T) {
			c := qt.New(t)

			ch := newChain(c, 64, 64)
			queue := ch.device.GraphicsQueue()
			ch.fake.Fail(test.call, errors.New("VK_ERROR_DEVICE_LOST"))

			err := ch.buffer.DrawTriangle(queue, ch.renderpass, ch.framebuffer, ch.pipeline, 64, 64)
			c.Assert(err, qt.ErrorIs, core.ErrDriverCallFailed)
			c.Assert(ch.buffer.State, qt.Equals, test.stuck)

			// nothing can be recorded until the buffer is reset
			ch.fake.Fail(test.call, nil)
			err = ch.buffer.DrawTriangle(queue, ch.renderpass, ch.framebuffer, ch.pipeline, 64, 64)
			c.Assert(err, qt.ErrorIs, core.ErrInvalidState)

			c.Assert(ch.buffer.Reset(), qt.IsNil)
			c.Assert(ch.buffer.State, qt.Equals, vulkan.COMMAND_BUFFER_STATE_READY)
			c.Assert(ch.fake.Count("vkResetCommandBuffer"), qt.Equals, 1)

			c.Assert(ch.buffer.DrawTriangle(queue, ch.renderpass, ch.framebuffer, ch.pipeline, 64, 64), qt.IsNil)
			c.Assert(ch.fake.Idle(), qt.IsTrue)

			ch.teardown(c)
			c.Assert(ch.fake.Violations(), qt.HasLen, 0)
		})
	}
}

func TestCommandBufferReset(t *testing.T) {
	c := qt.New(t)

	ch := newChain(c, 64, 64)
	queue := ch.device.GraphicsQueue()
	c.Assert(ch.buffer.DrawTriangle(queue, ch.renderpass, ch.framebuffer, ch.pipeline, 64, 64), qt.IsNil)
	c.Assert(ch.buffer.State, qt.Equals, vulkan.COMMAND_BUFFER_STATE_SUBMITTED)
	c.Assert(ch.buffer.Reset(), qt.IsNil)
	c.Assert(ch.buffer.State, qt.Equals, vulkan.COMMAND_BUFFER_STATE_READY)

	ch.fake.Fail("vkResetCommandBuffer", errors.New("VK_ERROR_OUT_OF_DEVICE_MEMORY"))
	err := ch.buffer.Reset()
	c.Assert(err, qt.ErrorIs, core.ErrDriverCallFailed)
	c.Assert(err, qt.ErrorMatches, `vkResetCommandBuffer failed: VK_ERROR_OUT_OF_DEVICE_MEMORY`)
	ch.fake.Fail("vkResetCommandBuffer", nil)

	spare, err := ch.pool.AllocateCommandBuffer()
	c.Assert(err, qt.IsNil)
	c.Assert(spare.Free(), qt.IsNil)
	c.Assert(spare.Reset(), qt.ErrorIs, core.ErrAlreadyDestroyed)

	ch.teardown(c)
	c.Assert(ch.fake.Violations(), qt.HasLen, 0)
}

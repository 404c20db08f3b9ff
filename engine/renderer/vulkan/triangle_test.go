package vulkan_test

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/spaghettifunk/tricore/engine/core"
)

func TestDrawTriangle(t *testing.T) {
	c := qt.New(t)

	ch := newChain(c, 500, 300)
	before := len(ch.fake.Calls())

	err := ch.buffer.DrawTriangle(ch.device.GraphicsQueue(), ch.renderpass, ch.framebuffer, ch.pipeline, 500, 300)
	c.Assert(err, qt.IsNil)

	c.Assert(ch.fake.Calls()[before:], qt.DeepEquals, []string{
		"vkBeginCommandBuffer",
		"vkCmdBeginRenderPass",
		"vkCmdBindPipeline",
		"vkCmdSetViewport",
		"vkCmdSetScissor",
		"vkCmdDraw",
		"vkCmdEndRenderPass",
		"vkEndCommandBuffer",
		"vkQueueSubmit",
		"vkDeviceWaitIdle",
	})
	c.Assert(ch.fake.Idle(), qt.IsTrue)

	// the buffer can be recorded again
	err = ch.buffer.DrawTriangle(ch.device.GraphicsQueue(), ch.renderpass, ch.framebuffer, ch.pipeline, 500, 300)
	c.Assert(err, qt.IsNil)

	ch.teardown(c)
	c.Assert(ch.fake.Violations(), qt.HasLen, 0)
}

func TestReverseOrderTeardown(t *testing.T) {
	c := qt.New(t)

	ch := newChain(c, 500, 300)
	c.Assert(ch.instance.Live(), qt.HasLen, 9)

	c.Assert(ch.buffer.DrawTriangle(ch.device.GraphicsQueue(), ch.renderpass, ch.framebuffer, ch.pipeline, 500, 300), qt.IsNil)
	ch.teardown(c)

	c.Assert(ch.fake.Violations(), qt.HasLen, 0)
	c.Assert(ch.fake.Live(), qt.HasLen, 0)
	c.Assert(ch.instance.Live(), qt.HasLen, 0)
}

func TestOutOfOrderDestroyIsRefused(t *testing.T) {
	c := qt.New(t)

	ch := newChain(c, 64, 64)
	destroyers := ch.destroyers()
	before := len(ch.fake.Calls())

	// instance and device are pinned by everything below them
	for _, d := range destroyers[:2] {
		c.Assert(d.Destroy(), qt.ErrorIs, core.ErrDependentsAlive)
	}
	c.Assert(ch.target.Destroy(), qt.ErrorIs, core.ErrDependentsAlive)
	c.Assert(ch.renderpass.Destroy(), qt.ErrorIs, core.ErrDependentsAlive)
	c.Assert(ch.fake.Calls()[before:], qt.HasLen, 0)

	ch.teardown(c)
	c.Assert(ch.fake.Violations(), qt.HasLen, 0)

	// a second teardown destroys nothing twice
	for _, d := range destroyers {
		c.Assert(d.Destroy(), qt.Not(qt.IsNil))
	}
	c.Assert(ch.fake.Violations(), qt.HasLen, 0)
}

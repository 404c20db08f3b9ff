package vulkan

import (
	"github.com/pkg/errors"
	"github.com/spaghettifunk/tricore/engine/core"
	"golang.org/x/exp/slices"
)

type VulkanCommandBufferState int

const (
	COMMAND_BUFFER_STATE_READY VulkanCommandBufferState = iota
	COMMAND_BUFFER_STATE_RECORDING
	COMMAND_BUFFER_STATE_IN_RENDER_PASS
	COMMAND_BUFFER_STATE_RECORDING_ENDED
	COMMAND_BUFFER_STATE_SUBMITTED
	COMMAND_BUFFER_STATE_NOT_ALLOCATED
)

func (s VulkanCommandBufferState) String() string {
	switch s {
	case COMMAND_BUFFER_STATE_READY:
		return "ready"
	case COMMAND_BUFFER_STATE_RECORDING:
		return "recording"
	case COMMAND_BUFFER_STATE_IN_RENDER_PASS:
		return "in render pass"
	case COMMAND_BUFFER_STATE_RECORDING_ENDED:
		return "recording ended"
	case COMMAND_BUFFER_STATE_SUBMITTED:
		return "submitted"
	default:
		return "not allocated"
	}
}

// ClearColor is the color the render target is cleared to before drawing.
var ClearColor = [4]float32{0, 0, 0, 1}

type VulkanCommandBuffer struct {
	Handle Handle
	// Command buffer state.
	State VulkanCommandBufferState

	pool     *VulkanCommandPool
	lifetime *core.Lifetime
}

func (v *VulkanCommandBuffer) driver() Driver {
	return v.pool.device.driver()
}

func (v *VulkanCommandBuffer) expect(op string, states ...VulkanCommandBufferState) error {
	if err := v.lifetime.Check(); err != nil {
		return errors.Wrap(err, op)
	}
	if !slices.Contains(states, v.State) {
		return errors.Wrapf(core.ErrInvalidState, "%s: command buffer is %s", op, v.State)
	}
	return nil
}

// Free returns the buffer to its pool.
func (v *VulkanCommandBuffer) Free() error {
	pool := v.pool
	err := v.lifetime.ReleaseFunc(func() {
		_ = pool.device.locks.SafeCall(CommandPoolManagement, func() error {
			pool.device.driver().FreeCommandBuffer(pool.device.Handle, pool.Handle, v.Handle)
			return nil
		})
	})
	if err != nil {
		return errors.Wrap(err, "free command buffer")
	}
	core.LogLifecycle("destroyed", v.lifetime)
	v.Handle = NullHandle
	v.State = COMMAND_BUFFER_STATE_NOT_ALLOCATED
	return nil
}

// Destroy is Free, so command buffers can be tracked by an AutoReleaser.
func (v *VulkanCommandBuffer) Destroy() error {
	return v.Free()
}

func (v *VulkanCommandBuffer) Begin(
	isSingleUse,
	isRenderpassContinue,
	isSimultaneousUse bool) error {
	if err := v.expect("begin command buffer", COMMAND_BUFFER_STATE_READY, COMMAND_BUFFER_STATE_SUBMITTED); err != nil {
		return err
	}

	var flags CommandBufferUsageFlags
	if isSingleUse {
		flags |= CommandBufferUsageOneTimeSubmitBit
	}
	if isRenderpassContinue {
		flags |= CommandBufferUsageRenderPassContinueBit
	}
	if isSimultaneousUse {
		flags |= CommandBufferUsageSimultaneousUseBit
	}

	if err := v.driver().BeginCommandBuffer(v.Handle, flags); err != nil {
		err = core.DriverCall("vkBeginCommandBuffer", err)
		core.LogError(err.Error())
		return err
	}
	v.State = COMMAND_BUFFER_STATE_RECORDING
	return nil
}

func (v *VulkanCommandBuffer) End() error {
	if err := v.expect("end command buffer", COMMAND_BUFFER_STATE_RECORDING); err != nil {
		return err
	}
	if err := v.driver().EndCommandBuffer(v.Handle); err != nil {
		err = core.DriverCall("vkEndCommandBuffer", err)
		core.LogError(err.Error())
		return err
	}
	v.State = COMMAND_BUFFER_STATE_RECORDING_ENDED
	return nil
}

// Reset discards whatever was recorded and returns the buffer to the ready
// state. It is the way out after a failed recording or submission.
func (v *VulkanCommandBuffer) Reset() error {
	if err := v.expect("reset command buffer",
		COMMAND_BUFFER_STATE_READY,
		COMMAND_BUFFER_STATE_RECORDING,
		COMMAND_BUFFER_STATE_IN_RENDER_PASS,
		COMMAND_BUFFER_STATE_RECORDING_ENDED,
		COMMAND_BUFFER_STATE_SUBMITTED); err != nil {
		return err
	}
	if err := v.driver().ResetCommandBuffer(v.Handle); err != nil {
		err = core.DriverCall("vkResetCommandBuffer", err)
		core.LogError(err.Error())
		return err
	}
	v.State = COMMAND_BUFFER_STATE_READY
	return nil
}

// BeginRenderpass starts renderpass on framebuffer and clears the whole
// width x height area to ClearColor.
func (v *VulkanCommandBuffer) BeginRenderpass(renderpass *VulkanRenderpass, framebuffer *VulkanFramebuffer, width, height uint32) error {
	if err := v.expect("begin render pass", COMMAND_BUFFER_STATE_RECORDING); err != nil {
		return err
	}
	if err := renderpass.lifetime.Check(); err != nil {
		return errors.Wrap(err, "begin render pass")
	}
	if err := framebuffer.lifetime.Check(); err != nil {
		return errors.Wrap(err, "begin render pass")
	}
	v.driver().CmdBeginRenderPass(v.Handle, RenderPassBeginInfo{
		RenderPass:  renderpass.Handle,
		Framebuffer: framebuffer.Handle,
		Width:       width,
		Height:      height,
		ClearColor:  ClearColor,
	})
	v.State = COMMAND_BUFFER_STATE_IN_RENDER_PASS
	return nil
}

func (v *VulkanCommandBuffer) EndRenderpass() error {
	if err := v.expect("end render pass", COMMAND_BUFFER_STATE_IN_RENDER_PASS); err != nil {
		return err
	}
	v.driver().CmdEndRenderPass(v.Handle)
	v.State = COMMAND_BUFFER_STATE_RECORDING
	return nil
}

func (v *VulkanCommandBuffer) BindPipeline(pipeline *VulkanPipeline) error {
	if err := v.expect("bind pipeline", COMMAND_BUFFER_STATE_RECORDING, COMMAND_BUFFER_STATE_IN_RENDER_PASS); err != nil {
		return err
	}
	if err := pipeline.lifetime.Check(); err != nil {
		return errors.Wrap(err, "bind pipeline")
	}
	v.driver().CmdBindPipeline(v.Handle, pipeline.Handle)
	return nil
}

// SetViewport sets both the viewport and the scissor to width x height.
func (v *VulkanCommandBuffer) SetViewport(width, height uint32) error {
	if err := v.expect("set viewport", COMMAND_BUFFER_STATE_RECORDING, COMMAND_BUFFER_STATE_IN_RENDER_PASS); err != nil {
		return err
	}
	v.driver().CmdSetViewport(v.Handle, width, height)
	v.driver().CmdSetScissor(v.Handle, width, height)
	return nil
}

func (v *VulkanCommandBuffer) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) error {
	if err := v.expect("draw", COMMAND_BUFFER_STATE_IN_RENDER_PASS); err != nil {
		return err
	}
	v.driver().CmdDraw(v.Handle, vertexCount, instanceCount, firstVertex, firstInstance)
	return nil
}

// Submit hands the recorded buffer to queue. It does not wait.
func (v *VulkanCommandBuffer) Submit(queue VulkanQueue) error {
	if err := v.expect("submit", COMMAND_BUFFER_STATE_RECORDING_ENDED); err != nil {
		return err
	}
	device := v.pool.device
	err := device.locks.SafeQueueCall(queue.FamilyIndex, func() error {
		return v.driver().QueueSubmit(queue.Handle, v.Handle)
	})
	if err != nil {
		err = core.DriverCall("vkQueueSubmit", err)
		core.LogError(err.Error())
		return err
	}
	v.State = COMMAND_BUFFER_STATE_SUBMITTED
	return nil
}

// EndSingleUse ends recording, submits to queue and waits for the device to
// go idle.
func (v *VulkanCommandBuffer) EndSingleUse(queue VulkanQueue) error {
	if err := v.End(); err != nil {
		return err
	}
	if err := v.Submit(queue); err != nil {
		return err
	}
	return v.pool.device.WaitIdle()
}

// DrawTriangle records and submits one draw of three vertices into
// framebuffer, then blocks until the device is idle. Nothing is retried: the
// first failure is returned.
func (v *VulkanCommandBuffer) DrawTriangle(
	queue VulkanQueue,
	renderpass *VulkanRenderpass,
	framebuffer *VulkanFramebuffer,
	pipeline *VulkanPipeline,
	width, height uint32) error {
	if err := v.Begin(true, false, false); err != nil {
		return err
	}
	if err := v.BeginRenderpass(renderpass, framebuffer, width, height); err != nil {
		return err
	}
	if err := v.BindPipeline(pipeline); err != nil {
		return err
	}
	if err := v.SetViewport(width, height); err != nil {
		return err
	}
	if err := v.Draw(3, 1, 0, 0); err != nil {
		return err
	}
	if err := v.EndRenderpass(); err != nil {
		return err
	}
	if err := v.EndSingleUse(queue); err != nil {
		return err
	}
	core.LogInfo("Triangle drawn (%dx%d).", width, height)
	return nil
}

// CopyImage copies the rendered content of src into the host-readable dst.
// src must be in the transfer-source layout the render pass leaves it in;
// dst ends up in the general layout so its memory can be read back.
func (v *VulkanCommandBuffer) CopyImage(queue VulkanQueue, src, dst *VulkanImage, width, height uint32) error {
	if err := src.lifetime.Check(); err != nil {
		return errors.Wrap(err, "copy image")
	}
	if err := dst.lifetime.Check(); err != nil {
		return errors.Wrap(err, "copy image")
	}
	device := v.pool.device
	if src.device != device || dst.device != device {
		return errors.New("copy image: images must belong to the command buffer's device")
	}
	if src.Kind != ImageOptimized || dst.Kind != ImageLinear {
		return errors.Errorf("copy image: source must be %s and destination %s, got %s and %s",
			ImageOptimized, ImageLinear, src.Kind, dst.Kind)
	}
	if width > src.Width() || height > src.Height() || width > dst.Width() || height > dst.Height() {
		return errors.Wrapf(core.ErrExtentMismatch, "copy %dx%d from %dx%d into %dx%d",
			width, height, src.Width(), src.Height(), dst.Width(), dst.Height())
	}

	if err := v.Begin(true, false, false); err != nil {
		return err
	}
	drv := v.driver()
	drv.CmdPipelineBarrier(v.Handle, []ImageBarrier{
		{Image: dst.Handle, OldLayout: ImageLayoutUndefined, NewLayout: ImageLayoutTransferDstOptimal},
	})
	drv.CmdCopyImage(v.Handle, src.Handle, dst.Handle, width, height)
	drv.CmdPipelineBarrier(v.Handle, []ImageBarrier{
		{Image: dst.Handle, OldLayout: ImageLayoutTransferDstOptimal, NewLayout: ImageLayoutGeneral},
	})
	return v.EndSingleUse(queue)
}

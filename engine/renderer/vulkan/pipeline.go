package vulkan

import (
	"github.com/pkg/errors"
	"github.com/spaghettifunk/tricore/engine/core"
)

/**
 * @brief Holds a Vulkan pipeline and its layout.
 */
type VulkanPipeline struct {
	/** @brief The internal pipeline handle. */
	Handle Handle
	/** @brief The pipeline layout. */
	PipelineLayout Handle

	renderpass *VulkanRenderpass
	lifetime   *core.Lifetime
}

// CreateGraphicsPipeline builds the fixed triangle pipeline for subpass 0 of
// the render pass with a width x height viewport and scissor. Both are also
// declared dynamic and set again at record time. The layout has no descriptor
// sets and no push constants. Shader modules only
// live for the duration of this call.
func (vr *VulkanRenderpass) CreateGraphicsPipeline(width, height uint32, stages ShaderStages) (*VulkanPipeline, error) {
	if err := vr.lifetime.Check(); err != nil {
		return nil, errors.Wrap(err, "create graphics pipeline")
	}
	if len(stages.Vertex) == 0 || len(stages.Fragment) == 0 {
		return nil, errors.New("create graphics pipeline: vertex and fragment stages are required")
	}

	device := vr.device
	pipeline := &VulkanPipeline{renderpass: vr}

	err := device.locks.SafeCall(PipelineManagement, func() error {
		return pipeline.create(width, height, stages)
	})
	if err != nil {
		pipeline.release()
		core.LogError(err.Error())
		return nil, err
	}

	lifetime, err := vr.lifetime.NewChild("Pipeline")
	if err != nil {
		pipeline.release()
		return nil, err
	}
	pipeline.lifetime = lifetime

	core.LogLifecycle("created", lifetime, "width", width, "height", height)
	return pipeline, nil
}

func (pipeline *VulkanPipeline) create(width, height uint32, stages ShaderStages) error {
	device := pipeline.renderpass.device
	drv := device.driver()

	layout, err := drv.CreatePipelineLayout(device.Handle)
	if err != nil {
		return core.DriverCall("vkCreatePipelineLayout", err)
	}
	pipeline.PipelineLayout = layout

	modules, err := stages.createModules(device)
	if err != nil {
		return err
	}
	defer modules.destroy(device)

	handle, err := drv.CreateGraphicsPipeline(device.Handle, GraphicsPipelineCreateInfo{
		RenderPass:     pipeline.renderpass.Handle,
		Layout:         layout,
		VertexModule:   modules.vertex,
		FragmentModule: modules.fragment,
		Width:          width,
		Height:         height,
	})
	if err != nil {
		return core.DriverCall("vkCreateGraphicsPipelines", err)
	}
	pipeline.Handle = handle
	return nil
}

func (pipeline *VulkanPipeline) release() {
	device := pipeline.renderpass.device
	drv := device.driver()
	// Destroy pipeline
	if pipeline.Handle != NullHandle {
		drv.DestroyPipeline(device.Handle, pipeline.Handle)
		pipeline.Handle = NullHandle
	}
	// Destroy layout
	if pipeline.PipelineLayout != NullHandle {
		drv.DestroyPipelineLayout(device.Handle, pipeline.PipelineLayout)
		pipeline.PipelineLayout = NullHandle
	}
}

func (pipeline *VulkanPipeline) Destroy() error {
	locks := pipeline.renderpass.device.locks
	err := pipeline.lifetime.ReleaseFunc(func() {
		_ = locks.SafeCall(PipelineManagement, func() error {
			pipeline.release()
			return nil
		})
	})
	if err != nil {
		return errors.Wrap(err, "destroy pipeline")
	}
	core.LogLifecycle("destroyed", pipeline.lifetime)
	return nil
}

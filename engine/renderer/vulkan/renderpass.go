package vulkan

import (
	"github.com/pkg/errors"
	"github.com/spaghettifunk/tricore/engine/core"
)

// VulkanRenderpass has a single R8G8B8A8 color attachment that is cleared on
// load, stored, and left in the transfer-source layout so it can be copied
// out. It has one subpass.
type VulkanRenderpass struct {
	Handle Handle

	device   *VulkanDevice
	lifetime *core.Lifetime
}

func NewVulkanRenderpass(device *VulkanDevice) (*VulkanRenderpass, error) {
	if err := device.lifetime.Check(); err != nil {
		return nil, errors.Wrap(err, "create render pass")
	}

	drv := device.driver()
	handle, err := drv.CreateRenderPass(device.Handle, RenderPassCreateInfo{
		ColorFormat: FormatR8G8B8A8Unorm,
		FinalLayout: ImageLayoutTransferSrcOptimal,
	})
	if err != nil {
		err = core.DriverCall("vkCreateRenderPass", err)
		core.LogError(err.Error())
		return nil, err
	}

	lifetime, err := device.lifetime.NewChild("RenderPass")
	if err != nil {
		drv.DestroyRenderPass(device.Handle, handle)
		return nil, err
	}

	rp := &VulkanRenderpass{
		Handle:   handle,
		device:   device,
		lifetime: lifetime,
	}
	core.LogLifecycle("created", lifetime)
	return rp, nil
}

func (vr *VulkanRenderpass) Device() *VulkanDevice {
	return vr.device
}

// Destroy fails with core.ErrDependentsAlive while a pipeline or framebuffer
// created from the render pass is alive.
func (vr *VulkanRenderpass) Destroy() error {
	err := vr.lifetime.ReleaseFunc(func() {
		vr.device.driver().DestroyRenderPass(vr.device.Handle, vr.Handle)
	})
	if err != nil {
		return errors.Wrap(err, "destroy render pass")
	}
	core.LogLifecycle("destroyed", vr.lifetime)
	vr.Handle = NullHandle
	return nil
}

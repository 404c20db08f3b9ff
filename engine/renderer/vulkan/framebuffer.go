package vulkan

import (
	"github.com/pkg/errors"
	"github.com/spaghettifunk/tricore/engine/core"
)

// VulkanFramebuffer binds an optimized image as the color attachment of a
// render pass. It keeps both alive: neither can be destroyed before it.
type VulkanFramebuffer struct {
	Handle     Handle
	Width      uint32
	Height     uint32
	Renderpass *VulkanRenderpass
	Attachment *VulkanImage

	device   *VulkanDevice
	lifetime *core.Lifetime
}

// NewVulkanFramebuffer requires width and height to equal the extent of the
// attached image.
func NewVulkanFramebuffer(device *VulkanDevice, renderpass *VulkanRenderpass, attachment *VulkanImage, width, height uint32) (*VulkanFramebuffer, error) {
	if renderpass.device != device || attachment.device != device {
		return nil, errors.New("create framebuffer: render pass and image must belong to the device")
	}
	for _, lt := range []*core.Lifetime{renderpass.lifetime, attachment.lifetime} {
		if err := lt.Check(); err != nil {
			return nil, errors.Wrap(err, "create framebuffer")
		}
	}
	if width != attachment.Width() || height != attachment.Height() {
		err := errors.Wrapf(core.ErrExtentMismatch, "framebuffer %dx%d, image %dx%d",
			width, height, attachment.Width(), attachment.Height())
		core.LogError(err.Error())
		return nil, err
	}
	if attachment.View == NullHandle {
		return nil, errors.Errorf("create framebuffer: %s cannot be a color attachment", attachment.Kind)
	}

	drv := device.driver()
	handle, err := drv.CreateFramebuffer(device.Handle, FramebufferCreateInfo{
		RenderPass: renderpass.Handle,
		Attachment: attachment.View,
		Width:      width,
		Height:     height,
	})
	if err != nil {
		err = core.DriverCall("vkCreateFramebuffer", err)
		core.LogError(err.Error())
		return nil, err
	}

	lifetime, err := device.lifetime.NewChild("Framebuffer", renderpass.lifetime, attachment.lifetime)
	if err != nil {
		drv.DestroyFramebuffer(device.Handle, handle)
		return nil, err
	}

	fb := &VulkanFramebuffer{
		Handle:     handle,
		Width:      width,
		Height:     height,
		Renderpass: renderpass,
		Attachment: attachment,
		device:     device,
		lifetime:   lifetime,
	}
	core.LogLifecycle("created", lifetime, "width", width, "height", height)
	return fb, nil
}

func (vfb *VulkanFramebuffer) Destroy() error {
	err := vfb.lifetime.ReleaseFunc(func() {
		vfb.device.driver().DestroyFramebuffer(vfb.device.Handle, vfb.Handle)
	})
	if err != nil {
		return errors.Wrap(err, "destroy framebuffer")
	}
	core.LogLifecycle("destroyed", vfb.lifetime)
	vfb.Handle = NullHandle
	return nil
}

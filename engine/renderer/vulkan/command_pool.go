package vulkan

import (
	"github.com/pkg/errors"
	"github.com/spaghettifunk/tricore/engine/core"
)

// VulkanCommandPool allocates command buffers for one queue family. Destroying
// the pool frees every buffer allocated from it.
type VulkanCommandPool struct {
	Handle           Handle
	QueueFamilyIndex uint32

	device   *VulkanDevice
	lifetime *core.Lifetime
}

func NewVulkanCommandPool(device *VulkanDevice, queueFamilyIndex uint32) (*VulkanCommandPool, error) {
	if err := device.lifetime.Check(); err != nil {
		return nil, errors.Wrap(err, "create command pool")
	}

	var handle Handle
	err := device.locks.SafeCall(CommandPoolManagement, func() error {
		var err error
		handle, err = device.driver().CreateCommandPool(device.Handle, queueFamilyIndex)
		return err
	})
	if err != nil {
		err = core.DriverCall("vkCreateCommandPool", err)
		core.LogError(err.Error())
		return nil, err
	}

	lifetime, err := device.lifetime.NewChild("CommandPool")
	if err != nil {
		device.driver().DestroyCommandPool(device.Handle, handle)
		return nil, err
	}

	pool := &VulkanCommandPool{
		Handle:           handle,
		QueueFamilyIndex: queueFamilyIndex,
		device:           device,
		lifetime:         lifetime,
	}
	core.LogLifecycle("created", lifetime, "queue_family", queueFamilyIndex)
	return pool, nil
}

func (p *VulkanCommandPool) Device() *VulkanDevice {
	return p.device
}

// AllocateCommandBuffer allocates one primary command buffer in the Ready
// state.
func (p *VulkanCommandPool) AllocateCommandBuffer() (*VulkanCommandBuffer, error) {
	if err := p.lifetime.Check(); err != nil {
		return nil, errors.Wrap(err, "allocate command buffer")
	}

	drv := p.device.driver()
	var handle Handle
	err := p.device.locks.SafeCall(CommandPoolManagement, func() error {
		var err error
		handle, err = drv.AllocateCommandBuffer(p.device.Handle, p.Handle)
		return err
	})
	if err != nil {
		err = core.DriverCall("vkAllocateCommandBuffers", err)
		core.LogError(err.Error())
		return nil, err
	}

	lifetime, err := p.lifetime.NewImplicitChild("CommandBuffer")
	if err != nil {
		drv.FreeCommandBuffer(p.device.Handle, p.Handle, handle)
		return nil, err
	}

	cb := &VulkanCommandBuffer{
		Handle:   handle,
		State:    COMMAND_BUFFER_STATE_READY,
		pool:     p,
		lifetime: lifetime,
	}
	core.LogLifecycle("created", lifetime)
	return cb, nil
}

// Destroy destroys the pool and, implicitly, every buffer still allocated
// from it. Those buffers become unusable.
func (p *VulkanCommandPool) Destroy() error {
	err := p.lifetime.ReleaseFunc(func() {
		_ = p.device.locks.SafeCall(CommandPoolManagement, func() error {
			p.device.driver().DestroyCommandPool(p.device.Handle, p.Handle)
			return nil
		})
	})
	if err != nil {
		return errors.Wrap(err, "destroy command pool")
	}
	core.LogLifecycle("destroyed", p.lifetime)
	p.Handle = NullHandle
	return nil
}

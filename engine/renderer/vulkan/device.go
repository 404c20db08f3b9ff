package vulkan

import (
	"github.com/pkg/errors"
	"github.com/spaghettifunk/tricore/engine/core"
)

type VulkanPhysicalDeviceRequirements struct {
	Graphics    bool
	DiscreteGPU bool
}

// SelectPhysicalDevice returns the first device meeting requirements.
func SelectPhysicalDevice(devices []VulkanPhysicalDevice, requirements VulkanPhysicalDeviceRequirements) (VulkanPhysicalDevice, error) {
	if len(devices) == 0 {
		return VulkanPhysicalDevice{}, errors.New("no devices which support Vulkan were found")
	}
	for _, pd := range devices {
		core.LogDebug("Evaluating device: '%s'", pd)
		if requirements.DiscreteGPU && pd.Type() != DeviceTypeDiscreteGPU {
			core.LogDebug("Device is not a discrete GPU, and one is required. Skipping.")
			continue
		}
		if requirements.Graphics {
			if _, ok := pd.GraphicsQueueFamily(); !ok {
				core.LogDebug("Device has no graphics queue family. Skipping.")
				continue
			}
		}
		core.LogInfo("Selected device: '%s'", pd)
		return pd, nil
	}
	return VulkanPhysicalDevice{}, errors.New("no physical device meets the requirements")
}

// VulkanQueue is a queue retrieved from a logical device. It is owned by the
// device and never destroyed on its own.
type VulkanQueue struct {
	Handle      Handle
	FamilyIndex uint32
	Index       uint32
}

type VulkanDevice struct {
	PhysicalDevice VulkanPhysicalDevice
	Handle         Handle

	GraphicsQueueIndex uint32
	graphicsQueue      VulkanQueue

	instance *VulkanInstance
	lifetime *core.Lifetime
	locks    *VulkanLockPool
}

// NewVulkanDevice creates a logical device with a single queue taken from the
// first queue family of pd that supports graphics.
func NewVulkanDevice(instance *VulkanInstance, pd VulkanPhysicalDevice) (*VulkanDevice, error) {
	if err := instance.lifetime.Check(); err != nil {
		return nil, errors.Wrap(err, "create logical device")
	}
	if pd.instance != instance {
		return nil, errors.New("create logical device: physical device was enumerated from another instance")
	}

	familyIndex, ok := pd.GraphicsQueueFamily()
	if !ok {
		err := errors.Wrapf(core.ErrNoGraphicsQueue, "device %s", pd)
		core.LogError(err.Error())
		return nil, err
	}
	core.LogDebug("Graphics queue family index: %d", familyIndex)

	drv := instance.driver
	handle, err := drv.CreateDevice(pd.Handle, familyIndex)
	if err != nil {
		err = core.DriverCall("vkCreateDevice", err)
		core.LogError(err.Error())
		return nil, err
	}

	lifetime, err := instance.lifetime.NewChild("LogicalDevice")
	if err != nil {
		drv.DestroyDevice(handle)
		return nil, err
	}

	device := &VulkanDevice{
		PhysicalDevice:     pd,
		Handle:             handle,
		GraphicsQueueIndex: familyIndex,
		graphicsQueue: VulkanQueue{
			Handle:      drv.DeviceQueue(handle, familyIndex, 0),
			FamilyIndex: familyIndex,
			Index:       0,
		},
		instance: instance,
		lifetime: lifetime,
		locks:    NewVulkanLockPool(),
	}
	device.locks.SetQueueFamily(familyIndex)

	core.LogLifecycle("created", lifetime, "physical_device", pd.Name())
	return device, nil
}

func (d *VulkanDevice) driver() Driver {
	return d.instance.driver
}

// QueueFamilyIndices lists the queue families the device was created with.
func (d *VulkanDevice) QueueFamilyIndices() []uint32 {
	return []uint32{d.GraphicsQueueIndex}
}

func (d *VulkanDevice) GraphicsQueue() VulkanQueue {
	return d.graphicsQueue
}

func (d *VulkanDevice) MemoryTypes() []MemoryType {
	return d.PhysicalDevice.MemoryTypes()
}

func (d *VulkanDevice) WaitIdle() error {
	if err := d.lifetime.Check(); err != nil {
		return err
	}
	if err := d.driver().DeviceWaitIdle(d.Handle); err != nil {
		err = core.DriverCall("vkDeviceWaitIdle", err)
		core.LogError(err.Error())
		return err
	}
	return nil
}

func (d *VulkanDevice) CreateCommandPool() (*VulkanCommandPool, error) {
	return NewVulkanCommandPool(d, d.GraphicsQueueIndex)
}

func (d *VulkanDevice) CreateImage(kind ImageKind, width, height uint32) (*VulkanImage, error) {
	return NewVulkanImage(d, kind, width, height)
}

func (d *VulkanDevice) CreateOptimizedImage(width, height uint32) (*VulkanImage, error) {
	return NewVulkanImage(d, ImageOptimized, width, height)
}

func (d *VulkanDevice) CreateLinearImage(width, height uint32) (*VulkanImage, error) {
	return NewVulkanImage(d, ImageLinear, width, height)
}

func (d *VulkanDevice) CreateRenderpass() (*VulkanRenderpass, error) {
	return NewVulkanRenderpass(d)
}

func (d *VulkanDevice) CreateFramebuffer(renderpass *VulkanRenderpass, image *VulkanImage, width, height uint32) (*VulkanFramebuffer, error) {
	return NewVulkanFramebuffer(d, renderpass, image, width, height)
}

// Destroy fails with core.ErrDependentsAlive while anything created from the
// device is alive.
func (d *VulkanDevice) Destroy() error {
	err := d.lifetime.ReleaseFunc(func() {
		d.driver().DestroyDevice(d.Handle)
	})
	if err != nil {
		return errors.Wrap(err, "destroy logical device")
	}
	core.LogLifecycle("destroyed", d.lifetime)
	d.Handle = NullHandle
	d.graphicsQueue = VulkanQueue{}
	return nil
}

package vulkan

import (
	"github.com/pkg/errors"
	"github.com/spaghettifunk/tricore/engine/core"
	"golang.org/x/exp/slices"
)

type InstanceConfig struct {
	ApplicationName string
	EngineName      string
	// ValidationLayers must all be available or instance creation fails.
	ValidationLayers []string
}

// VulkanInstance is the root of the ownership tree. Every other object is
// created, directly or not, from an instance and must be destroyed before it.
type VulkanInstance struct {
	Handle Handle

	driver   Driver
	lifetime *core.Lifetime
}

func NewVulkanInstance(drv Driver, cfg InstanceConfig) (*VulkanInstance, error) {
	if len(cfg.ValidationLayers) > 0 {
		core.LogDebug("Validation layers enabled. Enumerating...")

		available, err := drv.EnumerateInstanceLayers()
		if err != nil {
			err = core.DriverCall("vkEnumerateInstanceLayerProperties", err)
			core.LogError(err.Error())
			return nil, err
		}
		for _, name := range cfg.ValidationLayers {
			core.LogDebug("Searching for layer: %s...", name)
			if !slices.Contains(available, name) {
				err := errors.Wrapf(core.ErrLayerUnsupported, "required validation layer is missing: %s", name)
				core.LogError(err.Error())
				return nil, err
			}
			core.LogDebug("Found.")
		}
		core.LogDebug("All required validation layers are present.")
	}

	handle, err := drv.CreateInstance(cfg.ApplicationName, cfg.EngineName, cfg.ValidationLayers)
	if err != nil {
		err = core.DriverCall("vkCreateInstance", err)
		core.LogError(err.Error())
		return nil, err
	}

	instance := &VulkanInstance{
		Handle:   handle,
		driver:   drv,
		lifetime: core.NewRootLifetime("Instance"),
	}
	core.LogLifecycle("created", instance.lifetime, "application", cfg.ApplicationName)
	return instance, nil
}

// EnumeratePhysicalDevices lists every device the instance can see, in driver
// order.
func (vi *VulkanInstance) EnumeratePhysicalDevices() ([]VulkanPhysicalDevice, error) {
	if err := vi.lifetime.Check(); err != nil {
		return nil, err
	}
	handles, err := vi.driver.EnumeratePhysicalDevices(vi.Handle)
	if err != nil {
		err = core.DriverCall("vkEnumeratePhysicalDevices", err)
		core.LogError(err.Error())
		return nil, err
	}
	devices := make([]VulkanPhysicalDevice, len(handles))
	for i, h := range handles {
		devices[i] = VulkanPhysicalDevice{instance: vi, Handle: h}
	}
	return devices, nil
}

func (vi *VulkanInstance) CreateLogicalDevice(pd VulkanPhysicalDevice) (*VulkanDevice, error) {
	return NewVulkanDevice(vi, pd)
}

// Live lists every object of this instance's tree that has not been destroyed.
func (vi *VulkanInstance) Live() []string {
	return vi.lifetime.Live()
}

// Destroy fails with core.ErrDependentsAlive while any logical device is alive.
func (vi *VulkanInstance) Destroy() error {
	err := vi.lifetime.ReleaseFunc(func() {
		vi.driver.DestroyInstance(vi.Handle)
	})
	if err != nil {
		return errors.Wrap(err, "destroy instance")
	}
	core.LogLifecycle("destroyed", vi.lifetime)
	vi.Handle = NullHandle
	return nil
}

package vulkan

import "fmt"

// VulkanPhysicalDevice describes a GPU visible to an instance. It is a plain
// value: it owns nothing and is never destroyed. All properties are queried
// from the driver on demand.
type VulkanPhysicalDevice struct {
	Handle Handle

	instance *VulkanInstance
}

func (pd VulkanPhysicalDevice) Instance() *VulkanInstance {
	return pd.instance
}

func (pd VulkanPhysicalDevice) Properties() PhysicalDeviceProperties {
	return pd.instance.driver.PhysicalDeviceProperties(pd.Handle)
}

func (pd VulkanPhysicalDevice) Name() string {
	return pd.Properties().Name
}

func (pd VulkanPhysicalDevice) Type() DeviceType {
	return pd.Properties().Type
}

func (pd VulkanPhysicalDevice) String() string {
	p := pd.Properties()
	return fmt.Sprintf("%s (%s)", p.Name, p.Type)
}

func (pd VulkanPhysicalDevice) QueueFamilies() []QueueFamilyProperties {
	return pd.instance.driver.QueueFamilyProperties(pd.Handle)
}

func (pd VulkanPhysicalDevice) MemoryTypes() []MemoryType {
	return pd.instance.driver.MemoryTypes(pd.Handle)
}

// GraphicsQueueFamily returns the lowest-indexed queue family supporting
// graphics.
func (pd VulkanPhysicalDevice) GraphicsQueueFamily() (uint32, bool) {
	for i, family := range pd.QueueFamilies() {
		if family.Flags&QueueGraphicsBit != 0 && family.QueueCount > 0 {
			return uint32(i), true
		}
	}
	return 0, false
}

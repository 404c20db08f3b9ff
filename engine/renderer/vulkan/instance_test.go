package vulkan_test

import (
	"bytes"
	"errors"
	"os"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/spaghettifunk/tricore/engine/core"
	"github.com/spaghettifunk/tricore/engine/renderer/vulkan"
	"github.com/spaghettifunk/tricore/engine/renderer/vulkan/vulkantest"
)

func TestNewVulkanInstanceMissingLayer(t *testing.T) {
	c := qt.New(t)

	fake := vulkantest.New()
	fake.Layers = nil

	instance, err := vulkan.NewVulkanInstance(fake, testConfig)
	c.Assert(err, qt.ErrorIs, core.ErrLayerUnsupported)
	c.Assert(err, qt.ErrorMatches, `required validation layer is missing: VK_LAYER_KHRONOS_validation: .*`)
	c.Assert(instance, qt.IsNil)
	c.Assert(fake.Count("vkCreateInstance"), qt.Equals, 0)
	c.Assert(fake.Live(), qt.HasLen, 0)
}

func TestNewVulkanInstanceNonexistentLayer(t *testing.T) {
	c := qt.New(t)

	fake := vulkantest.New()
	cfg := testConfig
	cfg.ValidationLayers = []string{core.KhronosValidationLayer, "VK_LAYER_does_not_exist"}

	_, err := vulkan.NewVulkanInstance(fake, cfg)
	c.Assert(err, qt.ErrorIs, core.ErrLayerUnsupported)
	c.Assert(err, qt.Not(qt.ErrorIs), core.ErrDriverCallFailed)
	c.Assert(fake.Count("vkCreateInstance"), qt.Equals, 0)
}

func TestNewVulkanInstanceWithoutLayers(t *testing.T) {
	c := qt.New(t)

	fake := vulkantest.New()
	fake.Layers = nil

	instance, err := vulkan.NewVulkanInstance(fake, vulkan.InstanceConfig{ApplicationName: "Hello Triangle"})
	c.Assert(err, qt.IsNil)
	c.Assert(fake.Count("vkEnumerateInstanceLayerProperties"), qt.Equals, 0)
	c.Assert(fake.Live(), qt.DeepEquals, []string{"Instance"})
	c.Assert(instance.Live(), qt.HasLen, 1)

	c.Assert(instance.Destroy(), qt.IsNil)
	c.Assert(fake.Live(), qt.HasLen, 0)
	c.Assert(fake.Violations(), qt.HasLen, 0)
}

func TestNewVulkanInstanceDriverFailure(t *testing.T) {
	c := qt.New(t)

	cause := errors.New("VK_ERROR_INCOMPATIBLE_DRIVER")
	fake := vulkantest.New()
	fake.Fail("vkCreateInstance", cause)

	_, err := vulkan.NewVulkanInstance(fake, testConfig)
	c.Assert(err, qt.ErrorIs, core.ErrDriverCallFailed)
	c.Assert(err, qt.ErrorIs, cause)

	var dce *core.DriverCallError
	c.Assert(errors.As(err, &dce), qt.IsTrue)
	c.Assert(dce.Call, qt.Equals, "vkCreateInstance")
}

func TestVulkanInstanceDestroyWithLiveDevice(t *testing.T) {
	c := qt.New(t)

	fake := vulkantest.New()
	instance, device := newDevice(c, fake)

	c.Assert(instance.Destroy(), qt.ErrorIs, core.ErrDependentsAlive)
	c.Assert(fake.Count("vkDestroyInstance"), qt.Equals, 0)

	c.Assert(device.Destroy(), qt.IsNil)
	c.Assert(instance.Destroy(), qt.IsNil)
	c.Assert(instance.Destroy(), qt.ErrorIs, core.ErrAlreadyDestroyed)
	c.Assert(fake.Count("vkDestroyInstance"), qt.Equals, 1)
	c.Assert(fake.Violations(), qt.HasLen, 0)
}

func TestEnumeratePhysicalDevices(t *testing.T) {
	c := qt.New(t)

	integrated := vulkantest.DefaultPhysicalDevice()
	integrated.Properties.Name = "Integrated GPU"
	integrated.Properties.Type = vulkan.DeviceTypeIntegratedGPU

	fake := vulkantest.New()
	fake.PhysicalDevices = []vulkantest.PhysicalDevice{integrated, vulkantest.DefaultPhysicalDevice()}

	instance, err := vulkan.NewVulkanInstance(fake, testConfig)
	c.Assert(err, qt.IsNil)
	devices, err := instance.EnumeratePhysicalDevices()
	c.Assert(err, qt.IsNil)
	c.Assert(devices, qt.HasLen, 2)

	c.Assert(devices[0].String(), qt.Equals, "Integrated GPU (Integrated)")
	c.Assert(devices[1].String(), qt.Equals, "Fake GPU (Discrete)")
	c.Assert(devices[1].Instance(), qt.Equals, instance)

	// physical devices own nothing
	c.Assert(instance.Destroy(), qt.IsNil)
	c.Assert(fake.Violations(), qt.HasLen, 0)

	_, err = instance.EnumeratePhysicalDevices()
	c.Assert(err, qt.ErrorIs, core.ErrAlreadyDestroyed)
}

func TestVulkanInstanceLifecycleLog(t *testing.T) {
	c := qt.New(t)

	var buf bytes.Buffer
	core.SetLogOutput(&buf)
	c.Cleanup(func() { core.SetLogOutput(os.Stderr) })
	c.Assert(core.SetLogLevel("info"), qt.IsNil)

	instance, err := vulkan.NewVulkanInstance(vulkantest.New(), testConfig)
	c.Assert(err, qt.IsNil)
	c.Assert(buf.String(), qt.Matches, `(?s).*INFO.*created kind=Instance id=[0-9a-f-]{36}.*`)
	c.Assert(buf.String(), qt.Not(qt.Contains), "destroyed")

	c.Assert(instance.Destroy(), qt.IsNil)
	c.Assert(buf.String(), qt.Matches, `(?s).*INFO.*destroyed kind=Instance id=[0-9a-f-]{36}.*`)
}

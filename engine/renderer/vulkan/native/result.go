package native

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

type resultInfo struct {
	name        string
	description string
}

// From: https://www.khronos.org/registry/vulkan/specs/1.3-extensions/man/html/VkResult.html
var successResults = map[vk.Result]resultInfo{
	vk.Success:    {"VK_SUCCESS", "Command successfully completed"},
	vk.NotReady:   {"VK_NOT_READY", "A fence or query has not yet completed"},
	vk.Timeout:    {"VK_TIMEOUT", "A wait operation has not completed in the specified time"},
	vk.EventSet:   {"VK_EVENT_SET", "An event is signaled"},
	vk.EventReset: {"VK_EVENT_RESET", "An event is unsignaled"},
	vk.Incomplete: {"VK_INCOMPLETE", "A return array was too small for the result"},
}

var errorResults = map[vk.Result]resultInfo{
	vk.ErrorOutOfHostMemory:       {"VK_ERROR_OUT_OF_HOST_MEMORY", "A host memory allocation has failed."},
	vk.ErrorOutOfDeviceMemory:     {"VK_ERROR_OUT_OF_DEVICE_MEMORY", "A device memory allocation has failed."},
	vk.ErrorInitializationFailed:  {"VK_ERROR_INITIALIZATION_FAILED", "Initialization of an object could not be completed for implementation-specific reasons."},
	vk.ErrorDeviceLost:            {"VK_ERROR_DEVICE_LOST", "The logical or physical device has been lost."},
	vk.ErrorMemoryMapFailed:       {"VK_ERROR_MEMORY_MAP_FAILED", "Mapping of a memory object has failed."},
	vk.ErrorLayerNotPresent:       {"VK_ERROR_LAYER_NOT_PRESENT", "A requested layer is not present or could not be loaded."},
	vk.ErrorExtensionNotPresent:   {"VK_ERROR_EXTENSION_NOT_PRESENT", "A requested extension is not supported."},
	vk.ErrorFeatureNotPresent:     {"VK_ERROR_FEATURE_NOT_PRESENT", "A requested feature is not supported."},
	vk.ErrorIncompatibleDriver:    {"VK_ERROR_INCOMPATIBLE_DRIVER", "The requested version of Vulkan is not supported by the driver."},
	vk.ErrorTooManyObjects:        {"VK_ERROR_TOO_MANY_OBJECTS", "Too many objects of the type have already been created."},
	vk.ErrorFormatNotSupported:    {"VK_ERROR_FORMAT_NOT_SUPPORTED", "A requested format is not supported on this device."},
	vk.ErrorFragmentedPool:        {"VK_ERROR_FRAGMENTED_POOL", "A pool allocation has failed due to fragmentation of the pool's memory."},
	vk.ErrorOutOfPoolMemory:       {"VK_ERROR_OUT_OF_POOL_MEMORY", "A pool memory allocation has failed."},
	vk.ErrorInvalidExternalHandle: {"VK_ERROR_INVALID_EXTERNAL_HANDLE", "An external handle is not a valid handle of the specified type."},
	vk.ErrorFragmentation:         {"VK_ERROR_FRAGMENTATION", "A descriptor pool creation has failed due to fragmentation."},
	vk.ErrorInvalidShaderNv:       {"VK_ERROR_INVALID_SHADER_NV", "One or more shaders failed to compile or link."},
	vk.ErrorUnknown:               {"VK_ERROR_UNKNOWN", "An unknown error has occurred."},
}

// VulkanResultString names result, optionally followed by its description.
func VulkanResultString(result vk.Result, getExtended bool) string {
	info, ok := errorResults[result]
	if !ok {
		info, ok = successResults[result]
	}
	if !ok {
		return fmt.Sprintf("VkResult(%d)", int32(result))
	}
	if !getExtended {
		return info.name
	}
	return info.name + " " + info.description
}

// VulkanResultIsSuccess reports whether result is not an error code.
func VulkanResultIsSuccess(result vk.Result) bool {
	return result >= 0
}

// ResultError is a non-success vk.Result.
type ResultError struct {
	Result vk.Result
}

func (e ResultError) Error() string {
	return VulkanResultString(e.Result, true)
}

func check(res vk.Result) error {
	if VulkanResultIsSuccess(res) {
		return nil
	}
	return ResultError{Result: res}
}

package core

// KhronosValidationLayer is the diagnostic layer requested by validation builds.
const KhronosValidationLayer = "VK_LAYER_KHRONOS_validation"

// DefaultValidationLayers returns the layers requested at instance creation.
// It is empty unless the binary was built with the validation tag.
func DefaultValidationLayers() []string {
	if !ValidationEnabled {
		return nil
	}
	return []string{KhronosValidationLayer}
}

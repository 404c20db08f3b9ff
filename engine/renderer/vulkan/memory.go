package vulkan

import (
	"github.com/pkg/errors"
	"github.com/spaghettifunk/tricore/engine/core"
)

// FindMemoryIndex returns the lowest memory type index whose bit is set in
// typeFilter and whose property flags include every flag in required.
func FindMemoryIndex(typeFilter uint32, required MemoryPropertyFlags, types []MemoryType) (uint32, error) {
	for i := 0; i < len(types) && i < 32; i++ {
		// Check each memory type to see if its bit is set to 1.
		if typeFilter&(1<<uint(i)) != 0 && types[i].PropertyFlags.Contains(required) {
			return uint32(i), nil
		}
	}
	core.LogWarn("Unable to find suitable memory type!")
	return 0, errors.Wrapf(core.ErrNoSuitableMemoryType, "type bits %#b, required flags %#x", typeFilter, uint32(required))
}

// VulkanMemory is a device allocation bound to exactly one image.
type VulkanMemory struct {
	Handle          Handle
	Size            uint64
	MemoryTypeIndex uint32
	Properties      MemoryPropertyFlags
}

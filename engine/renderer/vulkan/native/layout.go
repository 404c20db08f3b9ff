package native

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/tricore/engine/renderer/vulkan"
)

func imageLayout(layout vulkan.ImageLayout) vk.ImageLayout {
	switch layout {
	case vulkan.ImageLayoutGeneral:
		return vk.ImageLayoutGeneral
	case vulkan.ImageLayoutColorAttachmentOptimal:
		return vk.ImageLayoutColorAttachmentOptimal
	case vulkan.ImageLayoutTransferSrcOptimal:
		return vk.ImageLayoutTransferSrcOptimal
	case vulkan.ImageLayoutTransferDstOptimal:
		return vk.ImageLayoutTransferDstOptimal
	default:
		return vk.ImageLayoutUndefined
	}
}

// accessAndStage gives the access mask and pipeline stage an image in layout
// is used with. General is only reached when the host reads the pixels.
func accessAndStage(layout vulkan.ImageLayout) (vk.AccessFlags, vk.PipelineStageFlags) {
	switch layout {
	case vulkan.ImageLayoutTransferDstOptimal:
		return vk.AccessFlags(vk.AccessTransferWriteBit), vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	case vulkan.ImageLayoutTransferSrcOptimal:
		return vk.AccessFlags(vk.AccessTransferReadBit), vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	case vulkan.ImageLayoutColorAttachmentOptimal:
		return vk.AccessFlags(vk.AccessColorAttachmentWriteBit), vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
	case vulkan.ImageLayoutGeneral:
		return vk.AccessFlags(vk.AccessHostReadBit), vk.PipelineStageFlags(vk.PipelineStageHostBit)
	default:
		return 0, vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
	}
}

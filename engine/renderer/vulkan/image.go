package vulkan

import (
	"image"

	"github.com/pkg/errors"
	"github.com/spaghettifunk/tricore/engine/core"
)

type ImageKind int

const (
	// ImageOptimized is a device-local color attachment that can be copied
	// from.
	ImageOptimized ImageKind = iota
	// ImageLinear is host-visible, host-coherent memory that can be copied
	// into and read back by the CPU.
	ImageLinear
)

func (k ImageKind) String() string {
	if k == ImageLinear {
		return "LinearImage"
	}
	return "OptimizedImage"
}

func (k ImageKind) createInfo(width, height uint32) ImageCreateInfo {
	info := ImageCreateInfo{
		Width:  width,
		Height: height,
		Format: FormatR8G8B8A8Unorm,
	}
	if k == ImageLinear {
		info.Tiling = ImageTilingLinear
		info.Usage = ImageUsageTransferDstBit
	} else {
		info.Tiling = ImageTilingOptimal
		info.Usage = ImageUsageColorAttachmentBit | ImageUsageTransferSrcBit
	}
	return info
}

// RequiredMemoryProperties are the flags a memory type must have to back an
// image of kind k.
func (k ImageKind) RequiredMemoryProperties() MemoryPropertyFlags {
	if k == ImageLinear {
		return MemoryPropertyHostVisibleBit | MemoryPropertyHostCoherentBit
	}
	return MemoryPropertyDeviceLocalBit
}

// VulkanImage is an image together with its memory and, for optimized images,
// the view a framebuffer attaches. All three are destroyed as one unit.
type VulkanImage struct {
	Handle Handle
	View   Handle
	Memory VulkanMemory
	Kind   ImageKind

	width  uint32
	height uint32

	device   *VulkanDevice
	lifetime *core.Lifetime
}

func NewVulkanImage(device *VulkanDevice, kind ImageKind, width, height uint32) (*VulkanImage, error) {
	if err := device.lifetime.Check(); err != nil {
		return nil, errors.Wrapf(err, "create %s", kind)
	}
	if width == 0 || height == 0 {
		return nil, errors.Errorf("create %s: extent must be non-zero, got %dx%d", kind, width, height)
	}

	drv := device.driver()
	img := &VulkanImage{
		Kind:   kind,
		width:  width,
		height: height,
		device: device,
	}

	err := device.locks.SafeCall(ImageManagement, func() error {
		return img.create()
	})
	if err != nil {
		img.release(drv)
		core.LogError(err.Error())
		return nil, err
	}

	lifetime, err := device.lifetime.NewChild(kind.String())
	if err != nil {
		img.release(drv)
		return nil, err
	}
	img.lifetime = lifetime

	core.LogLifecycle("created", lifetime,
		"width", width, "height", height, "memory_type", img.Memory.MemoryTypeIndex)
	return img, nil
}

// create performs the native steps in order; release undoes whatever part of
// them succeeded.
func (img *VulkanImage) create() error {
	device := img.device
	drv := device.driver()

	handle, err := drv.CreateImage(device.Handle, img.Kind.createInfo(img.width, img.height))
	if err != nil {
		return core.DriverCall("vkCreateImage", err)
	}
	img.Handle = handle

	requirements := drv.ImageMemoryRequirements(device.Handle, img.Handle)
	required := img.Kind.RequiredMemoryProperties()
	types := device.MemoryTypes()

	index, err := FindMemoryIndex(requirements.MemoryTypeBits, required, types)
	if err != nil {
		return errors.Wrapf(err, "create %s", img.Kind)
	}

	err = device.locks.SafeCall(MemoryManagement, func() error {
		mem, err := drv.AllocateMemory(device.Handle, requirements.Size, index)
		if err != nil {
			return core.DriverCall("vkAllocateMemory", err)
		}
		img.Memory = VulkanMemory{
			Handle:          mem,
			Size:            requirements.Size,
			MemoryTypeIndex: index,
			Properties:      types[index].PropertyFlags,
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := drv.BindImageMemory(device.Handle, img.Handle, img.Memory.Handle); err != nil {
		return core.DriverCall("vkBindImageMemory", err)
	}

	if img.Kind == ImageOptimized {
		view, err := drv.CreateImageView(device.Handle, img.Handle, FormatR8G8B8A8Unorm)
		if err != nil {
			return core.DriverCall("vkCreateImageView", err)
		}
		img.View = view
	}
	return nil
}

func (img *VulkanImage) release(drv Driver) {
	device := img.device
	if img.View != NullHandle {
		drv.DestroyImageView(device.Handle, img.View)
		img.View = NullHandle
	}
	if img.Handle != NullHandle {
		drv.DestroyImage(device.Handle, img.Handle)
		img.Handle = NullHandle
	}
	if img.Memory.Handle != NullHandle {
		drv.FreeMemory(device.Handle, img.Memory.Handle)
		img.Memory = VulkanMemory{}
	}
}

func (img *VulkanImage) Width() uint32 {
	return img.width
}

func (img *VulkanImage) Height() uint32 {
	return img.height
}

func (img *VulkanImage) MemoryTypeIndex() uint32 {
	return img.Memory.MemoryTypeIndex
}

func (img *VulkanImage) MemoryProperties() MemoryPropertyFlags {
	return img.Memory.Properties
}

// ReadPixels copies the content of a linear image into an RGBA image. Rows
// are read at the driver-reported row pitch.
func (img *VulkanImage) ReadPixels() (*image.RGBA, error) {
	if err := img.lifetime.Check(); err != nil {
		return nil, errors.Wrap(err, "read pixels")
	}
	if img.Kind != ImageLinear {
		return nil, errors.Errorf("read pixels: %s is not host visible", img.Kind)
	}

	drv := img.device.driver()
	layout := drv.ImageSubresourceLayout(img.device.Handle, img.Handle)
	rowBytes := uint64(img.width) * 4
	if layout.RowPitch < rowBytes {
		return nil, errors.Errorf("read pixels: row pitch %d is shorter than a row of %d bytes", layout.RowPitch, rowBytes)
	}
	size := layout.RowPitch*uint64(img.height-1) + rowBytes

	var data []byte
	err := img.device.locks.SafeCall(MemoryManagement, func() error {
		var err error
		data, err = drv.ReadMemory(img.device.Handle, img.Memory.Handle, layout.Offset, size)
		return err
	})
	if err != nil {
		err = core.DriverCall("vkMapMemory", err)
		core.LogError(err.Error())
		return nil, err
	}
	if uint64(len(data)) < size {
		return nil, errors.Errorf("read pixels: got %d bytes, want %d", len(data), size)
	}

	out := image.NewRGBA(image.Rect(0, 0, int(img.width), int(img.height)))
	for y := uint64(0); y < uint64(img.height); y++ {
		row := data[y*layout.RowPitch : y*layout.RowPitch+rowBytes]
		copy(out.Pix[y*uint64(out.Stride):], row)
	}
	return out, nil
}

// Destroy fails with core.ErrDependentsAlive while a framebuffer references
// the image.
func (img *VulkanImage) Destroy() error {
	drv := img.device.driver()
	err := img.lifetime.ReleaseFunc(func() {
		_ = img.device.locks.SafeCall(ImageManagement, func() error {
			img.release(drv)
			return nil
		})
	})
	if err != nil {
		return errors.Wrapf(err, "destroy %s", img.Kind)
	}
	core.LogLifecycle("destroyed", img.lifetime)
	return nil
}

package vulkan

// Handle is an opaque token naming a driver-side object. It is meaningful only
// to the Driver that returned it. NullHandle never names a live object.
type Handle uint64

const NullHandle Handle = 0

type QueueFlags uint32

const (
	QueueGraphicsBit QueueFlags = 1 << iota
	QueueComputeBit
	QueueTransferBit
	QueueSparseBindingBit
)

type MemoryPropertyFlags uint32

const (
	MemoryPropertyDeviceLocalBit MemoryPropertyFlags = 1 << iota
	MemoryPropertyHostVisibleBit
	MemoryPropertyHostCoherentBit
	MemoryPropertyHostCachedBit
	MemoryPropertyLazilyAllocatedBit
)

// Contains reports whether every bit of required is set in f.
func (f MemoryPropertyFlags) Contains(required MemoryPropertyFlags) bool {
	return f&required == required
}

type DeviceType int

const (
	DeviceTypeOther DeviceType = iota
	DeviceTypeIntegratedGPU
	DeviceTypeDiscreteGPU
	DeviceTypeVirtualGPU
	DeviceTypeCPU
)

func (t DeviceType) String() string {
	switch t {
	case DeviceTypeIntegratedGPU:
		return "Integrated"
	case DeviceTypeDiscreteGPU:
		return "Discrete"
	case DeviceTypeVirtualGPU:
		return "Virtual"
	case DeviceTypeCPU:
		return "CPU"
	default:
		return "Other"
	}
}

type PhysicalDeviceProperties struct {
	Name          string
	Type          DeviceType
	VendorID      uint32
	DeviceID      uint32
	DriverVersion uint32
	APIVersion    uint32
}

type QueueFamilyProperties struct {
	Flags      QueueFlags
	QueueCount uint32
}

type MemoryType struct {
	PropertyFlags MemoryPropertyFlags
	HeapIndex     uint32
}

type MemoryRequirements struct {
	Size           uint64
	Alignment      uint64
	MemoryTypeBits uint32
}

type Format uint32

// FormatR8G8B8A8Unorm is the only color format the render pass uses.
const FormatR8G8B8A8Unorm Format = 37

type ImageTiling int

const (
	ImageTilingOptimal ImageTiling = iota
	ImageTilingLinear
)

type ImageUsageFlags uint32

const (
	ImageUsageTransferSrcBit     ImageUsageFlags = 0x01
	ImageUsageTransferDstBit     ImageUsageFlags = 0x02
	ImageUsageColorAttachmentBit ImageUsageFlags = 0x10
)

type CommandBufferUsageFlags uint32

const (
	CommandBufferUsageOneTimeSubmitBit CommandBufferUsageFlags = 1 << iota
	CommandBufferUsageRenderPassContinueBit
	CommandBufferUsageSimultaneousUseBit
)

type ImageLayout int

const (
	ImageLayoutUndefined ImageLayout = iota
	ImageLayoutGeneral
	ImageLayoutColorAttachmentOptimal
	ImageLayoutTransferSrcOptimal
	ImageLayoutTransferDstOptimal
)

type ImageCreateInfo struct {
	Width, Height uint32
	Format        Format
	Tiling        ImageTiling
	Usage         ImageUsageFlags
}

type RenderPassCreateInfo struct {
	ColorFormat Format
	FinalLayout ImageLayout
}

type GraphicsPipelineCreateInfo struct {
	RenderPass     Handle
	Layout         Handle
	VertexModule   Handle
	FragmentModule Handle
	Width, Height  uint32
}

type FramebufferCreateInfo struct {
	RenderPass    Handle
	Attachment    Handle
	Width, Height uint32
}

type RenderPassBeginInfo struct {
	RenderPass    Handle
	Framebuffer   Handle
	Width, Height uint32
	ClearColor    [4]float32
}

// ImageBarrier is a layout transition recorded into a command buffer.
type ImageBarrier struct {
	Image     Handle
	OldLayout ImageLayout
	NewLayout ImageLayout
}

type SubresourceLayout struct {
	Offset   uint64
	Size     uint64
	RowPitch uint64
}

// Driver is the boundary with the native graphics API. Every method maps to
// one native entry point (or a fixed short sequence of them) and reports
// failures as errors; the managed wrappers add call context and ordering.
type Driver interface {
	EnumerateInstanceLayers() ([]string, error)
	CreateInstance(applicationName, engineName string, layers []string) (Handle, error)
	DestroyInstance(instance Handle)
	EnumeratePhysicalDevices(instance Handle) ([]Handle, error)

	PhysicalDeviceProperties(physicalDevice Handle) PhysicalDeviceProperties
	QueueFamilyProperties(physicalDevice Handle) []QueueFamilyProperties
	MemoryTypes(physicalDevice Handle) []MemoryType

	CreateDevice(physicalDevice Handle, queueFamilyIndex uint32) (Handle, error)
	DestroyDevice(device Handle)
	DeviceQueue(device Handle, queueFamilyIndex, queueIndex uint32) Handle
	DeviceWaitIdle(device Handle) error

	CreateCommandPool(device Handle, queueFamilyIndex uint32) (Handle, error)
	DestroyCommandPool(device, pool Handle)
	AllocateCommandBuffer(device, pool Handle) (Handle, error)
	FreeCommandBuffer(device, pool, commandBuffer Handle)

	BeginCommandBuffer(commandBuffer Handle, flags CommandBufferUsageFlags) error
	EndCommandBuffer(commandBuffer Handle) error
	ResetCommandBuffer(commandBuffer Handle) error
	CmdBeginRenderPass(commandBuffer Handle, info RenderPassBeginInfo)
	CmdEndRenderPass(commandBuffer Handle)
	CmdBindPipeline(commandBuffer, pipeline Handle)
	CmdSetViewport(commandBuffer Handle, width, height uint32)
	CmdSetScissor(commandBuffer Handle, width, height uint32)
	CmdDraw(commandBuffer Handle, vertexCount, instanceCount, firstVertex, firstInstance uint32)
	CmdPipelineBarrier(commandBuffer Handle, barriers []ImageBarrier)
	CmdCopyImage(commandBuffer, src, dst Handle, width, height uint32)
	QueueSubmit(queue, commandBuffer Handle) error

	CreateImage(device Handle, info ImageCreateInfo) (Handle, error)
	DestroyImage(device, image Handle)
	ImageMemoryRequirements(device, image Handle) MemoryRequirements
	ImageSubresourceLayout(device, image Handle) SubresourceLayout
	AllocateMemory(device Handle, size uint64, memoryTypeIndex uint32) (Handle, error)
	FreeMemory(device, memory Handle)
	BindImageMemory(device, image, memory Handle) error
	// ReadMemory maps size bytes at offset, copies them out and unmaps.
	ReadMemory(device, memory Handle, offset, size uint64) ([]byte, error)
	CreateImageView(device, image Handle, format Format) (Handle, error)
	DestroyImageView(device, view Handle)

	CreateRenderPass(device Handle, info RenderPassCreateInfo) (Handle, error)
	DestroyRenderPass(device, renderPass Handle)
	CreateShaderModule(device Handle, code []uint32) (Handle, error)
	DestroyShaderModule(device, module Handle)
	CreatePipelineLayout(device Handle) (Handle, error)
	DestroyPipelineLayout(device, layout Handle)
	CreateGraphicsPipeline(device Handle, info GraphicsPipelineCreateInfo) (Handle, error)
	DestroyPipeline(device, pipeline Handle)

	CreateFramebuffer(device Handle, info FramebufferCreateInfo) (Handle, error)
	DestroyFramebuffer(device, framebuffer Handle)
}

// Package native implements vulkan.Driver on top of the system Vulkan loader.
// The loader's entry points must have been resolved (see engine/platform)
// before a Driver is used.
package native

import (
	"runtime"
	"sync"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/tricore/engine/core"
	"github.com/spaghettifunk/tricore/engine/renderer/vulkan"
)

type Driver struct {
	instances       *handleTable[vk.Instance]
	physicalDevices *handleTable[vk.PhysicalDevice]
	devices         *handleTable[vk.Device]
	queues          *handleTable[vk.Queue]
	commandPools    *handleTable[vk.CommandPool]
	commandBuffers  *handleTable[vk.CommandBuffer]
	images          *handleTable[vk.Image]
	imageViews      *handleTable[vk.ImageView]
	memories        *handleTable[vk.DeviceMemory]
	renderPasses    *handleTable[vk.RenderPass]
	shaderModules   *handleTable[vk.ShaderModule]
	pipelineLayouts *handleTable[vk.PipelineLayout]
	pipelines       *handleTable[vk.Pipeline]
	framebuffers    *handleTable[vk.Framebuffer]

	mu          sync.Mutex
	debug       map[vulkan.Handle]vk.DebugReportCallback
	poolBuffers map[vulkan.Handle][]vulkan.Handle
}

func New() *Driver {
	return &Driver{
		instances:       newHandleTable[vk.Instance](),
		physicalDevices: newHandleTable[vk.PhysicalDevice](),
		devices:         newHandleTable[vk.Device](),
		queues:          newHandleTable[vk.Queue](),
		commandPools:    newHandleTable[vk.CommandPool](),
		commandBuffers:  newHandleTable[vk.CommandBuffer](),
		images:          newHandleTable[vk.Image](),
		imageViews:      newHandleTable[vk.ImageView](),
		memories:        newHandleTable[vk.DeviceMemory](),
		renderPasses:    newHandleTable[vk.RenderPass](),
		shaderModules:   newHandleTable[vk.ShaderModule](),
		pipelineLayouts: newHandleTable[vk.PipelineLayout](),
		pipelines:       newHandleTable[vk.Pipeline](),
		framebuffers:    newHandleTable[vk.Framebuffer](),
		debug:           make(map[vulkan.Handle]vk.DebugReportCallback),
		poolBuffers:     make(map[vulkan.Handle][]vulkan.Handle),
	}
}

func (d *Driver) EnumerateInstanceLayers() ([]string, error) {
	var count uint32
	if err := check(vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, err
	}
	props := make([]vk.LayerProperties, count)
	if err := check(vk.EnumerateInstanceLayerProperties(&count, props)); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for i := range props[:count] {
		props[i].Deref()
		name := goString(props[i].LayerName[:])
		core.LogDebug("Available Layer: `%s`", name)
		names = append(names, name)
	}
	return names, nil
}

func (d *Driver) CreateInstance(applicationName, engineName string, layers []string) (vulkan.Handle, error) {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		EngineVersion:      uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(applicationName),
		PEngineName:        VulkanSafeString(engineName),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	var extensions []string
	if runtime.GOOS == "darwin" {
		extensions = append(extensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		createInfo.Flags |= 1
	}
	validation := len(layers) > 0
	if validation {
		extensions = append(extensions, vk.ExtDebugReportExtensionName)
	}
	createInfo.EnabledExtensionCount = uint32(len(extensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(extensions)
	createInfo.EnabledLayerCount = uint32(len(layers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(layers)

	var instance vk.Instance
	if err := check(vk.CreateInstance(&createInfo, nil, &instance)); err != nil {
		return vulkan.NullHandle, err
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return vulkan.NullHandle, err
	}
	h := d.instances.put(instance)

	if validation {
		dbg, err := createDebugCallback(instance)
		if err != nil {
			d.instances.take(h)
			vk.DestroyInstance(instance, nil)
			return vulkan.NullHandle, err
		}
		d.mu.Lock()
		d.debug[h] = dbg
		d.mu.Unlock()
	}
	return h, nil
}

func (d *Driver) DestroyInstance(instance vulkan.Handle) {
	inst := d.instances.take(instance)
	d.mu.Lock()
	dbg, ok := d.debug[instance]
	delete(d.debug, instance)
	d.mu.Unlock()
	if ok {
		vk.DestroyDebugReportCallback(inst, dbg, nil)
	}
	vk.DestroyInstance(inst, nil)
}

func (d *Driver) EnumeratePhysicalDevices(instance vulkan.Handle) ([]vulkan.Handle, error) {
	inst := d.instances.get(instance)
	var count uint32
	if err := check(vk.EnumeratePhysicalDevices(inst, &count, nil)); err != nil {
		return nil, err
	}
	devices := make([]vk.PhysicalDevice, count)
	if err := check(vk.EnumeratePhysicalDevices(inst, &count, devices)); err != nil {
		return nil, err
	}
	out := make([]vulkan.Handle, 0, count)
	for _, pd := range devices[:count] {
		out = append(out, d.physicalDevices.intern(pd))
	}
	return out, nil
}

func deviceType(t vk.PhysicalDeviceType) vulkan.DeviceType {
	switch t {
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return vulkan.DeviceTypeIntegratedGPU
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return vulkan.DeviceTypeDiscreteGPU
	case vk.PhysicalDeviceTypeVirtualGpu:
		return vulkan.DeviceTypeVirtualGPU
	case vk.PhysicalDeviceTypeCpu:
		return vulkan.DeviceTypeCPU
	default:
		return vulkan.DeviceTypeOther
	}
}

func (d *Driver) PhysicalDeviceProperties(physicalDevice vulkan.Handle) vulkan.PhysicalDeviceProperties {
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(d.physicalDevices.get(physicalDevice), &props)
	props.Deref()
	return vulkan.PhysicalDeviceProperties{
		Name:          goString(props.DeviceName[:]),
		Type:          deviceType(props.DeviceType),
		VendorID:      props.VendorID,
		DeviceID:      props.DeviceID,
		DriverVersion: props.DriverVersion,
		APIVersion:    props.ApiVersion,
	}
}

func (d *Driver) QueueFamilyProperties(physicalDevice vulkan.Handle) []vulkan.QueueFamilyProperties {
	pd := d.physicalDevices.get(physicalDevice)
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, nil)
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, families)

	out := make([]vulkan.QueueFamilyProperties, count)
	for i := range families[:count] {
		families[i].Deref()
		out[i] = vulkan.QueueFamilyProperties{
			Flags:      vulkan.QueueFlags(families[i].QueueFlags),
			QueueCount: families[i].QueueCount,
		}
	}
	return out
}

func (d *Driver) MemoryTypes(physicalDevice vulkan.Handle) []vulkan.MemoryType {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(d.physicalDevices.get(physicalDevice), &memoryProperties)
	memoryProperties.Deref()

	out := make([]vulkan.MemoryType, memoryProperties.MemoryTypeCount)
	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		memoryProperties.MemoryTypes[i].Deref()
		out[i] = vulkan.MemoryType{
			PropertyFlags: vulkan.MemoryPropertyFlags(memoryProperties.MemoryTypes[i].PropertyFlags),
			HeapIndex:     memoryProperties.MemoryTypes[i].HeapIndex,
		}
	}
	return out
}

func (d *Driver) deviceExtensions(pd vk.PhysicalDevice) []string {
	var count uint32
	if res := vk.EnumerateDeviceExtensionProperties(pd, "", &count, nil); res != vk.Success || count == 0 {
		return nil
	}
	available := make([]vk.ExtensionProperties, count)
	if res := vk.EnumerateDeviceExtensionProperties(pd, "", &count, available); res != vk.Success {
		return nil
	}
	for i := range available[:count] {
		available[i].Deref()
		if goString(available[i].ExtensionName[:]) == "VK_KHR_portability_subset" {
			core.LogInfo("Adding required extension 'VK_KHR_portability_subset'.")
			return []string{"VK_KHR_portability_subset"}
		}
	}
	return nil
}

func (d *Driver) CreateDevice(physicalDevice vulkan.Handle, queueFamilyIndex uint32) (vulkan.Handle, error) {
	pd := d.physicalDevices.get(physicalDevice)

	queueCreateInfo := vk.DeviceQueueCreateInfo{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: queueFamilyIndex,
		QueueCount:       1,
		PQueuePriorities: []float32{1.0},
	}
	extensions := d.deviceExtensions(pd)
	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    1,
		PQueueCreateInfos:       []vk.DeviceQueueCreateInfo{queueCreateInfo},
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensions),
	}

	var device vk.Device
	if err := check(vk.CreateDevice(pd, &deviceCreateInfo, nil, &device)); err != nil {
		return vulkan.NullHandle, err
	}
	return d.devices.put(device), nil
}

func (d *Driver) DestroyDevice(device vulkan.Handle) {
	vk.DestroyDevice(d.devices.take(device), nil)
}

func (d *Driver) DeviceQueue(device vulkan.Handle, queueFamilyIndex, queueIndex uint32) vulkan.Handle {
	var queue vk.Queue
	vk.GetDeviceQueue(d.devices.get(device), queueFamilyIndex, queueIndex, &queue)
	return d.queues.intern(queue)
}

func (d *Driver) DeviceWaitIdle(device vulkan.Handle) error {
	return check(vk.DeviceWaitIdle(d.devices.get(device)))
}

func (d *Driver) CreateCommandPool(device vulkan.Handle, queueFamilyIndex uint32) (vulkan.Handle, error) {
	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: queueFamilyIndex,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	var pool vk.CommandPool
	if err := check(vk.CreateCommandPool(d.devices.get(device), &poolCreateInfo, nil, &pool)); err != nil {
		return vulkan.NullHandle, err
	}
	return d.commandPools.put(pool), nil
}

func (d *Driver) DestroyCommandPool(device, pool vulkan.Handle) {
	vk.DestroyCommandPool(d.devices.get(device), d.commandPools.take(pool), nil)

	// buffers are freed with their pool
	d.mu.Lock()
	buffers := d.poolBuffers[pool]
	delete(d.poolBuffers, pool)
	d.mu.Unlock()
	for _, cb := range buffers {
		d.commandBuffers.take(cb)
	}
}

func (d *Driver) AllocateCommandBuffer(device, pool vulkan.Handle) (vulkan.Handle, error) {
	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        d.commandPools.get(pool),
		CommandBufferCount: 1,
		Level:              vk.CommandBufferLevelPrimary,
	}
	buffers := make([]vk.CommandBuffer, 1)
	if err := check(vk.AllocateCommandBuffers(d.devices.get(device), &allocateInfo, buffers)); err != nil {
		return vulkan.NullHandle, err
	}
	h := d.commandBuffers.put(buffers[0])
	d.mu.Lock()
	d.poolBuffers[pool] = append(d.poolBuffers[pool], h)
	d.mu.Unlock()
	return h, nil
}

func (d *Driver) FreeCommandBuffer(device, pool, commandBuffer vulkan.Handle) {
	cb := d.commandBuffers.take(commandBuffer)
	vk.FreeCommandBuffers(d.devices.get(device), d.commandPools.get(pool), 1, []vk.CommandBuffer{cb})

	d.mu.Lock()
	defer d.mu.Unlock()
	buffers := d.poolBuffers[pool]
	for i, h := range buffers {
		if h == commandBuffer {
			d.poolBuffers[pool] = append(buffers[:i], buffers[i+1:]...)
			break
		}
	}
}

func (d *Driver) BeginCommandBuffer(commandBuffer vulkan.Handle, flags vulkan.CommandBufferUsageFlags) error {
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(flags),
	}
	return check(vk.BeginCommandBuffer(d.commandBuffers.get(commandBuffer), &beginInfo))
}

func (d *Driver) EndCommandBuffer(commandBuffer vulkan.Handle) error {
	return check(vk.EndCommandBuffer(d.commandBuffers.get(commandBuffer)))
}

func (d *Driver) ResetCommandBuffer(commandBuffer vulkan.Handle) error {
	return check(vk.ResetCommandBuffer(d.commandBuffers.get(commandBuffer), 0))
}

func (d *Driver) CmdBeginRenderPass(commandBuffer vulkan.Handle, info vulkan.RenderPassBeginInfo) {
	clearValues := []vk.ClearValue{vk.NewClearValue(info.ClearColor[:])}
	beginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  d.renderPasses.get(info.RenderPass),
		Framebuffer: d.framebuffers.get(info.Framebuffer),
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: vk.Extent2D{Width: info.Width, Height: info.Height},
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(d.commandBuffers.get(commandBuffer), &beginInfo, vk.SubpassContentsInline)
}

func (d *Driver) CmdEndRenderPass(commandBuffer vulkan.Handle) {
	vk.CmdEndRenderPass(d.commandBuffers.get(commandBuffer))
}

func (d *Driver) CmdBindPipeline(commandBuffer, pipeline vulkan.Handle) {
	vk.CmdBindPipeline(d.commandBuffers.get(commandBuffer), vk.PipelineBindPointGraphics, d.pipelines.get(pipeline))
}

func (d *Driver) CmdSetViewport(commandBuffer vulkan.Handle, width, height uint32) {
	viewport := vk.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(width),
		Height:   float32(height),
		MinDepth: 0,
		MaxDepth: 1,
	}
	vk.CmdSetViewport(d.commandBuffers.get(commandBuffer), 0, 1, []vk.Viewport{viewport})
}

func (d *Driver) CmdSetScissor(commandBuffer vulkan.Handle, width, height uint32) {
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{Width: width, Height: height},
	}
	vk.CmdSetScissor(d.commandBuffers.get(commandBuffer), 0, 1, []vk.Rect2D{scissor})
}

func (d *Driver) CmdDraw(commandBuffer vulkan.Handle, vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	vk.CmdDraw(d.commandBuffers.get(commandBuffer), vertexCount, instanceCount, firstVertex, firstInstance)
}

var colorSubresourceRange = vk.ImageSubresourceRange{
	AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
	BaseMipLevel:   0,
	LevelCount:     1,
	BaseArrayLayer: 0,
	LayerCount:     1,
}

var colorSubresourceLayers = vk.ImageSubresourceLayers{
	AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
	MipLevel:       0,
	BaseArrayLayer: 0,
	LayerCount:     1,
}

func (d *Driver) CmdPipelineBarrier(commandBuffer vulkan.Handle, barriers []vulkan.ImageBarrier) {
	cb := d.commandBuffers.get(commandBuffer)
	for _, b := range barriers {
		barrier := vk.ImageMemoryBarrier{
			SType:               vk.StructureTypeImageMemoryBarrier,
			OldLayout:           imageLayout(b.OldLayout),
			NewLayout:           imageLayout(b.NewLayout),
			SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
			DstQueueFamilyIndex: vk.QueueFamilyIgnored,
			Image:               d.images.get(b.Image),
			SubresourceRange:    colorSubresourceRange,
		}
		srcAccess, srcStage := accessAndStage(b.OldLayout)
		dstAccess, dstStage := accessAndStage(b.NewLayout)
		barrier.SrcAccessMask = srcAccess
		barrier.DstAccessMask = dstAccess
		vk.CmdPipelineBarrier(cb, srcStage, dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
	}
}

func (d *Driver) CmdCopyImage(commandBuffer, src, dst vulkan.Handle, width, height uint32) {
	region := vk.ImageCopy{
		SrcSubresource: colorSubresourceLayers,
		SrcOffset:      vk.Offset3D{X: 0, Y: 0, Z: 0},
		DstSubresource: colorSubresourceLayers,
		DstOffset:      vk.Offset3D{X: 0, Y: 0, Z: 0},
		Extent:         vk.Extent3D{Width: width, Height: height, Depth: 1},
	}
	vk.CmdCopyImage(
		d.commandBuffers.get(commandBuffer),
		d.images.get(src), vk.ImageLayoutTransferSrcOptimal,
		d.images.get(dst), vk.ImageLayoutTransferDstOptimal,
		1, []vk.ImageCopy{region})
}

func (d *Driver) QueueSubmit(queue, commandBuffer vulkan.Handle) error {
	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{d.commandBuffers.get(commandBuffer)},
	}
	return check(vk.QueueSubmit(d.queues.get(queue), 1, []vk.SubmitInfo{submitInfo}, nil))
}

func (d *Driver) CreateImage(device vulkan.Handle, info vulkan.ImageCreateInfo) (vulkan.Handle, error) {
	tiling := vk.ImageTilingOptimal
	if info.Tiling == vulkan.ImageTilingLinear {
		tiling = vk.ImageTilingLinear
	}
	imageCreateInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    vk.Format(info.Format),
		Extent: vk.Extent3D{
			Width:  info.Width,
			Height: info.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        tiling,
		Usage:         vk.ImageUsageFlags(info.Usage),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}
	var img vk.Image
	if err := check(vk.CreateImage(d.devices.get(device), &imageCreateInfo, nil, &img)); err != nil {
		return vulkan.NullHandle, err
	}
	return d.images.put(img), nil
}

func (d *Driver) DestroyImage(device, image vulkan.Handle) {
	vk.DestroyImage(d.devices.get(device), d.images.take(image), nil)
}

func (d *Driver) ImageMemoryRequirements(device, image vulkan.Handle) vulkan.MemoryRequirements {
	var memReqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(d.devices.get(device), d.images.get(image), &memReqs)
	memReqs.Deref()
	return vulkan.MemoryRequirements{
		Size:           uint64(memReqs.Size),
		Alignment:      uint64(memReqs.Alignment),
		MemoryTypeBits: memReqs.MemoryTypeBits,
	}
}

func (d *Driver) ImageSubresourceLayout(device, image vulkan.Handle) vulkan.SubresourceLayout {
	var layout vk.SubresourceLayout
	vk.GetImageSubresourceLayout(d.devices.get(device), d.images.get(image), &vk.ImageSubresource{
		AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
	}, &layout)
	layout.Deref()
	return vulkan.SubresourceLayout{
		Offset:   uint64(layout.Offset),
		Size:     uint64(layout.Size),
		RowPitch: uint64(layout.RowPitch),
	}
}

func (d *Driver) AllocateMemory(device vulkan.Handle, size uint64, memoryTypeIndex uint32) (vulkan.Handle, error) {
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  vk.DeviceSize(size),
		MemoryTypeIndex: memoryTypeIndex,
	}
	var mem vk.DeviceMemory
	if err := check(vk.AllocateMemory(d.devices.get(device), &allocInfo, nil, &mem)); err != nil {
		return vulkan.NullHandle, err
	}
	return d.memories.put(mem), nil
}

func (d *Driver) FreeMemory(device, memory vulkan.Handle) {
	vk.FreeMemory(d.devices.get(device), d.memories.take(memory), nil)
}

func (d *Driver) BindImageMemory(device, image, memory vulkan.Handle) error {
	return check(vk.BindImageMemory(d.devices.get(device), d.images.get(image), d.memories.get(memory), 0))
}

func (d *Driver) ReadMemory(device, memory vulkan.Handle, offset, size uint64) ([]byte, error) {
	dev := d.devices.get(device)
	mem := d.memories.get(memory)

	var data unsafe.Pointer
	if err := check(vk.MapMemory(dev, mem, vk.DeviceSize(offset), vk.DeviceSize(size), 0, &data)); err != nil {
		return nil, err
	}
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(data), size))
	vk.UnmapMemory(dev, mem)
	return out, nil
}

func (d *Driver) CreateImageView(device, image vulkan.Handle, format vulkan.Format) (vulkan.Handle, error) {
	viewInfo := vk.ImageViewCreateInfo{
		SType:            vk.StructureTypeImageViewCreateInfo,
		Image:            d.images.get(image),
		ViewType:         vk.ImageViewType2d,
		Format:           vk.Format(format),
		SubresourceRange: colorSubresourceRange,
	}
	var view vk.ImageView
	if err := check(vk.CreateImageView(d.devices.get(device), &viewInfo, nil, &view)); err != nil {
		return vulkan.NullHandle, err
	}
	return d.imageViews.put(view), nil
}

func (d *Driver) DestroyImageView(device, view vulkan.Handle) {
	vk.DestroyImageView(d.devices.get(device), d.imageViews.take(view), nil)
}

func (d *Driver) CreateRenderPass(device vulkan.Handle, info vulkan.RenderPassCreateInfo) (vulkan.Handle, error) {
	colorAttachment := vk.AttachmentDescription{
		Format:         vk.Format(info.ColorFormat),
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    imageLayout(info.FinalLayout),
	}
	colorRef := vk.AttachmentReference{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}
	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments:    []vk.AttachmentReference{colorRef},
	}
	// make the stored color visible to the transfer that reads it back
	dependency := vk.SubpassDependency{
		SrcSubpass:    0,
		DstSubpass:    vk.SubpassExternal,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		SrcAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
		DstAccessMask: vk.AccessFlags(vk.AccessTransferReadBit),
	}
	renderPassInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 1,
		PAttachments:    []vk.AttachmentDescription{colorAttachment},
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}
	var renderPass vk.RenderPass
	if err := check(vk.CreateRenderPass(d.devices.get(device), &renderPassInfo, nil, &renderPass)); err != nil {
		return vulkan.NullHandle, err
	}
	return d.renderPasses.put(renderPass), nil
}

func (d *Driver) DestroyRenderPass(device, renderPass vulkan.Handle) {
	vk.DestroyRenderPass(d.devices.get(device), d.renderPasses.take(renderPass), nil)
}

func (d *Driver) CreateShaderModule(device vulkan.Handle, code []uint32) (vulkan.Handle, error) {
	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code) * 4),
		PCode:    code,
	}
	var module vk.ShaderModule
	if err := check(vk.CreateShaderModule(d.devices.get(device), &createInfo, nil, &module)); err != nil {
		return vulkan.NullHandle, err
	}
	return d.shaderModules.put(module), nil
}

func (d *Driver) DestroyShaderModule(device, module vulkan.Handle) {
	vk.DestroyShaderModule(d.devices.get(device), d.shaderModules.take(module), nil)
}

func (d *Driver) CreatePipelineLayout(device vulkan.Handle) (vulkan.Handle, error) {
	layoutInfo := vk.PipelineLayoutCreateInfo{
		SType: vk.StructureTypePipelineLayoutCreateInfo,
	}
	var layout vk.PipelineLayout
	if err := check(vk.CreatePipelineLayout(d.devices.get(device), &layoutInfo, nil, &layout)); err != nil {
		return vulkan.NullHandle, err
	}
	return d.pipelineLayouts.put(layout), nil
}

func (d *Driver) DestroyPipelineLayout(device, layout vulkan.Handle) {
	vk.DestroyPipelineLayout(d.devices.get(device), d.pipelineLayouts.take(layout), nil)
}

func (d *Driver) CreateGraphicsPipeline(device vulkan.Handle, info vulkan.GraphicsPipelineCreateInfo) (vulkan.Handle, error) {
	shaderStages := []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: d.shaderModules.get(info.VertexModule),
			PName:  VulkanSafeString("main"),
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: d.shaderModules.get(info.FragmentModule),
			PName:  VulkanSafeString("main"),
		},
	}

	// vertices come from gl_VertexIndex
	vertexInputInfo := vk.PipelineVertexInputStateCreateInfo{
		SType: vk.StructureTypePipelineVertexInputStateCreateInfo,
	}
	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vk.False,
	}
	viewport := vk.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(info.Width),
		Height:   float32(info.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{Width: info.Width, Height: info.Height},
	}
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		PViewports:    []vk.Viewport{viewport},
		ScissorCount:  1,
		PScissors:     []vk.Rect2D{scissor},
	}
	rasterizer := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		CullMode:                vk.CullModeFlags(vk.CullModeNone),
		FrontFace:               vk.FrontFaceClockwise,
		DepthBiasEnable:         vk.False,
		LineWidth:               1.0,
	}
	multisampling := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCount1Bit,
		SampleShadingEnable:  vk.False,
		MinSampleShading:     1.0,
	}
	colorBlendAttachment := vk.PipelineColorBlendAttachmentState{
		BlendEnable:    vk.False,
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
	}
	colorBlending := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{colorBlendAttachment},
	}
	dynamicStates := []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor}
	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	pipelineInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(shaderStages)),
		PStages:             shaderStages,
		PVertexInputState:   &vertexInputInfo,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisampling,
		PColorBlendState:    &colorBlending,
		PDynamicState:       &dynamicState,
		Layout:              d.pipelineLayouts.get(info.Layout),
		RenderPass:          d.renderPasses.get(info.RenderPass),
		Subpass:             0,
	}

	pipelines := make([]vk.Pipeline, 1)
	if err := check(vk.CreateGraphicsPipelines(d.devices.get(device), vk.PipelineCache(vk.NullHandle), 1, []vk.GraphicsPipelineCreateInfo{pipelineInfo}, nil, pipelines)); err != nil {
		return vulkan.NullHandle, err
	}
	return d.pipelines.put(pipelines[0]), nil
}

func (d *Driver) DestroyPipeline(device, pipeline vulkan.Handle) {
	vk.DestroyPipeline(d.devices.get(device), d.pipelines.take(pipeline), nil)
}

func (d *Driver) CreateFramebuffer(device vulkan.Handle, info vulkan.FramebufferCreateInfo) (vulkan.Handle, error) {
	attachments := []vk.ImageView{d.imageViews.get(info.Attachment)}
	framebufferCreateInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      d.renderPasses.get(info.RenderPass),
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		Width:           info.Width,
		Height:          info.Height,
		Layers:          1,
	}
	var framebuffer vk.Framebuffer
	if err := check(vk.CreateFramebuffer(d.devices.get(device), &framebufferCreateInfo, nil, &framebuffer)); err != nil {
		return vulkan.NullHandle, err
	}
	return d.framebuffers.put(framebuffer), nil
}

func (d *Driver) DestroyFramebuffer(device, framebuffer vulkan.Handle) {
	vk.DestroyFramebuffer(d.devices.get(device), d.framebuffers.take(framebuffer), nil)
}

var _ vulkan.Driver = (*Driver)(nil)

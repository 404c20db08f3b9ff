// Package vulkantest provides an in-memory vulkan.Driver that behaves like a
// device with the validation layer enabled: misuse is recorded as a violation
// instead of crashing.
package vulkantest

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/spaghettifunk/tricore/engine/core"
	"github.com/spaghettifunk/tricore/engine/renderer/vulkan"
	"golang.org/x/exp/slices"
)

const (
	kindInstance       = "Instance"
	kindPhysicalDevice = "PhysicalDevice"
	kindDevice         = "Device"
	kindQueue          = "Queue"
	kindCommandPool    = "CommandPool"
	kindCommandBuffer  = "CommandBuffer"
	kindImage          = "Image"
	kindImageView      = "ImageView"
	kindMemory         = "DeviceMemory"
	kindRenderPass     = "RenderPass"
	kindShaderModule   = "ShaderModule"
	kindPipelineLayout = "PipelineLayout"
	kindPipeline       = "Pipeline"
	kindFramebuffer    = "Framebuffer"
)

// ErrLayerNotPresent is returned by CreateInstance for unknown layers.
var ErrLayerNotPresent = errors.New("VK_ERROR_LAYER_NOT_PRESENT")

// PhysicalDevice configures one simulated GPU.
type PhysicalDevice struct {
	Properties    vulkan.PhysicalDeviceProperties
	QueueFamilies []vulkan.QueueFamilyProperties
	MemoryTypes   []vulkan.MemoryType
	// ImageMemoryTypeBits is reported for every image; zero means all types.
	ImageMemoryTypeBits uint32
	// RowPitchAlignment pads rows of linear images; zero means 4.
	RowPitchAlignment uint64
}

// DefaultPhysicalDevice is a discrete GPU with one graphics/transfer family
// and the three usual memory types.
func DefaultPhysicalDevice() PhysicalDevice {
	return PhysicalDevice{
		Properties: vulkan.PhysicalDeviceProperties{
			Name:       "Fake GPU",
			Type:       vulkan.DeviceTypeDiscreteGPU,
			VendorID:   0x1234,
			DeviceID:   0x0001,
			APIVersion: 1 << 22,
		},
		QueueFamilies: []vulkan.QueueFamilyProperties{
			{Flags: vulkan.QueueGraphicsBit | vulkan.QueueComputeBit | vulkan.QueueTransferBit, QueueCount: 1},
		},
		MemoryTypes: []vulkan.MemoryType{
			{PropertyFlags: vulkan.MemoryPropertyDeviceLocalBit},
			{PropertyFlags: vulkan.MemoryPropertyHostVisibleBit | vulkan.MemoryPropertyHostCoherentBit},
			{PropertyFlags: vulkan.MemoryPropertyHostVisibleBit | vulkan.MemoryPropertyHostCoherentBit | vulkan.MemoryPropertyHostCachedBit},
		},
		RowPitchAlignment: 64,
	}
}

type object struct {
	kind      string
	parents   []vulkan.Handle
	destroyed bool

	// kind specific
	physicalDevice int
	image          vulkan.ImageCreateInfo
	memory         []byte
	memoryType     uint32
	boundMemory    vulkan.Handle
	pixels         []byte
	viewImage      vulkan.Handle
	fbAttachment   vulkan.Handle
	cbRecording    bool
	cbCommands     []func()
}

// Driver is safe for concurrent use.
type Driver struct {
	// Layers are reported by EnumerateInstanceLayers.
	Layers          []string
	PhysicalDevices []PhysicalDevice

	mu         sync.Mutex
	next       vulkan.Handle
	objects    map[vulkan.Handle]*object
	failures   map[string]error
	calls      []string
	violations []string
	pending    int
}

// New returns a driver exposing the Khronos validation layer and one
// DefaultPhysicalDevice.
func New() *Driver {
	return &Driver{
		Layers:          []string{core.KhronosValidationLayer},
		PhysicalDevices: []PhysicalDevice{DefaultPhysicalDevice()},
		objects:         make(map[vulkan.Handle]*object),
		failures:        make(map[string]error),
	}
}

// Fail makes every later call named call (e.g. "vkCreateImage") return err.
func (d *Driver) Fail(call string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[call] = err
}

// Violations lists every validation error recorded so far.
func (d *Driver) Violations() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.violations...)
}

// Calls lists every driver call in order.
func (d *Driver) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// Count is the number of times call was made.
func (d *Driver) Count(call string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.calls {
		if c == call {
			n++
		}
	}
	return n
}

// Live lists the kinds of all objects that were created and not yet
// destroyed, sorted. Physical devices and queues are not listed.
func (d *Driver) Live() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []string
	for _, o := range d.objects {
		if !o.destroyed && o.kind != kindPhysicalDevice && o.kind != kindQueue {
			out = append(out, o.kind)
		}
	}
	sort.Strings(out)
	return out
}

// Idle reports whether every submission has been waited for.
func (d *Driver) Idle() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending == 0
}

func (d *Driver) call(name string) error {
	d.calls = append(d.calls, name)
	return d.failures[name]
}

func (d *Driver) violate(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	core.LogWarn("validation: %s", msg)
	d.violations = append(d.violations, msg)
}

func (d *Driver) add(kind string, parents ...vulkan.Handle) (vulkan.Handle, *object) {
	d.next++
	o := &object{kind: kind, parents: parents}
	d.objects[d.next] = o
	return d.next, o
}

// use returns the live object h of the given kind, recording a violation when
// it is unknown, destroyed or of another kind.
func (d *Driver) use(call string, h vulkan.Handle, kind string) *object {
	o, ok := d.objects[h]
	switch {
	case !ok:
		d.violate("%s: invalid %s handle %d", call, kind, h)
		return nil
	case o.kind != kind:
		d.violate("%s: handle %d is a %s, not a %s", call, h, o.kind, kind)
		return nil
	case o.destroyed:
		d.violate("%s: %s %d used after destruction", call, kind, h)
		return nil
	}
	return o
}

// implicit reports whether child is released together with its parent p.
func implicit(p, child *object) bool {
	switch child.kind {
	case kindPhysicalDevice, kindQueue:
		return true
	case kindCommandBuffer:
		return p.kind == kindCommandPool
	}
	return false
}

func (d *Driver) destroy(call string, h vulkan.Handle, kind string) {
	d.calls = append(d.calls, call)
	if h == vulkan.NullHandle {
		return
	}
	o, ok := d.objects[h]
	if !ok || o.kind != kind {
		d.violate("%s: invalid %s handle %d", call, kind, h)
		return
	}
	if o.destroyed {
		d.violate("%s: %s %d destroyed twice", call, kind, h)
		return
	}
	for ch, child := range d.objects {
		if child.destroyed || !slices.Contains(child.parents, h) {
			continue
		}
		if implicit(o, child) {
			child.destroyed = true
			continue
		}
		d.violate("%s: %s %d destroyed while %s %d is alive", call, kind, h, child.kind, ch)
	}
	o.destroyed = true
}

func (d *Driver) physicalDevice(call string, h vulkan.Handle) (PhysicalDevice, bool) {
	o := d.use(call, h, kindPhysicalDevice)
	if o == nil {
		return PhysicalDevice{}, false
	}
	return d.PhysicalDevices[o.physicalDevice], true
}

func (d *Driver) deviceConfig(call string, device vulkan.Handle) (PhysicalDevice, bool) {
	o := d.use(call, device, kindDevice)
	if o == nil {
		return PhysicalDevice{}, false
	}
	return d.PhysicalDevices[o.physicalDevice], true
}

func (d *Driver) EnumerateInstanceLayers() ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("vkEnumerateInstanceLayerProperties"); err != nil {
		return nil, err
	}
	return append([]string(nil), d.Layers...), nil
}

func (d *Driver) CreateInstance(applicationName, engineName string, layers []string) (vulkan.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("vkCreateInstance"); err != nil {
		return vulkan.NullHandle, err
	}
	for _, l := range layers {
		if !slices.Contains(d.Layers, l) {
			return vulkan.NullHandle, errors.Wrap(ErrLayerNotPresent, l)
		}
	}
	h, _ := d.add(kindInstance)
	for i := range d.PhysicalDevices {
		_, pd := d.add(kindPhysicalDevice, h)
		pd.physicalDevice = i
	}
	return h, nil
}

func (d *Driver) DestroyInstance(instance vulkan.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("vkDestroyInstance", instance, kindInstance)
}

func (d *Driver) EnumeratePhysicalDevices(instance vulkan.Handle) ([]vulkan.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("vkEnumeratePhysicalDevices"); err != nil {
		return nil, err
	}
	if d.use("vkEnumeratePhysicalDevices", instance, kindInstance) == nil {
		return nil, errors.New("VK_ERROR_INITIALIZATION_FAILED")
	}
	var out []vulkan.Handle
	for h, o := range d.objects {
		if o.kind == kindPhysicalDevice && o.parents[0] == instance {
			out = append(out, h)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (d *Driver) PhysicalDeviceProperties(physicalDevice vulkan.Handle) vulkan.PhysicalDeviceProperties {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "vkGetPhysicalDeviceProperties")
	pd, _ := d.physicalDevice("vkGetPhysicalDeviceProperties", physicalDevice)
	return pd.Properties
}

func (d *Driver) QueueFamilyProperties(physicalDevice vulkan.Handle) []vulkan.QueueFamilyProperties {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "vkGetPhysicalDeviceQueueFamilyProperties")
	pd, _ := d.physicalDevice("vkGetPhysicalDeviceQueueFamilyProperties", physicalDevice)
	return append([]vulkan.QueueFamilyProperties(nil), pd.QueueFamilies...)
}

func (d *Driver) MemoryTypes(physicalDevice vulkan.Handle) []vulkan.MemoryType {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "vkGetPhysicalDeviceMemoryProperties")
	pd, _ := d.physicalDevice("vkGetPhysicalDeviceMemoryProperties", physicalDevice)
	return append([]vulkan.MemoryType(nil), pd.MemoryTypes...)
}

func (d *Driver) CreateDevice(physicalDevice vulkan.Handle, queueFamilyIndex uint32) (vulkan.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("vkCreateDevice"); err != nil {
		return vulkan.NullHandle, err
	}
	pdo := d.use("vkCreateDevice", physicalDevice, kindPhysicalDevice)
	if pdo == nil {
		return vulkan.NullHandle, errors.New("VK_ERROR_INITIALIZATION_FAILED")
	}
	families := d.PhysicalDevices[pdo.physicalDevice].QueueFamilies
	if int(queueFamilyIndex) >= len(families) {
		d.violate("vkCreateDevice: queue family %d out of range", queueFamilyIndex)
	}
	h, o := d.add(kindDevice, pdo.parents[0])
	o.physicalDevice = pdo.physicalDevice
	return h, nil
}

func (d *Driver) DestroyDevice(device vulkan.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending > 0 {
		d.violate("vkDestroyDevice: device destroyed with %d submissions in flight", d.pending)
	}
	d.destroy("vkDestroyDevice", device, kindDevice)
}

func (d *Driver) DeviceQueue(device vulkan.Handle, queueFamilyIndex, queueIndex uint32) vulkan.Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "vkGetDeviceQueue")
	pd, ok := d.deviceConfig("vkGetDeviceQueue", device)
	if !ok {
		return vulkan.NullHandle
	}
	if int(queueFamilyIndex) >= len(pd.QueueFamilies) || queueIndex >= pd.QueueFamilies[queueFamilyIndex].QueueCount {
		d.violate("vkGetDeviceQueue: queue %d of family %d does not exist", queueIndex, queueFamilyIndex)
	}
	h, _ := d.add(kindQueue, device)
	return h
}

func (d *Driver) DeviceWaitIdle(device vulkan.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("vkDeviceWaitIdle"); err != nil {
		return err
	}
	d.use("vkDeviceWaitIdle", device, kindDevice)
	d.pending = 0
	return nil
}

func (d *Driver) CreateCommandPool(device vulkan.Handle, queueFamilyIndex uint32) (vulkan.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("vkCreateCommandPool"); err != nil {
		return vulkan.NullHandle, err
	}
	d.use("vkCreateCommandPool", device, kindDevice)
	h, _ := d.add(kindCommandPool, device)
	return h, nil
}

func (d *Driver) DestroyCommandPool(device, pool vulkan.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.use("vkDestroyCommandPool", device, kindDevice)
	d.destroy("vkDestroyCommandPool", pool, kindCommandPool)
}

func (d *Driver) AllocateCommandBuffer(device, pool vulkan.Handle) (vulkan.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("vkAllocateCommandBuffers"); err != nil {
		return vulkan.NullHandle, err
	}
	d.use("vkAllocateCommandBuffers", device, kindDevice)
	d.use("vkAllocateCommandBuffers", pool, kindCommandPool)
	h, _ := d.add(kindCommandBuffer, pool)
	return h, nil
}

func (d *Driver) FreeCommandBuffer(device, pool, commandBuffer vulkan.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.use("vkFreeCommandBuffers", device, kindDevice)
	d.use("vkFreeCommandBuffers", pool, kindCommandPool)
	d.destroy("vkFreeCommandBuffers", commandBuffer, kindCommandBuffer)
}

func (d *Driver) BeginCommandBuffer(commandBuffer vulkan.Handle, flags vulkan.CommandBufferUsageFlags) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("vkBeginCommandBuffer"); err != nil {
		return err
	}
	if cb := d.use("vkBeginCommandBuffer", commandBuffer, kindCommandBuffer); cb != nil {
		if cb.cbRecording {
			d.violate("vkBeginCommandBuffer: command buffer %d is already recording", commandBuffer)
		}
		cb.cbRecording = true
		cb.cbCommands = nil
	}
	return nil
}

func (d *Driver) EndCommandBuffer(commandBuffer vulkan.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("vkEndCommandBuffer"); err != nil {
		return err
	}
	if cb := d.use("vkEndCommandBuffer", commandBuffer, kindCommandBuffer); cb != nil {
		if !cb.cbRecording {
			d.violate("vkEndCommandBuffer: command buffer %d is not recording", commandBuffer)
		}
		cb.cbRecording = false
	}
	return nil
}

func (d *Driver) ResetCommandBuffer(commandBuffer vulkan.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("vkResetCommandBuffer"); err != nil {
		return err
	}
	if cb := d.use("vkResetCommandBuffer", commandBuffer, kindCommandBuffer); cb != nil {
		cb.cbRecording = false
		cb.cbCommands = nil
	}
	return nil
}

// record appends a command executed at submission time.
func (d *Driver) record(call string, commandBuffer vulkan.Handle, exec func()) {
	d.calls = append(d.calls, call)
	cb := d.use(call, commandBuffer, kindCommandBuffer)
	if cb == nil {
		return
	}
	if !cb.cbRecording {
		d.violate("%s: command buffer %d is not recording", call, commandBuffer)
		return
	}
	if exec != nil {
		cb.cbCommands = append(cb.cbCommands, exec)
	}
}

func (d *Driver) CmdBeginRenderPass(commandBuffer vulkan.Handle, info vulkan.RenderPassBeginInfo) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.use("vkCmdBeginRenderPass", info.RenderPass, kindRenderPass)
	fb := d.use("vkCmdBeginRenderPass", info.Framebuffer, kindFramebuffer)
	var pixels []byte
	if fb != nil {
		if view, ok := d.objects[fb.fbAttachment]; ok {
			if img, ok := d.objects[view.viewImage]; ok {
				pixels = img.pixels
			}
		}
	}
	color := [4]byte{
		byte(info.ClearColor[0] * 255), byte(info.ClearColor[1] * 255),
		byte(info.ClearColor[2] * 255), byte(info.ClearColor[3] * 255),
	}
	d.record("vkCmdBeginRenderPass", commandBuffer, func() {
		for i := 0; i+3 < len(pixels); i += 4 {
			copy(pixels[i:i+4], color[:])
		}
	})
}

func (d *Driver) CmdEndRenderPass(commandBuffer vulkan.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("vkCmdEndRenderPass", commandBuffer, nil)
}

func (d *Driver) CmdBindPipeline(commandBuffer, pipeline vulkan.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.use("vkCmdBindPipeline", pipeline, kindPipeline)
	d.record("vkCmdBindPipeline", commandBuffer, nil)
}

func (d *Driver) CmdSetViewport(commandBuffer vulkan.Handle, width, height uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("vkCmdSetViewport", commandBuffer, nil)
}

func (d *Driver) CmdSetScissor(commandBuffer vulkan.Handle, width, height uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("vkCmdSetScissor", commandBuffer, nil)
}

func (d *Driver) CmdDraw(commandBuffer vulkan.Handle, vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("vkCmdDraw", commandBuffer, nil)
}

func (d *Driver) CmdPipelineBarrier(commandBuffer vulkan.Handle, barriers []vulkan.ImageBarrier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, b := range barriers {
		d.use("vkCmdPipelineBarrier", b.Image, kindImage)
	}
	d.record("vkCmdPipelineBarrier", commandBuffer, nil)
}

func (d *Driver) CmdCopyImage(commandBuffer, src, dst vulkan.Handle, width, height uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.use("vkCmdCopyImage", src, kindImage)
	t := d.use("vkCmdCopyImage", dst, kindImage)
	if s == nil || t == nil {
		d.record("vkCmdCopyImage", commandBuffer, nil)
		return
	}
	if s.image.Usage&vulkan.ImageUsageTransferSrcBit == 0 {
		d.violate("vkCmdCopyImage: source image %d lacks transfer-src usage", src)
	}
	if t.image.Usage&vulkan.ImageUsageTransferDstBit == 0 {
		d.violate("vkCmdCopyImage: destination image %d lacks transfer-dst usage", dst)
	}
	d.record("vkCmdCopyImage", commandBuffer, func() {
		d.copyPixels(s, t, width, height)
	})
}

// copyPixels runs with d.mu held by QueueSubmit.
func (d *Driver) copyPixels(src, dst *object, width, height uint32) {
	if dst.image.Tiling == vulkan.ImageTilingOptimal {
		rowBytes := uint64(dst.image.Width) * 4
		for y := uint64(0); y < uint64(height); y++ {
			copy(dst.pixels[y*rowBytes:y*rowBytes+uint64(width)*4], src.pixels[y*uint64(src.image.Width)*4:])
		}
		return
	}
	mem, ok := d.objects[dst.boundMemory]
	if !ok {
		d.violate("vkQueueSubmit: destination image has no memory bound")
		return
	}
	layout := d.layoutOf(dst)
	for y := uint64(0); y < uint64(height); y++ {
		from := src.pixels[y*uint64(src.image.Width)*4 : y*uint64(src.image.Width)*4+uint64(width)*4]
		copy(mem.memory[layout.Offset+y*layout.RowPitch:], from)
	}
}

func (d *Driver) QueueSubmit(queue, commandBuffer vulkan.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("vkQueueSubmit"); err != nil {
		return err
	}
	d.use("vkQueueSubmit", queue, kindQueue)
	cb := d.use("vkQueueSubmit", commandBuffer, kindCommandBuffer)
	if cb == nil {
		return nil
	}
	if cb.cbRecording {
		d.violate("vkQueueSubmit: command buffer %d is still recording", commandBuffer)
	}
	for _, exec := range cb.cbCommands {
		exec()
	}
	d.pending++
	return nil
}

func (d *Driver) rowPitchAlignment(device vulkan.Handle) uint64 {
	o, ok := d.objects[device]
	if !ok {
		return 4
	}
	if a := d.PhysicalDevices[o.physicalDevice].RowPitchAlignment; a > 0 {
		return a
	}
	return 4
}

func (d *Driver) layoutOf(img *object) vulkan.SubresourceLayout {
	rowBytes := uint64(img.image.Width) * 4
	if img.image.Tiling == vulkan.ImageTilingOptimal {
		return vulkan.SubresourceLayout{RowPitch: rowBytes, Size: rowBytes * uint64(img.image.Height)}
	}
	align := d.rowPitchAlignment(img.parents[0])
	pitch := (rowBytes + align - 1) / align * align
	return vulkan.SubresourceLayout{RowPitch: pitch, Size: pitch * uint64(img.image.Height)}
}

func (d *Driver) CreateImage(device vulkan.Handle, info vulkan.ImageCreateInfo) (vulkan.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("vkCreateImage"); err != nil {
		return vulkan.NullHandle, err
	}
	d.use("vkCreateImage", device, kindDevice)
	if info.Width == 0 || info.Height == 0 {
		d.violate("vkCreateImage: zero extent %dx%d", info.Width, info.Height)
	}
	h, o := d.add(kindImage, device)
	o.image = info
	o.pixels = make([]byte, int(info.Width)*int(info.Height)*4)
	return h, nil
}

func (d *Driver) DestroyImage(device, image vulkan.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.use("vkDestroyImage", device, kindDevice)
	d.destroy("vkDestroyImage", image, kindImage)
}

func (d *Driver) ImageMemoryRequirements(device, image vulkan.Handle) vulkan.MemoryRequirements {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "vkGetImageMemoryRequirements")
	pd, _ := d.deviceConfig("vkGetImageMemoryRequirements", device)
	img := d.use("vkGetImageMemoryRequirements", image, kindImage)
	if img == nil {
		return vulkan.MemoryRequirements{}
	}
	bits := pd.ImageMemoryTypeBits
	if bits == 0 {
		bits = 1<<uint(len(pd.MemoryTypes)) - 1
	}
	return vulkan.MemoryRequirements{
		Size:           d.layoutOf(img).Size,
		Alignment:      256,
		MemoryTypeBits: bits,
	}
}

func (d *Driver) ImageSubresourceLayout(device, image vulkan.Handle) vulkan.SubresourceLayout {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "vkGetImageSubresourceLayout")
	d.use("vkGetImageSubresourceLayout", device, kindDevice)
	img := d.use("vkGetImageSubresourceLayout", image, kindImage)
	if img == nil {
		return vulkan.SubresourceLayout{}
	}
	if img.image.Tiling != vulkan.ImageTilingLinear {
		d.violate("vkGetImageSubresourceLayout: image %d is not linear", image)
	}
	return d.layoutOf(img)
}

func (d *Driver) AllocateMemory(device vulkan.Handle, size uint64, memoryTypeIndex uint32) (vulkan.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("vkAllocateMemory"); err != nil {
		return vulkan.NullHandle, err
	}
	pd, _ := d.deviceConfig("vkAllocateMemory", device)
	if int(memoryTypeIndex) >= len(pd.MemoryTypes) {
		d.violate("vkAllocateMemory: memory type %d out of range", memoryTypeIndex)
	}
	h, o := d.add(kindMemory, device)
	o.memory = make([]byte, size)
	o.memoryType = memoryTypeIndex
	return h, nil
}

func (d *Driver) FreeMemory(device, memory vulkan.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.use("vkFreeMemory", device, kindDevice)
	d.destroy("vkFreeMemory", memory, kindMemory)
}

func (d *Driver) BindImageMemory(device, image, memory vulkan.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("vkBindImageMemory"); err != nil {
		return err
	}
	pd, _ := d.deviceConfig("vkBindImageMemory", device)
	img := d.use("vkBindImageMemory", image, kindImage)
	mem := d.use("vkBindImageMemory", memory, kindMemory)
	if img == nil || mem == nil {
		return nil
	}
	if img.boundMemory != vulkan.NullHandle {
		d.violate("vkBindImageMemory: image %d already has memory bound", image)
	}
	bits := pd.ImageMemoryTypeBits
	if bits != 0 && bits&(1<<mem.memoryType) == 0 {
		d.violate("vkBindImageMemory: memory type %d not allowed for image %d", mem.memoryType, image)
	}
	img.boundMemory = memory
	return nil
}

func (d *Driver) ReadMemory(device, memory vulkan.Handle, offset, size uint64) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("vkMapMemory"); err != nil {
		return nil, err
	}
	pd, _ := d.deviceConfig("vkMapMemory", device)
	mem := d.use("vkMapMemory", memory, kindMemory)
	if mem == nil {
		return nil, errors.New("VK_ERROR_MEMORY_MAP_FAILED")
	}
	if int(mem.memoryType) < len(pd.MemoryTypes) &&
		!pd.MemoryTypes[mem.memoryType].PropertyFlags.Contains(vulkan.MemoryPropertyHostVisibleBit) {
		d.violate("vkMapMemory: memory %d is not host visible", memory)
		return nil, errors.New("VK_ERROR_MEMORY_MAP_FAILED")
	}
	if offset+size > uint64(len(mem.memory)) {
		d.violate("vkMapMemory: range %d+%d exceeds allocation of %d", offset, size, len(mem.memory))
		return nil, errors.New("VK_ERROR_MEMORY_MAP_FAILED")
	}
	d.calls = append(d.calls, "vkUnmapMemory")
	return append([]byte(nil), mem.memory[offset:offset+size]...), nil
}

func (d *Driver) CreateImageView(device, image vulkan.Handle, format vulkan.Format) (vulkan.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("vkCreateImageView"); err != nil {
		return vulkan.NullHandle, err
	}
	d.use("vkCreateImageView", device, kindDevice)
	img := d.use("vkCreateImageView", image, kindImage)
	if img != nil && img.boundMemory == vulkan.NullHandle {
		d.violate("vkCreateImageView: image %d has no memory bound", image)
	}
	h, o := d.add(kindImageView, device, image)
	o.viewImage = image
	return h, nil
}

func (d *Driver) DestroyImageView(device, view vulkan.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.use("vkDestroyImageView", device, kindDevice)
	d.destroy("vkDestroyImageView", view, kindImageView)
}

func (d *Driver) CreateRenderPass(device vulkan.Handle, info vulkan.RenderPassCreateInfo) (vulkan.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("vkCreateRenderPass"); err != nil {
		return vulkan.NullHandle, err
	}
	d.use("vkCreateRenderPass", device, kindDevice)
	h, _ := d.add(kindRenderPass, device)
	return h, nil
}

func (d *Driver) DestroyRenderPass(device, renderPass vulkan.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.use("vkDestroyRenderPass", device, kindDevice)
	d.destroy("vkDestroyRenderPass", renderPass, kindRenderPass)
}

func (d *Driver) CreateShaderModule(device vulkan.Handle, code []uint32) (vulkan.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("vkCreateShaderModule"); err != nil {
		return vulkan.NullHandle, err
	}
	d.use("vkCreateShaderModule", device, kindDevice)
	if len(code) == 0 {
		d.violate("vkCreateShaderModule: empty code")
	}
	h, _ := d.add(kindShaderModule, device)
	return h, nil
}

func (d *Driver) DestroyShaderModule(device, module vulkan.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.use("vkDestroyShaderModule", device, kindDevice)
	d.destroy("vkDestroyShaderModule", module, kindShaderModule)
}

func (d *Driver) CreatePipelineLayout(device vulkan.Handle) (vulkan.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("vkCreatePipelineLayout"); err != nil {
		return vulkan.NullHandle, err
	}
	d.use("vkCreatePipelineLayout", device, kindDevice)
	h, _ := d.add(kindPipelineLayout, device)
	return h, nil
}

func (d *Driver) DestroyPipelineLayout(device, layout vulkan.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.use("vkDestroyPipelineLayout", device, kindDevice)
	d.destroy("vkDestroyPipelineLayout", layout, kindPipelineLayout)
}

func (d *Driver) CreateGraphicsPipeline(device vulkan.Handle, info vulkan.GraphicsPipelineCreateInfo) (vulkan.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("vkCreateGraphicsPipelines"); err != nil {
		return vulkan.NullHandle, err
	}
	d.use("vkCreateGraphicsPipelines", device, kindDevice)
	d.use("vkCreateGraphicsPipelines", info.RenderPass, kindRenderPass)
	d.use("vkCreateGraphicsPipelines", info.Layout, kindPipelineLayout)
	d.use("vkCreateGraphicsPipelines", info.VertexModule, kindShaderModule)
	d.use("vkCreateGraphicsPipelines", info.FragmentModule, kindShaderModule)
	h, _ := d.add(kindPipeline, device)
	return h, nil
}

func (d *Driver) DestroyPipeline(device, pipeline vulkan.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.use("vkDestroyPipeline", device, kindDevice)
	d.destroy("vkDestroyPipeline", pipeline, kindPipeline)
}

func (d *Driver) CreateFramebuffer(device vulkan.Handle, info vulkan.FramebufferCreateInfo) (vulkan.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.call("vkCreateFramebuffer"); err != nil {
		return vulkan.NullHandle, err
	}
	d.use("vkCreateFramebuffer", device, kindDevice)
	d.use("vkCreateFramebuffer", info.RenderPass, kindRenderPass)
	view := d.use("vkCreateFramebuffer", info.Attachment, kindImageView)
	if view != nil {
		if img, ok := d.objects[view.viewImage]; ok {
			if img.image.Width < info.Width || img.image.Height < info.Height {
				d.violate("vkCreateFramebuffer: %dx%d exceeds attachment %dx%d",
					info.Width, info.Height, img.image.Width, img.image.Height)
			}
		}
	}
	h, o := d.add(kindFramebuffer, device, info.RenderPass, info.Attachment)
	o.fbAttachment = info.Attachment
	return h, nil
}

func (d *Driver) DestroyFramebuffer(device, framebuffer vulkan.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.use("vkDestroyFramebuffer", device, kindDevice)
	d.destroy("vkDestroyFramebuffer", framebuffer, kindFramebuffer)
}

var _ vulkan.Driver = (*Driver)(nil)

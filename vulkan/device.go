package vulkan

import (
	"unsafe"

	"github.com/rs/zerolog"
	"github.com/vulkan-go/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"

	"github.com/rotisserie/eris"
)

// GraphicsDevice owns the Vulkan instance, the logical device, a graphics
// queue and the command pool used for one-shot transfer work. It implements
// Device for PairAllocator.
type GraphicsDevice struct {
	instance       vk.Instance
	physicalDevice vk.PhysicalDevice
	device         vk.Device
	queue          vk.Queue
	queueFamily    uint32
	commandPool    vk.CommandPool
	memoryTypes    []vk.MemoryType
	logger         zerolog.Logger
}

var _ Device = (*GraphicsDevice)(nil)

// NewGraphicsDevice initializes the Vulkan loader through GLFW, creates an
// instance with the window's required extensions, picks the first physical
// device with a graphics queue and builds the logical device and command
// pool on it.
func NewGraphicsDevice(appName string, win *glfw.Window, logger zerolog.Logger) (*GraphicsDevice, error) {
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		return nil, eris.Wrap(err, "failed to initialize vulkan")
	}

	appInfo := vk.ApplicationInfo{
		SType:            vk.StructureTypeApplicationInfo,
		PApplicationName: safeString(appName),
		PEngineName:      safeString("lodestar"),
		ApiVersion:       vk.MakeVersion(1, 0, 0),
	}
	extensions := win.GetRequiredInstanceExtensions()

	var instance vk.Instance
	res := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
	}, nil, &instance)
	if err := vk.Error(res); err != nil {
		return nil, eris.Wrap(err, "failed to create instance")
	}
	vk.InitInstance(instance)

	d := &GraphicsDevice{instance: instance, logger: logger}
	if err := d.pickPhysicalDevice(); err != nil {
		d.Destroy()
		return nil, err
	}
	if err := d.createLogicalDevice(); err != nil {
		d.Destroy()
		return nil, err
	}
	if err := d.createCommandPool(); err != nil {
		d.Destroy()
		return nil, err
	}
	return d, nil
}

func (d *GraphicsDevice) pickPhysicalDevice() error {
	var count uint32
	if err := vk.Error(vk.EnumeratePhysicalDevices(d.instance, &count, nil)); err != nil {
		return eris.Wrap(err, "failed to enumerate physical devices")
	}
	if count == 0 {
		return eris.Wrap(ErrDeviceOperationFailed, "no vulkan capable device present")
	}
	devices := make([]vk.PhysicalDevice, count)
	if err := vk.Error(vk.EnumeratePhysicalDevices(d.instance, &count, devices)); err != nil {
		return eris.Wrap(err, "failed to enumerate physical devices")
	}

	for _, pd := range devices {
		family, ok := graphicsQueueFamily(pd)
		if !ok {
			continue
		}
		d.physicalDevice = pd
		d.queueFamily = family

		var props vk.PhysicalDeviceProperties
		vk.GetPhysicalDeviceProperties(pd, &props)
		props.Deref()
		d.logger.Info().
			Str("device", vk.ToString(props.DeviceName[:])).
			Uint32("queue_family", family).
			Msg("selected physical device")
		return nil
	}
	return eris.Wrap(ErrDeviceOperationFailed, "no device exposes a graphics queue")
}

func graphicsQueueFamily(pd vk.PhysicalDevice) (uint32, bool) {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, nil)
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, families)
	for i, family := range families {
		family.Deref()
		if vk.QueueFlagBits(family.QueueFlags)&vk.QueueGraphicsBit != 0 {
			return uint32(i), true
		}
	}
	return 0, false
}

func (d *GraphicsDevice) createLogicalDevice() error {
	var device vk.Device
	res := vk.CreateDevice(d.physicalDevice, &vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos: []vk.DeviceQueueCreateInfo{{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: d.queueFamily,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}},
	}, nil, &device)
	if err := vk.Error(res); err != nil {
		return eris.Wrap(err, "failed to create logical device")
	}
	d.device = device
	vk.GetDeviceQueue(device, d.queueFamily, 0, &d.queue)

	var memProps vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(d.physicalDevice, &memProps)
	memProps.Deref()
	for i := uint32(0); i < memProps.MemoryTypeCount; i++ {
		mt := memProps.MemoryTypes[i]
		mt.Deref()
		d.memoryTypes = append(d.memoryTypes, mt)
	}
	return nil
}

func (d *GraphicsDevice) createCommandPool() error {
	var pool vk.CommandPool
	res := vk.CreateCommandPool(d.device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: d.queueFamily,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateTransientBit),
	}, nil, &pool)
	if err := vk.Error(res); err != nil {
		return eris.Wrap(err, "failed to create command pool")
	}
	d.commandPool = pool
	return nil
}

func (d *GraphicsDevice) CreateBuffer(size uint64, usage vk.BufferUsageFlags) (vk.Buffer, error) {
	var buf vk.Buffer
	res := vk.CreateBuffer(d.device, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}, nil, &buf)
	if err := vk.Error(res); err != nil {
		return vk.NullBuffer, eris.Wrap(err, "vkCreateBuffer")
	}
	return buf, nil
}

func (d *GraphicsDevice) BufferMemoryRequirements(buf vk.Buffer) (uint64, uint32) {
	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(d.device, buf, &reqs)
	reqs.Deref()
	return uint64(reqs.Size), reqs.MemoryTypeBits
}

func (d *GraphicsDevice) MemoryTypes() []vk.MemoryType {
	return d.memoryTypes
}

func (d *GraphicsDevice) AllocateMemory(size uint64, typeIndex uint32) (vk.DeviceMemory, error) {
	var mem vk.DeviceMemory
	res := vk.AllocateMemory(d.device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  vk.DeviceSize(size),
		MemoryTypeIndex: typeIndex,
	}, nil, &mem)
	if err := vk.Error(res); err != nil {
		return vk.NullDeviceMemory, eris.Wrap(err, "vkAllocateMemory")
	}
	return mem, nil
}

func (d *GraphicsDevice) BindBufferMemory(buf vk.Buffer, mem vk.DeviceMemory) error {
	if err := vk.Error(vk.BindBufferMemory(d.device, buf, mem, 0)); err != nil {
		return eris.Wrap(err, "vkBindBufferMemory")
	}
	return nil
}

func (d *GraphicsDevice) MapCopyUnmap(mem vk.DeviceMemory, data []byte) error {
	var ptr unsafe.Pointer
	if err := vk.Error(vk.MapMemory(d.device, mem, 0, vk.DeviceSize(len(data)), 0, &ptr)); err != nil {
		return eris.Wrap(err, "vkMapMemory")
	}
	const m = 0x7fffffff
	copy((*[m]byte)(ptr)[:len(data)], data)
	vk.UnmapMemory(d.device, mem)
	return nil
}

// SubmitCopy runs the copy through a transient command buffer and waits for
// the queue to drain before returning, so the source may be freed as soon as
// this returns.
func (d *GraphicsDevice) SubmitCopy(src, dst vk.Buffer, size uint64) error {
	return d.submitOneTime(func(cmd vk.CommandBuffer) {
		vk.CmdCopyBuffer(cmd, src, dst, 1, []vk.BufferCopy{{
			SrcOffset: 0,
			DstOffset: 0,
			Size:      vk.DeviceSize(size),
		}})
	})
}

// submitOneTime records commands into a transient command buffer, submits it
// and blocks until the queue is idle.
func (d *GraphicsDevice) submitOneTime(record func(cmd vk.CommandBuffer)) error {
	cmdBuffers := make([]vk.CommandBuffer, 1)
	res := vk.AllocateCommandBuffers(d.device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        d.commandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, cmdBuffers)
	if err := vk.Error(res); err != nil {
		return eris.Wrap(err, "vkAllocateCommandBuffers")
	}
	cmd := cmdBuffers[0]
	defer vk.FreeCommandBuffers(d.device, d.commandPool, 1, cmdBuffers)

	res = vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	if err := vk.Error(res); err != nil {
		return eris.Wrap(err, "vkBeginCommandBuffer")
	}
	record(cmd)
	if err := vk.Error(vk.EndCommandBuffer(cmd)); err != nil {
		return eris.Wrap(err, "vkEndCommandBuffer")
	}

	res = vk.QueueSubmit(d.queue, 1, []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    cmdBuffers,
	}}, vk.NullFence)
	if err := vk.Error(res); err != nil {
		return eris.Wrap(err, "vkQueueSubmit")
	}
	if err := vk.Error(vk.QueueWaitIdle(d.queue)); err != nil {
		return eris.Wrap(err, "vkQueueWaitIdle")
	}
	return nil
}

func (d *GraphicsDevice) DestroyBuffer(buf vk.Buffer) {
	vk.DestroyBuffer(d.device, buf, nil)
}

func (d *GraphicsDevice) FreeMemory(mem vk.DeviceMemory) {
	vk.FreeMemory(d.device, mem, nil)
}

// WaitIdle blocks until the device finishes all pending work.
func (d *GraphicsDevice) WaitIdle() {
	if d.device != vk.NullDevice {
		vk.DeviceWaitIdle(d.device)
	}
}

// Destroy tears down the command pool, device and instance. Buffers must be
// freed before calling this.
func (d *GraphicsDevice) Destroy() {
	if d.commandPool != vk.NullCommandPool {
		vk.DestroyCommandPool(d.device, d.commandPool, nil)
		d.commandPool = vk.NullCommandPool
	}
	if d.device != vk.NullDevice {
		vk.DestroyDevice(d.device, nil)
		d.device = vk.NullDevice
	}
	if d.instance != vk.NullInstance {
		vk.DestroyInstance(d.instance, nil)
		d.instance = vk.NullInstance
	}
}

func safeString(s string) string {
	if len(s) == 0 {
		return "\x00"
	}
	if s[len(s)-1] != '\x00' {
		return s + "\x00"
	}
	return s
}

func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = safeString(s)
	}
	return out
}

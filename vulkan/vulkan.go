// Package vulkan binds the generic buffer manager to the Vulkan device
// boundary. A Pair couples a buffer handle with its backing device memory,
// and PairAllocator implements buffer.Allocator[Pair] on top of a small
// Device interface so the allocation logic stays testable without a GPU.
package vulkan

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/rotisserie/eris"
)

var (
	// ErrNoSuitableMemoryType is returned when the physical device offers
	// no memory type matching both the buffer's requirements and the
	// requested property flags.
	ErrNoSuitableMemoryType = eris.New("no suitable device memory type")

	// ErrDeviceOperationFailed wraps non-success Vulkan result codes.
	ErrDeviceOperationFailed = eris.New("device operation failed")
)

// Pair couples a Vulkan buffer with the device memory bound to it. The two
// are created together and destroyed together.
type Pair struct {
	Buffer vk.Buffer
	Memory vk.DeviceMemory
}

// ImagePair couples a Vulkan image with the device memory bound to it, under
// the same created-together, destroyed-together rule as Pair.
type ImagePair struct {
	Image  vk.Image
	Memory vk.DeviceMemory
}

// Device is the slice of a Vulkan logical device the allocator needs.
// GraphicsDevice implements it against a real device; tests substitute a
// recording fake.
type Device interface {
	// CreateBuffer creates an unbound buffer handle.
	CreateBuffer(size uint64, usage vk.BufferUsageFlags) (vk.Buffer, error)

	// BufferMemoryRequirements reports the allocation size and the memory
	// type bits the buffer accepts.
	BufferMemoryRequirements(buf vk.Buffer) (size uint64, memoryTypeBits uint32)

	// MemoryTypes lists the physical device's memory types in index order.
	MemoryTypes() []vk.MemoryType

	// AllocateMemory allocates device memory from the given type index.
	AllocateMemory(size uint64, typeIndex uint32) (vk.DeviceMemory, error)

	// BindBufferMemory binds memory to a buffer at offset zero.
	BindBufferMemory(buf vk.Buffer, mem vk.DeviceMemory) error

	// MapCopyUnmap maps host-visible memory, copies data in and unmaps.
	MapCopyUnmap(mem vk.DeviceMemory, data []byte) error

	// SubmitCopy records a buffer-to-buffer copy into a one-shot command
	// buffer, submits it and blocks until the queue is idle.
	SubmitCopy(src, dst vk.Buffer, size uint64) error

	// CreateImage creates an unbound 2D image handle with optimal tiling.
	CreateImage(width, height uint32, format vk.Format, usage vk.ImageUsageFlags) (vk.Image, error)

	// ImageMemoryRequirements reports the allocation size and the memory
	// type bits the image accepts.
	ImageMemoryRequirements(img vk.Image) (size uint64, memoryTypeBits uint32)

	// BindImageMemory binds memory to an image at offset zero.
	BindImageMemory(img vk.Image, mem vk.DeviceMemory) error

	// SubmitCopyToImage transitions dst into the transfer layout, copies
	// src into it and transitions it into the shader-read layout, all in
	// one one-shot command buffer.
	SubmitCopyToImage(src vk.Buffer, dst vk.Image, width, height uint32) error

	// DestroyBuffer destroys a buffer handle.
	DestroyBuffer(buf vk.Buffer)

	// DestroyImage destroys an image handle.
	DestroyImage(img vk.Image)

	// FreeMemory frees device memory.
	FreeMemory(mem vk.DeviceMemory)
}

// findMemoryTypeIndex picks the first memory type allowed by typeBits that
// carries every requested property flag.
func findMemoryTypeIndex(types []vk.MemoryType, typeBits uint32, props vk.MemoryPropertyFlags) (uint32, error) {
	for i, mt := range types {
		if typeBits&(1<<uint32(i)) == 0 {
			continue
		}
		if mt.PropertyFlags&props == props {
			return uint32(i), nil
		}
	}
	return 0, eris.Wrapf(ErrNoSuitableMemoryType, "type bits 0x%x props 0x%x", typeBits, props)
}

package vulkan

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/rotisserie/eris"

	"github.com/lodestar-engine/lodestar/buffer"
)

// PairAllocator implements buffer.Allocator[Pair] against a Device. Every
// allocation creates a buffer, finds a compatible memory type, allocates and
// binds memory; a failure at any step unwinds what was already created.
type PairAllocator struct {
	device Device
}

var (
	_ buffer.Allocator[Pair]                 = (*PairAllocator)(nil)
	_ buffer.ImageAllocator[Pair, ImagePair] = (*PairAllocator)(nil)
)

func NewPairAllocator(device Device) *PairAllocator {
	return &PairAllocator{device: device}
}

func (a *PairAllocator) Allocate(size uint64, usage buffer.Usage, props buffer.MemoryProps) (Pair, error) {
	buf, err := a.device.CreateBuffer(size, vk.BufferUsageFlags(usage))
	if err != nil {
		return Pair{}, eris.Wrap(err, "failed to create buffer")
	}

	allocSize, typeBits := a.device.BufferMemoryRequirements(buf)
	typeIndex, err := findMemoryTypeIndex(a.device.MemoryTypes(), typeBits, vk.MemoryPropertyFlags(props))
	if err != nil {
		a.device.DestroyBuffer(buf)
		return Pair{}, err
	}

	mem, err := a.device.AllocateMemory(allocSize, typeIndex)
	if err != nil {
		a.device.DestroyBuffer(buf)
		return Pair{}, eris.Wrap(err, "failed to allocate device memory")
	}

	if err := a.device.BindBufferMemory(buf, mem); err != nil {
		a.device.FreeMemory(mem)
		a.device.DestroyBuffer(buf)
		return Pair{}, eris.Wrap(err, "failed to bind buffer memory")
	}

	return Pair{Buffer: buf, Memory: mem}, nil
}

func (a *PairAllocator) Free(p Pair) {
	a.device.DestroyBuffer(p.Buffer)
	a.device.FreeMemory(p.Memory)
}

func (a *PairAllocator) CopyHostData(dst Pair, data []byte) error {
	return a.device.MapCopyUnmap(dst.Memory, data)
}

func (a *PairAllocator) CopyBuffer(src, dst Pair, size uint64) error {
	return a.device.SubmitCopy(src.Buffer, dst.Buffer, size)
}

// AllocateImage mirrors Allocate for images: create the handle, pick a
// memory type, allocate and bind, unwinding on any failure.
func (a *PairAllocator) AllocateImage(width, height uint32, format buffer.Format, usage buffer.Usage, props buffer.MemoryProps) (ImagePair, error) {
	img, err := a.device.CreateImage(width, height, vk.Format(format), vk.ImageUsageFlags(usage))
	if err != nil {
		return ImagePair{}, eris.Wrap(err, "failed to create image")
	}

	allocSize, typeBits := a.device.ImageMemoryRequirements(img)
	typeIndex, err := findMemoryTypeIndex(a.device.MemoryTypes(), typeBits, vk.MemoryPropertyFlags(props))
	if err != nil {
		a.device.DestroyImage(img)
		return ImagePair{}, err
	}

	mem, err := a.device.AllocateMemory(allocSize, typeIndex)
	if err != nil {
		a.device.DestroyImage(img)
		return ImagePair{}, eris.Wrap(err, "failed to allocate device memory")
	}

	if err := a.device.BindImageMemory(img, mem); err != nil {
		a.device.FreeMemory(mem)
		a.device.DestroyImage(img)
		return ImagePair{}, eris.Wrap(err, "failed to bind image memory")
	}

	return ImagePair{Image: img, Memory: mem}, nil
}

func (a *PairAllocator) FreeImage(p ImagePair) {
	a.device.DestroyImage(p.Image)
	a.device.FreeMemory(p.Memory)
}

func (a *PairAllocator) CopyToImage(src Pair, dst ImagePair, width, height uint32) error {
	return a.device.SubmitCopyToImage(src.Buffer, dst.Image, width, height)
}

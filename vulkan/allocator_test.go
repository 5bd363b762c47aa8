package vulkan

import (
	"testing"
	"unsafe"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"

	"github.com/lodestar-engine/lodestar/buffer"
)

const (
	hostVisibleCoherent = buffer.MemoryProps(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	deviceLocal         = buffer.MemoryProps(vk.MemoryPropertyDeviceLocalBit)
)

// fakeDevice fabricates distinct handles from a backing array and counts
// every create, destroy, allocate and free.
type fakeDevice struct {
	backing [64]byte
	next    int

	createdBuffers   int
	destroyedBuffers int
	createdImages    int
	destroyedImages  int
	allocatedMemory  int
	freedMemory      int

	memoryTypes  []vk.MemoryType
	bindErr      error
	bindImageErr error

	mapped      map[vk.DeviceMemory][]byte
	copies      [][2]vk.Buffer
	imageCopies []fakeImageCopy
}

type fakeImageCopy struct {
	src           vk.Buffer
	dst           vk.Image
	width, height uint32
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		memoryTypes: []vk.MemoryType{
			{PropertyFlags: vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)},
			{PropertyFlags: vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)},
		},
		mapped: map[vk.DeviceMemory][]byte{},
	}
}

func (d *fakeDevice) handle() unsafe.Pointer {
	p := unsafe.Pointer(&d.backing[d.next])
	d.next++
	return p
}

func (d *fakeDevice) CreateBuffer(size uint64, usage vk.BufferUsageFlags) (vk.Buffer, error) {
	d.createdBuffers++
	return vk.Buffer(d.handle()), nil
}

func (d *fakeDevice) BufferMemoryRequirements(vk.Buffer) (uint64, uint32) {
	return 256, 0b11
}

func (d *fakeDevice) MemoryTypes() []vk.MemoryType {
	return d.memoryTypes
}

func (d *fakeDevice) AllocateMemory(size uint64, typeIndex uint32) (vk.DeviceMemory, error) {
	d.allocatedMemory++
	return vk.DeviceMemory(d.handle()), nil
}

func (d *fakeDevice) BindBufferMemory(vk.Buffer, vk.DeviceMemory) error {
	return d.bindErr
}

func (d *fakeDevice) MapCopyUnmap(mem vk.DeviceMemory, data []byte) error {
	d.mapped[mem] = append([]byte(nil), data...)
	return nil
}

func (d *fakeDevice) SubmitCopy(src, dst vk.Buffer, size uint64) error {
	d.copies = append(d.copies, [2]vk.Buffer{src, dst})
	return nil
}

func (d *fakeDevice) CreateImage(width, height uint32, format vk.Format, usage vk.ImageUsageFlags) (vk.Image, error) {
	d.createdImages++
	return vk.Image(d.handle()), nil
}

func (d *fakeDevice) ImageMemoryRequirements(vk.Image) (uint64, uint32) {
	return 4096, 0b11
}

func (d *fakeDevice) BindImageMemory(vk.Image, vk.DeviceMemory) error {
	return d.bindImageErr
}

func (d *fakeDevice) SubmitCopyToImage(src vk.Buffer, dst vk.Image, width, height uint32) error {
	d.imageCopies = append(d.imageCopies, fakeImageCopy{src: src, dst: dst, width: width, height: height})
	return nil
}

func (d *fakeDevice) DestroyBuffer(vk.Buffer) {
	d.destroyedBuffers++
}

func (d *fakeDevice) DestroyImage(vk.Image) {
	d.destroyedImages++
}

func (d *fakeDevice) FreeMemory(vk.DeviceMemory) {
	d.freedMemory++
}

func TestAllocateBindsBufferAndMemory(t *testing.T) {
	dev := newFakeDevice()
	alloc := NewPairAllocator(dev)

	pair, err := alloc.Allocate(128, 0, hostVisibleCoherent)
	require.NoError(t, err)
	require.Equal(t, 1, dev.createdBuffers)
	require.Equal(t, 1, dev.allocatedMemory)

	payload := []byte{9, 8, 7}
	require.NoError(t, alloc.CopyHostData(pair, payload))
	require.Equal(t, payload, dev.mapped[pair.Memory])

	alloc.Free(pair)
	require.Equal(t, dev.createdBuffers, dev.destroyedBuffers)
	require.Equal(t, dev.allocatedMemory, dev.freedMemory)
}

func TestAllocateFailsWithoutSuitableMemoryType(t *testing.T) {
	dev := newFakeDevice()
	dev.memoryTypes = []vk.MemoryType{
		{PropertyFlags: vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)},
	}
	alloc := NewPairAllocator(dev)

	_, err := alloc.Allocate(128, 0, hostVisibleCoherent)
	require.ErrorIs(t, err, ErrNoSuitableMemoryType)
	// The created buffer must not leak when memory selection fails.
	require.Equal(t, dev.createdBuffers, dev.destroyedBuffers)
	require.Equal(t, 0, dev.allocatedMemory)
}

func TestAllocateUnwindsOnBindFailure(t *testing.T) {
	dev := newFakeDevice()
	dev.bindErr = eris.New("bind failed")
	alloc := NewPairAllocator(dev)

	_, err := alloc.Allocate(128, 0, deviceLocal)
	require.Error(t, err)
	require.Equal(t, dev.createdBuffers, dev.destroyedBuffers)
	require.Equal(t, dev.allocatedMemory, dev.freedMemory)
}

// The manager's replace-in-place semantics hold all the way down to device
// handle counts: after re-allocating a named slot, exactly one buffer has
// been destroyed, and after freeing it the counts balance.
func TestManagerReplaceBalancesDeviceCounts(t *testing.T) {
	dev := newFakeDevice()
	m := buffer.NewManager[Pair, string, string](NewPairAllocator(dev))

	_, err := m.AllocateStandard("vertices", 128, 0, deviceLocal)
	require.NoError(t, err)
	_, err = m.AllocateStandard("vertices", 256, 0, deviceLocal)
	require.NoError(t, err)
	require.Equal(t, dev.createdBuffers-1, dev.destroyedBuffers)

	require.NoError(t, m.FreeStandard("vertices"))
	require.Equal(t, dev.createdBuffers, dev.destroyedBuffers)
	require.Equal(t, dev.allocatedMemory, dev.freedMemory)
}

func TestAllocateImageBindsImageAndMemory(t *testing.T) {
	dev := newFakeDevice()
	alloc := NewPairAllocator(dev)

	pair, err := alloc.AllocateImage(16, 16, 0, 0, deviceLocal)
	require.NoError(t, err)
	require.Equal(t, 1, dev.createdImages)
	require.Equal(t, 1, dev.allocatedMemory)

	alloc.FreeImage(pair)
	require.Equal(t, dev.createdImages, dev.destroyedImages)
	require.Equal(t, dev.allocatedMemory, dev.freedMemory)
}

func TestAllocateImageUnwindsOnBindFailure(t *testing.T) {
	dev := newFakeDevice()
	dev.bindImageErr = eris.New("bind failed")
	alloc := NewPairAllocator(dev)

	_, err := alloc.AllocateImage(16, 16, 0, 0, deviceLocal)
	require.Error(t, err)
	require.Equal(t, dev.createdImages, dev.destroyedImages)
	require.Equal(t, dev.allocatedMemory, dev.freedMemory)
}

// Replacing a named texture destroys exactly one image; freeing it balances
// the device counts, the same contract the standard slots hold.
func TestTexturesReplaceBalancesDeviceCounts(t *testing.T) {
	dev := newFakeDevice()
	texs := buffer.NewTextures[Pair, ImagePair, string](NewPairAllocator(dev))

	_, err := texs.Allocate("bird", 8, 8, 0, 0, deviceLocal)
	require.NoError(t, err)
	_, err = texs.Allocate("bird", 16, 16, 0, 0, deviceLocal)
	require.NoError(t, err)
	require.Equal(t, dev.createdImages-1, dev.destroyedImages)

	require.NoError(t, texs.Free("bird"))
	require.Equal(t, dev.createdImages, dev.destroyedImages)
	require.Equal(t, dev.allocatedMemory, dev.freedMemory)
}

func TestTexturesCopyReachesDevice(t *testing.T) {
	dev := newFakeDevice()
	alloc := NewPairAllocator(dev)
	texs := buffer.NewTextures[Pair, ImagePair, string](alloc)

	src, err := alloc.Allocate(64, 0, hostVisibleCoherent)
	require.NoError(t, err)
	img, err := texs.Allocate("bird", 4, 2, 0, 0, deviceLocal)
	require.NoError(t, err)

	require.NoError(t, texs.CopyFrom(src, "bird"))
	require.Equal(t, []fakeImageCopy{{src: src.Buffer, dst: img.Image, width: 4, height: 2}}, dev.imageCopies)
}

func TestManagerCopyReachesDevice(t *testing.T) {
	dev := newFakeDevice()
	m := buffer.NewManager[Pair, string, string](NewPairAllocator(dev))

	src, err := m.AllocateTemp(64, 0, hostVisibleCoherent)
	require.NoError(t, err)
	dst, err := m.AllocateStandard("vertices", 64, 0, deviceLocal)
	require.NoError(t, err)

	require.NoError(t, m.Copy(m.TempSlot(), m.StandardSlot("vertices"), 64))
	require.Equal(t, [][2]vk.Buffer{{src.Buffer, dst.Buffer}}, dev.copies)

	m.FreeAll()
	require.Equal(t, dev.createdBuffers, dev.destroyedBuffers)
}

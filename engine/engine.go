// Package engine owns the rendering side of a running game: the Vulkan
// device and the managers tracking every GPU buffer and texture the game
// uses.
// An Engine is registered as a World resource by a startup system so frame
// systems can upload geometry and uniforms.
package engine

import (
	"github.com/rs/zerolog"
	vk "github.com/vulkan-go/vulkan"

	"github.com/rotisserie/eris"

	"github.com/lodestar-engine/lodestar/buffer"
	"github.com/lodestar-engine/lodestar/vulkan"
)

// StandardBuffer names the long-lived device-local buffers.
type StandardBuffer int

const (
	Vertices StandardBuffer = iota
	Indices
	GuiVertices
	GuiIndices
)

func (s StandardBuffer) String() string {
	switch s {
	case Vertices:
		return "vertices"
	case Indices:
		return "indices"
	case GuiVertices:
		return "gui_vertices"
	case GuiIndices:
		return "gui_indices"
	default:
		return "unknown"
	}
}

// UniformBuffer names the per-frame host-visible uniform buffer lists.
type UniformBuffer int

const (
	ModelViewProjection UniformBuffer = iota
	Sporadic
)

func (u UniformBuffer) String() string {
	switch u {
	case ModelViewProjection:
		return "model_view_projection"
	case Sporadic:
		return "sporadic"
	default:
		return "unknown"
	}
}

// Texture names the sampled images the engine tracks.
type Texture int

const (
	Bird Texture = iota
	Depth
)

func (t Texture) String() string {
	switch t {
	case Bird:
		return "bird"
	case Depth:
		return "depth"
	default:
		return "unknown"
	}
}

// BufferManager is the buffer manager specialization the engine runs on.
type BufferManager = buffer.Manager[vulkan.Pair, StandardBuffer, UniformBuffer]

// TextureManager is the texture manager specialization the engine runs on.
type TextureManager = buffer.Textures[vulkan.Pair, vulkan.ImagePair, Texture]

// Engine couples a device with the managers tracking its buffers and
// textures.
type Engine struct {
	device   vulkan.Device
	buffers  *BufferManager
	textures *TextureManager
	logger   zerolog.Logger
}

func New(device vulkan.Device, logger zerolog.Logger) *Engine {
	alloc := vulkan.NewPairAllocator(device)
	return &Engine{
		device:   device,
		buffers:  buffer.NewManager[vulkan.Pair, StandardBuffer, UniformBuffer](alloc),
		textures: buffer.NewTextures[vulkan.Pair, vulkan.ImagePair, Texture](alloc),
		logger:   logger,
	}
}

// Buffers exposes the buffer manager for systems that need slot-level
// control.
func (e *Engine) Buffers() *BufferManager {
	return e.buffers
}

// Textures exposes the texture manager.
func (e *Engine) Textures() *TextureManager {
	return e.textures
}

func usageFor(name StandardBuffer) buffer.Usage {
	switch name {
	case Indices, GuiIndices:
		return buffer.Usage(vk.BufferUsageIndexBufferBit)
	default:
		return buffer.Usage(vk.BufferUsageVertexBufferBit)
	}
}

// UploadStandard moves data into a device-local buffer under name through
// the temp staging buffer: stage on the host, copy on the device, then drop
// the staging buffer. Re-uploading a name replaces its buffer.
func (e *Engine) UploadStandard(name StandardBuffer, data []byte) error {
	size := uint64(len(data))
	if size == 0 {
		return eris.Errorf("refusing to upload empty buffer %s", name)
	}

	_, err := e.buffers.AllocateTemp(size,
		buffer.Usage(vk.BufferUsageTransferSrcBit),
		buffer.MemoryProps(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return err
	}
	defer e.buffers.FreeTemp()

	if err := e.buffers.CopyHostData(e.buffers.TempSlot(), data); err != nil {
		return err
	}

	_, err = e.buffers.AllocateStandard(name, size,
		buffer.Usage(vk.BufferUsageTransferDstBit)|usageFor(name),
		buffer.MemoryProps(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return err
	}

	if err := e.buffers.Copy(e.buffers.TempSlot(), e.buffers.StandardSlot(name), size); err != nil {
		return err
	}
	e.logger.Debug().Stringer("buffer", name).Uint64("size", size).Msg("uploaded standard buffer")
	return nil
}

// UploadTexture moves pixels into a device-local sampled image under name
// through the temp staging buffer. Pixels are tightly packed 8-bit RGBA, so
// their length must be width*height*4. Re-uploading a name replaces its
// image.
func (e *Engine) UploadTexture(name Texture, pixels []byte, width, height uint32) error {
	size := uint64(len(pixels))
	if size == 0 || size != uint64(width)*uint64(height)*4 {
		return eris.Errorf("texture %s pixels do not match a %dx%d rgba extent", name, width, height)
	}

	_, err := e.buffers.AllocateTemp(size,
		buffer.Usage(vk.BufferUsageTransferSrcBit),
		buffer.MemoryProps(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return err
	}
	defer e.buffers.FreeTemp()

	if err := e.buffers.CopyHostData(e.buffers.TempSlot(), pixels); err != nil {
		return err
	}

	_, err = e.textures.Allocate(name, width, height,
		buffer.Format(vk.FormatR8g8b8a8Unorm),
		buffer.Usage(vk.ImageUsageTransferDstBit|vk.ImageUsageSampledBit),
		buffer.MemoryProps(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return err
	}

	src, err := e.buffers.TempBuffer()
	if err != nil {
		return err
	}
	if err := e.textures.CopyFrom(src, name); err != nil {
		return err
	}
	e.logger.Debug().Stringer("texture", name).
		Uint32("width", width).Uint32("height", height).Msg("uploaded texture")
	return nil
}

// CreateUniforms allocates one host-visible uniform buffer per in-flight
// frame under name.
func (e *Engine) CreateUniforms(name UniformBuffer, size uint64, framesInFlight int) error {
	for i := 0; i < framesInFlight; i++ {
		_, err := e.buffers.AllocateUniform(name, size,
			buffer.Usage(vk.BufferUsageUniformBufferBit),
			buffer.MemoryProps(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
		if err != nil {
			return err
		}
	}
	e.logger.Debug().Stringer("buffer", name).Int("frames", framesInFlight).Msg("created uniform buffers")
	return nil
}

// WriteUniform writes data into frame's buffer under name. Uniform buffers
// are host-visible, so this is a direct mapped copy.
func (e *Engine) WriteUniform(name UniformBuffer, frame int, data []byte) error {
	return e.buffers.CopyHostData(e.buffers.UniformSlot(name, frame), data)
}

// Destroy frees every tracked buffer and texture. The device itself outlives
// the engine and is torn down by its owner.
func (e *Engine) Destroy() {
	e.buffers.FreeAll()
	e.textures.FreeAll()
	e.logger.Info().Msg("engine buffers freed")
}

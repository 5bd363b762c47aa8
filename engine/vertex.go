package engine

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// Vertex is the interleaved vertex layout the demo pipeline consumes.
type Vertex struct {
	Pos      [3]float32
	Color    [3]float32
	TexCoord [2]float32
}

// VertexSize is the stride of one Vertex in bytes.
const VertexSize = int(unsafe.Sizeof(Vertex{}))

// VertexBytes reinterprets a vertex slice as raw bytes for upload.
func VertexBytes(verts []Vertex) []byte {
	if len(verts) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&verts[0])), len(verts)*VertexSize)
}

// IndexBytes reinterprets an index slice as raw bytes for upload.
func IndexBytes(indices []uint32) []byte {
	if len(indices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&indices[0])), len(indices)*4)
}

// BindingDescription describes the single interleaved vertex binding.
func BindingDescription() vk.VertexInputBindingDescription {
	return vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    uint32(VertexSize),
		InputRate: vk.VertexInputRateVertex,
	}
}

// AttributeDescriptions describes position, color and texture coordinate
// attributes at locations 0 through 2.
func AttributeDescriptions() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   vk.FormatR32g32b32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.Pos)),
		},
		{
			Binding:  0,
			Location: 1,
			Format:   vk.FormatR32g32b32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.Color)),
		},
		{
			Binding:  0,
			Location: 2,
			Format:   vk.FormatR32g32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.TexCoord)),
		},
	}
}

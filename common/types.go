// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"encoding/binary"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
)

// VertexStride is the packed size of a Vertex in bytes.
const VertexStride = 60

// TextureStagingData holds RGBA pixel data for a texture binding pending GPU upload.
// This is primarily used in the BindGroupProvider to stage texture data before creating the GPU texture and bind group.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// SolidTexture returns 1x1 staging data filled with a single RGBA color.
func SolidTexture(r, g, b, a uint8) TextureStagingData {
	return TextureStagingData{Pixels: []byte{r, g, b, a}, Width: 1, Height: 1}
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// Zero fields fall back to linear filtering with repeat addressing.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range.
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail.
	LodMinClamp, LodMaxClamp float32
	// Compare specifies the comparison function for comparison samplers.
	Compare wgpu.CompareFunction
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}

// Vertex is the vertex format consumed by the object3D pipeline.
// Packed layout (60 bytes): position, normal, uv, tangent, color.
type Vertex struct {
	Position [3]float32 // offset  0
	Normal   [3]float32 // offset 12
	UV       [2]float32 // offset 24
	Tangent  [3]float32 // offset 32
	Color    [4]float32 // offset 44
}

// Marshal packs the vertex into its 60-byte little-endian GPU layout.
//
// Returns:
//   - []byte: the packed vertex
func (v *Vertex) Marshal() []byte {
	buf := make([]byte, VertexStride)
	v.put(buf)
	return buf
}

func (v *Vertex) put(buf []byte) {
	off := 0
	put := func(f float32) {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(f))
		off += 4
	}
	for _, f := range v.Position {
		put(f)
	}
	for _, f := range v.Normal {
		put(f)
	}
	for _, f := range v.UV {
		put(f)
	}
	for _, f := range v.Tangent {
		put(f)
	}
	for _, f := range v.Color {
		put(f)
	}
}

// Mesh is an indexed triangle list with an optional diffuse map reference.
// Loading DiffuseMap from disk is left to the caller.
type Mesh struct {
	Vertices   []Vertex
	Indices    []uint32
	DiffuseMap string
}

// VertexData packs every vertex into one contiguous buffer.
//
// Returns:
//   - []byte: len(Vertices) * VertexStride bytes
func (m *Mesh) VertexData() []byte {
	buf := make([]byte, len(m.Vertices)*VertexStride)
	for i := range m.Vertices {
		m.Vertices[i].put(buf[i*VertexStride:])
	}
	return buf
}

// IndexData packs the indices as little-endian uint32 values.
//
// Returns:
//   - []byte: len(Indices) * 4 bytes
func (m *Mesh) IndexData() []byte {
	buf := make([]byte, len(m.Indices)*4)
	for i, idx := range m.Indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

package model

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-mesh/engine/mesh"
)

// Submesh locates one scene node's geometry inside a Model's combined buffers.
type Submesh struct {
	// Name is the scene node name.
	Name string

	// BaseVertex is the offset of the submesh's first vertex in the combined vertex buffer.
	BaseVertex int

	// VertexCount is the number of vertices the submesh contributed.
	VertexCount int

	// FirstIndex is the offset of the submesh's first index in the combined index buffer.
	FirstIndex int

	// IndexCount is the number of indices the submesh contributed.
	IndexCount int
}

// GPUVertex is the GPU-aligned representation of a single mesh vertex.
// Size: 32 bytes (no padding required).
type GPUVertex struct {
	Position [3]float32 // offset  0: vertex position (12 bytes)
	Normal   [3]float32 // offset 12: vertex normal (12 bytes)
	TexCoord [2]float32 // offset 24: UV texture coordinate (8 bytes)
}

// NewGPUVertex converts a built mesh vertex to its GPU layout.
//
// Parameters:
//   - v: the mesh vertex
//
// Returns:
//   - GPUVertex: the GPU vertex
func NewGPUVertex(v mesh.Vertex) GPUVertex {
	return GPUVertex{
		Position: v.Position,
		Normal:   v.Normal,
		TexCoord: v.TexCoord,
	}
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte little-endian buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Position[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.Normal[0]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Normal[1]))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Normal[2]))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.TexCoord[0]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.TexCoord[1]))
	return buf
}

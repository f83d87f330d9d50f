package renderer

import (
	"github.com/Carmen-Shannon/oxy-mesh/common"
	"github.com/Carmen-Shannon/oxy-mesh/engine/model"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based backend.
	BackendTypeWGPU RendererBackendType = iota
)

// copyAlignment is the byte alignment WebGPU requires for buffer sizes written through the queue.
const copyAlignment = 4

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}

// vertexBufferData serializes GPU vertices into the vertex buffer layout.
//
// Parameters:
//   - vertices: the GPU vertices
//
// Returns:
//   - []byte: the tightly packed vertex data
func vertexBufferData(vertices []model.GPUVertex) []byte {
	var layout model.GPUVertex
	out := make([]byte, 0, len(vertices)*layout.Size())
	for _, v := range vertices {
		out = append(out, v.Marshal()...)
	}
	return out
}

// indexBufferData serializes 16-bit indices and zero-pads the result to the copy alignment.
// An odd index count leaves one trailing uint16 of padding that is never drawn.
//
// Parameters:
//   - indices: the indices
//
// Returns:
//   - []byte: the padded index data
func indexBufferData(indices []uint16) []byte {
	data := common.SliceToBytes(indices)
	padded := make([]byte, common.AlignUp(len(data), copyAlignment))
	copy(padded, data)
	return padded
}

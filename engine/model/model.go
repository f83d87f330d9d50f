package model

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-mesh/common"
	"github.com/Carmen-Shannon/oxy-mesh/engine/mesh"
	"github.com/go-gl/mathgl/mgl32"
)

// model is the implementation of the Model interface.
type model struct {
	name        string
	vertices    []mesh.Vertex
	indices     []uint16
	texturePath string
	submeshes   []Submesh
	materials   []common.ImportedMaterial
	indexMode   mesh.IndexMode
}

// Model defines the interface for a loaded, flattened scene mesh.
// A Model is an immutable snapshot: it is fully populated by NewModel and every getter
// returns a copy, so callers can never mutate the loader's cached data.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Vertices returns the combined, deduplicated vertex buffer.
	//
	// Returns:
	//   - []mesh.Vertex: a copy of the vertices
	Vertices() []mesh.Vertex

	// Indices returns the combined 16-bit index buffer.
	//
	// Returns:
	//   - []uint16: a copy of the indices
	Indices() []uint16

	// TexturePath returns the diffuse texture path of the last material in traversal order that binds one.
	//
	// Returns:
	//   - string: the texture path, empty if no diffuse texture is bound
	TexturePath() string

	// Submeshes returns the per-node ranges inside the combined buffers, in traversal order.
	//
	// Returns:
	//   - []Submesh: a copy of the submesh table
	Submeshes() []Submesh

	// Materials returns every material encountered during traversal.
	//
	// Returns:
	//   - []common.ImportedMaterial: a copy of the materials
	Materials() []common.ImportedMaterial

	// IndexMode reports which index mode built the index buffer.
	//
	// Returns:
	//   - mesh.IndexMode: the index mode
	IndexMode() mesh.IndexMode

	// VertexCount returns the number of vertices.
	//
	// Returns:
	//   - int: the vertex count
	VertexCount() int

	// IndexCount returns the number of indices.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// GPUVertices converts the vertex buffer to its GPU layout.
	//
	// Returns:
	//   - []GPUVertex: the GPU vertices
	GPUVertices() []GPUVertex

	// Bounds returns the axis-aligned bounding box of the vertex positions.
	//
	// Returns:
	//   - mgl32.Vec3: the minimum corner
	//   - mgl32.Vec3: the maximum corner
	Bounds() (mgl32.Vec3, mgl32.Vec3)
}

var _ Model = &model{}

// NewModel creates a new Model instance with the specified options applied.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Vertices() []mesh.Vertex {
	return slices.Clone(m.vertices)
}

func (m *model) Indices() []uint16 {
	return slices.Clone(m.indices)
}

func (m *model) TexturePath() string {
	return m.texturePath
}

func (m *model) Submeshes() []Submesh {
	return slices.Clone(m.submeshes)
}

func (m *model) Materials() []common.ImportedMaterial {
	return slices.Clone(m.materials)
}

func (m *model) IndexMode() mesh.IndexMode {
	return m.indexMode
}

func (m *model) VertexCount() int {
	return len(m.vertices)
}

func (m *model) IndexCount() int {
	return len(m.indices)
}

func (m *model) GPUVertices() []GPUVertex {
	out := make([]GPUVertex, len(m.vertices))
	for i, v := range m.vertices {
		out[i] = NewGPUVertex(v)
	}
	return out
}

func (m *model) Bounds() (mgl32.Vec3, mgl32.Vec3) {
	points := make([]mgl32.Vec3, len(m.vertices))
	for i, v := range m.vertices {
		points[i] = v.Position
	}
	return common.Bounds(points)
}

package model

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-mesh/common"
	"github.com/Carmen-Shannon/oxy-mesh/engine/mesh"
)

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
// Slice arguments are copied so the caller keeps ownership of its buffers.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithVertices is an option builder that sets the combined vertex buffer of the Model.
//
// Parameters:
//   - vertices: the deduplicated vertices
//
// Returns:
//   - ModelBuilderOption: a function that applies the vertices option to a model
func WithVertices(vertices []mesh.Vertex) ModelBuilderOption {
	return func(m *model) {
		m.vertices = slices.Clone(vertices)
	}
}

// WithIndices is an option builder that sets the combined 16-bit index buffer of the Model.
//
// Parameters:
//   - indices: the indices
//
// Returns:
//   - ModelBuilderOption: a function that applies the indices option to a model
func WithIndices(indices []uint16) ModelBuilderOption {
	return func(m *model) {
		m.indices = slices.Clone(indices)
	}
}

// WithTexturePath is an option builder that sets the diffuse texture path of the Model.
//
// Parameters:
//   - path: the texture path
//
// Returns:
//   - ModelBuilderOption: a function that applies the texture path option to a model
func WithTexturePath(path string) ModelBuilderOption {
	return func(m *model) {
		m.texturePath = path
	}
}

// WithSubmeshes is an option builder that sets the per-node submesh table of the Model.
//
// Parameters:
//   - submeshes: the submesh ranges
//
// Returns:
//   - ModelBuilderOption: a function that applies the submeshes option to a model
func WithSubmeshes(submeshes []Submesh) ModelBuilderOption {
	return func(m *model) {
		m.submeshes = slices.Clone(submeshes)
	}
}

// WithMaterials is an option builder that sets the materials encountered while loading the Model.
//
// Parameters:
//   - materials: the imported materials
//
// Returns:
//   - ModelBuilderOption: a function that applies the materials option to a model
func WithMaterials(materials []common.ImportedMaterial) ModelBuilderOption {
	return func(m *model) {
		m.materials = slices.Clone(materials)
	}
}

// WithIndexMode is an option builder that records the index mode that produced the indices.
//
// Parameters:
//   - mode: the index mode
//
// Returns:
//   - ModelBuilderOption: a function that applies the index mode option to a model
func WithIndexMode(mode mesh.IndexMode) ModelBuilderOption {
	return func(m *model) {
		m.indexMode = mode
	}
}

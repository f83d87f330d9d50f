package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-mesh/common"
	"github.com/Carmen-Shannon/oxy-mesh/engine/mesh"
	"github.com/Carmen-Shannon/oxy-mesh/engine/model"
	"github.com/Carmen-Shannon/oxy-mesh/engine/scene"
)

// defaultSources returns the scene source registered for each detected format.
func defaultSources() map[scene.Format]scene.Source {
	gltfSource := scene.NewGLTFSource()
	return map[scene.Format]scene.Source{
		scene.FormatGLB:  gltfSource,
		scene.FormatGLTF: gltfSource,
		scene.FormatOBJ:  scene.NewOBJSource(),
	}
}

// meshAccumulator collects the per-node build results of one load. It is owned by a single
// Load call and passed to the scene traversal as its visitor.
type meshAccumulator struct {
	name    string
	builder mesh.IndexedMeshBuilder
	uvSet   string

	vertices    []mesh.Vertex
	indices     []uint32
	submeshes   []model.Submesh
	materials   []common.ImportedMaterial
	texturePath string
}

func newMeshAccumulator(name string, builder mesh.IndexedMeshBuilder, uvSet string) *meshAccumulator {
	return &meshAccumulator{
		name:    name,
		builder: builder,
		uvSet:   uvSet,
	}
}

// visit builds one node and appends it to the combined buffers.
// Materials are applied in traversal order, so the last bound diffuse texture wins.
//
// Parameters:
//   - node: the node mesh, nil for material-only nodes
//   - materials: the materials bound to the node
//
// Returns:
//   - error: ErrIndexOutOfRange or ErrSourceOrderMismatch (wrapped) if the built indices do not
//     address the node's vertices
func (a *meshAccumulator) visit(node *scene.NodeMesh, materials []scene.Material) error {
	if node != nil {
		if err := a.appendNode(node); err != nil {
			return err
		}
	}

	for _, mat := range materials {
		path, ok := scene.DiffuseTexturePath(mat)
		a.materials = append(a.materials, common.ImportedMaterial{Name: mat.Name, DiffuseTexturePath: path})
		if ok {
			a.texturePath = path
		}
	}
	return nil
}

func (a *meshAccumulator) appendNode(node *scene.NodeMesh) error {
	uvSet := a.uvSet
	if uvSet == "" {
		uvSet = node.DefaultUVSet()
	}

	result := a.builder.Build(node.Polygons, node.ControlPoint, uvSet)
	if err := result.Validate(); err != nil {
		return fmt.Errorf("node %q built in %s mode: %w", node.Name, result.Mode, err)
	}

	// Reindex: offset each index by the running vertex count across nodes
	base := len(a.vertices)
	first := len(a.indices)
	for _, idx := range result.Indices {
		a.indices = append(a.indices, idx+uint32(base))
	}
	a.vertices = append(a.vertices, result.Vertices...)

	a.submeshes = append(a.submeshes, model.Submesh{
		Name:        node.Name,
		BaseVertex:  base,
		VertexCount: len(result.Vertices),
		FirstIndex:  first,
		IndexCount:  len(result.Indices),
	})
	return nil
}

// model narrows the combined indices and freezes the accumulated data into a Model.
//
// Returns:
//   - model.Model: the flattened model
//   - error: ErrIndexOverflow (wrapped) if the combined mesh does not fit 16-bit indices
func (a *meshAccumulator) model() (model.Model, error) {
	combined := mesh.MeshBuildResult{
		Vertices: a.vertices,
		Indices:  a.indices,
		Mode:     a.builder.Mode(),
	}
	indices, err := combined.Indices16()
	if err != nil {
		return nil, err
	}

	return model.NewModel(
		model.WithName(a.name),
		model.WithVertices(a.vertices),
		model.WithIndices(indices),
		model.WithTexturePath(a.texturePath),
		model.WithSubmeshes(a.submeshes),
		model.WithMaterials(a.materials),
		model.WithIndexMode(combined.Mode),
	), nil
}

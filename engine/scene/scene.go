package scene

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-mesh/engine/mesh"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrNotFound is returned when the scene file does not exist.
	ErrNotFound = errors.New("scene file not found")

	// ErrUnsupportedFormat is returned when the file is readable but uses features or a format no source handles.
	ErrUnsupportedFormat = errors.New("unsupported scene format")

	// ErrCorruptFile is returned when the file claims a supported format but cannot be decoded.
	ErrCorruptFile = errors.New("corrupt scene file")
)

// NodeVisitor is invoked once for every node that owns mesh or material data.
// nodeMesh is nil for nodes that only carry materials. Returning an error stops the traversal.
type NodeVisitor func(nodeMesh *NodeMesh, materials []Material) error

// Source opens scene files of one format.
type Source interface {
	// Open reads the scene at path and prepares it for traversal. All geometry handed to
	// visitors is normalized to the target convention.
	//
	// Parameters:
	//   - path: the file path to the scene file
	//   - target: the axis system and unit every mesh is converted to
	//
	// Returns:
	//   - Scene: the opened scene, which must be closed by the caller
	//   - error: ErrNotFound, ErrUnsupportedFormat or ErrCorruptFile (wrapped) if opening fails
	Open(path string, target Convention) (Scene, error)
}

// Scene is an opened scene file.
type Scene interface {
	// ForEachMeshNode walks the node hierarchy depth-first in a deterministic order and calls
	// visit for every node owning mesh or material data.
	//
	// Parameters:
	//   - visit: the visitor invoked per node
	//
	// Returns:
	//   - error: the first error returned by visit or raised while decoding a node
	ForEachMeshNode(visit NodeVisitor) error

	// Close releases the scene. Calling Close more than once is a no-op.
	//
	// Returns:
	//   - error: error if releasing fails
	Close() error
}

// NodeMesh is the polygon data owned by one scene node.
type NodeMesh struct {
	// Name is the node name.
	Name string

	// ControlPoints are the unique positions referenced by polygon corners.
	ControlPoints []mgl32.Vec3

	// Polygons are the node's polygons in file order.
	Polygons []mesh.Polygon

	// UVSetNames lists the UV sets present on the mesh, in a stable order.
	UVSetNames []string
}

// ControlPoint resolves a control-point index to its position. It satisfies mesh.ControlPointLookup.
//
// Parameters:
//   - index: the source control-point index
//
// Returns:
//   - mgl32.Vec3: the position, or the origin for an out-of-range index
func (n *NodeMesh) ControlPoint(index int) mgl32.Vec3 {
	if index < 0 || index >= len(n.ControlPoints) {
		return mgl32.Vec3{}
	}
	return n.ControlPoints[index]
}

// DefaultUVSet returns the first UV set name, or "" when the mesh has none.
func (n *NodeMesh) DefaultUVSet() string {
	if len(n.UVSetNames) == 0 {
		return ""
	}
	return n.UVSetNames[0]
}

// Material is a material bound to a node.
type Material struct {
	// Name is the material identifier.
	Name string

	// DiffuseTextures are the file textures bound to the diffuse channel, in binding order.
	DiffuseTextures []string
}

// DiffuseTexturePath resolves the diffuse file texture of a material. Layered diffuse stacks are
// not supported: when several textures are bound, the last one is returned.
//
// Parameters:
//   - mat: the material to inspect
//
// Returns:
//   - string: the texture path
//   - bool: false if no non-empty diffuse file texture is bound
func DiffuseTexturePath(mat Material) (string, bool) {
	path := ""
	for _, tex := range mat.DiffuseTextures {
		if tex != "" {
			path = tex
		}
	}
	return path, path != ""
}

package scene

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-mesh/common"
	"github.com/Carmen-Shannon/oxy-mesh/engine/mesh"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

const gltfTexCoordPrefix = "TEXCOORD_"

// gltfSourceImpl is the Source implementation for glTF and GLB files.
type gltfSourceImpl struct{}

// gltfSceneImpl is an opened glTF document.
type gltfSceneImpl struct {
	doc    *gltf.Document
	dir    string
	target Convention
}

var _ Source = &gltfSourceImpl{}
var _ Scene = &gltfSceneImpl{}

// NewGLTFSource creates a Source for glTF (JSON) and GLB (binary) files.
// Decoding is delegated to github.com/qmuntal/gltf, which detects JSON versus binary by content.
//
// Returns:
//   - Source: the glTF scene source
func NewGLTFSource() Source {
	return &gltfSourceImpl{}
}

func (s *gltfSourceImpl) Open(path string, target Convention) (Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w: %v", path, ErrCorruptFile, err)
	}

	return &gltfSceneImpl{
		doc:    doc,
		dir:    filepath.Dir(path),
		target: target,
	}, nil
}

func (sc *gltfSceneImpl) ForEachMeshNode(visit NodeVisitor) error {
	if sc.doc == nil {
		return fmt.Errorf("scene is closed")
	}

	visited := make(map[int]bool, len(sc.doc.Nodes))
	for _, root := range sc.roots() {
		if err := sc.visitNode(root, visited, visit); err != nil {
			return err
		}
	}
	return nil
}

func (sc *gltfSceneImpl) Close() error {
	sc.doc = nil
	return nil
}

// roots returns the root node indices: the default scene, else the first scene, else every parentless node.
func (sc *gltfSceneImpl) roots() []int {
	doc := sc.doc
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	if len(doc.Scenes) > 0 {
		return doc.Scenes[0].Nodes
	}

	isChild := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			isChild[c] = true
		}
	}

	var roots []int
	for i := range doc.Nodes {
		if !isChild[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// visitNode performs the depth-first walk. Nodes reachable twice are visited once.
func (sc *gltfSceneImpl) visitNode(index int, visited map[int]bool, visit NodeVisitor) error {
	if index < 0 || index >= len(sc.doc.Nodes) {
		return fmt.Errorf("node %d out of range: %w", index, ErrCorruptFile)
	}
	if visited[index] {
		return nil
	}
	visited[index] = true

	node := sc.doc.Nodes[index]
	if node.Mesh != nil {
		nodeMesh, materials, err := sc.extractMesh(node.Name, *node.Mesh)
		if err != nil {
			return fmt.Errorf("node %d (%s): %w", index, node.Name, err)
		}
		Normalize(nodeMesh, ConventionGLTF, sc.target)
		if err := visit(nodeMesh, materials); err != nil {
			return err
		}
	}

	for _, child := range node.Children {
		if err := sc.visitNode(child, visited, visit); err != nil {
			return err
		}
	}
	return nil
}

// extractMesh concatenates every primitive of a mesh into one control-point list and triangle soup.
func (sc *gltfSceneImpl) extractMesh(nodeName string, meshIndex int) (*NodeMesh, []Material, error) {
	doc := sc.doc
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return nil, nil, fmt.Errorf("mesh %d out of range: %w", meshIndex, ErrCorruptFile)
	}

	m := doc.Meshes[meshIndex]
	nodeMesh := &NodeMesh{Name: nodeName}
	if nodeMesh.Name == "" {
		nodeMesh.Name = m.Name
	}

	uvSets := make(map[string]bool)
	var materials []Material
	seenMaterials := make(map[int]bool)

	for primIdx, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			return nil, nil, fmt.Errorf("primitive %d mode %v: %w", primIdx, prim.Mode, ErrUnsupportedFormat)
		}

		if err := sc.appendPrimitive(nodeMesh, prim, uvSets); err != nil {
			return nil, nil, fmt.Errorf("primitive %d: %w", primIdx, err)
		}

		if prim.Material != nil && !seenMaterials[*prim.Material] {
			seenMaterials[*prim.Material] = true
			mat, err := sc.material(*prim.Material)
			if err != nil {
				return nil, nil, err
			}
			materials = append(materials, mat)
		}
	}

	nodeMesh.UVSetNames = common.SortedKeys(uvSets)

	return nodeMesh, materials, nil
}

// appendPrimitive appends one primitive's positions and triangles to nodeMesh.
func (sc *gltfSceneImpl) appendPrimitive(nodeMesh *NodeMesh, prim *gltf.Primitive, uvSets map[string]bool) error {
	doc := sc.doc

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return fmt.Errorf("no POSITION attribute: %w", ErrCorruptFile)
	}
	acr, err := sc.accessor(posIdx)
	if err != nil {
		return err
	}
	positions, err := modeler.ReadPosition(doc, acr, nil)
	if err != nil {
		return fmt.Errorf("failed to read positions: %w: %v", ErrCorruptFile, err)
	}

	var normals [][3]float32
	if normIdx, ok := prim.Attributes["NORMAL"]; ok {
		acr, err := sc.accessor(normIdx)
		if err != nil {
			return err
		}
		normals, err = modeler.ReadNormal(doc, acr, nil)
		if err != nil {
			return fmt.Errorf("failed to read normals: %w: %v", ErrCorruptFile, err)
		}
	}

	uvs := make(map[string][][2]float32)
	for name, accIdx := range prim.Attributes {
		if !strings.HasPrefix(name, gltfTexCoordPrefix) {
			continue
		}
		acr, err := sc.accessor(accIdx)
		if err != nil {
			return err
		}
		coords, err := modeler.ReadTextureCoord(doc, acr, nil)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w: %v", name, ErrCorruptFile, err)
		}
		uvs[name] = coords
		uvSets[name] = true
	}

	var indices []uint32
	if prim.Indices != nil {
		acr, err := sc.accessor(*prim.Indices)
		if err != nil {
			return err
		}
		indices, err = modeler.ReadIndices(doc, acr, nil)
		if err != nil {
			return fmt.Errorf("failed to read indices: %w: %v", ErrCorruptFile, err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	if len(indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3: %w", len(indices), ErrCorruptFile)
	}

	base := len(nodeMesh.ControlPoints)
	for _, p := range positions {
		nodeMesh.ControlPoints = append(nodeMesh.ControlPoints, mgl32.Vec3(p))
	}

	for tri := 0; tri < len(indices); tri += 3 {
		poly := mesh.Polygon{Corners: make([]mesh.Corner, 3)}
		for k := 0; k < 3; k++ {
			local := int(indices[tri+k])
			if local >= len(positions) {
				return fmt.Errorf("index %d exceeds %d vertices: %w", local, len(positions), ErrCorruptFile)
			}

			c := mesh.Corner{ControlPoint: base + local}
			if local < len(normals) {
				c.Normal = mgl32.Vec3(normals[local])
			}
			if len(uvs) > 0 {
				c.UVs = make(map[string]mgl32.Vec2, len(uvs))
				for name, coords := range uvs {
					if local < len(coords) {
						c.UVs[name] = mgl32.Vec2(coords[local])
					}
				}
			}
			poly.Corners[k] = c
		}
		nodeMesh.Polygons = append(nodeMesh.Polygons, poly)
	}

	return nil
}

// accessor bounds-checks an accessor index.
func (sc *gltfSceneImpl) accessor(index int) (*gltf.Accessor, error) {
	if index < 0 || index >= len(sc.doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range: %w", index, ErrCorruptFile)
	}
	return sc.doc.Accessors[index], nil
}

// material resolves a glTF material. The diffuse channel is the PBR base-color texture; only images
// referenced by URI count as file textures.
func (sc *gltfSceneImpl) material(index int) (Material, error) {
	doc := sc.doc
	if index < 0 || index >= len(doc.Materials) {
		return Material{}, fmt.Errorf("material %d out of range: %w", index, ErrCorruptFile)
	}

	m := doc.Materials[index]
	mat := Material{Name: m.Name}
	if m.PBRMetallicRoughness == nil || m.PBRMetallicRoughness.BaseColorTexture == nil {
		return mat, nil
	}

	texIdx := m.PBRMetallicRoughness.BaseColorTexture.Index
	if texIdx < 0 || texIdx >= len(doc.Textures) {
		return Material{}, fmt.Errorf("texture %d out of range: %w", texIdx, ErrCorruptFile)
	}
	src := doc.Textures[texIdx].Source
	if src == nil || *src < 0 || *src >= len(doc.Images) {
		return mat, nil
	}

	if path := sc.imagePath(doc.Images[*src]); path != "" {
		mat.DiffuseTextures = append(mat.DiffuseTextures, path)
	}
	return mat, nil
}

// imagePath resolves an image URI against the scene directory. Embedded images have no path.
func (sc *gltfSceneImpl) imagePath(img *gltf.Image) string {
	if img == nil || img.URI == "" || strings.HasPrefix(img.URI, "data:") {
		return ""
	}

	uri, err := url.PathUnescape(img.URI)
	if err != nil {
		uri = img.URI
	}
	if filepath.IsAbs(uri) {
		return uri
	}
	return filepath.Join(sc.dir, filepath.FromSlash(uri))
}

package scene

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-mesh/engine/mesh"
	"github.com/go-gl/mathgl/mgl32"
)

// OBJUVSetName is the name given to the single UV set of a Wavefront OBJ mesh.
const OBJUVSetName = "map1"

// objSourceImpl is the Source implementation for Wavefront OBJ files.
type objSourceImpl struct{}

// objSceneImpl is a fully decoded OBJ file. Control points are file-global, so each node
// references a sparse subset of them.
type objSceneImpl struct {
	positions []mgl32.Vec3
	nodes     []*objNode
	materials map[string]Material
	target    Convention
	closed    bool
}

// objNode is one "o" or "g" group.
type objNode struct {
	name      string
	polygons  []mesh.Polygon
	materials []string
	hasUVs    bool
}

// objDecoder holds per-file parse state.
type objDecoder struct {
	dir       string
	positions []mgl32.Vec3
	normals   []mgl32.Vec3
	uvs       []mgl32.Vec2
	nodes     []*objNode
	current   *objNode
	mtllibs   []string
	line      int
}

var _ Source = &objSourceImpl{}
var _ Scene = &objSceneImpl{}

// NewOBJSource creates a Source for Wavefront OBJ files and their MTL material libraries.
//
// Returns:
//   - Source: the OBJ scene source
func NewOBJSource() Source {
	return &objSourceImpl{}
}

func (s *objSourceImpl) Open(path string, target Convention) (Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, err
	}
	defer f.Close()

	dec := &objDecoder{dir: filepath.Dir(path)}
	if err := dec.parse(f, dec.parseObjLine); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	materials := make(map[string]Material)
	for _, lib := range dec.mtllibs {
		if err := dec.loadMaterialLibrary(lib, materials); err != nil {
			log.Printf("[Scene] %s: material library %s skipped: %v", path, lib, err)
		}
	}

	return &objSceneImpl{
		positions: dec.positions,
		nodes:     dec.nodes,
		materials: materials,
		target:    target,
	}, nil
}

func (sc *objSceneImpl) ForEachMeshNode(visit NodeVisitor) error {
	if sc.closed {
		return fmt.Errorf("scene is closed")
	}

	for _, node := range sc.nodes {
		var materials []Material
		for _, name := range node.materials {
			mat, ok := sc.materials[name]
			if !ok {
				mat = Material{Name: name}
			}
			materials = append(materials, mat)
		}

		var nodeMesh *NodeMesh
		if len(node.polygons) > 0 {
			nodeMesh = &NodeMesh{
				Name:          node.name,
				ControlPoints: slices.Clone(sc.positions),
				Polygons:      clonePolygons(node.polygons),
			}
			if node.hasUVs {
				nodeMesh.UVSetNames = []string{OBJUVSetName}
			}
			Normalize(nodeMesh, ConventionOBJ, sc.target)
		} else if len(materials) == 0 {
			continue
		}

		if err := visit(nodeMesh, materials); err != nil {
			return err
		}
	}
	return nil
}

func (sc *objSceneImpl) Close() error {
	sc.closed = true
	sc.positions = nil
	sc.nodes = nil
	sc.materials = nil
	return nil
}

// clonePolygons copies polygons deeply enough that normalizing the copy leaves the scene untouched.
func clonePolygons(polygons []mesh.Polygon) []mesh.Polygon {
	out := make([]mesh.Polygon, len(polygons))
	for i, p := range polygons {
		out[i] = mesh.Polygon{Corners: slices.Clone(p.Corners)}
	}
	return out
}

// parse reads the input line by line and hands each non-empty, non-comment line to parseLine.
func (dec *objDecoder) parse(r io.Reader, parseLine func(fields []string) error) error {
	dec.line = 0
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		dec.line++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := parseLine(strings.Fields(line)); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (dec *objDecoder) parseObjLine(fields []string) error {
	switch fields[0] {
	case "v":
		v, err := dec.parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		dec.positions = append(dec.positions, mgl32.Vec3{v[0], v[1], v[2]})
	case "vn":
		v, err := dec.parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		dec.normals = append(dec.normals, mgl32.Vec3{v[0], v[1], v[2]})
	case "vt":
		v, err := dec.parseFloats(fields[1:], 1)
		if err != nil {
			return err
		}
		uv := mgl32.Vec2{v[0], 0}
		if len(v) > 1 {
			uv[1] = v[1]
		}
		dec.uvs = append(dec.uvs, uv)
	case "f":
		return dec.parseFace(fields[1:])
	case "o", "g":
		name := strings.Join(fields[1:], " ")
		if dec.current != nil && len(dec.current.polygons) == 0 && len(dec.current.materials) == 0 {
			dec.current.name = name
			return nil
		}
		dec.startNode(name)
	case "usemtl":
		if len(fields) < 2 {
			return dec.formatError("usemtl without a name")
		}
		node := dec.node()
		if !slices.Contains(node.materials, fields[1]) {
			node.materials = append(node.materials, fields[1])
		}
	case "mtllib":
		dec.mtllibs = append(dec.mtllibs, fields[1:]...)
	}
	return nil
}

// startNode begins a new group.
func (dec *objDecoder) startNode(name string) {
	dec.current = &objNode{name: name}
	dec.nodes = append(dec.nodes, dec.current)
}

// node returns the current group, creating an unnamed one for statements before any "o"/"g".
func (dec *objDecoder) node() *objNode {
	if dec.current == nil {
		dec.startNode("default")
	}
	return dec.current
}

// parseFace decodes "v", "v/vt", "v//vn" and "v/vt/vn" corners and splits the face into triangles.
func (dec *objDecoder) parseFace(fields []string) error {
	if len(fields) < 3 {
		return dec.formatError("face with fewer than 3 corners")
	}

	node := dec.node()
	poly := mesh.Polygon{Corners: make([]mesh.Corner, 0, len(fields))}
	for _, field := range fields {
		parts := strings.Split(field, "/")

		vi, err := dec.resolveIndex(parts[0], len(dec.positions))
		if err != nil {
			return err
		}
		c := mesh.Corner{ControlPoint: vi}

		if len(parts) > 1 && parts[1] != "" {
			ti, err := dec.resolveIndex(parts[1], len(dec.uvs))
			if err != nil {
				return err
			}
			c.UVs = map[string]mgl32.Vec2{OBJUVSetName: dec.uvs[ti]}
			node.hasUVs = true
		}
		if len(parts) > 2 && parts[2] != "" {
			ni, err := dec.resolveIndex(parts[2], len(dec.normals))
			if err != nil {
				return err
			}
			c.Normal = dec.normals[ni]
		}
		poly.Corners = append(poly.Corners, c)
	}

	// Fan-triangulate: corners 0,i,i+1
	for i := 1; i+1 < len(poly.Corners); i++ {
		node.polygons = append(node.polygons, mesh.Polygon{
			Corners: []mesh.Corner{poly.Corners[0], poly.Corners[i], poly.Corners[i+1]},
		})
	}
	return nil
}

// resolveIndex converts a 1-based or negative (relative) OBJ index to a 0-based one.
func (dec *objDecoder) resolveIndex(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, dec.formatError(fmt.Sprintf("invalid index %q", s))
	}

	idx := n - 1
	if n < 0 {
		idx = count + n
	}
	if n == 0 || idx < 0 || idx >= count {
		return 0, dec.formatError(fmt.Sprintf("index %d out of range (%d defined)", n, count))
	}
	return idx, nil
}

func (dec *objDecoder) parseFloats(fields []string, minCount int) ([]float32, error) {
	if len(fields) < minCount {
		return nil, dec.formatError(fmt.Sprintf("expected %d values, got %d", minCount, len(fields)))
	}

	out := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, dec.formatError(fmt.Sprintf("invalid number %q", f))
		}
		out[i] = float32(v)
	}
	return out, nil
}

// loadMaterialLibrary parses an MTL file, adding its materials to materials.
func (dec *objDecoder) loadMaterialLibrary(name string, materials map[string]Material) error {
	f, err := os.Open(dec.resolvePath(name))
	if err != nil {
		return err
	}
	defer f.Close()

	var current string
	return dec.parse(f, func(fields []string) error {
		switch fields[0] {
		case "newmtl":
			if len(fields) < 2 {
				return dec.formatError("newmtl without a name")
			}
			current = fields[1]
			materials[current] = Material{Name: current}
		case "map_Kd":
			if current == "" || len(fields) < 2 {
				return nil
			}
			mat := materials[current]
			mat.DiffuseTextures = append(mat.DiffuseTextures, dec.resolvePath(fields[len(fields)-1]))
			materials[current] = mat
		}
		return nil
	})
}

// resolvePath makes a path from the file relative to the OBJ directory.
func (dec *objDecoder) resolvePath(p string) string {
	p = filepath.FromSlash(strings.ReplaceAll(p, "\\", "/"))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dec.dir, p)
}

func (dec *objDecoder) formatError(msg string) error {
	return fmt.Errorf("line %d: %s: %w", dec.line, msg, ErrCorruptFile)
}

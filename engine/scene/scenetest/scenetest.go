// Package scenetest writes small scene files for tests.
package scenetest

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// QuadPositions are the control points of the quad written by WriteGLTFQuad, in glTF units.
var QuadPositions = [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0.5}}

// QuadNormal is the normal of every quad corner.
var QuadNormal = [3]float32{0, 0, 1}

// QuadUVs are the TEXCOORD_0 values of the quad.
var QuadUVs = [][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// QuadIndices are the two triangles of the quad.
var QuadIndices = []uint16{0, 1, 2, 0, 2, 3}

// QuadTexture is the relative image URI bound as the quad's base-color texture.
const QuadTexture = "textures/quad_diffuse.png"

// WriteGLTFQuad writes a glTF JSON file with an embedded base64 buffer: a root node with one child
// whose mesh is a two-triangle quad with normals, one UV set and a textured material.
//
// Parameters:
//   - t: the test
//   - dir: the directory to write into
//   - name: the file name
//
// Returns:
//   - string: the written path
func WriteGLTFQuad(t testing.TB, dir, name string) string {
	t.Helper()

	var buf bytes.Buffer
	for _, p := range QuadPositions {
		writeFloats(&buf, p[:]...)
	}
	for range QuadPositions {
		writeFloats(&buf, QuadNormal[:]...)
	}
	for _, uv := range QuadUVs {
		writeFloats(&buf, uv[:]...)
	}
	for _, i := range QuadIndices {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, i))
	}

	doc := map[string]any{
		"asset":  map[string]any{"version": "2.0"},
		"scene":  0,
		"scenes": []any{map[string]any{"nodes": []int{0}}},
		"nodes": []any{
			map[string]any{"name": "root", "children": []int{1}},
			map[string]any{"name": "quad", "mesh": 0},
		},
		"meshes": []any{map[string]any{
			"name": "quadMesh",
			"primitives": []any{map[string]any{
				"attributes": map[string]int{"POSITION": 0, "NORMAL": 1, "TEXCOORD_0": 2},
				"indices":    3,
				"material":   0,
			}},
		}},
		"materials": []any{map[string]any{
			"name":                 "quadMaterial",
			"pbrMetallicRoughness": map[string]any{"baseColorTexture": map[string]any{"index": 0}},
		}},
		"textures": []any{map[string]any{"source": 0}},
		"images":   []any{map[string]any{"uri": QuadTexture}},
		"buffers": []any{map[string]any{
			"byteLength": buf.Len(),
			"uri":        "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		}},
		"bufferViews": []any{
			map[string]any{"buffer": 0, "byteOffset": 0, "byteLength": 48},
			map[string]any{"buffer": 0, "byteOffset": 48, "byteLength": 48},
			map[string]any{"buffer": 0, "byteOffset": 96, "byteLength": 32},
			map[string]any{"buffer": 0, "byteOffset": 128, "byteLength": 12},
		},
		"accessors": []any{
			map[string]any{"bufferView": 0, "componentType": 5126, "count": 4, "type": "VEC3", "min": []float32{0, 0, 0}, "max": []float32{1, 1, 0.5}},
			map[string]any{"bufferView": 1, "componentType": 5126, "count": 4, "type": "VEC3"},
			map[string]any{"bufferView": 2, "componentType": 5126, "count": 4, "type": "VEC2"},
			map[string]any{"bufferView": 3, "componentType": 5123, "count": 6, "type": "SCALAR"},
		},
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	require.NoError(t, err)
	return WriteFile(t, dir, name, data)
}

// WriteFile writes data to dir/name, creating parent directories.
//
// Parameters:
//   - t: the test
//   - dir: the directory to write into
//   - name: the file name, may contain slashes
//   - data: the file contents
//
// Returns:
//   - string: the written path
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// OBJTwoGroups is an OBJ file with two groups. The second group only references control points
// 2..5, so its first-seen control-point indices are not dense from zero.
const OBJTwoGroups = `# two groups
mtllib groups.mtl
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 2 0 0
v 2 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
o left
usemtl red
f 1/1/1 2/2/1 3/3/1
f 1/1/1 3/3/1 4/4/1
o right
usemtl red
usemtl blue
f 2//1 5//1 6//1 3//1
`

// OBJTwoGroupsMTL is the material library of OBJTwoGroups. Material "blue" binds two diffuse maps.
const OBJTwoGroupsMTL = `newmtl red
Kd 1 0 0
map_Kd red.png
newmtl blue
Kd 0 0 1
map_Kd -s 1 1 1 blue_base.png
map_Kd blue.tga
`

// WriteOBJTwoGroups writes OBJTwoGroups and its material library into dir.
//
// Parameters:
//   - t: the test
//   - dir: the directory to write into
//
// Returns:
//   - string: the path of the OBJ file
func WriteOBJTwoGroups(t testing.TB, dir string) string {
	t.Helper()

	WriteFile(t, dir, "groups.mtl", []byte(OBJTwoGroupsMTL))
	return WriteFile(t, dir, "groups.obj", []byte(OBJTwoGroups))
}

func writeFloats(buf *bytes.Buffer, values ...float32) {
	for _, v := range values {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
		buf.Write(b[:])
	}
}

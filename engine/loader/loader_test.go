package loader

import (
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-mesh/engine/mesh"
	"github.com/Carmen-Shannon/oxy-mesh/engine/model"
	"github.com/Carmen-Shannon/oxy-mesh/engine/scene"
	"github.com/Carmen-Shannon/oxy-mesh/engine/scene/scenetest"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves a fixed node list and records how often scenes are closed.
type fakeSource struct {
	nodes    []fakeNode
	visitErr error
	closed   int
}

type fakeNode struct {
	mesh      *scene.NodeMesh
	materials []scene.Material
}

type fakeScene struct {
	src *fakeSource
}

func (s *fakeSource) Open(path string, target scene.Convention) (scene.Scene, error) {
	return &fakeScene{src: s}, nil
}

func (sc *fakeScene) ForEachMeshNode(visit scene.NodeVisitor) error {
	for _, n := range sc.src.nodes {
		if err := visit(n.mesh, n.materials); err != nil {
			return err
		}
	}
	return sc.src.visitErr
}

func (sc *fakeScene) Close() error {
	sc.src.closed++
	return nil
}

func triangle(a, b, c int) mesh.Polygon {
	return mesh.Polygon{Corners: []mesh.Corner{{ControlPoint: a}, {ControlPoint: b}, {ControlPoint: c}}}
}

func TestDefaultIndexModeIsCompacted(t *testing.T) {
	assert.Equal(t, mesh.IndexModeCompacted, NewLoader().IndexMode())
	assert.Equal(t, mesh.IndexModeSourceIndex, NewLoader(WithIndexMode(mesh.IndexModeSourceIndex)).IndexMode())
}

func TestLoadGLTFQuad(t *testing.T) {
	dir := t.TempDir()
	path := scenetest.WriteGLTFQuad(t, dir, "quad.gltf")

	for _, mode := range []mesh.IndexMode{mesh.IndexModeCompacted, mesh.IndexModeSourceIndex} {
		t.Run(mode.String(), func(t *testing.T) {
			m, err := NewLoader(WithIndexMode(mode)).Load(path)
			require.NoError(t, err)

			assert.Equal(t, "quad", m.Name())
			assert.Equal(t, mode, m.IndexMode())
			assert.Equal(t, []uint16{0, 1, 2, 0, 2, 3}, m.Indices())
			require.Equal(t, 4, m.VertexCount())

			// meters to centimeters, right-handed to left-handed
			v := m.Vertices()
			assert.Equal(t, mgl32.Vec3{0, 100, -50}, v[3].Position)
			assert.Equal(t, mgl32.Vec3{0, 0, -1}, v[0].Normal)
			assert.Equal(t, mgl32.Vec2{1, 1}, v[2].TexCoord)

			assert.Equal(t, filepath.Join(dir, "textures", "quad_diffuse.png"), m.TexturePath())
			assert.Equal(t, []model.Submesh{{Name: "quad", VertexCount: 4, IndexCount: 6}}, m.Submeshes())
		})
	}
}

func TestLoadOBJCompacted(t *testing.T) {
	dir := t.TempDir()
	path := scenetest.WriteOBJTwoGroups(t, dir)

	m, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, []uint16{0, 1, 2, 0, 2, 3, 4, 5, 6, 4, 6, 7}, m.Indices())
	assert.Equal(t, 8, m.VertexCount())
	for _, idx := range m.Indices() {
		assert.Less(t, int(idx), m.VertexCount())
	}

	assert.Equal(t, []model.Submesh{
		{Name: "left", BaseVertex: 0, VertexCount: 4, FirstIndex: 0, IndexCount: 6},
		{Name: "right", BaseVertex: 4, VertexCount: 4, FirstIndex: 6, IndexCount: 6},
	}, m.Submeshes())

	v := m.Vertices()
	assert.Equal(t, mgl32.Vec3{2, 0, 0}, v[5].Position)
	assert.Equal(t, mgl32.Vec3{1, 1, 0}, v[7].Position)
	assert.Equal(t, mgl32.Vec2{1, 1}, v[2].TexCoord)
	// the right group has no UVs at all
	assert.Equal(t, mgl32.Vec2{}, v[5].TexCoord)

	// red, then red and blue: blue's last map wins
	assert.Equal(t, filepath.Join(dir, "blue.tga"), m.TexturePath())
	assert.Len(t, m.Materials(), 3)
}

func TestLoadOBJSourceIndexModeRejectsSparseNodes(t *testing.T) {
	path := scenetest.WriteOBJTwoGroups(t, t.TempDir())
	l := NewLoader(WithIndexMode(mesh.IndexModeSourceIndex))

	m, err := l.Load(path)
	assert.Nil(t, m)
	assert.ErrorIs(t, err, mesh.ErrIndexOutOfRange)
	assert.Nil(t, l.Get(path))
}

func TestLoadOBJWithLongBanner(t *testing.T) {
	banner := strings.Repeat("# generated by an exporter that writes a long license banner before any geometry\n", 80)
	path := scenetest.WriteFile(t, t.TempDir(), "banner.obj", []byte(banner+"v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"))

	m, err := NewLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0, 1, 2}, m.Indices())
}

func TestLoadSourceIndexModeRejectsPermutedNode(t *testing.T) {
	path := scenetest.WriteFile(t, t.TempDir(), "permuted.bin", []byte{0})
	src := &fakeSource{nodes: []fakeNode{{mesh: &scene.NodeMesh{
		Name:          "permuted",
		ControlPoints: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Polygons:      []mesh.Polygon{triangle(1, 0, 2)},
	}}}}

	m, err := NewLoader(WithSource(scene.FormatGLB, src), WithIndexMode(mesh.IndexModeSourceIndex)).Load(path)
	assert.Nil(t, m)
	assert.ErrorIs(t, err, mesh.ErrSourceOrderMismatch)
	assert.Equal(t, 1, src.closed)

	// compacted indices stay correct for the same node
	m, err = NewLoader(WithSource(scene.FormatGLB, src)).Load(path)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0, 1, 2}, m.Indices())
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, m.Vertices()[0].Position)
}

func TestLoadErrors(t *testing.T) {
	l := NewLoader()

	m, err := l.Load("")
	assert.Nil(t, m)
	assert.ErrorIs(t, err, ErrEmptyPath)

	m, err = l.Load(filepath.Join(t.TempDir(), "missing.glb"))
	assert.Nil(t, m)
	assert.ErrorIs(t, err, scene.ErrNotFound)

	corrupt := scenetest.WriteFile(t, t.TempDir(), "broken.obj", []byte("v 0 0 0\nf 1 1\n"))
	m, err = l.Load(corrupt)
	assert.Nil(t, m)
	assert.ErrorIs(t, err, scene.ErrCorruptFile)

	assert.Empty(t, l.Models())
}

func TestLoadUsesFallbackSourceAndClosesScene(t *testing.T) {
	path := scenetest.WriteFile(t, t.TempDir(), "scene.bin", []byte{0x00, 0x01, 0x02})
	src := &fakeSource{nodes: []fakeNode{
		{mesh: &scene.NodeMesh{
			Name:          "tri",
			ControlPoints: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			Polygons:      []mesh.Polygon{triangle(0, 1, 2)},
		}, materials: []scene.Material{{Name: "a", DiffuseTextures: []string{"a.png"}}}},
		{materials: []scene.Material{{Name: "b", DiffuseTextures: []string{"b0.png", "b1.png"}}}},
		{materials: []scene.Material{{Name: "untextured"}}},
	}}

	l := NewLoader(WithSource(scene.FormatGLB, src))
	m, err := l.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1, src.closed)
	assert.Equal(t, []uint16{0, 1, 2}, m.Indices())
	assert.Equal(t, "b1.png", m.TexturePath())

	src.visitErr = errors.New("boom")
	_, err = NewLoader(WithSource(scene.FormatGLB, src)).Load(path)
	assert.EqualError(t, err, "failed to load "+path+": boom")
	assert.Equal(t, 2, src.closed)
}

func TestLoadIndexOverflow(t *testing.T) {
	const triangles = 22000
	node := &scene.NodeMesh{Name: "big"}
	for i := range triangles {
		node.Polygons = append(node.Polygons, triangle(3*i, 3*i+1, 3*i+2))
	}
	src := &fakeSource{nodes: []fakeNode{{mesh: node}}}
	path := scenetest.WriteFile(t, t.TempDir(), "big.bin", []byte{0})

	m, err := NewLoader(WithSource(scene.FormatGLB, src)).Load(path)
	assert.Nil(t, m)
	assert.ErrorIs(t, err, mesh.ErrIndexOverflow)
	assert.Equal(t, 1, src.closed)
}

func TestLoadCache(t *testing.T) {
	path := scenetest.WriteGLTFQuad(t, t.TempDir(), "quad.gltf")
	preloaded := model.NewModel(model.WithName("preloaded"))

	l := NewLoader(WithModel("preloaded", preloaded))
	assert.Same(t, preloaded, l.Get("preloaded"))

	first, err := l.Load(path)
	require.NoError(t, err)
	second, err := l.Load(path)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Same(t, first, l.Get(path))
	assert.Len(t, l.Models(), 2)
	assert.Nil(t, l.Get("unknown"))
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	quad := scenetest.WriteGLTFQuad(t, dir, "quad.gltf")
	obj := scenetest.WriteOBJTwoGroups(t, dir)
	missing := filepath.Join(dir, "missing.obj")

	l := NewLoader(WithWorkers(2), WithProfiling(true))
	models, errs := l.LoadAll([]string{quad, missing, obj})

	require.Len(t, models, 3)
	require.Len(t, errs, 3)

	assert.NoError(t, errs[0])
	assert.Equal(t, "quad", models[0].Name())

	assert.Nil(t, models[1])
	assert.ErrorIs(t, errs[1], scene.ErrNotFound)

	assert.NoError(t, errs[2])
	assert.Equal(t, 12, models[2].IndexCount())

	assert.Len(t, l.Models(), 2)
}

func TestNewLoaderStartsNoWorkers(t *testing.T) {
	before := runtime.NumGoroutine()
	for range 16 {
		NewLoader(WithWorkers(8))
	}
	assert.LessOrEqual(t, runtime.NumGoroutine(), before)

	models, errs := NewLoader().LoadAll(nil)
	assert.Empty(t, models)
	assert.Empty(t, errs)
}

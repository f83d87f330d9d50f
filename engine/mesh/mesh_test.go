package mesh

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const uvSet = "map1"

func corner(cp int) Corner {
	return Corner{
		ControlPoint: cp,
		Normal:       mgl32.Vec3{0, 0, 1},
		UVs:          map[string]mgl32.Vec2{uvSet: {float32(cp) / 10, 1}},
	}
}

func polygon(cps ...int) Polygon {
	p := Polygon{}
	for _, cp := range cps {
		p.Corners = append(p.Corners, corner(cp))
	}
	return p
}

func quadPoints() []mgl32.Vec3 {
	return []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
}

func TestDefaultModeIsCompacted(t *testing.T) {
	assert.Equal(t, IndexModeCompacted, NewIndexedMeshBuilder().Mode())
	assert.Equal(t, IndexModeSourceIndex, NewIndexedMeshBuilder(WithIndexMode(IndexModeSourceIndex)).Mode())
}

func TestBuildQuad(t *testing.T) {
	polys := []Polygon{polygon(0, 1, 2), polygon(0, 2, 3)}

	for _, mode := range []IndexMode{IndexModeCompacted, IndexModeSourceIndex} {
		t.Run(mode.String(), func(t *testing.T) {
			res := NewIndexedMeshBuilder(WithIndexMode(mode)).Build(polys, SliceLookup(quadPoints()), uvSet)

			assert.Len(t, res.Vertices, 4)
			assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, res.Indices)
			assert.Equal(t, mode, res.Mode)
			assert.NoError(t, res.Validate())
			assert.Equal(t, quadPoints(), res.Positions())
		})
	}
}

func TestBuildIndexCountMatchesCorners(t *testing.T) {
	polys := []Polygon{polygon(0, 1, 2, 3), polygon(3, 2, 4), polygon(4, 1)}
	points := append(quadPoints(), mgl32.Vec3{2, 2, 2})

	res := NewIndexedMeshBuilder().Build(polys, SliceLookup(points), uvSet)
	assert.Len(t, res.Indices, 9)
	assert.Len(t, res.Vertices, 5)
}

func TestBuildDeduplicatesSharedControlPoint(t *testing.T) {
	polys := []Polygon{polygon(2, 0, 1), polygon(2, 1, 3), polygon(2, 3, 0)}

	res := NewIndexedMeshBuilder().Build(polys, SliceLookup(quadPoints()), uvSet)

	count := 0
	for _, v := range res.Vertices {
		if v.Position == quadPoints()[2] {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Len(t, res.Vertices, 4)
}

func TestBuildPreservesFirstSeenOrder(t *testing.T) {
	polys := []Polygon{polygon(3, 1, 2), polygon(0, 3, 2)}

	res := NewIndexedMeshBuilder().Build(polys, SliceLookup(quadPoints()), uvSet)

	pts := quadPoints()
	require.Len(t, res.Vertices, 4)
	assert.Equal(t, []mgl32.Vec3{pts[3], pts[1], pts[2], pts[0]}, res.Positions())
	assert.Equal(t, []uint32{0, 1, 2, 3, 0, 2}, res.Indices)
}

func TestBuildFirstCornerWins(t *testing.T) {
	first := Corner{ControlPoint: 0, Normal: mgl32.Vec3{0, 1, 0}, UVs: map[string]mgl32.Vec2{uvSet: {0.25, 0.5}}}
	second := Corner{ControlPoint: 0, Normal: mgl32.Vec3{1, 0, 0}, UVs: map[string]mgl32.Vec2{uvSet: {0.75, 0.5}}}
	polys := []Polygon{{Corners: []Corner{first, corner(1), corner(2)}}, {Corners: []Corner{second, corner(2), corner(3)}}}

	res := NewIndexedMeshBuilder().Build(polys, SliceLookup(quadPoints()), uvSet)

	require.NotEmpty(t, res.Vertices)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, res.Vertices[0].Normal)
	assert.Equal(t, mgl32.Vec2{0.25, 0.5}, res.Vertices[0].TexCoord)
}

func TestBuildMissingUVSet(t *testing.T) {
	polys := []Polygon{polygon(0, 1, 2), polygon(0, 2, 3)}

	res := NewIndexedMeshBuilder().Build(polys, SliceLookup(quadPoints()), "missing")

	require.Len(t, res.Vertices, 4)
	for _, v := range res.Vertices {
		assert.Equal(t, mgl32.Vec2{}, v.TexCoord)
	}

	bare := []Polygon{{Corners: []Corner{{ControlPoint: 0}, {ControlPoint: 1}, {ControlPoint: 2}}}}
	res = NewIndexedMeshBuilder().Build(bare, SliceLookup(quadPoints()), uvSet)
	assert.Len(t, res.Vertices, 3)
	assert.Equal(t, mgl32.Vec2{}, res.Vertices[1].TexCoord)
}

func TestBuildEmpty(t *testing.T) {
	res := NewIndexedMeshBuilder().Build(nil, nil, uvSet)
	assert.Empty(t, res.Vertices)
	assert.Empty(t, res.Indices)
	assert.NoError(t, res.Validate())

	res = NewIndexedMeshBuilder().Build([]Polygon{polygon(0, 1, 2)}, SliceLookup(nil), uvSet)
	assert.Len(t, res.Vertices, 3)
	for _, v := range res.Vertices {
		assert.Equal(t, mgl32.Vec3{}, v.Position)
	}
}

func TestBuildSkipsNegativeControlPoints(t *testing.T) {
	polys := []Polygon{polygon(0, -1, 1, 2)}

	res := NewIndexedMeshBuilder().Build(polys, SliceLookup(quadPoints()), uvSet)
	assert.Len(t, res.Vertices, 3)
	assert.Equal(t, []uint32{0, 1, 2}, res.Indices)
}

// Control points first referenced out of dense order: source-index mode writes the raw
// control-point index, which no longer addresses the compacted vertex buffer.
func TestBuildNonContiguousControlPoints(t *testing.T) {
	points := make([]mgl32.Vec3, 12)
	for i := range points {
		points[i] = mgl32.Vec3{float32(i), 0, 0}
	}
	polys := []Polygon{polygon(5, 9, 11), polygon(5, 11, 7)}

	source := NewIndexedMeshBuilder(WithIndexMode(IndexModeSourceIndex)).Build(polys, SliceLookup(points), uvSet)
	assert.Len(t, source.Vertices, 4)
	assert.Equal(t, []uint32{5, 9, 11, 5, 11, 7}, source.Indices)
	assert.ErrorIs(t, source.Validate(), ErrIndexOutOfRange)

	compacted := NewIndexedMeshBuilder().Build(polys, SliceLookup(points), uvSet)
	assert.Len(t, compacted.Vertices, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, compacted.Indices)
	assert.NoError(t, compacted.Validate())
	assert.Equal(t, mgl32.Vec3{7, 0, 0}, compacted.Vertices[3].Position)
}

// A permutation of 0..n-1 stays in range, but the first-seen vertex for control point 1 sits at position 0.
func TestBuildPermutedControlPoints(t *testing.T) {
	polys := []Polygon{polygon(1, 0, 2)}

	source := NewIndexedMeshBuilder(WithIndexMode(IndexModeSourceIndex)).Build(polys, SliceLookup(quadPoints()), uvSet)
	assert.Equal(t, []uint32{1, 0, 2}, source.Indices)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, source.Vertices[0].Position)
	assert.True(t, source.Reordered)
	assert.ErrorIs(t, source.Validate(), ErrSourceOrderMismatch)

	compacted := NewIndexedMeshBuilder().Build(polys, SliceLookup(quadPoints()), uvSet)
	assert.Equal(t, []uint32{0, 1, 2}, compacted.Indices)
	assert.True(t, compacted.Reordered)
	assert.NoError(t, compacted.Validate())

	dense := NewIndexedMeshBuilder(WithIndexMode(IndexModeSourceIndex)).Build([]Polygon{polygon(0, 1, 2), polygon(2, 1, 3)}, SliceLookup(quadPoints()), uvSet)
	assert.False(t, dense.Reordered)
	assert.NoError(t, dense.Validate())
}

func TestIndices16(t *testing.T) {
	res := MeshBuildResult{Indices: []uint32{0, 1, math.MaxUint16}}
	narrow, err := res.Indices16()
	require.NoError(t, err)
	assert.Equal(t, []uint16{0, 1, math.MaxUint16}, narrow)

	res.Indices = append(res.Indices, math.MaxUint16+1)
	_, err = res.Indices16()
	assert.ErrorIs(t, err, ErrIndexOverflow)
}

func TestParseIndexMode(t *testing.T) {
	m, err := ParseIndexMode("source")
	require.NoError(t, err)
	assert.Equal(t, IndexModeSourceIndex, m)

	m, err = ParseIndexMode("")
	require.NoError(t, err)
	assert.Equal(t, IndexModeCompacted, m)

	_, err = ParseIndexMode("raw")
	assert.Error(t, err)
	assert.Equal(t, "IndexMode(7)", IndexMode(7).String())
}

package mesh

import (
	"iter"

	"github.com/go-gl/mathgl/mgl32"
)

// indexedMeshBuilder is the implementation of the IndexedMeshBuilder interface.
type indexedMeshBuilder struct {
	mode IndexMode
}

// IndexedMeshBuilder turns a per-polygon, per-corner attribute stream into a deduplicated
// vertex buffer and an index buffer referencing it.
//
// Deduplication is keyed on the source control-point index only. When two corners share a
// control point but disagree on normal or UV, the first corner wins; nothing is averaged or
// welded, so hard edges and UV seams collapse onto a single vertex.
type IndexedMeshBuilder interface {
	// Build walks polygons in order, and corners within each polygon in order, emitting one
	// vertex per distinct control point and one index per corner.
	// Build never fails: empty input yields an empty result, a missing UV set yields zero UVs,
	// and a nil lookup yields zero positions. Corners with a negative control point are skipped.
	//
	// Parameters:
	//   - polygons: the polygon soup to index
	//   - lookup: resolves a control-point index to its position
	//   - uvSet: the name of the UV set sampled for texture coordinates
	//
	// Returns:
	//   - MeshBuildResult: the vertex and index buffers
	Build(polygons []Polygon, lookup ControlPointLookup, uvSet string) MeshBuildResult

	// Mode reports which IndexMode this builder writes.
	//
	// Returns:
	//   - IndexMode: the active mode
	Mode() IndexMode
}

var _ IndexedMeshBuilder = &indexedMeshBuilder{}

// NewIndexedMeshBuilder creates a new IndexedMeshBuilder with the given options applied.
// The default IndexMode is IndexModeCompacted.
//
// Parameters:
//   - options: a variadic list of IndexedMeshBuilderOption functions
//
// Returns:
//   - IndexedMeshBuilder: the configured builder
func NewIndexedMeshBuilder(options ...IndexedMeshBuilderOption) IndexedMeshBuilder {
	b := &indexedMeshBuilder{
		mode: IndexModeCompacted,
	}

	for _, option := range options {
		option(b)
	}
	return b
}

func (b *indexedMeshBuilder) Mode() IndexMode {
	return b.mode
}

func (b *indexedMeshBuilder) Build(polygons []Polygon, lookup ControlPointLookup, uvSet string) MeshBuildResult {
	result := MeshBuildResult{
		Vertices: []Vertex{},
		Indices:  make([]uint32, 0, countCorners(polygons)),
		Mode:     b.mode,
	}

	seen := make(map[int]int)
	for corner := range walkCorners(polygons) {
		cp := corner.ControlPoint
		if cp < 0 {
			continue
		}

		pos, ok := seen[cp]
		if !ok {
			pos = len(result.Vertices)
			seen[cp] = pos
			if pos != cp {
				result.Reordered = true
			}

			v := Vertex{Normal: corner.Normal}
			if lookup != nil {
				v.Position = lookup(cp)
			}
			if uv, ok := corner.UVs[uvSet]; ok {
				v.TexCoord = uv
			}
			result.Vertices = append(result.Vertices, v)
		}

		switch b.mode {
		case IndexModeSourceIndex:
			result.Indices = append(result.Indices, uint32(cp))
		default:
			result.Indices = append(result.Indices, uint32(pos))
		}
	}

	return result
}

// walkCorners yields every corner of every polygon in input order.
func walkCorners(polygons []Polygon) iter.Seq[Corner] {
	return func(yield func(Corner) bool) {
		for _, p := range polygons {
			for _, c := range p.Corners {
				if !yield(c) {
					return
				}
			}
		}
	}
}

// countCorners sums the corner count of every polygon.
func countCorners(polygons []Polygon) int {
	n := 0
	for _, p := range polygons {
		n += len(p.Corners)
	}
	return n
}

// SliceLookup adapts a control-point slice to a ControlPointLookup. Out-of-range indices resolve to the origin.
//
// Parameters:
//   - points: the control points, indexed by source control-point index
//
// Returns:
//   - ControlPointLookup: the lookup function
func SliceLookup(points []mgl32.Vec3) ControlPointLookup {
	return func(index int) mgl32.Vec3 {
		if index < 0 || index >= len(points) {
			return mgl32.Vec3{}
		}
		return points[index]
	}
}

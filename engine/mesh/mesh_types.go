package mesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrIndexOutOfRange is reported by Validate when an index does not address a vertex.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrIndexOverflow is reported by Indices16 when an index does not fit 16 bits.
	ErrIndexOverflow = errors.New("index exceeds 16-bit range")

	// ErrSourceOrderMismatch is reported by Validate when source indices do not match the
	// first-seen vertex order.
	ErrSourceOrderMismatch = errors.New("control points not first referenced densely from zero")
)

// IndexMode selects what the builder writes into the index buffer for each corner.
type IndexMode int

const (
	// IndexModeCompacted writes the position of the corner's vertex in the output vertex buffer.
	IndexModeCompacted IndexMode = iota

	// IndexModeSourceIndex writes the corner's raw control-point index. This only addresses the
	// output vertex buffer when control points are first referenced densely from zero.
	IndexModeSourceIndex
)

// String returns the config name of the mode.
func (m IndexMode) String() string {
	switch m {
	case IndexModeCompacted:
		return "compacted"
	case IndexModeSourceIndex:
		return "source"
	default:
		return fmt.Sprintf("IndexMode(%d)", int(m))
	}
}

// ParseIndexMode maps a config name to an IndexMode.
//
// Parameters:
//   - s: "compacted" or "source"
//
// Returns:
//   - IndexMode: the parsed mode
//   - error: error if the name is unknown
func ParseIndexMode(s string) (IndexMode, error) {
	switch s {
	case "compacted", "":
		return IndexModeCompacted, nil
	case "source":
		return IndexModeSourceIndex, nil
	default:
		return IndexModeCompacted, fmt.Errorf("unknown index mode %q", s)
	}
}

// Vertex is a single deduplicated output vertex.
type Vertex struct {
	// Position is the control-point position in the scene's normalized coordinate convention.
	Position mgl32.Vec3

	// Normal is the normal of the first corner that referenced the control point.
	Normal mgl32.Vec3

	// TexCoord is the UV of the first corner that referenced the control point, zero when the UV set is absent.
	TexCoord mgl32.Vec2
}

// Corner is one occurrence of a control point within a polygon.
type Corner struct {
	// ControlPoint is the source control-point index.
	ControlPoint int

	// Normal is the per-corner normal.
	Normal mgl32.Vec3

	// UVs holds the per-corner UV for each UV set, keyed by set name.
	UVs map[string]mgl32.Vec2
}

// Polygon is an ordered sequence of corners.
type Polygon struct {
	Corners []Corner
}

// ControlPointLookup resolves a source control-point index to its position.
type ControlPointLookup func(index int) mgl32.Vec3

// MeshBuildResult is the output of a single build: an ordered vertex buffer and an index buffer referencing it.
type MeshBuildResult struct {
	// Vertices are in first-encounter order.
	Vertices []Vertex

	// Indices has one entry per corner, in traversal order.
	Indices []uint32

	// Mode records which IndexMode produced Indices.
	Mode IndexMode

	// Reordered is set when some control point landed at a vertex position other than its own index.
	// Source indices then address the wrong vertex even when they are in range.
	Reordered bool
}

// Validate checks that every index addresses a vertex and, in IndexModeSourceIndex, that it
// addresses the vertex built from its own control point.
//
// Returns:
//   - error: ErrIndexOutOfRange or ErrSourceOrderMismatch (wrapped), or nil
func (r MeshBuildResult) Validate() error {
	for i, idx := range r.Indices {
		if int(idx) >= len(r.Vertices) {
			return fmt.Errorf("index %d at position %d with %d vertices: %w", idx, i, len(r.Vertices), ErrIndexOutOfRange)
		}
	}
	if r.Mode == IndexModeSourceIndex && r.Reordered {
		return ErrSourceOrderMismatch
	}
	return nil
}

// Indices16 narrows the index buffer to the 16-bit width consumed by the renderer.
//
// Returns:
//   - []uint16: the narrowed indices
//   - error: ErrIndexOverflow (wrapped) if any index exceeds math.MaxUint16
func (r MeshBuildResult) Indices16() ([]uint16, error) {
	out := make([]uint16, len(r.Indices))
	for i, idx := range r.Indices {
		if idx > math.MaxUint16 {
			return nil, fmt.Errorf("index %d at position %d: %w", idx, i, ErrIndexOverflow)
		}
		out[i] = uint16(idx)
	}
	return out, nil
}

// Positions returns the vertex positions in buffer order.
func (r MeshBuildResult) Positions() []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(r.Vertices))
	for i, v := range r.Vertices {
		out[i] = v.Position
	}
	return out
}

package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// AxisSystem identifies the handedness of a coordinate system. Both supported systems are Y-up.
type AxisSystem int

const (
	// AxisSystemOpenGL is right-handed, Y-up, with -Z forward (glTF, OBJ).
	AxisSystemOpenGL AxisSystem = iota

	// AxisSystemDirectX is left-handed, Y-up, with +Z forward.
	AxisSystemDirectX
)

// String returns the config name of the axis system.
func (a AxisSystem) String() string {
	switch a {
	case AxisSystemOpenGL:
		return "opengl"
	case AxisSystemDirectX:
		return "directx"
	default:
		return fmt.Sprintf("AxisSystem(%d)", int(a))
	}
}

// ParseAxisSystem maps a config name to an AxisSystem.
//
// Parameters:
//   - s: "opengl" or "directx"
//
// Returns:
//   - AxisSystem: the parsed axis system
//   - error: error if the name is unknown
func ParseAxisSystem(s string) (AxisSystem, error) {
	switch s {
	case "opengl":
		return AxisSystemOpenGL, nil
	case "directx", "":
		return AxisSystemDirectX, nil
	default:
		return AxisSystemDirectX, fmt.Errorf("unknown axis system %q", s)
	}
}

// Convention is a coordinate convention: an axis system plus the length of one scene unit in centimeters.
// A zero UnitCM means the unit is unknown and positions are never rescaled from or to it.
type Convention struct {
	Axis   AxisSystem
	UnitCM float32
}

var (
	// ConventionDirectXCM is the default target: left-handed Y-up centimeters.
	ConventionDirectXCM = Convention{Axis: AxisSystemDirectX, UnitCM: 1}

	// ConventionGLTF is the native glTF convention: right-handed Y-up meters.
	ConventionGLTF = Convention{Axis: AxisSystemOpenGL, UnitCM: 100}

	// ConventionOBJ is the native Wavefront OBJ convention: right-handed Y-up, unit not recorded in the file.
	ConventionOBJ = Convention{Axis: AxisSystemOpenGL}
)

// Normalize converts a node mesh in place from one convention to another. A handedness change
// mirrors Z on positions and normals; polygon winding is left as is.
//
// Parameters:
//   - node: the node mesh to convert
//   - from: the convention the data is currently in
//   - to: the target convention
func Normalize(node *NodeMesh, from, to Convention) {
	if node == nil {
		return
	}

	mirror := from.Axis != to.Axis
	scale := float32(1)
	if from.UnitCM > 0 && to.UnitCM > 0 {
		scale = from.UnitCM / to.UnitCM
	}
	if !mirror && scale == 1 {
		return
	}

	flip := mgl32.Vec3{1, 1, 1}
	if mirror {
		flip[2] = -1
	}

	for i, p := range node.ControlPoints {
		node.ControlPoints[i] = mgl32.Vec3{p[0] * flip[0], p[1] * flip[1], p[2] * flip[2]}.Mul(scale)
	}

	if !mirror {
		return
	}
	for pi := range node.Polygons {
		corners := node.Polygons[pi].Corners
		for ci := range corners {
			corners[ci].Normal[2] = -corners[ci].Normal[2]
		}
	}
}

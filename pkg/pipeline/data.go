package pipeline

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/callus/pkg/repair"
)

// ---------------------------------------------------------------------------
// Source payloads
// ---------------------------------------------------------------------------

// SourceShape selects which primitive a source node produces.
type SourceShape int

const (
	ShapeCube     SourceShape = iota // closed cube, minimum corner at origin
	ShapeBox                         // closed box, minimum corner at origin
	ShapeSphere                      // marching cubes soup
	ShapeCylinder                    // open-ended tube, two boundary loops
	ShapePlane                       // open rectangle, one boundary loop
)

func (s SourceShape) String() string {
	switch s {
	case ShapeCube:
		return "cube"
	case ShapeBox:
		return "box"
	case ShapeSphere:
		return "sphere"
	case ShapeCylinder:
		return "open-cylinder"
	case ShapePlane:
		return "plane"
	default:
		return "unknown"
	}
}

// SourceData describes a primitive mesh. Size carries the cube edge in X,
// the box extents in X, Y and Z and the plane extents in X and Y. Radius,
// Height and Segments cover the round shapes; zero Segments on a sphere
// means the tessellation default.
type SourceData struct {
	Shape    SourceShape `json:"shape"`
	Size     r3.Vec      `json:"size"`
	Radius   float64     `json:"radius,omitempty"`
	Height   float64     `json:"height,omitempty"`
	Segments int         `json:"segments,omitempty"`
}

func (SourceData) nodeData() {}

// ---------------------------------------------------------------------------
// Structure payloads
// ---------------------------------------------------------------------------

// TransformData moves a mesh by a fixed offset.
type TransformData struct {
	Offset r3.Vec `json:"offset"`
}

func (TransformData) nodeData() {}

// CombineData concatenates the child meshes into one. It carries no
// parameters; the child order fixes the vertex and face order of the result.
type CombineData struct{}

func (CombineData) nodeData() {}

// ---------------------------------------------------------------------------
// Repair payloads
// ---------------------------------------------------------------------------

// CheckData runs the read-only normal consistency check.
type CheckData struct{}

func (CheckData) nodeData() {}

// OrientData fixes face winding with the given strategy.
type OrientData struct {
	Strategy repair.OrientStrategy `json:"strategy"`
}

func (OrientData) nodeData() {}

// DetectData scans for self-intersections and annotates the mesh with
// scalar fields.
type DetectData struct{}

func (DetectData) nodeData() {}

// RemeshData rebuilds self-intersecting regions.
type RemeshData struct {
	DetectOnly         bool `json:"detect_only,omitempty"`
	RemoveUnreferenced bool `json:"remove_unreferenced,omitempty"`
	ExtractOuterHull   bool `json:"extract_outer_hull,omitempty"`
	StitchAll          bool `json:"stitch_all,omitempty"`
}

func (RemeshData) nodeData() {}

// FillData closes boundary loops. Zero MaxHoleSize means the fill default.
type FillData struct {
	Strategy    repair.FillStrategy `json:"strategy"`
	MaxHoleSize int                 `json:"max_hole_size,omitempty"`
}

func (FillData) nodeData() {}

// WeldData merges vertices within Tolerance. Zero means the weld default.
type WeldData struct {
	Tolerance float64 `json:"tolerance,omitempty"`
}

func (WeldData) nodeData() {}

// PruneData removes faces with area at or below AreaTol. Zero means the
// degenerate area default.
type PruneData struct {
	AreaTol float64 `json:"area_tol,omitempty"`
}

func (PruneData) nodeData() {}

// FixupMethod selects how a fixup node resolves flagged intersections.
type FixupMethod int

const (
	FixRemoval      FixupMethod = iota // delete flagged faces, patch the holes
	FixPerturbation                    // nudge flagged vertices along their normals
)

func (m FixupMethod) String() string {
	switch m {
	case FixRemoval:
		return "removal"
	case FixPerturbation:
		return "perturbation"
	default:
		return "unknown"
	}
}

// FixupData configures a fixup node. The removal fields mirror
// repair.RemovalOptions and the perturbation fields repair.PerturbOptions;
// zero numeric values defer to the repair defaults.
type FixupData struct {
	Method FixupMethod `json:"method"`

	FillHoles   bool `json:"fill_holes,omitempty"`
	FixNormals  bool `json:"fix_normals,omitempty"`
	MaxHoleSize int  `json:"max_hole_size,omitempty"`

	Epsilon       float64 `json:"epsilon,omitempty"`
	MaxIterations int     `json:"max_iterations,omitempty"`
	Inward        bool    `json:"inward,omitempty"`
	ScaleByCount  bool    `json:"scale_by_count,omitempty"`
}

func (FixupData) nodeData() {}

// InfoData runs the read-only mesh diagnostic.
type InfoData struct{}

func (InfoData) nodeData() {}

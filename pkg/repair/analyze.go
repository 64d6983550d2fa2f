package repair

import (
	"fmt"
	"strings"

	geo "github.com/golang/geo/r3"
	quickhull "github.com/markus-wa/quickhull-go/v2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/callus/pkg/mesh"
)

// Info summarizes a mesh: element counts, topology, measures, and how the
// surface compares against its own convex hull.
type Info struct {
	Vertices          int  `json:"vertices"`
	Faces             int  `json:"faces"`
	Edges             int  `json:"edges"`
	Euler             int  `json:"euler"` // V - E + F
	Components        int  `json:"components"`
	Watertight        bool `json:"watertight"`
	WindingConsistent bool `json:"winding_consistent"`

	BoundsMin   r3.Vec  `json:"bounds_min"`
	BoundsMax   r3.Vec  `json:"bounds_max"`
	SurfaceArea float64 `json:"surface_area"`
	Volume      float64 `json:"volume"` // signed tet sum, zero unless watertight

	DegenerateFaces int `json:"degenerate_faces"`
	NaNNormals      int `json:"nan_normals"`

	HullVertices  int     `json:"hull_vertices"`
	HullFaces     int     `json:"hull_faces"`
	HullAreaRatio float64 `json:"hull_area_ratio"` // surface area over hull area, 1.0 when convex
}

// Analyze computes Info for a mesh without modifying it. A nil mesh yields
// the zero Info. The mesh must be structurally valid.
func Analyze(m *mesh.Mesh) Info {
	var info Info
	if m == nil {
		return info
	}
	info.Vertices = m.VertexCount()
	info.Faces = m.FaceCount()
	info.Edges = m.EdgeCount()
	info.Euler = info.Vertices - info.Edges + info.Faces
	_, info.Components = m.FaceComponents()
	info.Watertight = m.IsWatertight()
	info.WindingConsistent = m.IsWindingConsistent()
	info.BoundsMin, info.BoundsMax = m.Bounds()
	info.SurfaceArea = m.SurfaceArea()
	if info.Watertight {
		info.Volume = m.SignedVolume()
	}

	stats := m.ComputeNormalStats()
	info.DegenerateFaces = stats.Degenerate
	info.NaNNormals = stats.NaNCount

	hullStats(m, &info)
	return info
}

func (i Info) String() string {
	var b strings.Builder
	b.WriteString("Mesh Info\n")
	fmt.Fprintf(&b, "  vertices: %d\n", i.Vertices)
	fmt.Fprintf(&b, "  faces: %d\n", i.Faces)
	fmt.Fprintf(&b, "  edges: %d (euler %d)\n", i.Edges, i.Euler)
	fmt.Fprintf(&b, "  components: %d\n", i.Components)
	fmt.Fprintf(&b, "  watertight: %s\n", yesNo(i.Watertight))
	fmt.Fprintf(&b, "  winding consistent: %s\n", yesNo(i.WindingConsistent))
	fmt.Fprintf(&b, "  bounds: (%.4g, %.4g, %.4g) to (%.4g, %.4g, %.4g)\n",
		i.BoundsMin.X, i.BoundsMin.Y, i.BoundsMin.Z,
		i.BoundsMax.X, i.BoundsMax.Y, i.BoundsMax.Z)
	fmt.Fprintf(&b, "  surface area: %.4f\n", i.SurfaceArea)
	if i.Watertight {
		fmt.Fprintf(&b, "  volume: %.4f\n", i.Volume)
	}
	fmt.Fprintf(&b, "  degenerate faces: %d\n", i.DegenerateFaces)
	fmt.Fprintf(&b, "  undefined normals: %d\n", i.NaNNormals)
	if i.HullFaces > 0 {
		fmt.Fprintf(&b, "  convex hull: %d vertices, %d faces, area ratio %.3f\n",
			i.HullVertices, i.HullFaces, i.HullAreaRatio)
	}
	return b.String()
}

// hullStats fills the convex-hull comparison. Fewer than four vertices, or a
// vertex set the hull construction cannot handle, reports zero hull stats.
func hullStats(m *mesh.Mesh, info *Info) {
	if m.VertexCount() < 4 {
		return
	}
	defer func() {
		if recover() != nil {
			info.HullVertices, info.HullFaces, info.HullAreaRatio = 0, 0, 0
		}
	}()

	pts := make([]geo.Vector, m.VertexCount())
	for i, v := range m.Vertices {
		pts[i] = geo.Vector{X: v.X, Y: v.Y, Z: v.Z}
	}
	qh := new(quickhull.QuickHull)
	hull := qh.ConvexHull(pts, true, true, 1e-12)
	if len(hull.Indices) < 3 {
		return
	}

	used := make(map[int]bool)
	hullArea := 0.0
	for i := 0; i+2 < len(hull.Indices); i += 3 {
		a, b, c := hull.Indices[i], hull.Indices[i+1], hull.Indices[i+2]
		used[a] = true
		used[b] = true
		used[c] = true
		va, vb, vc := m.Vertices[a], m.Vertices[b], m.Vertices[c]
		hullArea += 0.5 * r3.Norm(r3.Cross(r3.Sub(vb, va), r3.Sub(vc, va)))
	}
	info.HullVertices = len(used)
	info.HullFaces = len(hull.Indices) / 3
	if hullArea > 0 {
		info.HullAreaRatio = info.SurfaceArea / hullArea
	}
}

// MeshInfo wraps Analyze in the standard Result so pipelines treat it like
// any other operation. The mesh passes through untouched and nothing is
// recorded in provenance.
func (o *Ops) MeshInfo(m *mesh.Mesh) Result {
	rep := newReport(opMeshInfo, m)
	if m == nil {
		m = mesh.New()
	}
	if err := m.Validate(); err != nil {
		return fail(m, rep, &Error{Kind: KindInvalidInput, Op: opMeshInfo, Err: err})
	}
	out := m.Clone()
	info := Analyze(out)

	rep.setAfter(out.VertexCount(), out.FaceCount())
	rep.WatertightBefore = info.Watertight
	rep.WatertightAfter = info.Watertight
	rep.WindingConsistentBefore = info.WindingConsistent
	rep.WindingConsistentAfter = info.WindingConsistent
	rep.DegenerateFaces = info.DegenerateFaces
	rep.NaNNormals = info.NaNNormals

	rep.Note("euler characteristic %d, %d components", info.Euler, info.Components)
	rep.Note("surface area %.4f", info.SurfaceArea)
	if info.Watertight {
		rep.Note("volume %.4f", info.Volume)
	}
	if info.HullFaces > 0 {
		rep.Note("convex hull: %d vertices, %d faces, area ratio %.3f",
			info.HullVertices, info.HullFaces, info.HullAreaRatio)
	}
	return Result{Status: StatusSuccess, Mesh: out, Report: rep}
}

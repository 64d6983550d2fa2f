package repair

import (
	"fmt"
	"strings"
)

// Transition records one step of strategy fallback: the strategy that could
// not run, the one tried instead, and why the switch happened.
type Transition struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

// Report carries the structured findings of one repair operation. Fields are
// explicit rather than a free-form map so callers read counts without parsing
// text; fields an operation does not use stay zero. String renders the
// human-readable block shown in the UI.
type Report struct {
	Op      string `json:"op"`
	Backend string `json:"backend,omitempty"` // library that did the work

	VerticesBefore int `json:"vertices_before"`
	VerticesAfter  int `json:"vertices_after"`
	FacesBefore    int `json:"faces_before"`
	FacesAfter     int `json:"faces_after"`

	Selected string       `json:"selected,omitempty"` // strategy asked for
	Actual   string       `json:"actual,omitempty"`   // strategy that ran, "none" if nothing did
	Trace    []Transition `json:"trace,omitempty"`    // fallback steps, empty when Selected ran directly

	WindingConsistentBefore bool `json:"winding_consistent_before"`
	WindingConsistentAfter  bool `json:"winding_consistent_after"`
	WatertightBefore        bool `json:"watertight_before"`
	WatertightAfter         bool `json:"watertight_after"`

	DegenerateFaces  int     `json:"degenerate_faces,omitempty"`
	NaNNormals       int     `json:"nan_normals,omitempty"`
	MeanNormalLength float64 `json:"mean_normal_length,omitempty"`

	IntersectionPairs int `json:"intersection_pairs,omitempty"`
	IntersectingFaces int `json:"intersecting_faces,omitempty"`
	FacesFlipped      int `json:"faces_flipped,omitempty"`
	FacesRemoved      int `json:"faces_removed,omitempty"`

	LoopsFound   int `json:"loops_found,omitempty"`
	LoopsClosed  int `json:"loops_closed,omitempty"`
	LoopsSkipped int `json:"loops_skipped,omitempty"`
	FacesAdded   int `json:"faces_added,omitempty"`

	Notes []string `json:"notes,omitempty"`
}

// Note appends a free-form finding line.
func (r *Report) Note(format string, args ...interface{}) {
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

// fallTo records one strategy fallback step.
func (r *Report) fallTo(from, to, reason string) {
	r.Trace = append(r.Trace, Transition{From: from, To: to, Reason: reason})
}

// setAfter records the post-operation element counts.
func (r *Report) setAfter(v, f int) {
	r.VerticesAfter = v
	r.FacesAfter = f
}

// degeneratePercent is guarded against empty meshes: 0 of 0 faces is 0%.
func (r Report) degeneratePercent() float64 {
	if r.FacesBefore == 0 {
		return 0
	}
	return 100 * float64(r.DegenerateFaces) / float64(r.FacesBefore)
}

func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", opTitle(r.Op))
	fmt.Fprintf(&b, "  vertices: %d -> %d\n", r.VerticesBefore, r.VerticesAfter)
	fmt.Fprintf(&b, "  faces:    %d -> %d\n", r.FacesBefore, r.FacesAfter)
	if r.Selected != "" {
		fmt.Fprintf(&b, "  strategy: %s", r.Selected)
		if r.Actual != "" && r.Actual != r.Selected {
			fmt.Fprintf(&b, " -> %s", r.Actual)
		}
		b.WriteByte('\n')
	}
	if r.Backend != "" {
		fmt.Fprintf(&b, "  backend:  %s\n", r.Backend)
	}

	switch r.Op {
	case opCheckNormals:
		fmt.Fprintf(&b, "  winding consistent: %s\n", yesNo(r.WindingConsistentBefore))
		fmt.Fprintf(&b, "  watertight: %s\n", yesNo(r.WatertightBefore))
		fmt.Fprintf(&b, "  degenerate faces: %d (%.1f%%)\n", r.DegenerateFaces, r.degeneratePercent())
		fmt.Fprintf(&b, "  undefined normals: %d\n", r.NaNNormals)
		fmt.Fprintf(&b, "  mean normal length: %.4f\n", r.MeanNormalLength)
	case opFixNormals:
		fmt.Fprintf(&b, "  winding consistent: %s -> %s\n",
			yesNo(r.WindingConsistentBefore), yesNo(r.WindingConsistentAfter))
		fmt.Fprintf(&b, "  faces flipped: %d\n", r.FacesFlipped)
	case opDetectIntersections:
		fmt.Fprintf(&b, "  intersecting pairs: %d\n", r.IntersectionPairs)
		fmt.Fprintf(&b, "  intersecting faces: %d\n", r.IntersectingFaces)
	case opRemeshIntersections:
		if r.IntersectionPairs > 0 || r.IntersectingFaces > 0 {
			fmt.Fprintf(&b, "  intersecting pairs: %d\n", r.IntersectionPairs)
			fmt.Fprintf(&b, "  intersecting faces: %d\n", r.IntersectingFaces)
		}
		fmt.Fprintf(&b, "  watertight: %s -> %s\n",
			yesNo(r.WatertightBefore), yesNo(r.WatertightAfter))
	case opFillHoles:
		fmt.Fprintf(&b, "  loops: %d found, %d closed, %d skipped\n",
			r.LoopsFound, r.LoopsClosed, r.LoopsSkipped)
		fmt.Fprintf(&b, "  faces added: +%d\n", r.FacesAdded)
		fmt.Fprintf(&b, "  watertight: %s -> %s\n",
			yesNo(r.WatertightBefore), yesNo(r.WatertightAfter))
	case opMergeVertices, opRemoveDegenerate:
		if r.FacesRemoved > 0 {
			fmt.Fprintf(&b, "  faces removed: %d\n", r.FacesRemoved)
		}
	case opFixByRemoval, opFixByPerturbation:
		if r.FacesRemoved > 0 {
			fmt.Fprintf(&b, "  faces removed: %d\n", r.FacesRemoved)
		}
		if r.FacesAdded > 0 {
			fmt.Fprintf(&b, "  faces added: +%d\n", r.FacesAdded)
		}
		fmt.Fprintf(&b, "  intersecting faces remaining: %d\n", r.IntersectingFaces)
	}

	for _, t := range r.Trace {
		fmt.Fprintf(&b, "  fallback: %s -> %s (%s)\n", t.From, t.To, t.Reason)
	}
	for _, n := range r.Notes {
		fmt.Fprintf(&b, "  note: %s\n", n)
	}
	return b.String()
}

func opTitle(op string) string {
	switch op {
	case opCheckNormals:
		return "Normal Consistency Check"
	case opFixNormals:
		return "Normal Orientation Fix"
	case opDetectIntersections:
		return "Self-Intersection Detection"
	case opRemeshIntersections:
		return "Self-Intersection Remesh"
	case opFillHoles:
		return "Hole Fill"
	case opMergeVertices:
		return "Vertex Merge"
	case opRemoveDegenerate:
		return "Degenerate Face Removal"
	case opFixByRemoval:
		return "Self-Intersection Fix By Removal"
	case opFixByPerturbation:
		return "Self-Intersection Fix By Perturbation"
	case opMeshInfo:
		return "Mesh Info"
	default:
		return op
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

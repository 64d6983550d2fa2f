// Package repair implements the mesh repair operations: normal checking and
// orientation, self-intersection detection and remeshing, hole filling, and
// the cleanup passes. Operations are stateless, never mutate their input, and
// return a tagged Result whose mesh is always usable, even on failure.
//
// Backends that need native libraries are injected as kernel capabilities;
// a missing capability either degrades the result, triggers a recorded
// strategy fallback, or fails with guidance, depending on the operation.
package repair

import (
	"github.com/chazu/callus/pkg/kernel"
	"github.com/chazu/callus/pkg/mesh"
)

// Operation names as they appear in reports and provenance records.
const (
	opCheckNormals        = "check_normals"
	opFixNormals          = "fix_normals"
	opDetectIntersections = "detect_intersections"
	opRemeshIntersections = "remesh_intersections"
	opFillHoles           = "fill_holes"
	opMergeVertices       = "merge_vertices"
	opRemoveDegenerate    = "remove_degenerate_faces"
	opFixByRemoval        = "fix_by_removal"
	opFixByPerturbation   = "fix_by_perturbation"
	opMeshInfo            = "mesh_info"
)

// Ops bundles the injected kernel capabilities behind the repair operations.
// Construct once at startup with the probes that succeeded; tests inject
// fakes to drive the fallback and failure paths deterministically.
type Ops struct {
	Caps kernel.Capabilities
}

// NewOps returns an Ops backed by the given capabilities.
func NewOps(caps kernel.Capabilities) *Ops {
	return &Ops{Caps: caps}
}

// newReport seeds a report with the operation name and input counts.
func newReport(op string, m *mesh.Mesh) Report {
	rep := Report{Op: op}
	if m != nil {
		rep.VerticesBefore = m.VertexCount()
		rep.FacesBefore = m.FaceCount()
	}
	return rep
}

// checkInput rejects the inputs no operation accepts. It returns a typed
// invalid-input error, or nil for a usable mesh.
func checkInput(op string, m *mesh.Mesh) error {
	if m == nil {
		return &Error{Kind: KindInvalidInput, Op: op, Err: errNilMesh}
	}
	if err := m.Validate(); err != nil {
		return &Error{Kind: KindInvalidInput, Op: op, Err: err}
	}
	return nil
}

package repair

import (
	"fmt"

	"github.com/chazu/callus/pkg/kernel"
	"github.com/chazu/callus/pkg/mesh"
)

// DetectIntersections finds pairs of faces that cross and annotates the mesh
// with the canonical scalar fields: the per-face flag, the per-vertex flag,
// and the per-vertex count of intersecting incident faces. Topology never
// changes. A missing intersector, a scan error, or a panic inside the
// backing library all degrade to zero-filled fields rather than failing, so
// downstream field consumers keep working either way.
func (o *Ops) DetectIntersections(m *mesh.Mesh) Result {
	rep := newReport(opDetectIntersections, m)
	if m == nil {
		m = mesh.New()
	}
	if err := m.Validate(); err != nil {
		return fail(m, rep, &Error{Kind: KindInvalidInput, Op: opDetectIntersections, Err: err})
	}
	out := m.Clone()

	pairs, err := o.scanIntersections(opDetectIntersections, out)
	status := StatusSuccess
	if err != nil {
		attachIntersectionFields(out, nil)
		rep.Note("detection degraded, fields zero-filled: %v", err)
		status = StatusDegraded
	} else {
		rep.Backend = o.Caps.Intersector.Name()
		rep.IntersectionPairs = len(pairs)
		rep.IntersectingFaces = attachIntersectionFields(out, pairs)
		if len(pairs) == 0 {
			rep.Note("no self-intersections found")
		}
	}

	rep.setAfter(out.VertexCount(), out.FaceCount())
	out.Record(mesh.StageRecord{Op: opDetectIntersections, Backend: rep.Backend})
	return Result{Status: status, Mesh: out, Report: rep}
}

// scanIntersections runs the intersector, converting a missing capability,
// a scan error, or a panic inside the backing library into a single typed
// error value.
func (o *Ops) scanIntersections(op string, m *mesh.Mesh) (pairs []kernel.FacePair, err error) {
	if !o.Caps.HasIntersector() {
		return nil, &Error{
			Kind:     KindCapabilityUnavailable,
			Op:       op,
			Guidance: "construct Ops with an intersector, the sat backend is pure Go",
		}
	}
	defer func() {
		if r := recover(); r != nil {
			pairs = nil
			err = &Error{
				Kind: KindComputationFailure,
				Op:   op,
				Err:  fmt.Errorf("intersector panic: %v", r),
			}
		}
	}()
	found, serr := o.Caps.Intersector.SelfIntersections(m)
	if serr != nil {
		return nil, &Error{Kind: KindComputationFailure, Op: op, Err: serr}
	}
	return found, nil
}

// attachIntersectionFields writes the three canonical fields derived from
// the pair list. With no pairs the fields are attached zero-filled rather
// than omitted, so consumers need no presence checks. Returns the number of
// distinct intersecting faces.
func attachIntersectionFields(m *mesh.Mesh, pairs []kernel.FacePair) int {
	faceFlag := make([]float64, m.FaceCount())
	vertFlag := make([]float64, m.VertexCount())
	vertCount := make([]float64, m.VertexCount())

	seen := make(map[int]bool)
	for _, p := range pairs {
		seen[p.A] = true
		seen[p.B] = true
	}
	for f := range seen {
		faceFlag[f] = 1
		for _, v := range m.Faces[f] {
			vertFlag[v] = 1
			vertCount[v]++
		}
	}

	m.SetFaceField(mesh.FieldSelfIntersecting, faceFlag)
	m.SetVertexField(mesh.FieldIntersectionFlag, vertFlag)
	m.SetVertexField(mesh.FieldIntersectionCount, vertCount)
	return len(seen)
}

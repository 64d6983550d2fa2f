package repair

import (
	"errors"
	"fmt"

	"github.com/chazu/callus/pkg/mesh"
)

// RemeshOptions configures RemeshIntersections. The zero value resolves
// intersections with no post-processing.
type RemeshOptions struct {
	// DetectOnly annotates intersections without changing topology.
	DetectOnly bool

	// RemoveUnreferenced compacts away vertices orphaned by the remesh.
	RemoveUnreferenced bool

	// ExtractOuterHull keeps only the outward-facing surface. Best effort: a
	// hull failure is recorded in the report and the resolved mesh is
	// returned instead.
	ExtractOuterHull bool

	// StitchAll welds the duplicated seam vertices the resolve step produces
	// along intersection curves.
	StitchAll bool
}

// RemeshIntersections subdivides intersecting faces so the surface becomes
// cleanly connected geometry. This is the one operation with no in-repo
// fallback: without the remesher capability it fails, and the error guidance
// names the build tag that enables it. The resolve step is all or nothing:
// on any failure the input mesh comes back unchanged.
func (o *Ops) RemeshIntersections(m *mesh.Mesh, opts RemeshOptions) Result {
	rep := newReport(opRemeshIntersections, m)
	if err := checkInput(opRemeshIntersections, m); err != nil {
		return fail(m, rep, err)
	}
	rep.WatertightBefore = m.IsWatertight()

	if opts.DetectOnly {
		return o.remeshDetectOnly(m, rep)
	}

	if !o.Caps.HasRemesher() {
		return fail(m, rep, &Error{
			Kind:     KindCapabilityUnavailable,
			Op:       opRemeshIntersections,
			Guidance: "build with -tags=cork and install the cork library",
			Err:      errors.New("remesher capability not wired"),
		})
	}
	rep.Backend = o.Caps.Remesher.Name()

	out, err := o.resolveIntersections(m, opts.StitchAll)
	if err != nil {
		return fail(m, rep, err)
	}

	status := StatusSuccess
	if opts.RemoveUnreferenced {
		if n := out.RemoveUnreferencedVertices(); n > 0 {
			rep.Note("%d unreferenced vertices removed", n)
		}
	}
	if opts.ExtractOuterHull {
		hull, herr := o.Caps.Remesher.OuterHull(out)
		if herr != nil {
			rep.Note("outer hull skipped: %v", herr)
			status = StatusDegraded
		} else {
			out = hull
		}
	}

	rep.setAfter(out.VertexCount(), out.FaceCount())
	rep.WatertightAfter = out.IsWatertight()
	out.Record(mesh.StageRecord{Op: opRemeshIntersections, Backend: rep.Backend})
	return Result{Status: status, Mesh: out, Report: rep}
}

// remeshDetectOnly annotates intersections through the detector fields but
// under the remesher's failure policy: no capability means a hard failure,
// not a degraded zero-fill.
func (o *Ops) remeshDetectOnly(m *mesh.Mesh, rep Report) Result {
	out := m.Clone()
	pairs, err := o.scanIntersections(opRemeshIntersections, out)
	if err != nil {
		return fail(m, rep, err)
	}
	rep.Backend = o.Caps.Intersector.Name()
	rep.IntersectionPairs = len(pairs)
	rep.IntersectingFaces = attachIntersectionFields(out, pairs)
	rep.Note("detect only: topology unchanged")

	rep.setAfter(out.VertexCount(), out.FaceCount())
	rep.WatertightAfter = rep.WatertightBefore
	out.Record(mesh.StageRecord{Op: opRemeshIntersections, Backend: rep.Backend, Note: "detect only"})
	return Result{Status: StatusSuccess, Mesh: out, Report: rep}
}

// resolveIntersections calls the remesher with panic recovery so a native
// library crash surfaces as a typed error instead of taking down the caller.
func (o *Ops) resolveIntersections(m *mesh.Mesh, stitchAll bool) (out *mesh.Mesh, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &Error{
				Kind: KindComputationFailure,
				Op:   opRemeshIntersections,
				Err:  fmt.Errorf("remesher panic: %v", r),
			}
		}
	}()
	resolved, rerr := o.Caps.Remesher.ResolveSelfIntersections(m, stitchAll)
	if rerr != nil {
		return nil, &Error{Kind: KindComputationFailure, Op: opRemeshIntersections, Err: rerr}
	}
	return resolved, nil
}

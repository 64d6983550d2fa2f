package repair

import (
	"fmt"

	"github.com/chazu/callus/pkg/mesh"
)

// DefaultMergeTolerance is the vertex weld distance used when the caller
// passes zero. It matches the scale of seam gaps left by tessellators that
// emit disconnected triangles.
const DefaultMergeTolerance = 1e-5

// MergeVertices welds vertices closer than tol and drops faces that collapse
// in the process. Zero tol means DefaultMergeTolerance.
func (o *Ops) MergeVertices(m *mesh.Mesh, tol float64) Result {
	rep := newReport(opMergeVertices, m)
	if err := checkInput(opMergeVertices, m); err != nil {
		return fail(m, rep, err)
	}
	if tol == 0 {
		tol = DefaultMergeTolerance
	}
	if tol < 0 {
		return fail(m, rep, &Error{
			Kind: KindInvalidInput,
			Op:   opMergeVertices,
			Err:  fmt.Errorf("negative tolerance %g", tol),
		})
	}

	rep.WatertightBefore = m.IsWatertight()
	out := m.Clone()
	verts, faces := out.MergeVertices(tol)
	rep.FacesRemoved = faces
	rep.setAfter(out.VertexCount(), out.FaceCount())
	rep.WatertightAfter = out.IsWatertight()

	if verts > 0 {
		rep.Note("%d vertices merged", verts)
	} else {
		rep.Note("no vertices within tolerance")
	}
	if faces > 0 {
		rep.Note("%d collapsed faces removed", faces)
	}
	out.Record(mesh.StageRecord{Op: opMergeVertices, Note: fmt.Sprintf("tol=%g", tol)})
	return Result{Status: StatusSuccess, Mesh: out, Report: rep}
}

// RemoveDegenerateFaces drops faces with repeated vertex indices or area
// below areaTol, then compacts away any vertices left unreferenced. Zero
// areaTol means mesh.DegenerateAreaTol.
func (o *Ops) RemoveDegenerateFaces(m *mesh.Mesh, areaTol float64) Result {
	rep := newReport(opRemoveDegenerate, m)
	if err := checkInput(opRemoveDegenerate, m); err != nil {
		return fail(m, rep, err)
	}
	if areaTol == 0 {
		areaTol = mesh.DegenerateAreaTol
	}
	if areaTol < 0 {
		return fail(m, rep, &Error{
			Kind: KindInvalidInput,
			Op:   opRemoveDegenerate,
			Err:  fmt.Errorf("negative area threshold %g", areaTol),
		})
	}

	out := m.Clone()
	rep.FacesRemoved = out.RemoveDegenerateFaces(areaTol)
	pruned := 0
	if rep.FacesRemoved > 0 {
		pruned = out.RemoveUnreferencedVertices()
	}
	rep.setAfter(out.VertexCount(), out.FaceCount())

	if rep.FacesRemoved > 0 {
		rep.Note("%d degenerate faces removed", rep.FacesRemoved)
	} else {
		rep.Note("no degenerate faces found")
	}
	if pruned > 0 {
		rep.Note("%d unreferenced vertices removed", pruned)
	}
	out.Record(mesh.StageRecord{Op: opRemoveDegenerate, Note: fmt.Sprintf("area_tol=%g", areaTol)})
	return Result{Status: StatusSuccess, Mesh: out, Report: rep}
}

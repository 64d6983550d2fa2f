package repair

import (
	"github.com/chazu/callus/pkg/mesh"
)

// CheckNormals inspects winding consistency, watertightness, and face-normal
// health. It is read-only: the result mesh is a copy of the input with no
// fields added and no provenance recorded. An empty mesh is a valid,
// vacuously clean input, so the check always succeeds.
func (o *Ops) CheckNormals(m *mesh.Mesh) Result {
	rep := newReport(opCheckNormals, m)
	if m == nil {
		m = mesh.New()
	}
	if err := m.Validate(); err != nil {
		return fail(m, rep, &Error{Kind: KindInvalidInput, Op: opCheckNormals, Err: err})
	}
	out := m.Clone()

	rep.WindingConsistentBefore = out.IsWindingConsistent()
	rep.WindingConsistentAfter = rep.WindingConsistentBefore
	rep.WatertightBefore = out.IsWatertight()
	rep.WatertightAfter = rep.WatertightBefore

	stats := out.ComputeNormalStats()
	rep.DegenerateFaces = stats.Degenerate
	rep.NaNNormals = stats.NaNCount
	rep.MeanNormalLength = stats.MeanUnitLength
	rep.setAfter(out.VertexCount(), out.FaceCount())

	clean := true
	if !rep.WindingConsistentBefore {
		rep.Note("winding is inconsistent: run fix_normals")
		clean = false
	}
	if !rep.WatertightBefore {
		rep.Note("mesh is not watertight: run fill_holes")
		clean = false
	}
	if stats.Degenerate > 0 {
		rep.Note("%d degenerate faces: run remove_degenerate_faces", stats.Degenerate)
		clean = false
	}
	if clean && out.FaceCount() > 0 {
		rep.Note("normals look consistent")
	}

	return Result{Status: StatusSuccess, Mesh: out, Report: rep}
}

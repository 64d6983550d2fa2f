package repair

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/callus/pkg/mesh"
)

// RemovalOptions configures FixByRemoval.
type RemovalOptions struct {
	FillHoles   bool // patch the holes the removal opens
	FixNormals  bool // restore a consistent winding after the topology change
	MaxHoleSize int  // largest loop the patching step closes, zero means DefaultMaxHoleSize
}

// DefaultRemovalOptions returns the standard removal pipeline: fill the
// holes opened by the removal, then make the winding consistent again.
func DefaultRemovalOptions() RemovalOptions {
	return RemovalOptions{FillHoles: true, FixNormals: true, MaxHoleSize: DefaultMaxHoleSize}
}

// FixByRemoval deletes the faces the detector flagged, then optionally
// patches the holes left behind and re-orients the result. The detector must
// have run first: without the face flag field there is nothing to remove.
// When the intersector capability is present the fields are refreshed by a
// re-scan afterward; when it is not, the stale fields are dropped rather
// than left lying about the new topology.
func (o *Ops) FixByRemoval(m *mesh.Mesh, opts RemovalOptions) Result {
	rep := newReport(opFixByRemoval, m)
	if err := checkInput(opFixByRemoval, m); err != nil {
		return fail(m, rep, err)
	}
	if !m.HasFaceField(mesh.FieldSelfIntersecting) {
		return fail(m, rep, &Error{
			Kind:     KindInvalidInput,
			Op:       opFixByRemoval,
			Guidance: "run detect_intersections first",
			Err:      fmt.Errorf("mesh has no %q face field", mesh.FieldSelfIntersecting),
		})
	}
	maxHole := opts.MaxHoleSize
	if maxHole == 0 {
		maxHole = DefaultMaxHoleSize
	}
	if maxHole < MinHoleSize || maxHole > MaxHoleSizeLimit {
		return fail(m, rep, &Error{
			Kind: KindInvalidInput,
			Op:   opFixByRemoval,
			Err: fmt.Errorf("max hole size %d outside [%d, %d]",
				opts.MaxHoleSize, MinHoleSize, MaxHoleSizeLimit),
		})
	}

	flags := m.FaceField(mesh.FieldSelfIntersecting)
	flagged := 0
	for _, v := range flags {
		if v > 0.5 {
			flagged++
		}
	}
	if flagged == 0 {
		out := m.Clone()
		rep.setAfter(out.VertexCount(), out.FaceCount())
		rep.Note("no flagged faces, mesh unchanged")
		return Result{Status: StatusSuccess, Mesh: out, Report: rep}
	}

	out := m.Clone()
	keep := 0
	for i, f := range out.Faces {
		if flags[i] > 0.5 {
			continue
		}
		out.Faces[keep] = f
		keep++
	}
	out.Faces = out.Faces[:keep]
	out.DropFields()
	rep.FacesRemoved = flagged

	if opts.FillHoles && out.FaceCount() > 0 {
		before := out.FaceCount()
		var fr Report
		closeLoops(out, maxHole, &fr)
		rep.FacesAdded = out.FaceCount() - before
		if rep.FacesAdded > 0 {
			rep.Note("%d faces added closing %d holes", rep.FacesAdded, fr.LoopsClosed)
		}
		if fr.LoopsSkipped > 0 {
			rep.Note("%d holes left open (max hole size %d)", fr.LoopsSkipped, maxHole)
		}
	}
	if opts.FixNormals && out.FaceCount() > 0 {
		if flips, _ := orientByAdjacency(out); flips > 0 {
			rep.Note("%d faces flipped", flips)
		}
	}

	status := o.rescanIntersections(opFixByRemoval, out, &rep)
	rep.setAfter(out.VertexCount(), out.FaceCount())
	out.Record(mesh.StageRecord{
		Op:      opFixByRemoval,
		Backend: rep.Backend,
		Note:    fmt.Sprintf("removed %d faces", flagged),
	})
	return Result{Status: status, Mesh: out, Report: rep}
}

const (
	// DefaultPerturbEpsilon is the base vertex displacement for
	// FixByPerturbation.
	DefaultPerturbEpsilon = 0.001

	// DefaultPerturbIterations is the number of ramp steps.
	DefaultPerturbIterations = 10

	// MinPerturbEpsilon, MaxPerturbEpsilon and MaxPerturbIterations bound
	// the accepted PerturbOptions ranges.
	MinPerturbEpsilon    = 1e-8
	MaxPerturbEpsilon    = 1.0
	MaxPerturbIterations = 100
)

// PerturbOptions configures FixByPerturbation.
type PerturbOptions struct {
	// Epsilon is the base displacement distance. Zero means
	// DefaultPerturbEpsilon; values outside [1e-8, 1.0] are rejected.
	Epsilon float64

	// MaxIterations is the number of ramp steps. Zero means
	// DefaultPerturbIterations; values above 100 are rejected.
	MaxIterations int

	// Inward displaces vertices against their normals instead of along them.
	Inward bool

	// ScaleByCount weights each vertex's displacement by its intersection
	// multiplicity, normalized by the maximum, so heavily tangled regions
	// move further than grazing ones.
	ScaleByCount bool
}

// DefaultPerturbOptions returns the standard outward ramp with multiplicity
// scaling.
func DefaultPerturbOptions() PerturbOptions {
	return PerturbOptions{
		Epsilon:       DefaultPerturbEpsilon,
		MaxIterations: DefaultPerturbIterations,
		ScaleByCount:  true,
	}
}

// FixByPerturbation nudges the vertices the detector flagged along their
// normals, stepping the displacement up over MaxIterations passes with the
// normals recomputed after each move. Topology is untouched: vertex and face
// counts never change, so this cannot resolve intersections that need a
// topology change, but it also cannot make the mesh worse structurally. The
// detector must have run first. The fields are refreshed by a re-scan when
// the intersector capability is present, dropped otherwise.
func (o *Ops) FixByPerturbation(m *mesh.Mesh, opts PerturbOptions) Result {
	rep := newReport(opFixByPerturbation, m)
	if err := checkInput(opFixByPerturbation, m); err != nil {
		return fail(m, rep, err)
	}
	if !m.HasVertexField(mesh.FieldIntersectionFlag) {
		return fail(m, rep, &Error{
			Kind:     KindInvalidInput,
			Op:       opFixByPerturbation,
			Guidance: "run detect_intersections first",
			Err:      fmt.Errorf("mesh has no %q vertex field", mesh.FieldIntersectionFlag),
		})
	}
	eps := opts.Epsilon
	if eps == 0 {
		eps = DefaultPerturbEpsilon
	}
	iters := opts.MaxIterations
	if iters == 0 {
		iters = DefaultPerturbIterations
	}
	if eps < MinPerturbEpsilon || eps > MaxPerturbEpsilon {
		return fail(m, rep, &Error{
			Kind: KindInvalidInput,
			Op:   opFixByPerturbation,
			Err:  fmt.Errorf("epsilon %g outside [%g, %g]", opts.Epsilon, MinPerturbEpsilon, MaxPerturbEpsilon),
		})
	}
	if iters < 1 || iters > MaxPerturbIterations {
		return fail(m, rep, &Error{
			Kind: KindInvalidInput,
			Op:   opFixByPerturbation,
			Err:  fmt.Errorf("max iterations %d outside [1, %d]", opts.MaxIterations, MaxPerturbIterations),
		})
	}

	flags := m.VertexField(mesh.FieldIntersectionFlag)
	var affected []int
	for i, v := range flags {
		if v > 0.5 {
			affected = append(affected, i)
		}
	}
	if len(affected) == 0 {
		out := m.Clone()
		rep.setAfter(out.VertexCount(), out.FaceCount())
		rep.Note("no flagged vertices, mesh unchanged")
		return Result{Status: StatusSuccess, Mesh: out, Report: rep}
	}

	scale := perturbScales(m, opts.ScaleByCount)
	direction := 1.0
	if opts.Inward {
		direction = -1.0
	}

	out := m.Clone()
	for iter := 1; iter <= iters; iter++ {
		step := eps * float64(iter) / float64(iters)
		normals := out.VertexNormals()
		for _, v := range affected {
			d := r3.Scale(step*direction*scale[v], normals[v])
			out.Vertices[v] = r3.Add(out.Vertices[v], d)
		}
	}
	rep.Note("%d vertices displaced over %d ramp steps", len(affected), iters)

	status := o.rescanIntersections(opFixByPerturbation, out, &rep)
	rep.setAfter(out.VertexCount(), out.FaceCount())
	out.Record(mesh.StageRecord{
		Op:      opFixByPerturbation,
		Backend: rep.Backend,
		Note:    fmt.Sprintf("displaced %d vertices", len(affected)),
	})
	return Result{Status: status, Mesh: out, Report: rep}
}

// perturbScales returns the per-vertex displacement weights: intersection
// multiplicity normalized by its maximum when scaling is on and the count
// field exists, otherwise all ones.
func perturbScales(m *mesh.Mesh, scaleByCount bool) []float64 {
	scale := make([]float64, m.VertexCount())
	counts := m.VertexField(mesh.FieldIntersectionCount)
	if scaleByCount && counts != nil {
		max := 0.0
		for _, c := range counts {
			if c > max {
				max = c
			}
		}
		if max > 0 {
			for i, c := range counts {
				scale[i] = c / max
			}
			return scale
		}
	}
	for i := range scale {
		scale[i] = 1
	}
	return scale
}

// rescanIntersections refreshes the intersection fields after a fix pass and
// decides the outcome status: success when the scan finds nothing, degraded
// when intersections remain or the scan could not run. On scan failure the
// fields are dropped rather than left stale.
func (o *Ops) rescanIntersections(op string, out *mesh.Mesh, rep *Report) Status {
	pairs, err := o.scanIntersections(op, out)
	if err != nil {
		out.DropFields()
		rep.Note("re-detection unavailable, fields dropped: %v", err)
		return StatusDegraded
	}
	rep.Backend = o.Caps.Intersector.Name()
	rep.IntersectionPairs = len(pairs)
	rep.IntersectingFaces = attachIntersectionFields(out, pairs)
	if rep.IntersectingFaces > 0 {
		rep.Note("%d intersecting faces remain", rep.IntersectingFaces)
		return StatusDegraded
	}
	rep.Note("no self-intersections remain")
	return StatusSuccess
}

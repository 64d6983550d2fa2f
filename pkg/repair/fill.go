package repair

import (
	"fmt"

	"github.com/chazu/callus/pkg/mesh"
)

// FillStrategy selects the hole-filling algorithm.
type FillStrategy int

const (
	// FillLibrary triangulates every boundary loop up to MaxHoleSize
	// using the built-in minimum-weight patch.
	FillLibrary FillStrategy = iota

	// FillSuite welds near-coincident vertices through the mesh toolkit
	// first, closing crack-style seams that are not real holes, then fills
	// the loops that remain.
	FillSuite

	// FillFan closes only the first boundary loop with a triangle fan from
	// its first vertex. Fast and predictable; any further loops stay open.
	FillFan
)

func (s FillStrategy) String() string {
	switch s {
	case FillLibrary:
		return "library"
	case FillSuite:
		return "suite"
	case FillFan:
		return "fan"
	default:
		return fmt.Sprintf("FillStrategy(%d)", int(s))
	}
}

// ParseFillStrategy maps the wire names "library", "suite", and "fan". The
// empty string selects the library default.
func ParseFillStrategy(s string) (FillStrategy, error) {
	switch s {
	case "library", "":
		return FillLibrary, nil
	case "suite":
		return FillSuite, nil
	case "fan":
		return FillFan, nil
	default:
		return 0, fmt.Errorf("unknown fill strategy %q, expected library, suite, or fan", s)
	}
}

const (
	// DefaultMaxHoleSize bounds the boundary-loop length FillHoles closes
	// when the caller leaves MaxHoleSize zero.
	DefaultMaxHoleSize = 100

	// MinHoleSize and MaxHoleSizeLimit bound accepted MaxHoleSize values.
	MinHoleSize      = 3
	MaxHoleSizeLimit = 10000
)

// FillOptions configures FillHoles.
type FillOptions struct {
	Strategy FillStrategy

	// MaxHoleSize is the largest loop, in edges, to close. Zero means
	// DefaultMaxHoleSize; values outside [3, 10000] are rejected.
	MaxHoleSize int
}

// FillHoles closes boundary loops. An already-watertight mesh short-circuits
// to success with zero added faces under any strategy. When the selected
// strategy's capability is unavailable or its loop extraction comes up
// empty, the library strategy runs instead and the switch lands in the
// report trace. Filling does not guarantee watertightness: oversized loops
// are skipped and the fan strategy leaves later loops open, so check
// WatertightAfter in the report.
func (o *Ops) FillHoles(m *mesh.Mesh, opts FillOptions) Result {
	rep := newReport(opFillHoles, m)
	rep.Selected = opts.Strategy.String()
	rep.Actual = "none"

	maxHole := opts.MaxHoleSize
	if maxHole == 0 {
		maxHole = DefaultMaxHoleSize
	}
	if maxHole < MinHoleSize || maxHole > MaxHoleSizeLimit {
		return fail(m, rep, &Error{
			Kind: KindInvalidInput,
			Op:   opFillHoles,
			Err: fmt.Errorf("max hole size %d outside [%d, %d]",
				opts.MaxHoleSize, MinHoleSize, MaxHoleSizeLimit),
		})
	}
	if err := checkInput(opFillHoles, m); err != nil {
		return fail(m, rep, err)
	}

	rep.WatertightBefore = m.IsWatertight()
	rep.WindingConsistentBefore = m.IsWindingConsistent()
	if rep.WatertightBefore {
		out := m.Clone()
		rep.setAfter(out.VertexCount(), out.FaceCount())
		rep.WatertightAfter = true
		rep.WindingConsistentAfter = rep.WindingConsistentBefore
		rep.Note("already watertight")
		return Result{Status: StatusSuccess, Mesh: out, Report: rep}
	}

	out := m.Clone()
	var err error
	switch opts.Strategy {
	case FillLibrary:
		fillAllLoops(out, maxHole, &rep)
	case FillSuite:
		o.fillSuite(out, maxHole, &rep)
	case FillFan:
		fillFan(out, maxHole, &rep)
	default:
		err = &Error{
			Kind: KindInvalidInput,
			Op:   opFillHoles,
			Err:  fmt.Errorf("unknown fill strategy %d", int(opts.Strategy)),
		}
	}
	if err != nil {
		return fail(m, rep, err)
	}

	rep.setAfter(out.VertexCount(), out.FaceCount())
	rep.FacesAdded = rep.FacesAfter - rep.FacesBefore
	rep.WatertightAfter = out.IsWatertight()
	rep.WindingConsistentAfter = out.IsWindingConsistent()
	if !rep.WatertightAfter {
		rep.Note("mesh is still not watertight")
	}
	out.Record(mesh.StageRecord{
		Op:       opFillHoles,
		Selected: rep.Selected,
		Actual:   rep.Actual,
		Backend:  rep.Backend,
	})

	// The suite weld can restore watertightness with no loops left to
	// close; that is a success, not a degrade.
	status := StatusSuccess
	if rep.LoopsClosed == 0 && !rep.WatertightAfter {
		status = StatusDegraded
		rep.Note("no loops closed")
	}
	return Result{Status: status, Mesh: out, Report: rep}
}

// fillAllLoops is the library strategy: close every loop up to maxHole
// edges using the minimum-weight patch.
func fillAllLoops(m *mesh.Mesh, maxHole int, rep *Report) {
	rep.Actual = FillLibrary.String()
	closeLoops(m, maxHole, rep)
}

// fillSuite welds crack seams through the toolkit before filling. On
// scanned meshes whose shells only hairline-separate, the weld alone often
// restores watertightness. Without the toolkit the library strategy runs on
// the unwelded mesh.
func (o *Ops) fillSuite(m *mesh.Mesh, maxHole int, rep *Report) {
	if !o.Caps.HasToolkit() {
		rep.fallTo(FillSuite.String(), FillLibrary.String(), "toolkit capability unavailable")
		fillAllLoops(m, maxHole, rep)
		return
	}
	welded, err := o.Caps.Toolkit.WeldVertices(m, DefaultMergeTolerance)
	if err != nil {
		rep.fallTo(FillSuite.String(), FillLibrary.String(), err.Error())
		fillAllLoops(m, maxHole, rep)
		return
	}
	if merged := m.VertexCount() - welded.VertexCount(); merged > 0 {
		rep.Note("weld merged %d vertices", merged)
	}
	*m = *welded
	rep.Actual = FillSuite.String()
	rep.Backend = o.Caps.Toolkit.Name()
	closeLoops(m, maxHole, rep)
}

// fillFan closes the first boundary loop with a fan anchored at its first
// vertex. Extraction finding no loops falls back to the library strategy,
// which reports the open-but-unclosable state.
func fillFan(m *mesh.Mesh, maxHole int, rep *Report) {
	loops := m.BoundaryLoops()
	if len(loops) == 0 {
		rep.fallTo(FillFan.String(), FillLibrary.String(), "no boundary loops extracted")
		fillAllLoops(m, maxHole, rep)
		return
	}
	rep.Actual = FillFan.String()
	rep.LoopsFound = len(loops)

	loop := loops[0]
	if len(loop) > maxHole {
		rep.LoopsSkipped++
		rep.Note("skipped a hole with %d edges (limit %d)", len(loop), maxHole)
		return
	}
	m.Faces = append(m.Faces, fanPatch(loop)...)
	m.DropFields()
	rep.LoopsClosed = 1
	if len(loops) > 1 {
		rep.Note("fan closes only the first loop: %d left open", len(loops)-1)
	}
}

// fanPatch triangulates a loop as a fan from its first vertex, wound against
// the boundary direction so the patch matches the surrounding faces.
func fanPatch(loop []int) []mesh.Face {
	out := make([]mesh.Face, 0, len(loop)-2)
	for i := 1; i+1 < len(loop); i++ {
		out = append(out, mesh.Face{loop[0], loop[i+1], loop[i]})
	}
	return out
}

// closeLoops patches every boundary loop of at most maxHole edges, counting
// closed and skipped loops in the report. Attached fields are dropped once
// the face count changes.
func closeLoops(m *mesh.Mesh, maxHole int, rep *Report) {
	loops := m.BoundaryLoops()
	rep.LoopsFound = len(loops)
	ef := m.EdgeFaces()

	added := false
	for _, loop := range loops {
		if len(loop) > maxHole {
			rep.LoopsSkipped++
			rep.Note("skipped a hole with %d edges (limit %d)", len(loop), maxHole)
			continue
		}
		patch := liepaFill(m, ef, loop)
		if len(patch) == 0 {
			rep.LoopsSkipped++
			continue
		}
		m.Faces = append(m.Faces, patch...)
		rep.LoopsClosed++
		added = true
	}
	if added {
		m.DropFields()
	}
}

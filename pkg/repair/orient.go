package repair

import (
	"fmt"

	"github.com/chazu/callus/pkg/mesh"
)

// OrientStrategy selects how FixNormals orients faces.
type OrientStrategy int

const (
	// OrientLibrary delegates to the mesh toolkit capability, which also
	// points normals outward. Needs a closed mesh.
	OrientLibrary OrientStrategy = iota

	// OrientBFS propagates a consistent winding across shared edges from the
	// lowest-index face of each connected component. Always available; works
	// on open meshes but does not decide global inside versus outside, and
	// disjoint shells are oriented independently of each other.
	OrientBFS
)

func (s OrientStrategy) String() string {
	switch s {
	case OrientLibrary:
		return "library"
	case OrientBFS:
		return "bfs"
	default:
		return fmt.Sprintf("OrientStrategy(%d)", int(s))
	}
}

// ParseOrientStrategy maps the wire names "library" and "bfs". The empty
// string selects the library default.
func ParseOrientStrategy(s string) (OrientStrategy, error) {
	switch s {
	case "library", "":
		return OrientLibrary, nil
	case "bfs":
		return OrientBFS, nil
	default:
		return 0, fmt.Errorf("unknown orient strategy %q, expected library or bfs", s)
	}
}

// FixNormalsOptions configures FixNormals. The zero value selects the
// library strategy.
type FixNormalsOptions struct {
	Strategy OrientStrategy
}

// FixNormals rewinds faces into a consistent orientation. When the selected
// strategy cannot run, the result is not an error: the alternate strategy is
// tried and the switch lands in the report trace, so a caller that cares can
// see which algorithm actually ran. Vertex and face counts never change.
func (o *Ops) FixNormals(m *mesh.Mesh, opts FixNormalsOptions) Result {
	rep := newReport(opFixNormals, m)
	rep.Selected = opts.Strategy.String()
	rep.Actual = "none"
	if err := checkInput(opFixNormals, m); err != nil {
		return fail(m, rep, err)
	}

	rep.WindingConsistentBefore = m.IsWindingConsistent()
	rep.WatertightBefore = m.IsWatertight()

	out, flipped, err := o.orientWith(m, opts.Strategy, &rep)
	if err != nil {
		return fail(m, rep, err)
	}

	rep.FacesFlipped = flipped
	rep.setAfter(out.VertexCount(), out.FaceCount())
	rep.WindingConsistentAfter = out.IsWindingConsistent()
	rep.WatertightAfter = out.IsWatertight()
	out.Record(mesh.StageRecord{
		Op:       opFixNormals,
		Selected: rep.Selected,
		Actual:   rep.Actual,
		Backend:  rep.Backend,
	})

	status := StatusSuccess
	if !rep.WindingConsistentAfter {
		status = StatusDegraded
	}
	return Result{Status: status, Mesh: out, Report: rep}
}

func (o *Ops) orientWith(m *mesh.Mesh, strat OrientStrategy, rep *Report) (*mesh.Mesh, int, error) {
	switch strat {
	case OrientLibrary:
		if !o.Caps.HasToolkit() {
			rep.fallTo(OrientLibrary.String(), OrientBFS.String(), "toolkit capability unavailable")
			return orientBFS(m, rep)
		}
		out, flipped, err := o.Caps.Toolkit.OrientOutward(m)
		if err != nil {
			rep.fallTo(OrientLibrary.String(), OrientBFS.String(), err.Error())
			return orientBFS(m, rep)
		}
		rep.Actual = OrientLibrary.String()
		rep.Backend = o.Caps.Toolkit.Name()
		return out, flipped, nil
	case OrientBFS:
		return orientBFS(m, rep)
	default:
		return nil, 0, &Error{
			Kind: KindInvalidInput,
			Op:   opFixNormals,
			Err:  fmt.Errorf("unknown orient strategy %d", int(strat)),
		}
	}
}

func orientBFS(m *mesh.Mesh, rep *Report) (*mesh.Mesh, int, error) {
	out := m.Clone()
	flipped, conflicts := orientByAdjacency(out)
	rep.Actual = OrientBFS.String()
	if conflicts > 0 {
		rep.Note("%d conflicting edges: surface is not orientable", conflicts)
	}
	return out, flipped, nil
}

// orientByAdjacency makes each connected component's winding internally
// consistent by flipping faces during a breadth-first walk of the shared-edge
// graph. The seed face of each component keeps its winding; everything
// reachable is flipped to agree with it. Edges shared by more than two faces
// do not propagate orientation. Returns the number of faces flipped and the
// number of edges whose two faces still disagree, which is nonzero only for
// non-orientable surfaces.
func orientByAdjacency(m *mesh.Mesh) (flipped, conflicts int) {
	ef := m.EdgeFaces()
	visited := make([]bool, len(m.Faces))
	var queue []int

	for seed := range m.Faces {
		if visited[seed] {
			continue
		}
		visited[seed] = true
		queue = append(queue[:0], seed)
		for len(queue) > 0 {
			f := queue[0]
			queue = queue[1:]
			cur := m.Faces[f]
			keys := [3]mesh.EdgeKey{
				mesh.MakeEdgeKey(cur[0], cur[1]),
				mesh.MakeEdgeKey(cur[1], cur[2]),
				mesh.MakeEdgeKey(cur[2], cur[0]),
			}
			for _, key := range keys {
				neighbors := ef[key]
				if len(neighbors) != 2 {
					continue
				}
				for _, g := range neighbors {
					if g == f {
						continue
					}
					same := directedAlong(m.Faces[f], key) == directedAlong(m.Faces[g], key)
					if !visited[g] {
						if same {
							m.FlipFace(g)
							flipped++
						}
						visited[g] = true
						queue = append(queue, g)
					} else if same && g < f {
						conflicts++
					}
				}
			}
		}
	}
	return flipped, conflicts
}

// directedAlong reports whether face f walks the edge from key.Lo to key.Hi.
// Two faces sharing an edge agree on orientation exactly when they walk it
// in opposite directions.
func directedAlong(f mesh.Face, key mesh.EdgeKey) bool {
	for i := 0; i < 3; i++ {
		if f[i] == key.Lo && f[(i+1)%3] == key.Hi {
			return true
		}
	}
	return false
}

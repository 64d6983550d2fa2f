// Package sat implements the kernel.Intersector interface with a pure Go
// separating axis test over an octree broad phase. It has no external
// dependencies, so every build ships with it.
package sat

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/callus/pkg/kernel"
	"github.com/chazu/callus/pkg/mesh"
	"github.com/chazu/callus/pkg/spatial"
)

// Compile-time interface check.
var _ kernel.Intersector = (*Intersector)(nil)

// DefaultContactEps is the tolerance below which contacts (shared
// vertices, edges resting on a surface) are not reported as intersections.
const DefaultContactEps = 1e-9

// Intersector finds self-intersections with a SAT narrow phase. The zero
// value is not usable; call New.
type Intersector struct {
	// ContactEps separates proper crossings from touch contacts.
	ContactEps float64

	// MaxObjects and MaxDepth tune the broad-phase octree. Zero means the
	// spatial package default.
	MaxObjects int
	MaxDepth   int
}

// New returns an Intersector with default tolerances.
func New() *Intersector {
	return &Intersector{ContactEps: DefaultContactEps}
}

// Name identifies the backend for provenance records.
func (x *Intersector) Name() string { return "sat-octree" }

// SelfIntersections returns every pair of non-adjacent faces that properly
// intersect, ordered by face index. Faces sharing a vertex index count as
// adjacent and are never reported. Degenerate faces are skipped.
func (x *Intersector) SelfIntersections(m *mesh.Mesh) ([]kernel.FacePair, error) {
	if m == nil {
		return nil, errors.New("intersection scan: nil mesh")
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("intersection scan: %w", err)
	}
	if m.FaceCount() < 2 {
		return nil, nil
	}

	eps := x.ContactEps
	if eps <= 0 {
		eps = DefaultContactEps
	}

	min, max := m.Bounds()
	tree := spatial.NewOctree(spatial.AABB{Min: min, Max: max}.Expand(spatial.BoundsMargin))
	if x.MaxObjects > 0 {
		tree.MaxObjects = x.MaxObjects
	}
	if x.MaxDepth > 0 {
		tree.MaxDepth = x.MaxDepth
	}

	n := m.FaceCount()
	tris := make([][3]r3.Vec, n)
	boxes := make([]spatial.AABB, n)
	degenerate := make([]bool, n)
	for i, f := range m.Faces {
		tris[i] = [3]r3.Vec{m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]}
		boxes[i] = spatial.NewAABB(tris[i][0], tris[i][1], tris[i][2])
		degenerate[i] = m.IsDegenerateFace(i, mesh.DegenerateAreaTol)
		if !degenerate[i] {
			tree.Insert(i, boxes[i])
		}
	}

	var pairs []kernel.FacePair
	mark := make([]int, n) // octree queries return straddlers repeatedly
	for i := 0; i < n; i++ {
		if degenerate[i] {
			continue
		}
		for _, j := range tree.Query(boxes[i]) {
			if j <= i || mark[j] == i+1 {
				continue
			}
			mark[j] = i + 1
			if sharesIndex(m.Faces[i], m.Faces[j]) {
				continue
			}
			if triTriIntersect(tris[i], tris[j], eps) {
				pairs = append(pairs, kernel.NewFacePair(i, j))
			}
		}
	}

	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a].A != pairs[b].A {
			return pairs[a].A < pairs[b].A
		}
		return pairs[a].B < pairs[b].B
	})
	return pairs, nil
}

func sharesIndex(a, b mesh.Face) bool {
	for _, va := range a {
		for _, vb := range b {
			if va == vb {
				return true
			}
		}
	}
	return false
}

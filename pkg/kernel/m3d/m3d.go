// Package m3d implements the kernel.Toolkit interface using the
// github.com/unixpickle/model3d mesh library. model3d keys connectivity on
// exact coordinates instead of indices, so meshes round-trip through a
// conversion at each call.
package m3d

import (
	"errors"
	"fmt"
	"sort"

	"github.com/unixpickle/model3d/model3d"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/callus/pkg/kernel"
	"github.com/chazu/callus/pkg/mesh"
)

// Compile-time interface check.
var _ kernel.Toolkit = (*Toolkit)(nil)

// rayEps is the precision passed to model3d's normal repair ray casts.
const rayEps = 1e-8

// Toolkit adapts model3d mesh utilities to the kernel interface.
type Toolkit struct{}

// New returns a model3d-backed toolkit.
func New() *Toolkit {
	return &Toolkit{}
}

// Name identifies the backend for provenance records.
func (t *Toolkit) Name() string { return "model3d" }

// OrientOutward makes face windings globally consistent and outward
// facing, returning the number of faces flipped. The mesh must be closed;
// ray parity against an open surface gives meaningless answers.
func (t *Toolkit) OrientOutward(m *mesh.Mesh) (*mesh.Mesh, int, error) {
	src, err := toModel3d(m)
	if err != nil {
		return nil, 0, fmt.Errorf("orient: %w", err)
	}
	if src.NeedsRepair() {
		return nil, 0, errors.New("orient: mesh is not closed, cannot determine outward direction")
	}

	repaired, flipped := src.RepairNormals(rayEps)
	out := fromModel3d(repaired)
	out.Name = m.Name
	out.Provenance = m.Provenance.Clone()
	return out, flipped, nil
}

// WeldVertices merges vertices closer than eps and drops faces that
// collapse in the process.
func (t *Toolkit) WeldVertices(m *mesh.Mesh, eps float64) (*mesh.Mesh, error) {
	src, err := toModel3d(m)
	if err != nil {
		return nil, fmt.Errorf("weld: %w", err)
	}

	out := fromModel3d(src.Repair(eps))
	out.Name = m.Name
	out.Provenance = m.Provenance.Clone()
	return out, nil
}

func toModel3d(m *mesh.Mesh) (*model3d.Mesh, error) {
	if m == nil {
		return nil, errors.New("nil mesh")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	out := model3d.NewMesh()
	for _, f := range m.Faces {
		out.Add(&model3d.Triangle{
			coord(m.Vertices[f[0]]),
			coord(m.Vertices[f[1]]),
			coord(m.Vertices[f[2]]),
		})
	}
	return out, nil
}

// fromModel3d rebuilds an indexed mesh. model3d iterates triangles in map
// order, so triangles are sorted by coordinates first to keep output
// deterministic.
func fromModel3d(src *model3d.Mesh) *mesh.Mesh {
	var tris []*model3d.Triangle
	src.Iterate(func(t *model3d.Triangle) {
		tris = append(tris, t)
	})
	sort.Slice(tris, func(i, j int) bool {
		return lessTriangle(tris[i], tris[j])
	})

	out := mesh.New()
	index := make(map[model3d.Coord3D]int)
	for _, t := range tris {
		var f mesh.Face
		for i, c := range t {
			id, ok := index[c]
			if !ok {
				id = len(out.Vertices)
				index[c] = id
				out.Vertices = append(out.Vertices, r3.Vec{X: c.X, Y: c.Y, Z: c.Z})
			}
			f[i] = id
		}
		out.Faces = append(out.Faces, f)
	}
	return out
}

func coord(v r3.Vec) model3d.Coord3D {
	return model3d.Coord3D{X: v.X, Y: v.Y, Z: v.Z}
}

func lessTriangle(a, b *model3d.Triangle) bool {
	for i := 0; i < 3; i++ {
		if a[i].X != b[i].X {
			return a[i].X < b[i].X
		}
		if a[i].Y != b[i].Y {
			return a[i].Y < b[i].Y
		}
		if a[i].Z != b[i].Z {
			return a[i].Z < b[i].Z
		}
	}
	return false
}

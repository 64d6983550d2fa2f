//go:build cork

// Package cork provides a CGo-based remeshing backend binding the Cork
// boolean library (https://github.com/gilbo/cork). Cork re-triangulates
// intersecting face regions exactly, and its self-union discards geometry
// trapped inside the outer surface.
//
// This package requires the Cork library to be installed. Build with:
// go build -tags=cork
package cork

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lcork -lgmp

#include <stdlib.h>
#include <stdbool.h>
#include <cork.h>
*/
import "C"

import (
	"errors"
	"fmt"
	"unsafe"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/callus/pkg/kernel"
	"github.com/chazu/callus/pkg/mesh"
)

// Compile-time interface check.
var _ kernel.Remesher = (*Remesher)(nil)

// weldEps merges the duplicate border vertices Cork emits along
// re-triangulated seams.
const weldEps = 1e-9

// Remesher implements kernel.Remesher using the Cork C library.
type Remesher struct{}

// New creates a new Cork-backed remesher.
func New() (kernel.Remesher, error) {
	return &Remesher{}, nil
}

// Name identifies the backend for provenance records.
func (r *Remesher) Name() string { return "cork" }

// ResolveSelfIntersections re-triangulates intersecting face regions so no
// two faces cross. With stitchAll set, duplicate vertices along the new
// seams are merged so patches share topology with their surroundings;
// without it the subdivided output is returned as produced.
func (r *Remesher) ResolveSelfIntersections(m *mesh.Mesh, stitchAll bool) (*mesh.Mesh, error) {
	in, err := toCork(m)
	if err != nil {
		return nil, fmt.Errorf("cork resolve: %w", err)
	}
	defer freeInput(in)

	var out C.CorkTriMesh
	C.resolveIntersections(in, &out)
	defer C.freeCorkTriMesh(&out)

	res := fromCork(out, stitchAll)
	if res.IsEmpty() {
		return nil, errors.New("cork resolve: produced an empty mesh")
	}
	res.Name = m.Name
	res.Provenance = m.Provenance.Clone()
	return res, nil
}

// OuterHull unions the mesh with itself, which keeps only the outermost
// surface. Cork requires a closed, consistently oriented input for boolean
// operations.
func (r *Remesher) OuterHull(m *mesh.Mesh) (*mesh.Mesh, error) {
	in, err := toCork(m)
	if err != nil {
		return nil, fmt.Errorf("cork outer hull: %w", err)
	}
	defer freeInput(in)

	if !bool(C.isSolid(in)) {
		return nil, errors.New("cork outer hull: input is not a closed solid")
	}

	var out C.CorkTriMesh
	C.computeUnion(in, in, &out)
	defer C.freeCorkTriMesh(&out)

	res := fromCork(out, true)
	if res.IsEmpty() {
		return nil, errors.New("cork outer hull: produced an empty mesh")
	}
	res.Name = m.Name
	res.Provenance = m.Provenance.Clone()
	return res, nil
}

// toCork copies a mesh into a C-heap CorkTriMesh. Callers free it with
// freeInput.
func toCork(m *mesh.Mesh) (C.CorkTriMesh, error) {
	if m == nil || m.IsEmpty() {
		return C.CorkTriMesh{}, errors.New("empty mesh")
	}
	if err := m.Validate(); err != nil {
		return C.CorkTriMesh{}, err
	}

	nv := len(m.Vertices)
	nt := len(m.Faces)

	verts := (*C.float)(C.malloc(C.size_t(nv * 3 * C.sizeof_float)))
	tris := (*C.uint)(C.malloc(C.size_t(nt * 3 * C.sizeof_uint)))

	vs := unsafe.Slice(verts, nv*3)
	for i, v := range m.Vertices {
		vs[i*3+0] = C.float(v.X)
		vs[i*3+1] = C.float(v.Y)
		vs[i*3+2] = C.float(v.Z)
	}
	ts := unsafe.Slice(tris, nt*3)
	for i, f := range m.Faces {
		ts[i*3+0] = C.uint(f[0])
		ts[i*3+1] = C.uint(f[1])
		ts[i*3+2] = C.uint(f[2])
	}

	return C.CorkTriMesh{
		n_triangles: C.uint(nt),
		n_vertices:  C.uint(nv),
		triangles:   tris,
		vertices:    verts,
	}, nil
}

func freeInput(cm C.CorkTriMesh) {
	if cm.triangles != nil {
		C.free(unsafe.Pointer(cm.triangles))
	}
	if cm.vertices != nil {
		C.free(unsafe.Pointer(cm.vertices))
	}
}

// fromCork copies a Cork output into a Mesh. With weld set, vertices at
// identical positions are merged afterwards.
func fromCork(cm C.CorkTriMesh, weld bool) *mesh.Mesh {
	nv := int(cm.n_vertices)
	nt := int(cm.n_triangles)
	out := mesh.New()
	if nv == 0 || nt == 0 {
		return out
	}

	vs := unsafe.Slice(cm.vertices, nv*3)
	out.Vertices = make([]r3.Vec, nv)
	for i := range out.Vertices {
		out.Vertices[i] = r3.Vec{
			X: float64(vs[i*3+0]),
			Y: float64(vs[i*3+1]),
			Z: float64(vs[i*3+2]),
		}
	}

	ts := unsafe.Slice(cm.triangles, nt*3)
	out.Faces = make([]mesh.Face, nt)
	for i := range out.Faces {
		out.Faces[i] = mesh.Face{int(ts[i*3+0]), int(ts[i*3+1]), int(ts[i*3+2])}
	}

	if weld {
		out.MergeVertices(weldEps)
	}
	return out
}

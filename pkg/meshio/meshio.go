// Package meshio reads and writes meshes as STL files.
//
// STL carries no connectivity: every triangle owns its three vertices.
// Read therefore returns a triangle soup; callers that need shared
// vertices weld it afterwards, typically through the merge_vertices
// repair operation. Write flattens shared vertices back out, so a
// write/read round trip preserves geometry but not indexing.
package meshio

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/krasin/stl"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/callus/pkg/mesh"
)

// Write emits m as binary STL.
func Write(w io.Writer, m *mesh.Mesh) error {
	if m == nil {
		return fmt.Errorf("meshio: nil mesh")
	}
	return stl.WriteBinary(w, toTriangles(m))
}

// WriteASCII emits m as ASCII STL. Binary is the default; ASCII exists
// for tools that cannot parse the binary form.
func WriteASCII(w io.Writer, m *mesh.Mesh) error {
	if m == nil {
		return fmt.Errorf("meshio: nil mesh")
	}
	return stl.WriteASCII(w, toTriangles(m))
}

// WriteFile writes m to path as binary STL, creating or truncating the
// file.
func WriteFile(path string, m *mesh.Mesh) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("meshio: %w", err)
	}
	if err := Write(f, m); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("meshio: %w", err)
	}
	return nil
}

// Read parses an STL stream, binary or ASCII, into a triangle soup.
// Each face references its own three vertices.
func Read(r io.Reader) (*mesh.Mesh, error) {
	tris, err := stl.Read(r)
	if err != nil {
		return nil, fmt.Errorf("meshio: %w", err)
	}
	return fromTriangles(tris), nil
}

// ReadFile reads the STL file at path.
func ReadFile(path string) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("meshio: %w", err)
	}
	defer f.Close()
	return Read(f)
}

func toTriangles(m *mesh.Mesh) []stl.Triangle {
	tris := make([]stl.Triangle, len(m.Faces))
	for i, f := range m.Faces {
		n := m.FaceNormal(i)
		if math.IsNaN(n.X) {
			// Zero-area face. STL permits a zero normal and
			// readers recompute from the vertices.
			n = r3.Vec{}
		}
		tris[i] = stl.Triangle{
			N: stl.Point{float32(n.X), float32(n.Y), float32(n.Z)},
			V: [3]stl.Point{
				toPoint(m.Vertices[f[0]]),
				toPoint(m.Vertices[f[1]]),
				toPoint(m.Vertices[f[2]]),
			},
		}
	}
	return tris
}

func fromTriangles(tris []stl.Triangle) *mesh.Mesh {
	m := mesh.New()
	m.Vertices = make([]r3.Vec, 0, 3*len(tris))
	m.Faces = make([]mesh.Face, 0, len(tris))
	for _, t := range tris {
		base := len(m.Vertices)
		for _, v := range t.V {
			m.Vertices = append(m.Vertices, r3.Vec{
				X: float64(v[0]),
				Y: float64(v[1]),
				Z: float64(v[2]),
			})
		}
		m.Faces = append(m.Faces, mesh.Face{base, base + 1, base + 2})
	}
	return m
}

func toPoint(v r3.Vec) stl.Point {
	return stl.Point{float32(v.X), float32(v.Y), float32(v.Z)}
}

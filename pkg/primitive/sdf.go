package primitive

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/callus/pkg/mesh"
)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 50

// FromSDF tessellates a signed distance field into a triangle soup using
// marching cubes. Every triangle carries its own three vertices; welding is
// a separate repair step, same as for any imported tessellator output.
func FromSDF(s sdf.SDF3, cells int) *mesh.Mesh {
	if cells <= 0 {
		cells = DefaultMeshCells
	}

	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)

	m := mesh.New()
	m.Vertices = make([]r3.Vec, 0, len(triangles)*3)
	m.Faces = make([]mesh.Face, 0, len(triangles))
	for i, tri := range triangles {
		for j := 0; j < 3; j++ {
			v := tri[j]
			m.Vertices = append(m.Vertices, r3.Vec{X: v.X, Y: v.Y, Z: v.Z})
		}
		m.Faces = append(m.Faces, mesh.Face{i * 3, i*3 + 1, i*3 + 2})
	}
	return m
}

// Sphere tessellates a sphere of the given radius centered at the origin.
// The result is an unwelded soup; run vertex merging before topology checks.
func Sphere(radius float64, cells int) (*mesh.Mesh, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("sphere radius must be positive, got %v", radius)
	}
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sphere tessellation: %w", err)
	}
	m := FromSDF(s, cells)
	m.Name = "sphere"
	return m, nil
}

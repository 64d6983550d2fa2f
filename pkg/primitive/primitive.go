// Package primitive constructs seed meshes for repair pipelines. Hand-built
// shapes (boxes, planes, open cylinders) come out welded and consistently
// wound; SDF-tessellated shapes come out as raw triangle soups the way a
// marching cubes renderer emits them, with every corner duplicated.
package primitive

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/callus/pkg/mesh"
)

// boxFaces is the shared face table for axis-aligned boxes, wound
// counter-clockwise viewed from outside.
var boxFaces = []mesh.Face{
	{0, 2, 1}, {0, 3, 2}, // bottom
	{4, 5, 6}, {4, 6, 7}, // top
	{0, 1, 5}, {0, 5, 4}, // front
	{2, 3, 7}, {2, 7, 6}, // back
	{0, 4, 7}, {0, 7, 3}, // left
	{1, 2, 6}, {1, 6, 5}, // right
}

// Box returns a closed box with the given dimensions and its minimum corner
// at the origin, so placement translations work intuitively.
func Box(x, y, z float64) (*mesh.Mesh, error) {
	if x <= 0 || y <= 0 || z <= 0 {
		return nil, fmt.Errorf("box dimensions must be positive, got (%v, %v, %v)", x, y, z)
	}
	vertices := []r3.Vec{
		{X: 0, Y: 0, Z: 0}, {X: x, Y: 0, Z: 0}, {X: x, Y: y, Z: 0}, {X: 0, Y: y, Z: 0},
		{X: 0, Y: 0, Z: z}, {X: x, Y: 0, Z: z}, {X: x, Y: y, Z: z}, {X: 0, Y: y, Z: z},
	}
	faces := make([]mesh.Face, len(boxFaces))
	copy(faces, boxFaces)
	m := mesh.NewFrom(vertices, faces)
	m.Name = "box"
	return m, nil
}

// Cube returns a closed cube with the given edge length and its minimum
// corner at the origin.
func Cube(size float64) (*mesh.Mesh, error) {
	m, err := Box(size, size, size)
	if err != nil {
		return nil, err
	}
	m.Name = "cube"
	return m, nil
}

// Plane returns an open rectangle in the z=0 plane: four vertices, two
// faces, one boundary loop. Normals point up.
func Plane(width, depth float64) (*mesh.Mesh, error) {
	if width <= 0 || depth <= 0 {
		return nil, fmt.Errorf("plane dimensions must be positive, got (%v, %v)", width, depth)
	}
	m := mesh.NewFrom(
		[]r3.Vec{
			{X: 0, Y: 0, Z: 0}, {X: width, Y: 0, Z: 0},
			{X: width, Y: depth, Z: 0}, {X: 0, Y: depth, Z: 0},
		},
		[]mesh.Face{{0, 1, 2}, {0, 2, 3}},
	)
	m.Name = "plane"
	return m, nil
}

// OpenCylinder returns the side wall of a cylinder with no caps: two
// boundary loops of segments vertices each. Normals point radially outward.
// The axis runs along z from 0 to height.
func OpenCylinder(radius, height float64, segments int) (*mesh.Mesh, error) {
	if radius <= 0 || height <= 0 {
		return nil, fmt.Errorf("cylinder radius and height must be positive, got (%v, %v)", radius, height)
	}
	if segments < 3 {
		return nil, fmt.Errorf("cylinder needs at least 3 segments, got %d", segments)
	}

	m := mesh.New()
	for _, z := range []float64{0, height} {
		for i := 0; i < segments; i++ {
			angle := 2 * math.Pi * float64(i) / float64(segments)
			m.Vertices = append(m.Vertices, r3.Vec{
				X: radius * math.Cos(angle),
				Y: radius * math.Sin(angle),
				Z: z,
			})
		}
	}
	for i := 0; i < segments; i++ {
		i2 := (i + 1) % segments
		b, b2 := i, i2
		t, t2 := segments+i, segments+i2
		m.Faces = append(m.Faces, mesh.Face{b, b2, t2}, mesh.Face{b, t2, t})
	}
	m.Name = "open-cylinder"
	return m, nil
}

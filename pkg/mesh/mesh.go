// Package mesh defines the core triangle mesh value for Callus.
// A Mesh is an ordered sequence of 3D vertices plus a collection of
// triangular faces indexing into it, with optional named scalar fields
// and a structured provenance record. Repair operations treat meshes as
// immutable: they clone their input and return a new value.
package mesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Face is a triangle: three indices into the vertex sequence.
type Face [3]int

// Mesh is the central data value of the repair pipeline.
type Mesh struct {
	Vertices []r3.Vec
	Faces    []Face

	// Named per-element scalar fields. Keys are field names (see fields.go),
	// values are arrays whose length matches the element count at the time
	// the field was attached.
	VertexFields map[string][]float64
	FaceFields   map[string][]float64

	// Provenance records which operations produced this mesh value.
	Provenance Provenance

	// Name labels the mesh for reports and UI display. Optional.
	Name string
}

// New creates an empty mesh.
func New() *Mesh {
	return &Mesh{}
}

// NewFrom creates a mesh from vertex and face slices. The slices are
// retained, not copied.
func NewFrom(vertices []r3.Vec, faces []Face) *Mesh {
	return &Mesh{Vertices: vertices, Faces: faces}
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Clone returns a deep copy of the mesh, including fields and provenance.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Vertices:   make([]r3.Vec, len(m.Vertices)),
		Faces:      make([]Face, len(m.Faces)),
		Provenance: m.Provenance.Clone(),
		Name:       m.Name,
	}
	copy(c.Vertices, m.Vertices)
	copy(c.Faces, m.Faces)

	if m.VertexFields != nil {
		c.VertexFields = make(map[string][]float64, len(m.VertexFields))
		for name, vals := range m.VertexFields {
			dup := make([]float64, len(vals))
			copy(dup, vals)
			c.VertexFields[name] = dup
		}
	}
	if m.FaceFields != nil {
		c.FaceFields = make(map[string][]float64, len(m.FaceFields))
		for name, vals := range m.FaceFields {
			dup := make([]float64, len(vals))
			copy(dup, vals)
			c.FaceFields[name] = dup
		}
	}
	return c
}

// Validate checks structural integrity: every face index must reference a
// valid vertex position.
func (m *Mesh) Validate() error {
	n := len(m.Vertices)
	for i, f := range m.Faces {
		for _, v := range f {
			if v < 0 || v >= n {
				return fmt.Errorf("face %d references vertex %d, mesh has %d vertices", i, v, n)
			}
		}
	}
	return nil
}

// Bounds returns the axis-aligned bounding box of the vertex set.
// An empty mesh returns two zero vectors.
func (m *Mesh) Bounds() (min, max r3.Vec) {
	if len(m.Vertices) == 0 {
		return r3.Vec{}, r3.Vec{}
	}
	min = m.Vertices[0]
	max = m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		min.X = math.Min(min.X, v.X)
		min.Y = math.Min(min.Y, v.Y)
		min.Z = math.Min(min.Z, v.Z)
		max.X = math.Max(max.X, v.X)
		max.Y = math.Max(max.Y, v.Y)
		max.Z = math.Max(max.Z, v.Z)
	}
	return min, max
}

// IsDegenerateFace reports whether face i has repeated vertex indices or
// an area below the given threshold.
func (m *Mesh) IsDegenerateFace(i int, areaTol float64) bool {
	f := m.Faces[i]
	if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
		return true
	}
	return m.FaceArea(i) < areaTol
}

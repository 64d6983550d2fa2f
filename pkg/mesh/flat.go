package mesh

import "gonum.org/v1/gonum/spatial/r3"

// Flat is the JSON-serializable wire form sent to the frontend.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Flat struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name"`
}

// Flatten converts the mesh to its wire form, computing smooth per-vertex
// normals for shading.
func (m *Mesh) Flatten() *Flat {
	f := &Flat{
		Vertices: make([]float32, 0, len(m.Vertices)*3),
		Normals:  make([]float32, 0, len(m.Vertices)*3),
		Indices:  make([]uint32, 0, len(m.Faces)*3),
		Name:     m.Name,
	}
	normals := m.VertexNormals()
	for i, v := range m.Vertices {
		f.Vertices = append(f.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
		n := normals[i]
		f.Normals = append(f.Normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
	for _, face := range m.Faces {
		f.Indices = append(f.Indices, uint32(face[0]), uint32(face[1]), uint32(face[2]))
	}
	return f
}

// FromFlat rebuilds a Mesh from the wire form. Normals are discarded; they
// are derived data.
func FromFlat(f *Flat) *Mesh {
	m := &Mesh{
		Vertices: make([]r3.Vec, 0, len(f.Vertices)/3),
		Faces:    make([]Face, 0, len(f.Indices)/3),
		Name:     f.Name,
	}
	for i := 0; i+2 < len(f.Vertices); i += 3 {
		m.Vertices = append(m.Vertices, r3.Vec{
			X: float64(f.Vertices[i]),
			Y: float64(f.Vertices[i+1]),
			Z: float64(f.Vertices[i+2]),
		})
	}
	for i := 0; i+2 < len(f.Indices); i += 3 {
		m.Faces = append(m.Faces, Face{int(f.Indices[i]), int(f.Indices[i+1]), int(f.Indices[i+2])})
	}
	return m
}

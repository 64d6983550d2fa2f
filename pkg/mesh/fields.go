package mesh

import "fmt"

// Canonical field names attached by the repair operations. Downstream
// visualization keys on these exact names, so they are part of the contract.
const (
	// FieldSelfIntersecting is a per-face binary flag: 1 if the face
	// intersects at least one non-adjacent face.
	FieldSelfIntersecting = "self_intersecting"

	// FieldIntersectionFlag is a per-vertex binary flag: 1 if the vertex
	// belongs to any intersecting face.
	FieldIntersectionFlag = "intersection_flag"

	// FieldIntersectionCount is a per-vertex count of distinct intersecting
	// faces incident to the vertex.
	FieldIntersectionCount = "intersection_count"
)

// SetFaceField attaches a named per-face field. The array length must match
// the current face count.
func (m *Mesh) SetFaceField(name string, values []float64) error {
	if len(values) != len(m.Faces) {
		return fmt.Errorf("face field %q has %d values, mesh has %d faces", name, len(values), len(m.Faces))
	}
	if m.FaceFields == nil {
		m.FaceFields = make(map[string][]float64)
	}
	m.FaceFields[name] = values
	return nil
}

// SetVertexField attaches a named per-vertex field. The array length must
// match the current vertex count.
func (m *Mesh) SetVertexField(name string, values []float64) error {
	if len(values) != len(m.Vertices) {
		return fmt.Errorf("vertex field %q has %d values, mesh has %d vertices", name, len(values), len(m.Vertices))
	}
	if m.VertexFields == nil {
		m.VertexFields = make(map[string][]float64)
	}
	m.VertexFields[name] = values
	return nil
}

// FaceField returns the named per-face field, or nil if absent.
func (m *Mesh) FaceField(name string) []float64 {
	return m.FaceFields[name]
}

// VertexField returns the named per-vertex field, or nil if absent.
func (m *Mesh) VertexField(name string) []float64 {
	return m.VertexFields[name]
}

// HasFaceField reports whether the named per-face field is attached.
func (m *Mesh) HasFaceField(name string) bool {
	_, ok := m.FaceFields[name]
	return ok
}

// HasVertexField reports whether the named per-vertex field is attached.
func (m *Mesh) HasVertexField(name string) bool {
	_, ok := m.VertexFields[name]
	return ok
}

// DropFields removes all attached fields. Topology-changing operations call
// this, since field arrays are keyed to the old element counts.
func (m *Mesh) DropFields() {
	m.VertexFields = nil
	m.FaceFields = nil
}

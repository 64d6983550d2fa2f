package mesh

import "gonum.org/v1/gonum/spatial/r3"

// Concat returns a new mesh containing the geometry of both inputs. Face
// indices of b are offset past a's vertices; no welding is performed, so
// coincident surfaces stay topologically separate. Fields and provenance of
// the inputs are not carried over.
func Concat(a, b *Mesh) *Mesh {
	out := &Mesh{
		Vertices: make([]r3.Vec, 0, len(a.Vertices)+len(b.Vertices)),
		Faces:    make([]Face, 0, len(a.Faces)+len(b.Faces)),
	}
	out.Vertices = append(out.Vertices, a.Vertices...)
	out.Vertices = append(out.Vertices, b.Vertices...)
	out.Faces = append(out.Faces, a.Faces...)

	offset := len(a.Vertices)
	for _, f := range b.Faces {
		out.Faces = append(out.Faces, Face{f[0] + offset, f[1] + offset, f[2] + offset})
	}
	return out
}

// Translate shifts every vertex by the given offset, in place.
func (m *Mesh) Translate(offset r3.Vec) {
	for i, v := range m.Vertices {
		m.Vertices[i] = r3.Add(v, offset)
	}
}

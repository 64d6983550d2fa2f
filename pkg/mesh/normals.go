package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DegenerateAreaTol is the absolute face-area threshold below which a face
// counts as degenerate.
const DegenerateAreaTol = 1e-10

// FaceNormal returns the unit normal of face i. If the face has zero area
// the components are NaN, which callers treat as "normal undefined".
func (m *Mesh) FaceNormal(i int) r3.Vec {
	f := m.Faces[i]
	a := m.Vertices[f[0]]
	b := m.Vertices[f[1]]
	c := m.Vertices[f[2]]
	n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
	return r3.Scale(1/r3.Norm(n), n)
}

// FaceArea returns the area of face i.
func (m *Mesh) FaceArea(i int) float64 {
	f := m.Faces[i]
	a := m.Vertices[f[0]]
	b := m.Vertices[f[1]]
	c := m.Vertices[f[2]]
	return 0.5 * r3.Norm(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
}

// SurfaceArea returns the sum of all face areas.
func (m *Mesh) SurfaceArea() float64 {
	var total float64
	for i := range m.Faces {
		total += m.FaceArea(i)
	}
	return total
}

// SignedVolume returns the signed volume of the mesh computed as a sum of
// signed tetrahedra against the origin. Only meaningful for watertight,
// consistently wound meshes; callers check those preconditions.
func (m *Mesh) SignedVolume() float64 {
	var total float64
	for _, f := range m.Faces {
		a := m.Vertices[f[0]]
		b := m.Vertices[f[1]]
		c := m.Vertices[f[2]]
		total += r3.Dot(a, r3.Cross(b, c)) / 6.0
	}
	return total
}

// NormalStats summarizes the face-normal health of a mesh.
type NormalStats struct {
	NaNCount       int     // faces whose normal is undefined (zero area)
	MeanUnitLength float64 // mean length of defined unit normals, expected ~1.0
	Degenerate     int     // faces with repeated indices or area < DegenerateAreaTol
}

// ComputeNormalStats scans all faces once, counting undefined normals and
// degenerate faces and averaging the length of the defined unit normals.
// An empty mesh reports zero counts and a zero mean (0/0 guarded).
func (m *Mesh) ComputeNormalStats() NormalStats {
	var stats NormalStats
	var lengthSum float64
	var defined int

	for i := range m.Faces {
		if m.IsDegenerateFace(i, DegenerateAreaTol) {
			stats.Degenerate++
		}
		n := m.FaceNormal(i)
		if math.IsNaN(n.X) || math.IsNaN(n.Y) || math.IsNaN(n.Z) {
			stats.NaNCount++
			continue
		}
		lengthSum += r3.Norm(n)
		defined++
	}
	if defined > 0 {
		stats.MeanUnitLength = lengthSum / float64(defined)
	}
	return stats
}

// VertexNormals computes per-vertex normals by accumulating the area-weighted
// face normals of all incident faces and normalizing. Vertices referenced by
// no face, or only by zero-area faces, get a zero normal.
func (m *Mesh) VertexNormals() []r3.Vec {
	normals := make([]r3.Vec, len(m.Vertices))
	for _, f := range m.Faces {
		a := m.Vertices[f[0]]
		b := m.Vertices[f[1]]
		c := m.Vertices[f[2]]
		// Unnormalized cross product: length is twice the face area, so
		// accumulation is area-weighted for free.
		n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
		for _, vi := range f {
			normals[vi] = r3.Add(normals[vi], n)
		}
	}
	for i, n := range normals {
		length := r3.Norm(n)
		if length > 1e-12 {
			normals[i] = r3.Scale(1/length, n)
		} else {
			normals[i] = r3.Vec{}
		}
	}
	return normals
}

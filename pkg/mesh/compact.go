package mesh

import "math"

// RemoveUnreferencedVertices strips vertices no face references and compacts
// the remaining indices. Attached fields are dropped since element counts
// change. Returns the number of vertices removed.
func (m *Mesh) RemoveUnreferencedVertices() int {
	referenced := make([]bool, len(m.Vertices))
	for _, f := range m.Faces {
		for _, v := range f {
			referenced[v] = true
		}
	}

	remap := make([]int, len(m.Vertices))
	kept := 0
	for i, used := range referenced {
		if used {
			m.Vertices[kept] = m.Vertices[i]
			remap[i] = kept
			kept++
		} else {
			remap[i] = -1
		}
	}
	removed := len(m.Vertices) - kept
	if removed == 0 {
		return 0
	}

	m.Vertices = m.Vertices[:kept]
	for i, f := range m.Faces {
		m.Faces[i] = Face{remap[f[0]], remap[f[1]], remap[f[2]]}
	}
	m.DropFields()
	return removed
}

// RemoveDegenerateFaces drops faces with repeated vertex indices or area
// below areaTol. Returns the number of faces removed.
func (m *Mesh) RemoveDegenerateFaces(areaTol float64) int {
	kept := 0
	for i := range m.Faces {
		if m.IsDegenerateFace(i, areaTol) {
			continue
		}
		m.Faces[kept] = m.Faces[i]
		kept++
	}
	removed := len(m.Faces) - kept
	if removed == 0 {
		return 0
	}
	m.Faces = m.Faces[:kept]
	m.DropFields()
	return removed
}

// gridKey quantizes a coordinate onto a tolerance grid.
type gridKey [3]int64

// MergeVertices welds vertices that quantize to the same tolerance-grid
// cell, keeping the first occurrence's position, remapping faces, and
// dropping faces that collapse. Vertices within tolerance but across a cell
// boundary are not merged; that is the accepted trade-off of grid welding.
// Returns the numbers of vertices and faces removed.
func (m *Mesh) MergeVertices(tol float64) (verticesRemoved, facesRemoved int) {
	if tol <= 0 {
		return 0, 0
	}
	seen := make(map[gridKey]int, len(m.Vertices))
	remap := make([]int, len(m.Vertices))
	kept := 0
	for i, v := range m.Vertices {
		key := gridKey{
			int64(math.Round(v.X / tol)),
			int64(math.Round(v.Y / tol)),
			int64(math.Round(v.Z / tol)),
		}
		if first, ok := seen[key]; ok {
			remap[i] = first
			continue
		}
		m.Vertices[kept] = v
		seen[key] = kept
		remap[i] = kept
		kept++
	}
	verticesRemoved = len(m.Vertices) - kept
	m.Vertices = m.Vertices[:kept]

	keptFaces := 0
	for _, f := range m.Faces {
		nf := Face{remap[f[0]], remap[f[1]], remap[f[2]]}
		if nf[0] == nf[1] || nf[1] == nf[2] || nf[0] == nf[2] {
			continue
		}
		m.Faces[keptFaces] = nf
		keptFaces++
	}
	facesRemoved = len(m.Faces) - keptFaces
	m.Faces = m.Faces[:keptFaces]

	if verticesRemoved > 0 || facesRemoved > 0 {
		m.DropFields()
	}
	return verticesRemoved, facesRemoved
}

// FlipFace reverses the winding of face i by swapping two indices.
func (m *Mesh) FlipFace(i int) {
	m.Faces[i][1], m.Faces[i][2] = m.Faces[i][2], m.Faces[i][1]
}

package mesh

// EdgeKey identifies an undirected edge by its two vertex indices in
// canonical (low, high) order.
type EdgeKey struct {
	Lo, Hi int
}

// MakeEdgeKey canonicalizes an ordered vertex pair.
func MakeEdgeKey(a, b int) EdgeKey {
	if a < b {
		return EdgeKey{Lo: a, Hi: b}
	}
	return EdgeKey{Lo: b, Hi: a}
}

// faceEdges returns the three directed edges of a face in winding order.
func faceEdges(f Face) [3][2]int {
	return [3][2]int{
		{f[0], f[1]},
		{f[1], f[2]},
		{f[2], f[0]},
	}
}

// EdgeFaces maps every undirected edge to the faces that use it.
func (m *Mesh) EdgeFaces() map[EdgeKey][]int {
	edges := make(map[EdgeKey][]int, len(m.Faces)*3/2)
	for i, f := range m.Faces {
		for _, e := range faceEdges(f) {
			key := MakeEdgeKey(e[0], e[1])
			edges[key] = append(edges[key], i)
		}
	}
	return edges
}

// EdgeCount returns the number of distinct undirected edges.
func (m *Mesh) EdgeCount() int {
	return len(m.EdgeFaces())
}

// IsWatertight reports whether every edge is shared by exactly two faces.
// An empty mesh is trivially watertight.
func (m *Mesh) IsWatertight() bool {
	for _, faces := range m.EdgeFaces() {
		if len(faces) != 2 {
			return false
		}
	}
	return true
}

// IsWindingConsistent reports whether all adjacent face pairs agree on
// orientation: two faces sharing an edge must traverse it in opposite
// directions. Equivalently, no directed edge may appear twice.
func (m *Mesh) IsWindingConsistent() bool {
	seen := make(map[[2]int]int, len(m.Faces)*3)
	for _, f := range m.Faces {
		for _, e := range faceEdges(f) {
			seen[[2]int{e[0], e[1]}]++
		}
	}
	for directed, count := range seen {
		if count > 1 {
			return false
		}
		// An undirected edge with more than two faces total is not
		// orientable either.
		if count+seen[[2]int{directed[1], directed[0]}] > 2 {
			return false
		}
	}
	return true
}

// BoundaryEdges returns all edges bordered by exactly one face.
func (m *Mesh) BoundaryEdges() []EdgeKey {
	var boundary []EdgeKey
	for key, faces := range m.EdgeFaces() {
		if len(faces) == 1 {
			boundary = append(boundary, key)
		}
	}
	return boundary
}

// FaceAdjacency returns, for each face, the indices of faces sharing an
// edge with it. Non-manifold edges (more than two faces) contribute all
// pairings.
func (m *Mesh) FaceAdjacency() [][]int {
	adj := make([][]int, len(m.Faces))
	for _, faces := range m.EdgeFaces() {
		for _, a := range faces {
			for _, b := range faces {
				if a != b {
					adj[a] = append(adj[a], b)
				}
			}
		}
	}
	return adj
}

// FaceComponents partitions faces into edge-connected components and
// returns the component id per face plus the number of components.
func (m *Mesh) FaceComponents() (ids []int, count int) {
	ids = make([]int, len(m.Faces))
	for i := range ids {
		ids[i] = -1
	}
	adj := m.FaceAdjacency()

	for seed := range m.Faces {
		if ids[seed] != -1 {
			continue
		}
		// BFS flood fill from the seed.
		ids[seed] = count
		queue := []int{seed}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, nb := range adj[cur] {
				if ids[nb] == -1 {
					ids[nb] = count
					queue = append(queue, nb)
				}
			}
		}
		count++
	}
	return ids, count
}

// SharesVertex reports whether faces a and b have a vertex index in common.
func (m *Mesh) SharesVertex(a, b int) bool {
	fa := m.Faces[a]
	fb := m.Faces[b]
	for _, va := range fa {
		for _, vb := range fb {
			if va == vb {
				return true
			}
		}
	}
	return false
}

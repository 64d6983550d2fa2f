package mesh

// BoundaryLoops extracts the hole boundaries of the mesh: each loop is an
// ordered cyclic sequence of vertex indices along edges bordered by exactly
// one face. Loops follow the directed traversal of the bordering face, so a
// consistently wound mesh yields consistently oriented loops.
//
// Vertices where more than two boundary edges meet (pinch points) split
// conservatively: the walk takes the first unused outgoing edge, producing
// several simple loops rather than one self-touching loop. Chains that never
// close (malformed boundary topology) are discarded.
func (m *Mesh) BoundaryLoops() [][]int {
	counts := make(map[EdgeKey]int, len(m.Faces)*3/2)
	for _, f := range m.Faces {
		for _, e := range faceEdges(f) {
			counts[MakeEdgeKey(e[0], e[1])]++
		}
	}

	// Collect directed boundary edges in face-scan order for determinism.
	type dedge struct{ from, to int }
	var order []dedge
	out := make(map[int][]int) // from -> candidate targets, in scan order
	for _, f := range m.Faces {
		for _, e := range faceEdges(f) {
			if counts[MakeEdgeKey(e[0], e[1])] == 1 {
				order = append(order, dedge{e[0], e[1]})
				out[e[0]] = append(out[e[0]], e[1])
			}
		}
	}

	used := make(map[dedge]bool, len(order))
	var loops [][]int

	for _, start := range order {
		if used[start] {
			continue
		}
		loop := []int{start.from}
		cur := start
		used[cur] = true
		closed := false
		for {
			if cur.to == start.from {
				closed = true
				break
			}
			loop = append(loop, cur.to)
			advanced := false
			for _, target := range out[cur.to] {
				step := dedge{cur.to, target}
				if !used[step] {
					used[step] = true
					cur = step
					advanced = true
					break
				}
			}
			if !advanced {
				break // dead end, boundary is malformed here
			}
		}
		if closed && len(loop) >= 3 {
			loops = append(loops, loop)
		}
	}
	return loops
}

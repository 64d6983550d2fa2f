package repair

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/callus/pkg/mesh"
)

// liepaFill triangulates one boundary loop with a minimum-weight patch.
// Candidate triangulations are ranked by their worst dihedral dot against
// the surrounding surface and against each other, with total patch area as
// the tie break, so the patch follows the surface instead of folding
// through it. ef is the edge-to-face index of the mesh before any patching.
// The returned faces traverse each border edge opposite to the existing
// face on the other side, matching the surrounding winding. Always emits
// exactly len(loop)-2 faces.
func liepaFill(m *mesh.Mesh, ef map[mesh.EdgeKey][]int, loop []int) []mesh.Face {
	n := len(loop)
	if n < 3 {
		return nil
	}

	// Work on the reversed loop: boundary loops follow the winding of the
	// existing faces, and the patch must run against it.
	rev := make([]int, n)
	for i, v := range loop {
		rev[n-1-i] = v
	}
	if n == 3 {
		return []mesh.Face{{rev[0], rev[1], rev[2]}}
	}

	// Normal of the existing face across each border edge, zero where the
	// border is non-manifold.
	adj := make([]r3.Vec, n)
	for i := 0; i < n; i++ {
		key := mesh.MakeEdgeKey(rev[i], rev[(i+1)%n])
		if faces := ef[key]; len(faces) == 1 {
			adj[i] = m.FaceNormal(faces[0])
		}
	}

	tri := func(a, b, c int) (r3.Vec, float64) {
		va := m.Vertices[rev[a]]
		vb := m.Vertices[rev[b]]
		vc := m.Vertices[rev[c]]
		cross := r3.Cross(r3.Sub(vb, va), r3.Sub(vc, va))
		length := r3.Norm(cross)
		if length > 0 {
			cross = r3.Scale(1/length, cross)
		}
		return cross, length / 2
	}

	// table[i][j] holds the best triangulation of the sub-polygon rev[i..j].
	type span struct {
		dot    float64 // worst dihedral dot across the chosen triangulation
		area   float64
		split  int
		normal r3.Vec // normal of triangle (i, split, j)
	}
	table := make([][]span, n)
	for i := range table {
		table[i] = make([]span, n)
	}

	// Width-2 spans are single triangles bordered by two surface edges.
	for i := 0; i+2 < n; i++ {
		normal, area := tri(i, i+1, i+2)
		dot := math.Min(r3.Dot(normal, adj[i]), r3.Dot(normal, adj[i+1]))
		table[i][i+2] = span{dot: dot, area: area, split: i + 1, normal: normal}
	}

	for width := 3; width < n; width++ {
		for i := 0; i+width < n; i++ {
			j := i + width
			best := span{dot: math.Inf(-1), area: math.Inf(1), split: -1}
			for k := i + 1; k < j; k++ {
				normal, area := tri(i, k, j)

				leftN, leftDot, leftArea := adj[i], 1.0, 0.0
				if k > i+1 {
					left := table[i][k]
					leftN, leftDot, leftArea = left.normal, left.dot, left.area
				}
				rightN, rightDot, rightArea := adj[k], 1.0, 0.0
				if j > k+1 {
					right := table[k][j]
					rightN, rightDot, rightArea = right.normal, right.dot, right.area
				}

				dot := math.Min(r3.Dot(normal, leftN), r3.Dot(normal, rightN))
				if i == 0 && j == n-1 {
					// The closing span also borders the surface edge between
					// the loop ends.
					dot = math.Min(dot, r3.Dot(normal, adj[n-1]))
				}
				dot = math.Min(dot, math.Min(leftDot, rightDot))
				area += leftArea + rightArea

				if dot > best.dot || (dot == best.dot && area < best.area) {
					best = span{dot: dot, area: area, split: k, normal: normal}
				}
			}
			table[i][j] = best
		}
	}

	out := make([]mesh.Face, 0, n-2)
	stack := [][2]int{{0, n - 1}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		i, j := top[0], top[1]
		k := table[i][j].split
		out = append(out, mesh.Face{rev[i], rev[k], rev[j]})
		if k-i > 1 {
			stack = append(stack, [2]int{i, k})
		}
		if j-k > 1 {
			stack = append(stack, [2]int{k, j})
		}
	}
	return out
}

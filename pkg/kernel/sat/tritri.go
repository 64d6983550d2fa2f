package sat

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// classify buckets a signed distance into -1, 0, +1 against the contact
// tolerance.
func classify(d, eps float64) int {
	if d > eps {
		return 1
	}
	if d < -eps {
		return -1
	}
	return 0
}

// triTriIntersect reports whether two triangles properly intersect.
// Contacts thinner than eps (shared vertices, edges resting on a surface)
// do not count. The test classifies each triangle's vertices against the
// other's plane, rejects one-sided pairs, handles coplanar pairs with a 2D
// separating axis test, and otherwise compares the overlap intervals both
// triangles cut on the plane intersection line.
func triTriIntersect(t0, t1 [3]r3.Vec, eps float64) bool {
	n0 := r3.Cross(r3.Sub(t0[1], t0[0]), r3.Sub(t0[2], t0[0]))
	norm0 := r3.Norm(n0)
	if norm0 == 0 {
		return false
	}
	n0 = r3.Scale(1/norm0, n0)

	var d1 [3]float64
	var s1 [3]int
	allZero := true
	for i, v := range t1 {
		d1[i] = r3.Dot(n0, r3.Sub(v, t0[0]))
		s1[i] = classify(d1[i], eps)
		if s1[i] != 0 {
			allZero = false
		}
	}
	if s1[0] > 0 && s1[1] > 0 && s1[2] > 0 {
		return false
	}
	if s1[0] < 0 && s1[1] < 0 && s1[2] < 0 {
		return false
	}

	n1 := r3.Cross(r3.Sub(t1[1], t1[0]), r3.Sub(t1[2], t1[0]))
	norm1 := r3.Norm(n1)
	if norm1 == 0 {
		return false
	}
	n1 = r3.Scale(1/norm1, n1)

	if allZero {
		return coplanarOverlap(t0, t1, n0, eps)
	}

	var d0 [3]float64
	var s0 [3]int
	for i, v := range t0 {
		d0[i] = r3.Dot(n1, r3.Sub(v, t1[0]))
		s0[i] = classify(d0[i], eps)
	}
	if s0[0] > 0 && s0[1] > 0 && s0[2] > 0 {
		return false
	}
	if s0[0] < 0 && s0[1] < 0 && s0[2] < 0 {
		return false
	}
	if s0[0] == 0 && s0[1] == 0 && s0[2] == 0 {
		return coplanarOverlap(t1, t0, n1, eps)
	}

	dir := r3.Cross(n0, n1)
	if r3.Norm(dir) < 1e-12 {
		// Mixed classifications but numerically parallel planes.
		return coplanarOverlap(t0, t1, n0, eps)
	}

	lo0, hi0, ok0 := lineInterval(t0, d0, s0, dir)
	lo1, hi1, ok1 := lineInterval(t1, d1, s1, dir)
	if !ok0 || !ok1 {
		return false
	}

	overlap := math.Min(hi0, hi1) - math.Max(lo0, lo1)
	return overlap > eps
}

// lineInterval projects a triangle's crossing segment onto the plane
// intersection line. ok is false when the triangle only touches the plane
// rather than crossing it, in which case there is nothing to overlap.
func lineInterval(t [3]r3.Vec, d [3]float64, s [3]int, dir r3.Vec) (lo, hi float64, ok bool) {
	var proj [3]float64
	for i, v := range t {
		proj[i] = r3.Dot(dir, v)
	}

	var pos, neg, zero []int
	for i, sign := range s {
		switch sign {
		case 1:
			pos = append(pos, i)
		case -1:
			neg = append(neg, i)
		default:
			zero = append(zero, i)
		}
	}

	var a, b float64
	switch {
	case len(pos) == 1 && len(neg) == 2:
		a = crossing(proj, d, neg[0], pos[0])
		b = crossing(proj, d, neg[1], pos[0])
	case len(neg) == 1 && len(pos) == 2:
		a = crossing(proj, d, pos[0], neg[0])
		b = crossing(proj, d, pos[1], neg[0])
	case len(pos) == 1 && len(neg) == 1:
		// Third vertex sits on the plane; the crossing segment runs from
		// it to the opposite edge's crossing point.
		a = proj[zero[0]]
		b = crossing(proj, d, pos[0], neg[0])
	default:
		return 0, 0, false
	}

	if a > b {
		a, b = b, a
	}
	return a, b, true
}

// crossing interpolates the line parameter where edge (i, j) crosses the
// plane, given signed distances of both endpoints.
func crossing(proj, d [3]float64, i, j int) float64 {
	return proj[i] + (proj[j]-proj[i])*(d[i]/(d[i]-d[j]))
}

// coplanarOverlap runs a 2D separating axis test over the edge normals of
// both triangles after projecting along the dominant normal axis. Touching
// within eps counts as separated, so neighboring faces that share an edge
// line do not report as intersecting.
func coplanarOverlap(t0, t1 [3]r3.Vec, n r3.Vec, eps float64) bool {
	drop := dominantAxis(n)
	var p0, p1 [3][2]float64
	for i := 0; i < 3; i++ {
		p0[i] = project2D(t0[i], drop)
		p1[i] = project2D(t1[i], drop)
	}

	for _, tri := range [2][3][2]float64{p0, p1} {
		for i := 0; i < 3; i++ {
			j := (i + 1) % 3
			ax := tri[j][1] - tri[i][1]
			ay := tri[i][0] - tri[j][0]
			length := math.Hypot(ax, ay)
			if length < 1e-12 {
				continue
			}
			ax, ay = ax/length, ay/length

			min0, max0 := interval2D(p0, ax, ay)
			min1, max1 := interval2D(p1, ax, ay)
			if max0 <= min1+eps || max1 <= min0+eps {
				return false
			}
		}
	}
	return true
}

func interval2D(tri [3][2]float64, ax, ay float64) (min, max float64) {
	min = tri[0][0]*ax + tri[0][1]*ay
	max = min
	for i := 1; i < 3; i++ {
		v := tri[i][0]*ax + tri[i][1]*ay
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

func dominantAxis(n r3.Vec) int {
	x, y, z := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	if x >= y && x >= z {
		return 0
	}
	if y >= z {
		return 1
	}
	return 2
}

func project2D(v r3.Vec, drop int) [2]float64 {
	switch drop {
	case 0:
		return [2]float64{v.Y, v.Z}
	case 1:
		return [2]float64{v.X, v.Z}
	default:
		return [2]float64{v.X, v.Y}
	}
}

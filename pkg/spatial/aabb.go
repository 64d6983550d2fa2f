// Package spatial provides axis-aligned bounding boxes and an octree used
// for broad-phase candidate pruning during intersection testing.
package spatial

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min r3.Vec
	Max r3.Vec
}

// NewAABB returns the tightest box enclosing the given points.
func NewAABB(points ...r3.Vec) AABB {
	b := AABB{
		Min: r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		Max: r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	}
	for _, p := range points {
		b.Min.X = math.Min(b.Min.X, p.X)
		b.Min.Y = math.Min(b.Min.Y, p.Y)
		b.Min.Z = math.Min(b.Min.Z, p.Z)
		b.Max.X = math.Max(b.Max.X, p.X)
		b.Max.Y = math.Max(b.Max.Y, p.Y)
		b.Max.Z = math.Max(b.Max.Z, p.Z)
	}
	return b
}

// Union returns the smallest box enclosing both boxes.
func (b AABB) Union(o AABB) AABB {
	return AABB{
		Min: r3.Vec{
			X: math.Min(b.Min.X, o.Min.X),
			Y: math.Min(b.Min.Y, o.Min.Y),
			Z: math.Min(b.Min.Z, o.Min.Z),
		},
		Max: r3.Vec{
			X: math.Max(b.Max.X, o.Max.X),
			Y: math.Max(b.Max.Y, o.Max.Y),
			Z: math.Max(b.Max.Z, o.Max.Z),
		},
	}
}

// Overlaps reports whether the two boxes intersect, boundaries included.
func (b AABB) Overlaps(o AABB) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y &&
		b.Min.Z <= o.Max.Z && b.Max.Z >= o.Min.Z
}

// Center returns the midpoint of the box.
func (b AABB) Center() r3.Vec {
	return r3.Scale(0.5, r3.Add(b.Min, b.Max))
}

// Size returns the extent of the box along each axis.
func (b AABB) Size() r3.Vec {
	return r3.Sub(b.Max, b.Min)
}

// Expand grows the box by the given fraction of its size on every side. A
// degenerate axis still grows by a small absolute amount so flat geometry
// does not produce zero-thickness partitions.
func (b AABB) Expand(fraction float64) AABB {
	size := b.Size()
	pad := r3.Vec{
		X: math.Max(size.X*fraction, 1e-9),
		Y: math.Max(size.Y*fraction, 1e-9),
		Z: math.Max(size.Z*fraction, 1e-9),
	}
	return AABB{Min: r3.Sub(b.Min, pad), Max: r3.Add(b.Max, pad)}
}

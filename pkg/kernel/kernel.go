// Package kernel defines the capability interfaces for mesh repair
// backends. Implementations (sat, cork, m3d) provide intersection testing,
// remeshing, and mesh utilities behind these interfaces. The capability
// abstraction allows swapping backends without changing the repair
// operations, and lets a build ship with some capabilities absent.
package kernel

import "github.com/chazu/callus/pkg/mesh"

// FacePair identifies two intersecting faces by index, with A < B so a
// pair has exactly one representation.
type FacePair struct {
	A int `json:"a"`
	B int `json:"b"`
}

// NewFacePair returns the canonical ordering of two face indices.
func NewFacePair(a, b int) FacePair {
	if a > b {
		a, b = b, a
	}
	return FacePair{A: a, B: b}
}

// Intersector finds self-intersections in a triangle mesh.
type Intersector interface {
	// SelfIntersections returns every pair of non-adjacent faces that
	// geometrically intersect. An empty result means the mesh is clean.
	SelfIntersections(m *mesh.Mesh) ([]FacePair, error)

	// Name identifies the backend for provenance records.
	Name() string
}

// Remesher rebuilds mesh regions to resolve self-intersections.
type Remesher interface {
	// ResolveSelfIntersections returns a new mesh with intersecting
	// regions re-triangulated. With stitchAll set, patch borders are
	// stitched to the surrounding surface even where that requires
	// splitting neighboring faces.
	ResolveSelfIntersections(m *mesh.Mesh, stitchAll bool) (*mesh.Mesh, error)

	// OuterHull returns only the outermost surface of the mesh,
	// discarding internal geometry.
	OuterHull(m *mesh.Mesh) (*mesh.Mesh, error)

	// Name identifies the backend for provenance records.
	Name() string
}

// Toolkit provides general mesh utilities backed by an external library.
type Toolkit interface {
	// OrientOutward returns a copy of the mesh with face windings made
	// globally consistent and pointing outward, along with the number of
	// faces flipped.
	OrientOutward(m *mesh.Mesh) (*mesh.Mesh, int, error)

	// WeldVertices returns a copy of the mesh with vertices closer than
	// eps merged.
	WeldVertices(m *mesh.Mesh, eps float64) (*mesh.Mesh, error)

	// Name identifies the backend for provenance records.
	Name() string
}

// Capabilities bundles the backends available to the repair operations. A
// nil field means that capability is unavailable in this build; operations
// that need it degrade or fail according to their own policy.
type Capabilities struct {
	Intersector Intersector
	Remesher    Remesher
	Toolkit     Toolkit
}

// HasIntersector reports whether an intersection backend is wired.
func (c Capabilities) HasIntersector() bool { return c.Intersector != nil }

// HasRemesher reports whether a remeshing backend is wired.
func (c Capabilities) HasRemesher() bool { return c.Remesher != nil }

// HasToolkit reports whether a mesh utility backend is wired.
func (c Capabilities) HasToolkit() bool { return c.Toolkit != nil }

// Summary maps each capability to its backend name, "none" when absent.
// The UI shows this so users know what their build can do.
func (c Capabilities) Summary() map[string]string {
	out := map[string]string{
		"intersector": "none",
		"remesher":    "none",
		"toolkit":     "none",
	}
	if c.Intersector != nil {
		out["intersector"] = c.Intersector.Name()
	}
	if c.Remesher != nil {
		out["remesher"] = c.Remesher.Name()
	}
	if c.Toolkit != nil {
		out["toolkit"] = c.Toolkit.Name()
	}
	return out
}

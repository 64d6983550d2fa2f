package repair_test

import (
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/callus/pkg/kernel"
	"github.com/chazu/callus/pkg/kernel/sat"
	"github.com/chazu/callus/pkg/mesh"
	"github.com/chazu/callus/pkg/primitive"
	"github.com/chazu/callus/pkg/repair"
)

func mustCube(t *testing.T) *mesh.Mesh {
	t.Helper()
	m, err := primitive.Cube(1)
	if err != nil {
		t.Fatalf("Cube: %v", err)
	}
	return m
}

func mustTube(t *testing.T, segments int) *mesh.Mesh {
	t.Helper()
	m, err := primitive.OpenCylinder(1, 2, segments)
	if err != nil {
		t.Fatalf("OpenCylinder: %v", err)
	}
	return m
}

func mustPlane(t *testing.T) *mesh.Mesh {
	t.Helper()
	m, err := primitive.Plane(1, 1)
	if err != nil {
		t.Fatalf("Plane: %v", err)
	}
	return m
}

// crossedPair is two triangles passing through each other's interior with no
// shared vertices.
func crossedPair() *mesh.Mesh {
	return mesh.NewFrom(
		[]r3.Vec{
			{X: 0, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}, {X: 0, Y: 2, Z: 0},
			{X: 0.5, Y: 0.25, Z: -1}, {X: 0.5, Y: 0.25, Z: 1}, {X: 1.5, Y: 0.25, Z: -1},
		},
		[]mesh.Face{{0, 1, 2}, {3, 4, 5}},
	)
}

// explode rebuilds a mesh as disconnected triangle soup, giving every face
// its own three vertices.
func explode(m *mesh.Mesh) *mesh.Mesh {
	out := mesh.New()
	for _, f := range m.Faces {
		base := len(out.Vertices)
		out.Vertices = append(out.Vertices,
			m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]])
		out.Faces = append(out.Faces, mesh.Face{base, base + 1, base + 2})
	}
	return out
}

// satOps is the common production wiring for tests that need real detection.
func satOps() *repair.Ops {
	return repair.NewOps(kernel.Capabilities{Intersector: sat.New()})
}

func hasNote(rep repair.Report, substr string) bool {
	for _, n := range rep.Notes {
		if strings.Contains(n, substr) {
			return true
		}
	}
	return false
}

// Capability fakes for driving the fallback and failure paths.

type fakeIntersector struct {
	pairs    []kernel.FacePair
	err      error
	panicMsg string
}

var _ kernel.Intersector = (*fakeIntersector)(nil)

func (f *fakeIntersector) SelfIntersections(m *mesh.Mesh) ([]kernel.FacePair, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.pairs, f.err
}

func (f *fakeIntersector) Name() string { return "fake-intersector" }

type fakeRemesher struct {
	out      *mesh.Mesh
	err      error
	hull     *mesh.Mesh
	hullErr  error
	panicMsg string
}

var _ kernel.Remesher = (*fakeRemesher)(nil)

func (f *fakeRemesher) ResolveSelfIntersections(m *mesh.Mesh, stitchAll bool) (*mesh.Mesh, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.out != nil {
		return f.out.Clone(), nil
	}
	return m.Clone(), nil
}

func (f *fakeRemesher) OuterHull(m *mesh.Mesh) (*mesh.Mesh, error) {
	if f.hullErr != nil {
		return nil, f.hullErr
	}
	if f.hull != nil {
		return f.hull.Clone(), nil
	}
	return m.Clone(), nil
}

func (f *fakeRemesher) Name() string { return "fake-remesher" }

type fakeToolkit struct {
	oriented  *mesh.Mesh
	flipped   int
	orientErr error
	welded    *mesh.Mesh
	weldErr   error
}

var _ kernel.Toolkit = (*fakeToolkit)(nil)

func (f *fakeToolkit) OrientOutward(m *mesh.Mesh) (*mesh.Mesh, int, error) {
	if f.orientErr != nil {
		return nil, 0, f.orientErr
	}
	if f.oriented != nil {
		return f.oriented.Clone(), f.flipped, nil
	}
	return m.Clone(), f.flipped, nil
}

func (f *fakeToolkit) WeldVertices(m *mesh.Mesh, eps float64) (*mesh.Mesh, error) {
	if f.weldErr != nil {
		return nil, f.weldErr
	}
	if f.welded != nil {
		return f.welded.Clone(), nil
	}
	return m.Clone(), nil
}

func (f *fakeToolkit) Name() string { return "fake-toolkit" }

package m3d_test

import (
	"testing"

	"github.com/chazu/callus/pkg/kernel/m3d"
	"github.com/chazu/callus/pkg/mesh"
	"github.com/chazu/callus/pkg/primitive"
)

func mustCube(t *testing.T) *mesh.Mesh {
	t.Helper()
	m, err := primitive.Cube(1)
	if err != nil {
		t.Fatalf("Cube: %v", err)
	}
	return m
}

func TestOrientOutwardAlreadyOriented(t *testing.T) {
	m := mustCube(t)
	out, flipped, err := m3d.New().OrientOutward(m)
	if err != nil {
		t.Fatalf("OrientOutward: %v", err)
	}
	if flipped != 0 {
		t.Errorf("flipped %d faces of an already oriented cube, want 0", flipped)
	}
	if out.FaceCount() != 12 || out.VertexCount() != 8 {
		t.Errorf("orientation changed topology: %d vertices, %d faces",
			out.VertexCount(), out.FaceCount())
	}
	if vol := out.SignedVolume(); vol < 0.99 || vol > 1.01 {
		t.Errorf("oriented cube volume = %v, want 1", vol)
	}
}

func TestOrientOutwardFixesFlippedFaces(t *testing.T) {
	m := mustCube(t)
	m.FlipFace(0)
	m.FlipFace(5)

	out, flipped, err := m3d.New().OrientOutward(m)
	if err != nil {
		t.Fatalf("OrientOutward: %v", err)
	}
	if flipped != 2 {
		t.Errorf("flipped %d faces, want 2", flipped)
	}
	if !out.IsWindingConsistent() {
		t.Error("result winding still inconsistent")
	}
	if vol := out.SignedVolume(); vol < 0.99 || vol > 1.01 {
		t.Errorf("repaired cube volume = %v, want 1", vol)
	}
}

func TestOrientOutwardInvertedCube(t *testing.T) {
	m := mustCube(t)
	for i := range m.Faces {
		m.FlipFace(i)
	}

	out, flipped, err := m3d.New().OrientOutward(m)
	if err != nil {
		t.Fatalf("OrientOutward: %v", err)
	}
	if flipped != 12 {
		t.Errorf("flipped %d faces of fully inverted cube, want 12", flipped)
	}
	if vol := out.SignedVolume(); vol < 0.99 || vol > 1.01 {
		t.Errorf("repaired cube volume = %v, want 1", vol)
	}
}

func TestOrientOutwardRejectsOpenMesh(t *testing.T) {
	m, err := primitive.Plane(1, 1)
	if err != nil {
		t.Fatalf("Plane: %v", err)
	}
	if _, _, err := m3d.New().OrientOutward(m); err == nil {
		t.Error("open mesh should be rejected")
	}
}

func TestWeldVertices(t *testing.T) {
	welded := mustCube(t)
	soup := mesh.New()
	for _, f := range welded.Faces {
		base := len(soup.Vertices)
		for _, v := range f {
			soup.Vertices = append(soup.Vertices, welded.Vertices[v])
		}
		soup.Faces = append(soup.Faces, mesh.Face{base, base + 1, base + 2})
	}

	out, err := m3d.New().WeldVertices(soup, 1e-5)
	if err != nil {
		t.Fatalf("WeldVertices: %v", err)
	}
	if out.VertexCount() != 8 {
		t.Errorf("welded cube has %d vertices, want 8", out.VertexCount())
	}
	if !out.IsWatertight() {
		t.Error("welded cube is not watertight")
	}
}

func TestRoundTripDeterministic(t *testing.T) {
	m := mustCube(t)
	tk := m3d.New()

	first, err := tk.WeldVertices(m, 1e-9)
	if err != nil {
		t.Fatalf("WeldVertices: %v", err)
	}
	for run := 0; run < 3; run++ {
		again, err := tk.WeldVertices(m, 1e-9)
		if err != nil {
			t.Fatalf("WeldVertices: %v", err)
		}
		if again.VertexCount() != first.VertexCount() || again.FaceCount() != first.FaceCount() {
			t.Fatal("round trip topology changed between runs")
		}
		for i := range first.Vertices {
			if again.Vertices[i] != first.Vertices[i] {
				t.Fatalf("vertex %d changed between runs", i)
			}
		}
		for i := range first.Faces {
			if again.Faces[i] != first.Faces[i] {
				t.Fatalf("face %d changed between runs", i)
			}
		}
	}
}

func TestNilMesh(t *testing.T) {
	tk := m3d.New()
	if _, _, err := tk.OrientOutward(nil); err == nil {
		t.Error("nil mesh should error")
	}
	if _, err := tk.WeldVertices(nil, 1e-5); err == nil {
		t.Error("nil mesh should error")
	}
}

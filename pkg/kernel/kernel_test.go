package kernel

import (
	"testing"

	"github.com/chazu/callus/pkg/mesh"
)

// --- FacePair tests ---

func TestNewFacePair(t *testing.T) {
	tests := []struct {
		name string
		a, b int
		want FacePair
	}{
		{"ordered", 2, 7, FacePair{A: 2, B: 7}},
		{"reversed", 7, 2, FacePair{A: 2, B: 7}},
		{"equal", 3, 3, FacePair{A: 3, B: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewFacePair(tt.a, tt.b); got != tt.want {
				t.Errorf("NewFacePair(%d, %d) = %+v, want %+v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

// --- Stub backends proving the interfaces are satisfiable ---

type stubIntersector struct{}

func (stubIntersector) SelfIntersections(_ *mesh.Mesh) ([]FacePair, error) { return nil, nil }
func (stubIntersector) Name() string                                       { return "stub-intersector" }

type stubRemesher struct{}

func (stubRemesher) ResolveSelfIntersections(m *mesh.Mesh, _ bool) (*mesh.Mesh, error) {
	return m, nil
}
func (stubRemesher) OuterHull(m *mesh.Mesh) (*mesh.Mesh, error) { return m, nil }
func (stubRemesher) Name() string                               { return "stub-remesher" }

type stubToolkit struct{}

func (stubToolkit) OrientOutward(m *mesh.Mesh) (*mesh.Mesh, int, error) { return m, 0, nil }
func (stubToolkit) WeldVertices(m *mesh.Mesh, _ float64) (*mesh.Mesh, error) {
	return m, nil
}
func (stubToolkit) Name() string { return "stub-toolkit" }

// Compile-time checks that the stubs implement the interfaces.
var _ Intersector = stubIntersector{}
var _ Remesher = stubRemesher{}
var _ Toolkit = stubToolkit{}

func TestCapabilitiesEmpty(t *testing.T) {
	var caps Capabilities
	if caps.HasIntersector() || caps.HasRemesher() || caps.HasToolkit() {
		t.Error("zero Capabilities should report nothing available")
	}
	summary := caps.Summary()
	for _, key := range []string{"intersector", "remesher", "toolkit"} {
		if summary[key] != "none" {
			t.Errorf("summary[%q] = %q, want \"none\"", key, summary[key])
		}
	}
}

func TestCapabilitiesSummary(t *testing.T) {
	caps := Capabilities{
		Intersector: stubIntersector{},
		Remesher:    stubRemesher{},
		Toolkit:     stubToolkit{},
	}
	if !caps.HasIntersector() || !caps.HasRemesher() || !caps.HasToolkit() {
		t.Error("populated Capabilities should report everything available")
	}
	summary := caps.Summary()
	if summary["intersector"] != "stub-intersector" {
		t.Errorf("intersector = %q", summary["intersector"])
	}
	if summary["remesher"] != "stub-remesher" {
		t.Errorf("remesher = %q", summary["remesher"])
	}
	if summary["toolkit"] != "stub-toolkit" {
		t.Errorf("toolkit = %q", summary["toolkit"])
	}
}

func TestCapabilitiesPartial(t *testing.T) {
	caps := Capabilities{Intersector: stubIntersector{}}
	if !caps.HasIntersector() {
		t.Error("intersector should be available")
	}
	if caps.HasRemesher() {
		t.Error("remesher should be absent")
	}
	summary := caps.Summary()
	if summary["intersector"] != "stub-intersector" || summary["remesher"] != "none" {
		t.Errorf("unexpected summary %v", summary)
	}
}

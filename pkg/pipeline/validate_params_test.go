package pipeline

import (
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/callus/pkg/repair"
)

// ---------------------------------------------------------------------------
// Test helpers for ValidationResult
// ---------------------------------------------------------------------------

// resultHasError returns true if result.Errors contains at least one entry
// whose Message contains substr.
func resultHasError(r ValidationResult, substr string) bool {
	for _, e := range r.Errors {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// resultHasWarning returns true if result.Warnings contains at least one
// entry whose Message contains substr.
func resultHasWarning(r ValidationResult, substr string) bool {
	for _, w := range r.Warnings {
		if strings.Contains(w.Message, substr) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Tier 2 — Parameter validation tests
// ---------------------------------------------------------------------------

func TestValidateAll_ValidPipeline(t *testing.T) {
	p := buildValidChain()
	result := ValidateAll(p)
	if len(result.Errors) != 0 {
		for _, e := range result.Errors {
			t.Errorf("unexpected error: %s", e.Message)
		}
	}
	if len(result.Warnings) != 0 {
		for _, w := range result.Warnings {
			t.Errorf("unexpected warning: %s", w.Message)
		}
	}
}

func TestValidateAll_EmptyPipeline(t *testing.T) {
	result := ValidateAll(New())
	if len(result.Errors) != 0 || len(result.Warnings) != 0 {
		t.Errorf("empty pipeline should validate clean, got %d errors %d warnings",
			len(result.Errors), len(result.Warnings))
	}
}

func TestValidateAll_MaxHoleSizeBounds(t *testing.T) {
	cases := []struct {
		size    int
		wantErr bool
	}{
		{0, false}, // default
		{3, false},
		{10000, false},
		{2, true},
		{-5, true},
		{10001, true},
	}
	for _, tc := range cases {
		p := buildValidChain()
		p.MustLookup("repaired").Data = FillData{
			Strategy:    repair.FillLibrary,
			MaxHoleSize: tc.size,
		}
		result := ValidateAll(p)
		got := resultHasError(result, "max hole size")
		if got != tc.wantErr {
			t.Errorf("MaxHoleSize %d: error = %v, want %v", tc.size, got, tc.wantErr)
		}
	}
}

func TestValidateAll_UnknownOrientStrategy(t *testing.T) {
	p := buildValidChain()
	scan := p.MustLookup("scan")
	scan.Kind = NodeOrient
	scan.Data = OrientData{Strategy: repair.OrientStrategy(9)}

	result := ValidateAll(p)
	if !resultHasError(result, "unknown orient strategy") {
		t.Error("expected orient strategy error, got none")
		for _, e := range result.Errors {
			t.Logf("  error: %s", e.Message)
		}
	}
}

func TestValidateAll_UnknownFillStrategy(t *testing.T) {
	p := buildValidChain()
	p.MustLookup("repaired").Data = FillData{Strategy: repair.FillStrategy(7)}

	result := ValidateAll(p)
	if !resultHasError(result, "unknown fill strategy") {
		t.Error("expected fill strategy error, got none")
		for _, e := range result.Errors {
			t.Logf("  error: %s", e.Message)
		}
	}
}

func TestValidateAll_NegativeWeldTolerance(t *testing.T) {
	p := buildValidChain()
	p.MustLookup("welded").Data = WeldData{Tolerance: -1e-6}

	result := ValidateAll(p)
	if !resultHasError(result, "weld tolerance") {
		t.Error("expected weld tolerance error, got none")
		for _, e := range result.Errors {
			t.Logf("  error: %s", e.Message)
		}
	}
}

func TestValidateAll_NegativeAreaThreshold(t *testing.T) {
	p := buildValidChain()
	scan := p.MustLookup("scan")
	scan.Kind = NodePrune
	scan.Data = PruneData{AreaTol: -0.5}

	result := ValidateAll(p)
	if !resultHasError(result, "area threshold") {
		t.Error("expected area threshold error, got none")
		for _, e := range result.Errors {
			t.Logf("  error: %s", e.Message)
		}
	}
}

func TestValidateAll_FixupRanges(t *testing.T) {
	cases := []struct {
		name string
		data FixupData
		want string
	}{
		{
			name: "epsilon too large",
			data: FixupData{Method: FixPerturbation, Epsilon: 2.0},
			want: "perturb epsilon",
		},
		{
			name: "epsilon below floor",
			data: FixupData{Method: FixPerturbation, Epsilon: 1e-12},
			want: "perturb epsilon",
		},
		{
			name: "too many iterations",
			data: FixupData{Method: FixPerturbation, MaxIterations: 101},
			want: "perturb iterations",
		},
		{
			name: "negative iterations",
			data: FixupData{Method: FixPerturbation, MaxIterations: -3},
			want: "perturb iterations",
		},
		{
			name: "unknown method",
			data: FixupData{Method: FixupMethod(9)},
			want: "unknown fixup method",
		},
		{
			name: "hole size out of range",
			data: FixupData{Method: FixRemoval, FillHoles: true, MaxHoleSize: 2},
			want: "max hole size",
		},
	}
	for _, tc := range cases {
		p := buildValidChain()
		scan := p.MustLookup("scan")
		scan.Kind = NodeFixup
		scan.Data = tc.data
		result := ValidateAll(p)
		if !resultHasError(result, tc.want) {
			t.Errorf("%s: expected error containing %q, got none", tc.name, tc.want)
			for _, e := range result.Errors {
				t.Logf("  error: %s", e.Message)
			}
		}
	}
}

func TestValidateAll_SourceDimensions(t *testing.T) {
	cases := []struct {
		name string
		data SourceData
		want string
	}{
		{
			name: "negative cube",
			data: SourceData{Shape: ShapeCube, Size: r3.Vec{X: -1}},
			want: "cube size",
		},
		{
			name: "flat box",
			data: SourceData{Shape: ShapeBox, Size: r3.Vec{X: 1, Y: 0, Z: 1}},
			want: "box dimensions",
		},
		{
			name: "zero sphere",
			data: SourceData{Shape: ShapeSphere, Radius: 0},
			want: "sphere radius",
		},
		{
			name: "two-segment cylinder",
			data: SourceData{Shape: ShapeCylinder, Radius: 1, Height: 2, Segments: 2},
			want: "at least 3 segments",
		},
		{
			name: "degenerate plane",
			data: SourceData{Shape: ShapePlane, Size: r3.Vec{X: 1, Y: 0}},
			want: "plane dimensions",
		},
		{
			name: "unknown shape",
			data: SourceData{Shape: SourceShape(42)},
			want: "unknown source shape",
		},
	}
	for _, tc := range cases {
		p := buildValidChain()
		p.MustLookup("cube").Data = tc.data
		result := ValidateAll(p)
		if !resultHasError(result, tc.want) {
			t.Errorf("%s: expected error containing %q, got none", tc.name, tc.want)
			for _, e := range result.Errors {
				t.Logf("  error: %s", e.Message)
			}
		}
	}
}

func TestValidateAll_DetectOnlyRemeshWarning(t *testing.T) {
	p := buildValidChain()
	scan := p.MustLookup("scan")
	scan.Kind = NodeRemesh
	scan.Data = RemeshData{DetectOnly: true, StitchAll: true}

	result := ValidateAll(p)
	if !resultHasWarning(result, "detect-only remesh") {
		t.Error("expected detect-only warning, got none")
		for _, w := range result.Warnings {
			t.Logf("  warning: %s", w.Message)
		}
	}
	if len(result.Errors) != 0 {
		t.Errorf("flag combination should not be an error, got %d", len(result.Errors))
	}
}

// Structural findings flow through ValidateAll with warnings separated from
// errors.
func TestValidateAll_TierSeparation(t *testing.T) {
	p := buildValidChain()

	lonerID := NewNodeID("info/loner")
	p.AddNode(&Node{
		ID: lonerID, Kind: NodeInfo, Name: "loner",
		Children: []NodeID{p.MustLookup("cube").ID},
		Data:     InfoData{},
	})

	result := ValidateAll(p)
	if !resultHasWarning(result, "orphan") {
		t.Error("orphan finding should surface as a warning")
	}
	if resultHasError(result, "orphan") {
		t.Error("orphan finding should not surface as an error")
	}
}

package main

import (
	"os"
	"path/filepath"
	"testing"
)

// TestE2EBracketExample exercises the full path: Lisp source -> engine ->
// pipeline -> runner -> meshes. This is the same path that the Wails
// Evaluate binding takes, but without the Wails runtime.
func TestE2EBracketExample(t *testing.T) {
	app := NewApp()

	source, err := os.ReadFile("examples/bracket.callus")
	if err != nil {
		t.Fatalf("failed to read bracket.callus: %v", err)
	}

	result := app.Evaluate(string(source))

	// No errors expected.
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}

	// The example emits one repaired mesh.
	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}

	m := result.Meshes[0]
	if m.Name != "bracket" {
		t.Errorf("expected mesh name 'bracket', got %q", m.Name)
	}
	if len(m.Vertices) == 0 {
		t.Error("mesh has no vertices")
	}
	if len(m.Normals) == 0 {
		t.Error("mesh has no normals")
	}
	if len(m.Indices) == 0 {
		t.Error("mesh has no indices")
	}
	if m.Color == "" {
		t.Error("mesh has no color assigned")
	}

	// The chain runs weld, prune, orient, detect, fill, and info, in that
	// order, and every step should finish cleanly on this input.
	wantOps := []string{
		"merge_vertices",
		"remove_degenerate_faces",
		"fix_normals",
		"detect_intersections",
		"fill_holes",
		"mesh_info",
	}
	if len(result.Steps) != len(wantOps) {
		t.Fatalf("expected %d steps, got %d", len(wantOps), len(result.Steps))
	}
	for i, s := range result.Steps {
		if s.Report.Op != wantOps[i] {
			t.Errorf("step %d: op = %q, want %q", i, s.Report.Op, wantOps[i])
		}
		if s.Status != "success" {
			t.Errorf("step %d (%s): status = %q, want success", i, s.Report.Op, s.Status)
		}
	}

	// The boss tube contributes two rims that fill_holes must close.
	fill := result.Steps[4]
	if fill.Report.LoopsFound != 2 {
		t.Errorf("fill_holes found %d loops, want 2", fill.Report.LoopsFound)
	}
	if fill.Report.LoopsClosed != 2 {
		t.Errorf("fill_holes closed %d loops, want 2", fill.Report.LoopsClosed)
	}
	if !fill.Report.WatertightAfter {
		t.Error("mesh is not watertight after fill_holes")
	}
}

// TestE2EEmptySource ensures the pipeline handles empty input gracefully.
func TestE2EEmptySource(t *testing.T) {
	app := NewApp()
	result := app.Evaluate("")

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for empty source: %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty source, got %d", len(result.Meshes))
	}
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors.
func TestE2ESyntaxError(t *testing.T) {
	app := NewApp()
	result := app.Evaluate("(emit \"test\"")

	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on error, got %d", len(result.Meshes))
	}
}

// TestE2ESingleCube ensures a minimal single-mesh source renders one mesh.
func TestE2ESingleCube(t *testing.T) {
	app := NewApp()
	source := `(emit "block" (check-normals (cube 10)))`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}
	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}
	if result.Meshes[0].Name != "block" {
		t.Errorf("expected mesh name 'block', got %q", result.Meshes[0].Name)
	}
	if len(result.Steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(result.Steps))
	}
	if result.Steps[0].Report.Op != "check_normals" {
		t.Errorf("step op = %q, want check_normals", result.Steps[0].Report.Op)
	}
}

// TestE2ECapabilities checks the default build: intersection and toolkit
// backends are present, remeshing is not.
func TestE2ECapabilities(t *testing.T) {
	app := NewApp()
	caps := app.Capabilities()

	if caps["intersector"] == "none" || caps["intersector"] == "" {
		t.Errorf("expected an intersector backend, got %q", caps["intersector"])
	}
	if caps["toolkit"] == "none" || caps["toolkit"] == "" {
		t.Errorf("expected a toolkit backend, got %q", caps["toolkit"])
	}
	if _, ok := caps["remesher"]; !ok {
		t.Error("capability summary is missing the remesher entry")
	}
}

// TestE2EExportSTL evaluates, exports the result, and reads it back.
func TestE2EExportSTL(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`(emit "block" (merge-vertices (cube 5)))`)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}

	path := filepath.Join(t.TempDir(), "block.stl")
	if err := app.ExportSTL(0, path); err != nil {
		t.Fatalf("ExportSTL: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat exported file: %v", err)
	}
	if info.Size() == 0 {
		t.Error("exported STL is empty")
	}

	if err := app.ExportSTL(5, filepath.Join(t.TempDir(), "nope.stl")); err == nil {
		t.Error("expected error for out-of-range mesh index")
	}
}

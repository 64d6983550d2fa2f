package main

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/chazu/callus/pkg/engine"
	"github.com/chazu/callus/pkg/kernel"
	"github.com/chazu/callus/pkg/kernel/cork"
	"github.com/chazu/callus/pkg/kernel/m3d"
	"github.com/chazu/callus/pkg/kernel/sat"
	"github.com/chazu/callus/pkg/meshio"
	"github.com/chazu/callus/pkg/pipeline"
	"github.com/chazu/callus/pkg/repair"
	"github.com/chazu/callus/pkg/runner"
)

// colorPalette is a default palette used to assign distinct colors to meshes.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx    context.Context
	engine *engine.Engine
	runner *runner.Runner
	caps   kernel.Capabilities

	// artifacts holds the meshes from the most recent Evaluate so that
	// ExportSTL can write them without re-running the pipeline.
	mu        sync.Mutex
	artifacts []runner.Artifact
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Name     string    `json:"name"`
	Color    string    `json:"color"`
}

// StepData is one executed repair operation and its report, in execution
// order.
type StepData struct {
	NodeID string        `json:"nodeId"`
	Name   string        `json:"name,omitempty"`
	Status string        `json:"status"`
	Report repair.Report `json:"report"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Steps    []StepData      `json:"steps"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates a new App with an engine and whatever repair backends this
// build carries. A missing remesher is normal: it only exists in builds with
// the cork tag.
func NewApp() *App {
	caps := kernel.Capabilities{
		Intersector: sat.New(),
		Toolkit:     m3d.New(),
	}
	if r, err := cork.New(); err == nil {
		caps.Remesher = r
	} else {
		log.Printf("remesher unavailable: %v", err)
	}

	return &App{
		engine: engine.NewEngine(),
		runner: runner.New(repair.NewOps(caps)),
		caps:   caps,
	}
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// Capabilities reports which backend serves each repair capability, "none"
// when the build carries nothing for it. The frontend shows this in the
// status bar.
func (a *App) Capabilities() map[string]string {
	return a.caps.Summary()
}

// Evaluate takes Lisp source and returns mesh data, per-step repair reports,
// and errors. This is the primary binding called by the frontend editor.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Steps:    []StepData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the Lisp source into a repair pipeline.
	p, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Line:    0,
			Col:     0,
			Message: err.Error(),
		})
		return result
	}

	// Step 2: Convert eval errors to the frontend format.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// Step 3: Validate the pipeline. Warnings ride along; errors stop the
	// run before any mesh work happens.
	validation := pipeline.ValidateAll(p)
	for _, w := range validation.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{
			Line:    0,
			Col:     0,
			Message: warningMessage(w),
		})
	}
	if len(validation.Errors) > 0 {
		for _, e := range validation.Errors {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    0,
				Col:     0,
				Message: e.Error(),
			})
		}
		return result
	}

	// Step 4: Execute the pipeline. A failed root is reported but does not
	// hide the meshes of roots that finished.
	artifacts, steps, err := a.runner.Run(p)
	if err != nil {
		log.Printf("Run error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Line:    0,
			Col:     0,
			Message: err.Error(),
		})
	}
	for _, s := range steps {
		result.Steps = append(result.Steps, StepData{
			NodeID: s.NodeID.Short(),
			Name:   s.Name,
			Status: s.Status.String(),
			Report: s.Report,
		})
	}

	// Step 5: Convert finished meshes to the frontend MeshData format.
	for i, art := range artifacts {
		flat := art.Mesh.Flatten()
		color := colorPalette[i%len(colorPalette)]
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: flat.Vertices,
			Normals:  flat.Normals,
			Indices:  flat.Indices,
			Name:     art.Name,
			Color:    color,
		})
	}

	a.mu.Lock()
	a.artifacts = artifacts
	a.mu.Unlock()

	return result
}

// ExportSTL writes mesh index (as ordered in the last Evaluate result) to
// path as binary STL.
func (a *App) ExportSTL(index int, path string) error {
	a.mu.Lock()
	artifacts := a.artifacts
	a.mu.Unlock()

	if index < 0 || index >= len(artifacts) {
		return fmt.Errorf("no mesh at index %d; evaluate first", index)
	}
	return meshio.WriteFile(path, artifacts[index].Mesh)
}

func warningMessage(w pipeline.ValidationWarning) string {
	if w.NodeID.IsZero() {
		return w.Message
	}
	return fmt.Sprintf("node %s: %s", w.NodeID.Short(), w.Message)
}

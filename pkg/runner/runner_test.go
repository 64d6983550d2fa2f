package runner_test

import (
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/callus/pkg/kernel"
	"github.com/chazu/callus/pkg/kernel/sat"
	"github.com/chazu/callus/pkg/mesh"
	"github.com/chazu/callus/pkg/pipeline"
	"github.com/chazu/callus/pkg/repair"
	"github.com/chazu/callus/pkg/runner"
)

// newRunner returns a runner backed by the pure Go intersector; the heavier
// capabilities stay unwired, same as a build without them.
func newRunner() *runner.Runner {
	caps := kernel.Capabilities{Intersector: sat.New()}
	return runner.New(repair.NewOps(caps))
}

// makeCube creates a unit cube source node.
func makeCube(name string) *pipeline.Node {
	return &pipeline.Node{
		ID:   pipeline.NewNodeID("source/cube/" + name),
		Kind: pipeline.NodeSource,
		Name: name,
		Data: pipeline.SourceData{Shape: pipeline.ShapeCube, Size: r3.Vec{X: 1}},
	}
}

// makeTube creates an open cylinder source node with two boundary loops.
func makeTube(name string) *pipeline.Node {
	return &pipeline.Node{
		ID:   pipeline.NewNodeID("source/tube/" + name),
		Kind: pipeline.NodeSource,
		Name: name,
		Data: pipeline.SourceData{Shape: pipeline.ShapeCylinder, Radius: 1, Height: 2, Segments: 8},
	}
}

// makeTranslate creates a transform node moving its child by the offset.
func makeTranslate(name string, off r3.Vec, child pipeline.NodeID) *pipeline.Node {
	return &pipeline.Node{
		ID:       pipeline.NewNodeID("translate/" + name),
		Kind:     pipeline.NodeTransform,
		Name:     name,
		Children: []pipeline.NodeID{child},
		Data:     pipeline.TransformData{Offset: off},
	}
}

// makeCombine creates a combine node over the given children.
func makeCombine(name string, children ...pipeline.NodeID) *pipeline.Node {
	return &pipeline.Node{
		ID:       pipeline.NewNodeID("combine/" + name),
		Kind:     pipeline.NodeCombine,
		Name:     name,
		Children: children,
		Data:     pipeline.CombineData{},
	}
}

// makeOp creates a single-child operation node.
func makeOp(name string, kind pipeline.NodeKind, data pipeline.NodeData, child pipeline.NodeID) *pipeline.Node {
	return &pipeline.Node{
		ID:       pipeline.NewNodeID(kind.String() + "/" + name),
		Kind:     kind,
		Name:     name,
		Children: []pipeline.NodeID{child},
		Data:     data,
	}
}

func TestRunSingleSource(t *testing.T) {
	p := pipeline.New()
	cube := makeCube("")
	p.AddNode(cube)
	p.AddRoot(cube.ID)

	artifacts, steps, err := newRunner().Run(p)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(artifacts) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(artifacts))
	}
	if len(steps) != 0 {
		t.Errorf("sources are not operations, expected 0 steps, got %d", len(steps))
	}

	a := artifacts[0]
	if a.Name != cube.ID.Short() {
		t.Errorf("unnamed root should use short ID, got %q", a.Name)
	}
	if a.Mesh.VertexCount() != 8 || a.Mesh.FaceCount() != 12 {
		t.Errorf("cube = %d vertices %d faces, want 8/12",
			a.Mesh.VertexCount(), a.Mesh.FaceCount())
	}
}

func TestRunTransformLeavesSharedMeshAlone(t *testing.T) {
	p := pipeline.New()
	cube := makeCube("unit")
	moved := makeTranslate("moved", r3.Vec{X: 1, Y: 2, Z: 3}, cube.ID)
	p.AddNode(cube)
	p.AddNode(moved)
	p.AddRoot(cube.ID)
	p.AddRoot(moved.ID)

	artifacts, _, err := newRunner().Run(p)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(artifacts) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(artifacts))
	}

	min, max := artifacts[0].Mesh.Bounds()
	if min.X != 0 || max.X != 1 {
		t.Errorf("original cube bounds changed: %v %v", min, max)
	}

	min, max = artifacts[1].Mesh.Bounds()
	if min != (r3.Vec{X: 1, Y: 2, Z: 3}) || max != (r3.Vec{X: 2, Y: 3, Z: 4}) {
		t.Errorf("moved cube bounds = %v %v, want (1,2,3)-(2,3,4)", min, max)
	}
}

func TestRunSharedSubgraphRunsOnce(t *testing.T) {
	p := pipeline.New()
	cube := makeCube("dirty")
	scan := makeOp("scan", pipeline.NodeDetect, pipeline.DetectData{}, cube.ID)
	fill := makeOp("fill", pipeline.NodeFill, pipeline.FillData{}, scan.ID)
	orient := makeOp("orient", pipeline.NodeOrient, pipeline.OrientData{}, scan.ID)
	both := makeCombine("both", fill.ID, orient.ID)
	for _, n := range []*pipeline.Node{cube, scan, fill, orient, both} {
		p.AddNode(n)
	}
	p.AddRoot(both.ID)

	artifacts, steps, err := newRunner().Run(p)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(artifacts) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(artifacts))
	}

	// The detect feeds both branches but runs once.
	ops := make([]string, len(steps))
	for i, s := range steps {
		ops[i] = s.Report.Op
	}
	want := []string{"detect_intersections", "fill_holes", "fix_normals"}
	if len(ops) != len(want) {
		t.Fatalf("steps = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("steps = %v, want %v", ops, want)
		}
	}

	if got := artifacts[0].Mesh.FaceCount(); got != 24 {
		t.Errorf("combined mesh has %d faces, want 24", got)
	}
}

func TestRunFillClosesTube(t *testing.T) {
	p := pipeline.New()
	tube := makeTube("tube")
	fill := makeOp("closed", pipeline.NodeFill, pipeline.FillData{Strategy: repair.FillLibrary}, tube.ID)
	p.AddNode(tube)
	p.AddNode(fill)
	p.AddRoot(fill.ID)

	artifacts, steps, err := newRunner().Run(p)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(steps))
	}

	s := steps[0]
	if s.Status != repair.StatusSuccess {
		t.Errorf("fill status = %v, want success", s.Status)
	}
	if s.Report.LoopsClosed != 2 {
		t.Errorf("loops closed = %d, want 2", s.Report.LoopsClosed)
	}
	if s.Report.FacesAdded != 12 {
		t.Errorf("faces added = %d, want 12", s.Report.FacesAdded)
	}
	if s.Name != "closed" {
		t.Errorf("step name = %q, want %q", s.Name, "closed")
	}

	if !artifacts[0].Mesh.IsWatertight() {
		t.Error("filled tube should be watertight")
	}
}

func TestRunDetectAnnotatesOverlappingCubes(t *testing.T) {
	p := pipeline.New()
	cube := makeCube("unit")
	shifted := makeTranslate("shifted", r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, cube.ID)
	pair := makeCombine("pair", cube.ID, shifted.ID)
	scan := makeOp("scan", pipeline.NodeDetect, pipeline.DetectData{}, pair.ID)
	for _, n := range []*pipeline.Node{cube, shifted, pair, scan} {
		p.AddNode(n)
	}
	p.AddRoot(scan.ID)

	artifacts, steps, err := newRunner().Run(p)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	s := steps[0]
	if s.Report.Pairs == 0 {
		t.Fatal("overlapping cubes should intersect")
	}
	if s.Status != repair.StatusSuccess {
		t.Errorf("detect status = %v, want success", s.Status)
	}

	m := artifacts[0].Mesh
	if m.VertexCount() != 16 || m.FaceCount() != 24 {
		t.Errorf("detect changed topology: %d/%d, want 16/24", m.VertexCount(), m.FaceCount())
	}
	flags := m.FaceField(mesh.FieldSelfIntersecting)
	if len(flags) != 24 {
		t.Fatalf("face field length = %d, want 24", len(flags))
	}

	// Both halves of the overlap contribute flagged faces.
	lower, upper := false, false
	for i, v := range flags {
		if v != 1 {
			continue
		}
		if i < 12 {
			lower = true
		} else {
			upper = true
		}
	}
	if !lower || !upper {
		t.Errorf("flags should span both cubes, lower=%v upper=%v", lower, upper)
	}
}

func TestRunFailedOpAbortsOnlyItsRoot(t *testing.T) {
	p := pipeline.New()
	good := makeCube("good")
	dirty := makeCube("dirty")
	bad := makeOp("bad", pipeline.NodeFill, pipeline.FillData{MaxHoleSize: 2}, dirty.ID)
	p.AddNode(good)
	p.AddNode(dirty)
	p.AddNode(bad)
	p.AddRoot(good.ID)
	p.AddRoot(bad.ID)

	artifacts, steps, err := newRunner().Run(p)
	if err == nil {
		t.Fatal("expected an error from the failing fill")
	}
	if !strings.Contains(err.Error(), "max hole size") {
		t.Errorf("error should carry the cause, got %v", err)
	}
	if !strings.Contains(err.Error(), "root bad") {
		t.Errorf("error should name the failing root, got %v", err)
	}

	if len(artifacts) != 1 || artifacts[0].Name != "good" {
		t.Fatalf("the healthy root should still produce its artifact, got %v", artifacts)
	}

	// The failing step is still on record.
	if len(steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(steps))
	}
	if steps[0].Status != repair.StatusFailed {
		t.Errorf("step status = %v, want failed", steps[0].Status)
	}
}

func TestRunChainReports(t *testing.T) {
	p := pipeline.New()
	cube := makeCube("unit")
	check := makeOp("checked", pipeline.NodeCheck, pipeline.CheckData{}, cube.ID)
	info := makeOp("summary", pipeline.NodeInfo, pipeline.InfoData{}, check.ID)
	p.AddNode(cube)
	p.AddNode(check)
	p.AddNode(info)
	p.AddRoot(info.ID)

	_, steps, err := newRunner().Run(p)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}
	if steps[0].Report.Op != "check_normals" || steps[1].Report.Op != "mesh_info" {
		t.Errorf("ops = %q, %q", steps[0].Report.Op, steps[1].Report.Op)
	}
}

func TestRunEmptyAndNil(t *testing.T) {
	r := newRunner()

	artifacts, steps, err := r.Run(nil)
	if artifacts != nil || steps != nil || err != nil {
		t.Error("nil pipeline should produce nothing")
	}

	artifacts, steps, err = r.Run(pipeline.New())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(artifacts) != 0 || len(steps) != 0 {
		t.Errorf("empty pipeline produced %d artifacts %d steps", len(artifacts), len(steps))
	}
}

func TestRunDuplicateRootProducesOneArtifact(t *testing.T) {
	p := pipeline.New()
	cube := makeCube("twice")
	p.AddNode(cube)
	p.AddRoot(cube.ID)
	p.AddRoot(cube.ID)

	artifacts, _, err := newRunner().Run(p)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(artifacts) != 1 {
		t.Errorf("expected 1 artifact for a twice-emitted root, got %d", len(artifacts))
	}
}

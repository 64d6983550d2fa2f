// Package runner executes a repair pipeline and collects the mesh and the
// report produced by every operation. One artifact is produced per root.
package runner

import (
	"errors"
	"fmt"

	"github.com/chazu/callus/pkg/mesh"
	"github.com/chazu/callus/pkg/pipeline"
	"github.com/chazu/callus/pkg/primitive"
	"github.com/chazu/callus/pkg/repair"
)

// StepReport pairs one executed operation with the report it produced.
// Steps appear in execution order, children before parents.
type StepReport struct {
	NodeID pipeline.NodeID `json:"node_id"`
	Name   string          `json:"name,omitempty"`
	Status repair.Status   `json:"status"`
	Report repair.Report   `json:"report"`
}

// Artifact is the finished mesh of one pipeline root.
type Artifact struct {
	Name string
	Mesh *mesh.Mesh
}

// Runner executes pipelines against a fixed repair operation set.
type Runner struct {
	ops *repair.Ops
}

// New returns a Runner that executes operations through ops.
func New(ops *repair.Ops) *Runner {
	return &Runner{ops: ops}
}

// Run evaluates every root of the pipeline bottom-up and returns one
// artifact per distinct root plus the step reports in execution order.
// Nodes shared between roots are evaluated once and report once. A failed
// operation aborts the root that needed it; other roots still run, and the
// failures come back joined into one error. The runner is read-only and
// never mutates the pipeline.
func (r *Runner) Run(p *pipeline.Pipeline) ([]Artifact, []StepReport, error) {
	if p == nil {
		return nil, nil, nil
	}

	e := &execution{
		p:    p,
		ops:  r.ops,
		memo: make(map[pipeline.NodeID]*mesh.Mesh),
	}

	var artifacts []Artifact
	var errs []error
	seen := make(map[pipeline.NodeID]bool)

	for _, rootID := range p.Roots {
		if seen[rootID] {
			continue
		}
		seen[rootID] = true

		root := p.Get(rootID)
		if root == nil {
			errs = append(errs, fmt.Errorf("runner: root %s does not exist", rootID.Short()))
			continue
		}

		m, err := e.evalNode(root)
		if err != nil {
			errs = append(errs, fmt.Errorf("runner: root %s: %w", displayName(root), err))
			continue
		}
		artifacts = append(artifacts, Artifact{Name: displayName(root), Mesh: m})
	}

	return artifacts, e.steps, errors.Join(errs...)
}

// displayName prefers the node's user-assigned name, falling back to the
// short ID.
func displayName(n *pipeline.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID.Short()
}

// execution carries the per-Run state: the memo of finished nodes and the
// step reports collected so far.
type execution struct {
	p     *pipeline.Pipeline
	ops   *repair.Ops
	memo  map[pipeline.NodeID]*mesh.Mesh
	steps []StepReport
}

// evalNode produces the mesh for one node, evaluating children first.
// Results are memoized by node ID, so a node shared between several parents
// runs once. Acyclicity is the validator's job; the runner assumes it.
func (e *execution) evalNode(n *pipeline.Node) (*mesh.Mesh, error) {
	if m, ok := e.memo[n.ID]; ok {
		return m, nil
	}

	var out *mesh.Mesh
	var err error
	switch n.Kind {
	case pipeline.NodeSource:
		out, err = buildSource(n)

	case pipeline.NodeTransform:
		out, err = e.evalTransform(n)

	case pipeline.NodeCombine:
		out, err = e.evalCombine(n)

	case pipeline.NodeCheck, pipeline.NodeOrient, pipeline.NodeDetect,
		pipeline.NodeRemesh, pipeline.NodeFill, pipeline.NodeWeld,
		pipeline.NodePrune, pipeline.NodeFixup, pipeline.NodeInfo:
		out, err = e.evalOp(n)

	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
	if err != nil {
		return nil, err
	}

	e.memo[n.ID] = out
	return out, nil
}

// buildSource meshes a primitive node.
func buildSource(n *pipeline.Node) (*mesh.Mesh, error) {
	d, ok := n.Data.(pipeline.SourceData)
	if !ok {
		return nil, fmt.Errorf("source node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}

	switch d.Shape {
	case pipeline.ShapeCube:
		return primitive.Cube(d.Size.X)
	case pipeline.ShapeBox:
		return primitive.Box(d.Size.X, d.Size.Y, d.Size.Z)
	case pipeline.ShapeSphere:
		return primitive.Sphere(d.Radius, d.Segments)
	case pipeline.ShapeCylinder:
		return primitive.OpenCylinder(d.Radius, d.Height, d.Segments)
	case pipeline.ShapePlane:
		return primitive.Plane(d.Size.X, d.Size.Y)
	default:
		return nil, fmt.Errorf("source node %s has unknown shape %v", n.ID.Short(), d.Shape)
	}
}

// evalTransform clones the child mesh and shifts it; the child's memoized
// result stays untouched.
func (e *execution) evalTransform(n *pipeline.Node) (*mesh.Mesh, error) {
	d, ok := n.Data.(pipeline.TransformData)
	if !ok {
		return nil, fmt.Errorf("transform node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}

	children := e.p.Children(n)
	if len(children) != 1 {
		return nil, fmt.Errorf("transform node %s needs exactly 1 child, got %d", n.ID.Short(), len(children))
	}

	in, err := e.evalNode(children[0])
	if err != nil {
		return nil, err
	}

	out := in.Clone()
	out.Translate(d.Offset)
	return out, nil
}

// evalCombine concatenates the children in declared order. Concat builds a
// fresh mesh, so no child result is aliased.
func (e *execution) evalCombine(n *pipeline.Node) (*mesh.Mesh, error) {
	children := e.p.Children(n)
	if len(children) < 2 {
		return nil, fmt.Errorf("combine node %s needs at least 2 children, got %d", n.ID.Short(), len(children))
	}

	var out *mesh.Mesh
	for _, child := range children {
		m, err := e.evalNode(child)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = m
			continue
		}
		out = mesh.Concat(out, m)
	}
	return out, nil
}

// evalOp runs one repair operation on the single child mesh. Degraded
// results flow through with their report; a failed result aborts the branch
// with the operation error wrapped in the node identity. The failing step
// is still recorded so callers can show what went wrong where.
func (e *execution) evalOp(n *pipeline.Node) (*mesh.Mesh, error) {
	children := e.p.Children(n)
	if len(children) != 1 {
		return nil, fmt.Errorf("%s node %s needs exactly 1 child, got %d", n.Kind, n.ID.Short(), len(children))
	}

	in, err := e.evalNode(children[0])
	if err != nil {
		return nil, err
	}

	res, err := e.dispatch(n, in)
	if err != nil {
		return nil, err
	}

	e.steps = append(e.steps, StepReport{
		NodeID: n.ID,
		Name:   n.Name,
		Status: res.Status,
		Report: res.Report,
	})

	if res.Failed() {
		return nil, fmt.Errorf("node %s: %w", displayName(n), res.Err)
	}
	return res.Mesh, nil
}

// dispatch maps a node payload onto the corresponding repair operation.
func (e *execution) dispatch(n *pipeline.Node, in *mesh.Mesh) (repair.Result, error) {
	switch d := n.Data.(type) {
	case pipeline.CheckData:
		return e.ops.CheckNormals(in), nil

	case pipeline.OrientData:
		return e.ops.FixNormals(in, repair.FixNormalsOptions{Strategy: d.Strategy}), nil

	case pipeline.DetectData:
		return e.ops.DetectIntersections(in), nil

	case pipeline.RemeshData:
		return e.ops.RemeshIntersections(in, repair.RemeshOptions{
			DetectOnly:         d.DetectOnly,
			RemoveUnreferenced: d.RemoveUnreferenced,
			ExtractOuterHull:   d.ExtractOuterHull,
			StitchAll:          d.StitchAll,
		}), nil

	case pipeline.FillData:
		return e.ops.FillHoles(in, repair.FillOptions{
			Strategy:    d.Strategy,
			MaxHoleSize: d.MaxHoleSize,
		}), nil

	case pipeline.WeldData:
		return e.ops.MergeVertices(in, d.Tolerance), nil

	case pipeline.PruneData:
		return e.ops.RemoveDegenerateFaces(in, d.AreaTol), nil

	case pipeline.FixupData:
		switch d.Method {
		case pipeline.FixRemoval:
			return e.ops.FixByRemoval(in, repair.RemovalOptions{
				FillHoles:   d.FillHoles,
				FixNormals:  d.FixNormals,
				MaxHoleSize: d.MaxHoleSize,
			}), nil
		case pipeline.FixPerturbation:
			return e.ops.FixByPerturbation(in, repair.PerturbOptions{
				Epsilon:       d.Epsilon,
				MaxIterations: d.MaxIterations,
				Inward:        d.Inward,
				ScaleByCount:  d.ScaleByCount,
			}), nil
		default:
			return repair.Result{}, fmt.Errorf("fixup node %s has unknown method %v", n.ID.Short(), d.Method)
		}

	case pipeline.InfoData:
		return e.ops.MeshInfo(in), nil

	default:
		return repair.Result{}, fmt.Errorf("%s node %s has unsupported data type %T", n.Kind, n.ID.Short(), n.Data)
	}
}

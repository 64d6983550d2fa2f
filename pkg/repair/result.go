package repair

import (
	"fmt"

	"github.com/chazu/callus/pkg/mesh"
)

// Status tags the outcome of a repair operation.
type Status int

const (
	// StatusSuccess means the operation did what was asked.
	StatusSuccess Status = iota

	// StatusDegraded means the operation completed with reduced fidelity: a
	// capability was missing, a post-processing step was skipped, or findings
	// remain that the operation could not resolve.
	StatusDegraded

	// StatusFailed means the operation could not run; the result mesh is the
	// input unchanged.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusDegraded:
		return "degraded"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is what every repair operation returns. Mesh is never nil: on
// failure it is an untouched copy of the input, so a pipeline can keep
// working with whatever mesh it had.
type Result struct {
	Status Status
	Mesh   *mesh.Mesh
	Report Report
	Err    error // non-nil exactly when Status is StatusFailed
}

// Failed reports whether the operation failed outright.
func (r Result) Failed() bool { return r.Status == StatusFailed }

// fail builds the StatusFailed result for op: err becomes Result.Err and the
// input comes back as an untouched copy (an empty mesh for nil input). The
// error text is also appended to the report notes so the rendered report is
// self-contained.
func fail(m *mesh.Mesh, rep Report, err error) Result {
	out := mesh.New()
	if m != nil {
		out = m.Clone()
	}
	rep.VerticesAfter = out.VertexCount()
	rep.FacesAfter = out.FaceCount()
	rep.Note("error: %v", err)
	return Result{Status: StatusFailed, Mesh: out, Report: rep, Err: err}
}

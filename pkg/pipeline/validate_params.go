package pipeline

import (
	"fmt"

	"github.com/chazu/callus/pkg/repair"
)

// ---------------------------------------------------------------------------
// Tier 2 — Parameter validation
// ---------------------------------------------------------------------------

// validateParams checks payload fields against the ranges the repair
// operations accept, so a bad pipeline is rejected before any mesh work
// starts. Zero values that mean "use the default" are not flagged.
func validateParams(p *Pipeline) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	for _, node := range p.Nodes {
		switch d := node.Data.(type) {
		case SourceData:
			errs = append(errs, validateSource(node.ID, d)...)

		case OrientData:
			if d.Strategy != repair.OrientLibrary && d.Strategy != repair.OrientBFS {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("unknown orient strategy %d", int(d.Strategy)),
					Severity: SeverityError,
				})
			}

		case RemeshData:
			if d.DetectOnly && (d.RemoveUnreferenced || d.ExtractOuterHull || d.StitchAll) {
				warnings = append(warnings, ValidationWarning{
					NodeID:  node.ID,
					Message: "detect-only remesh ignores the other remesh flags",
				})
			}

		case FillData:
			if d.Strategy != repair.FillLibrary && d.Strategy != repair.FillSuite && d.Strategy != repair.FillFan {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("unknown fill strategy %d", int(d.Strategy)),
					Severity: SeverityError,
				})
			}
			if d.MaxHoleSize != 0 && (d.MaxHoleSize < repair.MinHoleSize || d.MaxHoleSize > repair.MaxHoleSizeLimit) {
				errs = append(errs, ValidationError{
					NodeID: node.ID,
					Message: fmt.Sprintf("max hole size %d outside [%d, %d]",
						d.MaxHoleSize, repair.MinHoleSize, repair.MaxHoleSizeLimit),
					Severity: SeverityError,
				})
			}

		case WeldData:
			if d.Tolerance < 0 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("weld tolerance is %g, must not be negative", d.Tolerance),
					Severity: SeverityError,
				})
			}

		case PruneData:
			if d.AreaTol < 0 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("area threshold is %g, must not be negative", d.AreaTol),
					Severity: SeverityError,
				})
			}

		case FixupData:
			errs = append(errs, validateFixup(node.ID, d)...)
		}
	}

	return errs, warnings
}

// validateSource checks primitive dimensions against what the mesh
// constructors accept.
func validateSource(id NodeID, d SourceData) []ValidationError {
	var errs []ValidationError
	bad := func(format string, args ...any) {
		errs = append(errs, ValidationError{
			NodeID:   id,
			Message:  fmt.Sprintf(format, args...),
			Severity: SeverityError,
		})
	}

	switch d.Shape {
	case ShapeCube:
		if d.Size.X <= 0 {
			bad("cube size is %g, must be positive", d.Size.X)
		}
	case ShapeBox:
		if d.Size.X <= 0 || d.Size.Y <= 0 || d.Size.Z <= 0 {
			bad("box dimensions (%g, %g, %g) must all be positive", d.Size.X, d.Size.Y, d.Size.Z)
		}
	case ShapeSphere:
		if d.Radius <= 0 {
			bad("sphere radius is %g, must be positive", d.Radius)
		}
		if d.Segments < 0 {
			bad("sphere cells is %d, must not be negative", d.Segments)
		}
	case ShapeCylinder:
		if d.Radius <= 0 || d.Height <= 0 {
			bad("cylinder radius and height (%g, %g) must be positive", d.Radius, d.Height)
		}
		if d.Segments < 3 {
			bad("cylinder needs at least 3 segments, got %d", d.Segments)
		}
	case ShapePlane:
		if d.Size.X <= 0 || d.Size.Y <= 0 {
			bad("plane dimensions (%g, %g) must be positive", d.Size.X, d.Size.Y)
		}
	default:
		bad("unknown source shape %d", int(d.Shape))
	}

	return errs
}

// validateFixup checks the numeric ranges shared with the repair options.
func validateFixup(id NodeID, d FixupData) []ValidationError {
	var errs []ValidationError
	bad := func(format string, args ...any) {
		errs = append(errs, ValidationError{
			NodeID:   id,
			Message:  fmt.Sprintf(format, args...),
			Severity: SeverityError,
		})
	}

	if d.Method != FixRemoval && d.Method != FixPerturbation {
		bad("unknown fixup method %d", int(d.Method))
	}
	if d.MaxHoleSize != 0 && (d.MaxHoleSize < repair.MinHoleSize || d.MaxHoleSize > repair.MaxHoleSizeLimit) {
		bad("max hole size %d outside [%d, %d]", d.MaxHoleSize, repair.MinHoleSize, repair.MaxHoleSizeLimit)
	}
	if d.Epsilon != 0 && (d.Epsilon < repair.MinPerturbEpsilon || d.Epsilon > repair.MaxPerturbEpsilon) {
		bad("perturb epsilon %g outside [%g, %g]", d.Epsilon, repair.MinPerturbEpsilon, repair.MaxPerturbEpsilon)
	}
	if d.MaxIterations != 0 && (d.MaxIterations < 1 || d.MaxIterations > repair.MaxPerturbIterations) {
		bad("perturb iterations %d outside [1, %d]", d.MaxIterations, repair.MaxPerturbIterations)
	}

	return errs
}

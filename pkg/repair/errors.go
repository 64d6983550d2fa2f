package repair

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure so callers can branch on the category
// without parsing message text.
type Kind int

const (
	// KindCapabilityUnavailable means the backing library for the requested
	// operation is not compiled in or failed its probe.
	KindCapabilityUnavailable Kind = iota

	// KindInvalidInput means the input mesh or an option value violates a
	// documented constraint.
	KindInvalidInput

	// KindComputationFailure means the backing library accepted the input but
	// failed while processing it.
	KindComputationFailure
)

func (k Kind) String() string {
	switch k {
	case KindCapabilityUnavailable:
		return "capability unavailable"
	case KindInvalidInput:
		return "invalid input"
	case KindComputationFailure:
		return "computation failure"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the failure carried by a failed Result. Guidance, when set, tells
// the user how to make the operation work: a build tag to enable, or a
// prerequisite operation to run first.
type Error struct {
	Kind     Kind
	Op       string // operation that failed, e.g. "remesh_intersections"
	Guidance string // empty when there is nothing actionable
	Err      error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Guidance != "" {
		msg += " (" + e.Guidance + ")"
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// IsCapabilityUnavailable reports whether err is a repair Error with
// KindCapabilityUnavailable.
func IsCapabilityUnavailable(err error) bool { return hasKind(err, KindCapabilityUnavailable) }

// IsInvalidInput reports whether err is a repair Error with KindInvalidInput.
func IsInvalidInput(err error) bool { return hasKind(err, KindInvalidInput) }

// IsComputationFailure reports whether err is a repair Error with
// KindComputationFailure.
func IsComputationFailure(err error) bool { return hasKind(err, KindComputationFailure) }

func hasKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

var errNilMesh = errors.New("nil mesh")


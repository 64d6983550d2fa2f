package pipeline

import "fmt"

// ValidationSeverity indicates whether a validation finding blocks execution
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks execution
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if pipeline-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	NodeID  NodeID
	Message string
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// Validate runs the Tier 1 structural checks on the pipeline and returns a
// slice of validation errors. An empty slice means the pipeline is
// structurally sound. This function is read-only and never mutates the
// pipeline.
func Validate(p *Pipeline) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(p)...)
	errs = append(errs, validateReferences(p)...)
	errs = append(errs, validateNames(p)...)
	errs = append(errs, validateRoots(p)...)
	errs = append(errs, validateData(p)...)
	errs = append(errs, validateArity(p)...)
	return errs
}

// ValidateAll runs both validation tiers, structural and parameter, and
// returns a ValidationResult with separated errors and warnings.
func ValidateAll(p *Pipeline) ValidationResult {
	// Tier 1: structural validation.
	tier1 := Validate(p)

	// Tier 2: parameter validation.
	tier2Errs, tier2Warnings := validateParams(p)

	// Separate Tier 1 findings into errors and warnings.
	var result ValidationResult
	for _, e := range tier1 {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{
				NodeID:  e.NodeID,
				Message: e.Message,
			})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}

	result.Errors = append(result.Errors, tier2Errs...)
	result.Warnings = append(result.Warnings, tier2Warnings...)

	return result
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = in current DFS path, black (2) = fully
// explored. Encountering a gray node during traversal means a cycle.
func validateDAG(p *Pipeline) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int) // default zero = white
	var errs []ValidationError

	var visit func(id NodeID) bool // returns true if cycle found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray

		node, ok := p.Nodes[id]
		if !ok {
			// Dangling reference; handled by validateReferences.
			color[id] = black
			return false
		}

		for _, childID := range node.Children {
			if visit(childID) {
				return true
			}
		}

		color[id] = black
		return false
	}

	// Start DFS from every node to catch disconnected components.
	for id := range p.Nodes {
		if color[id] == white {
			if visit(id) {
				// One cycle error is sufficient; stop early.
				break
			}
		}
	}

	return errs
}

// validateReferences checks that every child ID points to a node that
// actually exists in p.Nodes. Children are the only edges a pipeline has;
// no payload carries node references.
func validateReferences(p *Pipeline) []ValidationError {
	var errs []ValidationError

	for _, node := range p.Nodes {
		for _, childID := range node.Children {
			if _, ok := p.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}
	}

	return errs
}

// validateNames checks that the NameIndex is injective (no two nodes share
// the same name) and that every entry in it points to an existing node.
func validateNames(p *Pipeline) []ValidationError {
	var errs []ValidationError

	for name, id := range p.NameIndex {
		if _, ok := p.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	nameToNodes := make(map[string][]NodeID)
	for id, node := range p.Nodes {
		if node.Name != "" {
			nameToNodes[node.Name] = append(nameToNodes[node.Name], id)
		}
	}
	for name, ids := range nameToNodes {
		if len(ids) > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, len(ids)),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateRoots checks that every root ID references an existing node and
// warns about orphan nodes (nodes unreachable from any root).
func validateRoots(p *Pipeline) []ValidationError {
	var errs []ValidationError

	for _, rid := range p.Roots {
		if _, ok := p.Nodes[rid]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
		}
	}

	if len(p.Nodes) == 0 {
		return errs
	}

	// Orphan detection: BFS from all roots through child edges.
	reachable := make(map[NodeID]bool)
	queue := make([]NodeID, 0, len(p.Roots))
	for _, rid := range p.Roots {
		if _, ok := p.Nodes[rid]; ok {
			if !reachable[rid] {
				reachable[rid] = true
				queue = append(queue, rid)
			}
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node := p.Nodes[current]
		if node == nil {
			continue
		}

		for _, childID := range node.Children {
			if !reachable[childID] {
				reachable[childID] = true
				queue = append(queue, childID)
			}
		}
	}

	for id, node := range p.Nodes {
		if !reachable[id] {
			name := node.Name
			if name == "" {
				name = id.Short()
			}
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("node %q is not reachable from any root (orphan)", name),
				Severity: SeverityWarning,
			})
		}
	}

	return errs
}

// validateData checks that every node carries the payload type its kind
// implies, so the runner can type-assert without surprises.
func validateData(p *Pipeline) []ValidationError {
	var errs []ValidationError

	for _, node := range p.Nodes {
		if !dataMatchesKind(node.Kind, node.Data) {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("%s node carries %T payload", node.Kind, node.Data),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

func dataMatchesKind(k NodeKind, d NodeData) bool {
	switch d.(type) {
	case SourceData:
		return k == NodeSource
	case TransformData:
		return k == NodeTransform
	case CombineData:
		return k == NodeCombine
	case CheckData:
		return k == NodeCheck
	case OrientData:
		return k == NodeOrient
	case DetectData:
		return k == NodeDetect
	case RemeshData:
		return k == NodeRemesh
	case FillData:
		return k == NodeFill
	case WeldData:
		return k == NodeWeld
	case PruneData:
		return k == NodePrune
	case FixupData:
		return k == NodeFixup
	case InfoData:
		return k == NodeInfo
	}
	return false
}

// validateArity checks that every node has the child count its kind
// requires: sources are leaves, combine needs at least two inputs and every
// other operation consumes exactly one.
func validateArity(p *Pipeline) []ValidationError {
	var errs []ValidationError

	for _, node := range p.Nodes {
		n := len(node.Children)
		switch node.Kind {
		case NodeSource:
			if n != 0 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("source node takes no children, got %d", n),
					Severity: SeverityError,
				})
			}
		case NodeCombine:
			if n < 2 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("combine needs at least 2 children, got %d", n),
					Severity: SeverityError,
				})
			}
		default:
			if n != 1 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("%s node needs exactly 1 child, got %d", node.Kind, n),
					Severity: SeverityError,
				})
			}
		}
	}

	return errs
}

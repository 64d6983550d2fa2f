package pipeline

import (
	"fmt"
	"hash/fnv"
)

// NodeID identifies a node by the fnv-64a hash of its construction seed:
// the operation name, its parameters and the IDs of its children. Two
// expressions that describe the same work therefore collapse onto the same
// node, which is what lets the runner evaluate shared subgraphs once.
type NodeID string

// NewNodeID hashes seed into a NodeID.
func NewNodeID(seed string) NodeID {
	h := fnv.New64a()
	h.Write([]byte(seed))
	return NodeID(fmt.Sprintf("%016x", h.Sum64()))
}

// Short returns the leading eight characters for log lines and error
// messages.
func (id NodeID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// IsZero reports whether the ID is unset.
func (id NodeID) IsZero() bool {
	return id == ""
}

// NodeKind enumerates the types of nodes in a repair pipeline.
type NodeKind int

const (
	NodeSource    NodeKind = iota // primitive mesh (cube, sphere, ...)
	NodeTransform                 // spatial transformation (translate)
	NodeCombine                   // concatenation of several meshes
	NodeCheck                     // normal consistency check
	NodeOrient                    // normal orientation fix
	NodeDetect                    // self-intersection scan
	NodeRemesh                    // self-intersection remeshing
	NodeFill                      // hole filling
	NodeWeld                      // duplicate vertex merge
	NodePrune                     // degenerate face removal
	NodeFixup                     // intersection fix by removal or perturbation
	NodeInfo                      // diagnostic summary
)

func (k NodeKind) String() string {
	switch k {
	case NodeSource:
		return "source"
	case NodeTransform:
		return "transform"
	case NodeCombine:
		return "combine"
	case NodeCheck:
		return "check"
	case NodeOrient:
		return "orient"
	case NodeDetect:
		return "detect"
	case NodeRemesh:
		return "remesh"
	case NodeFill:
		return "fill"
	case NodeWeld:
		return "weld"
	case NodePrune:
		return "prune"
	case NodeFixup:
		return "fixup"
	case NodeInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Node is the fundamental element of a pipeline. Name is set only on nodes
// the user emitted; everything else stays anonymous.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}

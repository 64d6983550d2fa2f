package pipeline

import "fmt"

// Pipeline is the top-level immutable data structure produced by Lisp
// evaluation. It is never mutated in place; each evaluation produces a new
// pipeline.
type Pipeline struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
	Version   uint64            `json:"version"`
}

// New creates an empty Pipeline.
func New() *Pipeline {
	return &Pipeline{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
	}
}

// AddNode adds a node to the pipeline, indexing it by name when one is set.
// IDs are content hashes, so re-adding an existing ID is idempotent.
func (p *Pipeline) AddNode(n *Node) {
	p.Nodes[n.ID] = n
	if n.Name != "" {
		p.NameIndex[n.Name] = n.ID
	}
}

// AddRoot registers a node ID as a root of the pipeline.
func (p *Pipeline) AddRoot(id NodeID) {
	p.Roots = append(p.Roots, id)
}

// Lookup returns the node with the given user-assigned name, or nil.
func (p *Pipeline) Lookup(name string) *Node {
	id, ok := p.NameIndex[name]
	if !ok {
		return nil
	}
	return p.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (p *Pipeline) MustLookup(name string) *Node {
	n := p.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("pipeline: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (p *Pipeline) Get(id NodeID) *Node {
	return p.Nodes[id]
}

// Sources returns all source nodes in the pipeline.
func (p *Pipeline) Sources() []*Node {
	var sources []*Node
	for _, n := range p.Nodes {
		if n.Kind == NodeSource {
			sources = append(sources, n)
		}
	}
	return sources
}

// Children returns the child nodes of the given node.
func (p *Pipeline) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := p.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// NodeCount returns the total number of nodes.
func (p *Pipeline) NodeCount() int {
	return len(p.Nodes)
}

package spatial

import "gonum.org/v1/gonum/spatial/r3"

// Defaults tuned for triangle meshes in the thousands-of-faces range.
const (
	DefaultMaxObjects = 10
	DefaultMaxDepth   = 4

	// BoundsMargin is the fraction added on every side of the root bounds
	// so boundary triangles land strictly inside the partitioning.
	BoundsMargin = 0.1
)

// Octree partitions box-shaped objects for broad-phase queries. Objects
// straddling a split plane are stored in every child they touch, so Query
// can return the same id more than once.
type Octree struct {
	MaxObjects int
	MaxDepth   int

	root node
}

type node struct {
	depth    int
	bounds   AABB
	children *[8]node // nil for leaves
	ids      []int
	boxes    []AABB
}

// NewOctree returns an octree covering the given bounds with the default
// split thresholds.
func NewOctree(bounds AABB) *Octree {
	return &Octree{
		MaxObjects: DefaultMaxObjects,
		MaxDepth:   DefaultMaxDepth,
		root:       node{bounds: bounds},
	}
}

// Insert adds an object by id and bounding box.
func (t *Octree) Insert(id int, box AABB) {
	t.root.insert(t, id, box)
}

// Query returns the ids of all objects whose stored leaf cells the box
// touches. The result can contain duplicates; callers filter.
func (t *Octree) Query(box AABB) []int {
	var out []int
	t.root.query(box, &out)
	return out
}

func (n *node) insert(t *Octree, id int, box AABB) {
	if n.children != nil {
		n.eachRelevant(box, func(c *node) { c.insert(t, id, box) })
		return
	}

	n.ids = append(n.ids, id)
	n.boxes = append(n.boxes, box)
	if len(n.ids) > t.MaxObjects && n.depth < t.MaxDepth {
		n.split(t)
	}
}

func (n *node) query(box AABB, out *[]int) {
	if n.children == nil {
		for i, b := range n.boxes {
			if b.Overlaps(box) {
				*out = append(*out, n.ids[i])
			}
		}
		return
	}
	n.eachRelevant(box, func(c *node) { c.query(box, out) })
}

// split converts a leaf into an inner node with eight children and
// redistributes its objects.
func (n *node) split(t *Octree) {
	n.children = new([8]node)
	center := n.bounds.Center()
	for i := range n.children {
		child := &n.children[i]
		child.depth = n.depth + 1
		child.bounds = octant(n.bounds, center, i)
	}

	ids, boxes := n.ids, n.boxes
	n.ids, n.boxes = nil, nil
	for i, id := range ids {
		n.insert(t, id, boxes[i])
	}
}

// octant returns the bounds of child i. Bit 0 selects the high-x half, bit
// 1 high-y, bit 2 high-z.
func octant(b AABB, center r3.Vec, i int) AABB {
	out := AABB{Min: b.Min, Max: b.Max}
	if i&1 != 0 {
		out.Min.X = center.X
	} else {
		out.Max.X = center.X
	}
	if i&2 != 0 {
		out.Min.Y = center.Y
	} else {
		out.Max.Y = center.Y
	}
	if i&4 != 0 {
		out.Min.Z = center.Z
	} else {
		out.Max.Z = center.Z
	}
	return out
}

// eachRelevant calls fn for every child whose octant the box touches,
// comparing box extents against the split planes.
func (n *node) eachRelevant(box AABB, fn func(*node)) {
	center := n.bounds.Center()
	lowX := box.Min.X <= center.X
	highX := box.Max.X > center.X
	lowY := box.Min.Y <= center.Y
	highY := box.Max.Y > center.Y
	lowZ := box.Min.Z <= center.Z
	highZ := box.Max.Z > center.Z

	for i := range n.children {
		if i&1 != 0 && !highX || i&1 == 0 && !lowX {
			continue
		}
		if i&2 != 0 && !highY || i&2 == 0 && !lowY {
			continue
		}
		if i&4 != 0 && !highZ || i&4 == 0 && !lowZ {
			continue
		}
		fn(&n.children[i])
	}
}

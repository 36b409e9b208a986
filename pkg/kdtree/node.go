package kdtree

// nodeRef is a 1-based index into a Tree's node arena. Zero means
// "absent child" / "no root", distinguishing it from a valid index at
// the type level without an extra boolean.
type nodeRef int

const noRef nodeRef = 0

func (r nodeRef) valid() bool { return r != noRef }

// node owns one item and the refs of its two (optional) children. Nodes
// live in Tree.nodes, a flat append-only arena; there is no recursive
// owning pointer type.
type node struct {
	item  Item
	left  nodeRef
	right nodeRef
}

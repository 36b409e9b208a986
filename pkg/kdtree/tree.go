package kdtree

import "sort"

// Tree is a static, axis-cycling k-d tree. It owns a flat node arena and
// an optional root reference; it is immutable once Build returns, so a
// *Tree can be shared for concurrent read-only queries from any number
// of goroutines.
type Tree struct {
	nodes []node
	root  nodeRef
}

// Build constructs a Tree over items by recursive median split,
// cycling the splitting axis with depth. items is consumed (copied into
// the arena); the caller's slice is not retained.
//
// At depth d over a slice S:
//   - len(S) == 0: no node is allocated.
//   - len(S) == 1: a leaf node is allocated for the single item.
//   - len(S) >= 2: S is sorted by CompareOnAxis(., ., d) (an unstable
//     sort; the source requires no stability), mid = len(S)/2, the
//     pivot at S[mid] is allocated referencing recursively built left
//     (S[:mid]) and right (S[mid+1:]) subtrees at depth d+1.
//
// No duplicate detection is performed: equal items become distinct
// nodes.
func Build(items []Item) *Tree {
	t := &Tree{nodes: make([]node, 0, len(items))}
	t.root = t.build(items, 0)
	return t
}

// Len returns the number of items in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

func (t *Tree) build(items []Item, depth int) nodeRef {
	switch len(items) {
	case 0:
		return noRef
	case 1:
		return t.alloc(items[0], noRef, noRef)
	}

	axis := depth
	sort.Slice(items, func(i, j int) bool {
		return items[i].CompareOnAxis(items[j], axis) == Less
	})

	mid := len(items) / 2
	pivot := items[mid]

	left := t.build(items[:mid], depth+1)
	right := t.build(items[mid+1:], depth+1)

	return t.alloc(pivot, left, right)
}

// alloc appends a node to the arena and returns its 1-based reference.
func (t *Tree) alloc(item Item, left, right nodeRef) nodeRef {
	t.nodes = append(t.nodes, node{item: item, left: left, right: right})
	return nodeRef(len(t.nodes))
}

func (t *Tree) at(r nodeRef) *node {
	return &t.nodes[r-1]
}

package kdtree

import "container/heap"

// Neighbor is one result of a k-nearest-neighbor query.
type Neighbor struct {
	Item     Item
	Distance float64
}

// neighborHeap is a bounded max-heap keyed on distance: the worst
// (farthest) kept candidate sits at the root, so it can be evicted in
// O(log k) when a closer candidate arrives. Modeled on the teacher
// codebase's heapItem/maxHeap pair used for HNSW's candidate lists.
type neighborHeap []Neighbor

func (h neighborHeap) Len() int            { return len(h) }
func (h neighborHeap) Less(i, j int) bool  { return h[i].Distance > h[j].Distance }
func (h neighborHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *neighborHeap) Push(x interface{}) { *h = append(*h, x.(Neighbor)) }
func (h *neighborHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// FindNearestN returns up to k items nearest to query, ascending by
// distance. If the tree holds fewer than k items, all of them are
// returned. Tie-breaking among equal distances is unspecified.
func (t *Tree) FindNearestN(query Item, k int) []Neighbor {
	if k <= 0 || !t.root.valid() {
		return nil
	}

	h := make(neighborHeap, 0, k)
	t.knn(t.root, query, k, 0, &h)

	out := make([]Neighbor, len(h))
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&h).(Neighbor)
	}
	return out
}

func (t *Tree) knn(r nodeRef, query Item, k, depth int, h *neighborHeap) {
	n := t.at(r)

	dist := query.Distance(n.item)
	if h.Len() < k {
		heap.Push(h, Neighbor{Item: n.item, Distance: dist})
	} else if dist < (*h)[0].Distance {
		heap.Pop(h)
		heap.Push(h, Neighbor{Item: n.item, Distance: dist})
	}

	first, second := n.left, n.right
	if query.CompareOnAxis(n.item, depth) != Less {
		first, second = n.right, n.left
	}

	if first.valid() {
		t.knn(first, query, k, depth+1, h)
	}

	if !second.valid() {
		return
	}

	if h.Len() < k {
		t.knn(second, query, k, depth+1, h)
		return
	}

	axisDist := query.DistanceToAxis(n.item, depth)
	if axisDist < (*h)[0].Distance {
		t.knn(second, query, k, depth+1, h)
	}
}

package dbscan

import "github.com/kb10uy/kdscan/pkg/kdtree"

// indexed wraps a caller item with its position in the original input
// slice. DBSCAN builds its kdtree over pairs of (position, item) so that
// range-query results can be mapped straight back into the label array;
// all three Item capabilities delegate to the inner item, so the tree
// never needs to know about positions at all.
type indexed struct {
	pos  int
	item kdtree.Item
}

func (w indexed) CompareOnAxis(other kdtree.Item, depth int) kdtree.Ordering {
	return w.item.CompareOnAxis(other.(indexed).item, depth)
}

func (w indexed) Distance(other kdtree.Item) float64 {
	return w.item.Distance(other.(indexed).item)
}

func (w indexed) DistanceToAxis(other kdtree.Item, depth int) float64 {
	return w.item.DistanceToAxis(other.(indexed).item, depth)
}

func wrapIndexed(items []kdtree.Item) []kdtree.Item {
	wrapped := make([]kdtree.Item, len(items))
	for i, it := range items {
		wrapped[i] = indexed{pos: i, item: it}
	}
	return wrapped
}

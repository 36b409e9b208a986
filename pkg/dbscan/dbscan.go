package dbscan

import "github.com/kb10uy/kdscan/pkg/kdtree"

// Run clusters items by density-reachability and returns one Label per
// input position, index-aligned with items.
//
// minItems must be >= 1. Passing minItems == 0 or a negative epsilon is
// a precondition violation; the algorithm performs no sanitization
// (callers that accept these from untrusted input should validate at
// their boundary, see pkg/config.Validate and the API layer).
func Run(items []kdtree.Item, epsilon float64, minItems int) []Label {
	n := len(items)
	labels := make([]Label, n)
	if n == 0 {
		return labels
	}

	tree := kdtree.Build(wrapIndexed(items))

	visited := make([]bool, n)
	nextClusterID := 1

	for p := 0; p < n; p++ {
		if visited[p] {
			continue
		}
		visited[p] = true

		neighbors := positionsOf(tree.FindRange(indexed{pos: p, item: items[p]}, epsilon))
		if len(neighbors) < minItems {
			// Not a core point: leave the existing label (possibly
			// already a border assignment from an earlier expansion,
			// possibly still Noise). No new cluster is formed from p.
			continue
		}

		labels[p] = Cluster(nextClusterID)
		expand(tree, items, labels, visited, neighbors, epsilon, minItems, nextClusterID)
		nextClusterID++
	}

	return labels
}

// expand drains a FIFO worklist of neighbor groups, exactly mirroring
// the source's "enqueue whole neighborhood vectors" shape: a point can
// appear in several groups, but its neighborhood is only ever queried
// once thanks to the visited guard.
func expand(tree *kdtree.Tree, items []kdtree.Item, labels []Label, visited []bool, seed []int, epsilon float64, minItems, clusterID int) {
	queue := [][]int{seed}

	for len(queue) > 0 {
		group := queue[0]
		queue = queue[1:]

		for _, q := range group {
			if !visited[q] {
				visited[q] = true
				labels[q] = Cluster(clusterID)

				qNeighbors := positionsOf(tree.FindRange(indexed{pos: q, item: items[q]}, epsilon))
				if len(qNeighbors) >= minItems {
					queue = append(queue, qNeighbors)
				}
				continue
			}

			// Border-point upgrade: a point already visited (and thus
			// already queried) that is still labeled Noise belongs to
			// this cluster too. Its neighborhood is deliberately not
			// re-queried -- border points never expand.
			if labels[q].IsNoise() {
				labels[q] = Cluster(clusterID)
			}
		}
	}
}

func positionsOf(found []kdtree.Item) []int {
	positions := make([]int, len(found))
	for i, it := range found {
		positions[i] = it.(indexed).pos
	}
	return positions
}

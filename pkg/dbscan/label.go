// Package dbscan implements density-based clustering (DBSCAN) over a
// kdtree.Tree. It assigns each input point to a cluster, identified by a
// positive integer assigned in first-encounter order, or to noise.
package dbscan

import "fmt"

// Label is the outcome assigned to one input position: either Cluster(k)
// for some k >= 1, or Noise.
type Label struct {
	cluster int // 0 means Noise
}

// Noise is the label for a point that is neither a core point nor
// reachable from one.
var Noise = Label{}

// Cluster returns the label for cluster id k. k must be >= 1.
func Cluster(k int) Label {
	if k < 1 {
		panic("dbscan: cluster id must be >= 1")
	}
	return Label{cluster: k}
}

// IsNoise reports whether the label is Noise.
func (l Label) IsNoise() bool { return l.cluster == 0 }

// ID returns the cluster id and true, or (0, false) if the label is
// Noise.
func (l Label) ID() (int, bool) {
	if l.IsNoise() {
		return 0, false
	}
	return l.cluster, true
}

func (l Label) String() string {
	if l.IsNoise() {
		return "Noise"
	}
	return fmt.Sprintf("Cluster(%d)", l.cluster)
}

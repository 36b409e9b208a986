// Package kdtree implements a static k-d tree over arbitrary metric
// items. The tree is built once from a finite slice of items and is
// immutable afterward; it answers nearest, k-nearest, and range queries
// with branch-and-bound pruning against an abstract axis-aligned
// decomposition supplied by the Item implementation.
package kdtree

// Ordering is the result of comparing two items on a single axis.
type Ordering int

const (
	Less Ordering = iota - 1
	Equal
	Greater
)

// Item is the capability set a caller must supply to build a k-d tree
// over a custom type. All three methods are evaluated at a given depth,
// which the implementation uses (typically via depth mod D) to choose
// which axis of a multi-dimensional item to act on.
//
// CompareOnAxis must define a total order at any fixed depth: for items
// x, y, z, if CompareOnAxis(x, y, d) == Equal and
// CompareOnAxis(y, z, d) == Equal then CompareOnAxis(x, z, d) == Equal,
// and the relation is antisymmetric and transitive. A comparison that
// cannot produce an ordering (e.g. a NaN coordinate) is a fatal
// precondition violation and implementations should panic rather than
// guess.
//
// Distance must be non-negative, symmetric, satisfy the triangle
// inequality, and Distance(a, a) == 0. It need not be Euclidean.
//
// DistanceToAxis(a, b, depth) must be a lower bound on Distance(a, x)
// for any x lying on the opposite side of the splitting hyperplane
// defined by b at depth from a. This is the pruning precondition: if it
// is violated, branch-and-bound queries can silently miss results.
type Item interface {
	CompareOnAxis(other Item, depth int) Ordering
	Distance(other Item) float64
	DistanceToAxis(other Item, depth int) float64
}

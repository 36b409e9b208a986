package kdtree

import "github.com/kb10uy/kdscan/internal/metricx"

// Point is the canonical Item instantiation for fixed-dimension
// real-vector data: axis = depth mod len(Coords), distance defaults to
// Euclidean, and axis distance is the metric's distance from a point to
// its projection onto the splitting coordinate (the absolute
// per-coordinate difference for the Minkowski-family metrics, its
// square for SquaredEuclidean).
//
// Metric is optional; a Point with a nil Metric measures with the
// other point's Metric, and with metricx.Euclidean when neither has
// one, so the zero value of Point is usable directly and a NewPoint
// query measures with the metric of the tree's points.
type Point struct {
	Coords []float64
	Metric metricx.DistanceFunc
}

// NewPoint builds a Point using the default (Euclidean) metric.
func NewPoint(coords ...float64) Point {
	return Point{Coords: coords}
}

func (p Point) metric() metricx.DistanceFunc {
	if p.Metric != nil {
		return p.Metric
	}
	return metricx.Euclidean
}

func (p Point) axis(depth int) int {
	return depth % len(p.Coords)
}

// CompareOnAxis implements Item.
func (p Point) CompareOnAxis(other Item, depth int) Ordering {
	o := other.(Point)
	a := p.axis(depth)

	switch {
	case p.Coords[a] < o.Coords[a]:
		return Less
	case p.Coords[a] > o.Coords[a]:
		return Greater
	default:
		return Equal
	}
}

// Distance implements Item.
func (p Point) Distance(other Item) float64 {
	o := other.(Point)
	metric := p.metric()
	if p.Metric == nil && o.Metric != nil {
		metric = o.Metric
	}
	return metric(p.Coords, o.Coords)
}

// DistanceToAxis implements Item. It is the metric's distance from p to
// p moved onto o's coordinate on the splitting axis, which no point on
// o's side of that plane can be closer than.
func (p Point) DistanceToAxis(other Item, depth int) float64 {
	o := other.(Point)
	a := p.axis(depth)
	metric := p.Metric
	if metric == nil {
		metric = o.Metric
	}
	if metric == nil {
		return metricx.AxisDelta(p.Coords, o.Coords, a)
	}
	projected := append([]float64(nil), p.Coords...)
	projected[a] = o.Coords[a]
	return metric(p.Coords, projected)
}

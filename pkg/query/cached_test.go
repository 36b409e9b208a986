package query

import (
	"testing"
	"time"

	"github.com/kb10uy/kdscan/pkg/kdtree"
	"github.com/stretchr/testify/require"
)

func buildTree(coords ...[]float64) *kdtree.Tree {
	items := make([]kdtree.Item, len(coords))
	for i, c := range coords {
		items[i] = kdtree.NewPoint(c...)
	}
	return kdtree.Build(items)
}

func TestCachedTreeFindNearestCachesResult(t *testing.T) {
	tree := buildTree([]float64{0, 0}, []float64{5, 5}, []float64{10, 10})
	ct := NewCachedTree(tree, 10, 0)

	item, found := ct.FindNearest(kdtree.NewPoint(0.5, 0.5))
	require.True(t, found)
	require.Equal(t, kdtree.NewPoint(0, 0), item)

	// Second call should come from cache and return the same result.
	item2, found2 := ct.FindNearest(kdtree.NewPoint(0.5, 0.5))
	require.True(t, found2)
	require.Equal(t, item, item2)

	stats := ct.Stats()
	require.Equal(t, int64(1), stats.Hits)
}

func TestCachedTreeFindRangeCachesResult(t *testing.T) {
	tree := buildTree([]float64{0, 0}, []float64{1, 1}, []float64{10, 10})
	ct := NewCachedTree(tree, 10, 0)

	first := ct.FindRange(kdtree.NewPoint(0, 0), 2.0)
	require.Len(t, first, 2)

	second := ct.FindRange(kdtree.NewPoint(0, 0), 2.0)
	require.Equal(t, first, second)

	stats := ct.Stats()
	require.Equal(t, int64(1), stats.Hits)
}

func TestCachedTreeInvalidateAll(t *testing.T) {
	tree := buildTree([]float64{0, 0})
	ct := NewCachedTree(tree, 10, 0)

	ct.FindNearest(kdtree.NewPoint(0, 0))
	ct.InvalidateAll()
	require.Equal(t, 0, ct.Stats().Size)
}

func TestCachedTreeRespectsTTL(t *testing.T) {
	tree := buildTree([]float64{0, 0})
	ct := NewCachedTree(tree, 10, time.Millisecond)

	ct.FindNearest(kdtree.NewPoint(0, 0))
	time.Sleep(5 * time.Millisecond)
	ct.FindNearest(kdtree.NewPoint(0, 0))

	stats := ct.Stats()
	require.Equal(t, int64(0), stats.Hits)
	require.Equal(t, int64(2), stats.Misses)
}

func TestFilteredRangeWithoutFilterPassesThrough(t *testing.T) {
	items := []kdtree.Item{kdtree.NewPoint(0, 0), kdtree.NewPoint(1, 1)}
	tree := kdtree.Build(Annotate(items, nil))

	found := FilteredRange(tree, Annotated{Item: kdtree.NewPoint(0, 0)}, 5, nil)
	require.Len(t, found, 2)
}

func TestFilteredRangeAppliesFilter(t *testing.T) {
	items := []kdtree.Item{kdtree.NewPoint(0, 0), kdtree.NewPoint(1, 1)}
	metadata := []map[string]interface{}{
		{"region": "us"},
		{"region": "eu"},
	}
	tree := kdtree.Build(Annotate(items, metadata))

	f := &ComparisonFilter{Field: "region", Operator: OpEquals, Value: "us"}
	found := FilteredRange(tree, Annotated{Item: kdtree.NewPoint(0, 0)}, 5, f)
	require.Len(t, found, 1)
	require.Equal(t, "us", found[0].(Annotated).Metadata["region"])
}

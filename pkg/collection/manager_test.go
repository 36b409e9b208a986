package collection

import (
	"testing"
	"time"

	"github.com/kb10uy/kdscan/pkg/kdtree"
	"github.com/kb10uy/kdscan/pkg/query"
	"github.com/stretchr/testify/require"
)

func pts(coords ...[]float64) []kdtree.Point {
	out := make([]kdtree.Point, len(coords))
	for i, c := range coords {
		out[i] = kdtree.NewPoint(c...)
	}
	return out
}

func TestManagerCreateAndGet(t *testing.T) {
	m := NewManager()
	c, err := m.Create("default", DefaultQuota())
	require.NoError(t, err)
	require.Equal(t, "default", c.Name)

	got, err := m.Get("default")
	require.NoError(t, err)
	require.Same(t, c, got)
}

func TestManagerCreateDuplicateFails(t *testing.T) {
	m := NewManager()
	_, err := m.Create("default", DefaultQuota())
	require.NoError(t, err)

	_, err = m.Create("default", DefaultQuota())
	require.Error(t, err)
}

func TestManagerGetMissingFails(t *testing.T) {
	m := NewManager()
	_, err := m.Get("nope")
	require.Error(t, err)
}

func TestManagerGetOrCreate(t *testing.T) {
	m := NewManager()
	c1 := m.GetOrCreate("default")
	c2 := m.GetOrCreate("default")
	require.Same(t, c1, c2)
	require.Equal(t, 1, m.Count())
}

func TestManagerDelete(t *testing.T) {
	m := NewManager()
	m.GetOrCreate("default")
	require.NoError(t, m.Delete("default"))
	require.Equal(t, 0, m.Count())
	require.Error(t, m.Delete("default"))
}

func TestManagerList(t *testing.T) {
	m := NewManager()
	m.GetOrCreate("a")
	m.GetOrCreate("b")
	require.Len(t, m.List(), 2)
}

func TestCollectionInsertRejectsInconsistentDimensions(t *testing.T) {
	c := &Collection{Quota: UnlimitedQuota()}
	err := c.Insert(pts([]float64{1, 2}, []float64{1, 2, 3}))
	require.Error(t, err)
}

func TestCollectionInsertEnforcesPointQuota(t *testing.T) {
	c := &Collection{Quota: Quota{MaxPoints: 1}}
	require.NoError(t, c.Insert(pts([]float64{1, 2})))
	err := c.Insert(pts([]float64{3, 4}))
	require.Error(t, err)
}

func TestCollectionInsertEnforcesDimensionQuota(t *testing.T) {
	c := &Collection{Quota: Quota{MaxDimensions: 2}}
	err := c.Insert(pts([]float64{1, 2, 3}))
	require.Error(t, err)
}

func TestCollectionBuildRequiresPoints(t *testing.T) {
	c := &Collection{Quota: UnlimitedQuota()}
	_, err := c.Build(nil)
	require.Error(t, err)
}

func TestCollectionBuildAndTree(t *testing.T) {
	c := &Collection{Quota: UnlimitedQuota()}
	require.NoError(t, c.Insert(pts([]float64{0, 0}, []float64{1, 1}, []float64{2, 2})))

	require.False(t, c.HasTree())
	n, err := c.Build(nil)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.True(t, c.HasTree())
	require.NotNil(t, c.Tree())
}

func TestCollectionCluster(t *testing.T) {
	c := &Collection{Quota: UnlimitedQuota()}
	require.NoError(t, c.Insert(pts(
		[]float64{0, 0}, []float64{0.1, 0.1}, []float64{0.2, 0},
		[]float64{10, 10},
	)))

	labels, err := c.Cluster(1.0, 2)
	require.NoError(t, err)
	require.Len(t, labels, 4)
	require.True(t, labels[3].IsNoise())
	require.False(t, labels[0].IsNoise())
	require.Equal(t, labels, c.Labels())
}

func TestCollectionClusterRequiresPoints(t *testing.T) {
	c := &Collection{Quota: UnlimitedQuota()}
	_, err := c.Cluster(1.0, 2)
	require.Error(t, err)
}

func TestCollectionRateLimit(t *testing.T) {
	c := &Collection{Quota: Quota{RateLimitQPS: 2}}
	require.NoError(t, c.CheckRateLimit())
	require.NoError(t, c.CheckRateLimit())
	require.Error(t, c.CheckRateLimit())
}

func TestCollectionRateLimitUnlimited(t *testing.T) {
	c := &Collection{Quota: UnlimitedQuota()}
	for i := 0; i < 100; i++ {
		require.NoError(t, c.CheckRateLimit())
	}
}

func TestCollectionUsagePercentage(t *testing.T) {
	c := &Collection{Quota: Quota{MaxPoints: 10}}
	require.NoError(t, c.Insert(pts([]float64{1}, []float64{2})))
	pct := c.UsagePercentage()
	require.InDelta(t, 20.0, pct["points"], 1e-9)
}

func TestCollectionInsertPointsRejectsMismatchedMetadataLength(t *testing.T) {
	c := &Collection{Quota: UnlimitedQuota()}
	err := c.InsertPoints(pts([]float64{0, 0}, []float64{1, 1}), []map[string]interface{}{{"tag": "a"}})
	require.Error(t, err)
}

func TestCollectionFilteredRangeMatchesOnMetadata(t *testing.T) {
	c := &Collection{Quota: UnlimitedQuota()}
	require.NoError(t, c.InsertPoints(
		pts([]float64{0, 0}, []float64{0.1, 0.1}, []float64{0.2, 0.2}),
		[]map[string]interface{}{{"region": "east"}, {"region": "west"}, {"region": "east"}},
	))
	_, err := c.Build(nil)
	require.NoError(t, err)

	f := &query.ComparisonFilter{Field: "region", Operator: query.OpEquals, Value: "east"}
	found := c.FilteredRange(kdtree.NewPoint(0, 0), 1.0, f)
	require.Len(t, found, 2)
	for _, ann := range found {
		require.Equal(t, "east", ann.Metadata["region"])
	}
}

func TestCollectionFilteredRangeNilBeforeBuild(t *testing.T) {
	c := &Collection{Quota: UnlimitedQuota()}
	require.Nil(t, c.FilteredRange(kdtree.NewPoint(0, 0), 1.0, nil))
}

func TestCollectionCachedQueriesMatchDirectTree(t *testing.T) {
	m := NewManagerWithCache(16, time.Minute)
	c, err := m.Create("cached", UnlimitedQuota())
	require.NoError(t, err)
	require.NoError(t, c.Insert(pts([]float64{0, 0}, []float64{1, 1}, []float64{5, 5})))
	_, err = c.Build(nil)
	require.NoError(t, err)

	q := kdtree.NewPoint(0.1, 0.1)
	item, found := c.CachedNearest(q)
	require.True(t, found)
	require.Equal(t, []float64{0, 0}, item.(kdtree.Point).Coords)

	// second call should be served from cache
	item2, found2 := c.CachedNearest(q)
	require.True(t, found2)
	require.Equal(t, item.(kdtree.Point).Coords, item2.(kdtree.Point).Coords)
	require.Equal(t, int64(1), c.CacheStats().Hits)

	inRange := c.CachedRange(kdtree.NewPoint(0, 0), 2.0)
	require.Len(t, inRange, 2)
}

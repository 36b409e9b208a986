package grpc

import (
	"context"
	"testing"

	"github.com/kb10uy/kdscan/pkg/config"
	"github.com/kb10uy/kdscan/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	logger := observability.NewLogger(observability.ERROR, nil)
	s, err := NewServer(cfg, logger, testMetrics(t))
	require.NoError(t, err)
	return s
}

// testMetrics returns a Metrics instance bound to its own registry.
// Prometheus's default registry panics on duplicate registration, and
// every test function in this file constructs a server, so sharing
// the default registry across them would panic after the first test.
func testMetrics(t *testing.T) *observability.Metrics {
	t.Helper()
	return observability.NewMetricsWithRegisterer(prometheus.NewRegistry())
}

func TestInsertRequiresCollection(t *testing.T) {
	s := newTestServer(t)
	_, err := s.Insert(context.Background(), &InsertRequest{Points: [][]float64{{1, 2}}})
	require.Error(t, err)
}

func TestInsertAndBuildAndSearch(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	insResp, err := s.Insert(ctx, &InsertRequest{
		Collection: "default",
		Points:     [][]float64{{0, 0}, {1, 1}, {10, 10}},
	})
	require.NoError(t, err)
	require.Equal(t, 3, insResp.Inserted)

	buildResp, err := s.Build(ctx, &BuildRequest{Collection: "default"})
	require.NoError(t, err)
	require.Equal(t, 3, buildResp.Size)

	searchResp, err := s.Search(ctx, &SearchRequest{Collection: "default", Query: []float64{0.1, 0.1}})
	require.NoError(t, err)
	require.Len(t, searchResp.Results, 1)
	require.Equal(t, []float64{0, 0}, searchResp.Results[0].Coords)
}

func TestSearchKNN(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, &InsertRequest{
		Collection: "knn",
		Points:     [][]float64{{0, 0}, {1, 1}, {2, 2}, {10, 10}},
	})
	require.NoError(t, err)
	_, err = s.Build(ctx, &BuildRequest{Collection: "knn"})
	require.NoError(t, err)

	resp, err := s.Search(ctx, &SearchRequest{Collection: "knn", Query: []float64{0, 0}, K: 2})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
}

func TestSearchWithoutBuildFails(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	_, err := s.Insert(ctx, &InsertRequest{Collection: "nobuild", Points: [][]float64{{0, 0}}})
	require.NoError(t, err)

	_, err = s.Search(ctx, &SearchRequest{Collection: "nobuild", Query: []float64{0, 0}})
	require.Error(t, err)
}

func TestRangeQuery(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, &InsertRequest{
		Collection: "range",
		Points:     [][]float64{{0, 0}, {0.5, 0.5}, {10, 10}},
	})
	require.NoError(t, err)
	_, err = s.Build(ctx, &BuildRequest{Collection: "range"})
	require.NoError(t, err)

	resp, err := s.RangeQuery(ctx, &RangeQueryRequest{Collection: "range", Query: []float64{0, 0}, Epsilon: 1})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
}

func TestClusterRPC(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, &InsertRequest{
		Collection: "clusters",
		Points: [][]float64{
			{0, 0}, {0.1, 0.1}, {0.2, 0},
			{10, 10},
		},
	})
	require.NoError(t, err)

	resp, err := s.Cluster(ctx, &ClusterRequest{Collection: "clusters", Epsilon: 1.0, MinItems: 2})
	require.NoError(t, err)
	require.Len(t, resp.Labels, 4)
	require.Equal(t, 1, resp.ClusterCount)
	require.Equal(t, 1, resp.NoiseCount)
}

func TestClusterRejectsBadMinItems(t *testing.T) {
	s := newTestServer(t)
	_, err := s.Cluster(context.Background(), &ClusterRequest{Collection: "default", Epsilon: 1, MinItems: -1})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestClusterFallsBackToConfiguredDefaults(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, &InsertRequest{
		Collection: "cluster-defaults",
		Points: [][]float64{
			{0, 0}, {0.1, 0.1}, {0.2, 0},
			{10, 10},
		},
	})
	require.NoError(t, err)

	// Epsilon/MinItems omitted: must fall back to s.config.Cluster's
	// defaults (0.5/4 per config.Default()) rather than rejecting the
	// request outright.
	resp, err := s.Cluster(ctx, &ClusterRequest{Collection: "cluster-defaults"})
	require.NoError(t, err)
	require.Len(t, resp.Labels, 4)
}

func TestStatsReportsCollections(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	_, err := s.Insert(ctx, &InsertRequest{Collection: "stats-a", Points: [][]float64{{1, 2}}})
	require.NoError(t, err)

	resp, err := s.Stats(ctx, &StatsRequest{})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(resp.Collections), 1)
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	resp, err := s.HealthCheck(context.Background(), &HealthCheckRequest{})
	require.NoError(t, err)
	require.Equal(t, "SERVING", resp.Status)
}

func TestInsertRequiresCollectionReturnsInvalidArgument(t *testing.T) {
	s := newTestServer(t)
	_, err := s.Insert(context.Background(), &InsertRequest{Points: [][]float64{{1, 2}}})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestBuildUnknownCollectionReturnsNotFound(t *testing.T) {
	s := newTestServer(t)
	_, err := s.Build(context.Background(), &BuildRequest{Collection: "nope"})
	require.Equal(t, codes.NotFound, status.Code(err))
}

func TestSearchWithoutBuildReturnsFailedPrecondition(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	_, err := s.Insert(ctx, &InsertRequest{Collection: "precond", Points: [][]float64{{0, 0}}})
	require.NoError(t, err)

	_, err = s.Search(ctx, &SearchRequest{Collection: "precond", Query: []float64{0, 0}})
	require.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestRangeQueryWithFilterMatchesMetadata(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, &InsertRequest{
		Collection: "filtered",
		Points:     [][]float64{{0, 0}, {0.1, 0.1}, {0.2, 0.2}},
		Metadata: []map[string]interface{}{
			{"region": "east"},
			{"region": "west"},
			{"region": "east"},
		},
	})
	require.NoError(t, err)
	_, err = s.Build(ctx, &BuildRequest{Collection: "filtered"})
	require.NoError(t, err)

	resp, err := s.RangeQuery(ctx, &RangeQueryRequest{
		Collection: "filtered",
		Query:      []float64{0, 0},
		Epsilon:    1,
		Filter:     &FilterSpec{Field: "region", Operator: "eq", Value: "east"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	for _, r := range resp.Results {
		require.Equal(t, "east", r.Metadata["region"])
	}
}

func TestRepeatedSearchServesFromCache(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, &InsertRequest{Collection: "cachehit", Points: [][]float64{{0, 0}, {5, 5}}})
	require.NoError(t, err)
	_, err = s.Build(ctx, &BuildRequest{Collection: "cachehit"})
	require.NoError(t, err)

	_, err = s.Search(ctx, &SearchRequest{Collection: "cachehit", Query: []float64{0.1, 0.1}})
	require.NoError(t, err)
	_, err = s.Search(ctx, &SearchRequest{Collection: "cachehit", Query: []float64{0.1, 0.1}})
	require.NoError(t, err)

	statsResp, err := s.Stats(ctx, &StatsRequest{Collection: "cachehit"})
	require.NoError(t, err)
	require.Len(t, statsResp.Collections, 1)
	require.Greater(t, statsResp.Collections[0].CacheHitRate, 0.0)
}

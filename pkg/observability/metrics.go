package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the clustering engine.
type Metrics struct {
	// Request metrics (REST + gRPC)
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestErrors   *prometheus.CounterVec

	// Point ingestion metrics
	PointsInserted prometheus.Counter

	// Tree metrics
	TreeBuildTotal    prometheus.Counter
	TreeBuildDuration prometheus.Histogram
	TreeSize          *prometheus.GaugeVec

	// Query metrics
	QueriesTotal *prometheus.CounterVec
	QueryLatency *prometheus.HistogramVec

	// Clustering metrics
	ClusterRunsTotal   prometheus.Counter
	ClusterRunDuration prometheus.Histogram
	ClustersFormed     *prometheus.GaugeVec
	PointsLabeledNoise *prometheus.GaugeVec

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
	CacheSize   prometheus.Gauge

	// Collection (multi-tenant) metrics
	CollectionsTotal     prometheus.Gauge
	CollectionQuotaUsage *prometheus.GaugeVec

	// System metrics
	GoroutinesCount prometheus.Gauge
	MemoryUsage     prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics against the
// default registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegisterer creates and registers all Prometheus metrics
// against reg. Tests that construct more than one Metrics instance in
// the same process should pass a fresh prometheus.NewRegistry() here,
// since the default registry panics on duplicate registration.
func NewMetricsWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kdscan_requests_total",
				Help: "Total number of requests by method and status",
			},
			[]string{"method", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kdscan_request_duration_seconds",
				Help:    "Request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),
		RequestErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kdscan_request_errors_total",
				Help: "Total number of request errors by method and error type",
			},
			[]string{"method", "error_type"},
		),

		PointsInserted: f.NewCounter(
			prometheus.CounterOpts{
				Name: "kdscan_points_inserted_total",
				Help: "Total number of points inserted across all collections",
			},
		),

		TreeBuildTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "kdscan_tree_builds_total",
				Help: "Total number of k-d tree (re)builds",
			},
		),
		TreeBuildDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "kdscan_tree_build_duration_seconds",
				Help:    "k-d tree construction duration in seconds",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30},
			},
		),
		TreeSize: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "kdscan_tree_size",
				Help: "Number of points in the k-d tree by collection",
			},
			[]string{"collection"},
		),

		QueriesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kdscan_queries_total",
				Help: "Total number of tree queries by kind (nearest, knn, range)",
			},
			[]string{"kind"},
		),
		QueryLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kdscan_query_latency_seconds",
				Help:    "Tree query latency in seconds by kind",
				Buckets: []float64{.00001, .0001, .001, .01, .1, 1},
			},
			[]string{"kind"},
		),

		ClusterRunsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "kdscan_cluster_runs_total",
				Help: "Total number of DBSCAN runs",
			},
		),
		ClusterRunDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "kdscan_cluster_run_duration_seconds",
				Help:    "DBSCAN run duration in seconds",
				Buckets: []float64{.001, .01, .1, .5, 1, 5, 10, 30, 60},
			},
		),
		ClustersFormed: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "kdscan_clusters_formed",
				Help: "Number of clusters formed by the last run, by collection",
			},
			[]string{"collection"},
		),
		PointsLabeledNoise: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "kdscan_points_labeled_noise",
				Help: "Number of points labeled Noise by the last run, by collection",
			},
			[]string{"collection"},
		),

		CacheHits: f.NewCounter(
			prometheus.CounterOpts{
				Name: "kdscan_cache_hits_total",
				Help: "Total number of query cache hits",
			},
		),
		CacheMisses: f.NewCounter(
			prometheus.CounterOpts{
				Name: "kdscan_cache_misses_total",
				Help: "Total number of query cache misses",
			},
		),
		CacheSize: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "kdscan_cache_size",
				Help: "Current number of entries in the query cache",
			},
		),

		CollectionsTotal: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "kdscan_collections_total",
				Help: "Total number of active collections",
			},
		),
		CollectionQuotaUsage: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "kdscan_collection_quota_usage",
				Help: "Collection quota usage percentage by collection and resource",
			},
			[]string{"collection", "resource"},
		),

		GoroutinesCount: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "kdscan_goroutines",
				Help: "Current number of goroutines",
			},
		),
		MemoryUsage: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "kdscan_memory_bytes",
				Help: "Memory usage in bytes",
			},
		),
	}
}

// RecordRequest records a request with duration and status.
func (m *Metrics) RecordRequest(method, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, status).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordError records an error.
func (m *Metrics) RecordError(method, errorType string) {
	m.RequestErrors.WithLabelValues(method, errorType).Inc()
}

// RecordInsert records points being inserted into a collection's buffer.
func (m *Metrics) RecordInsert(count int) {
	m.PointsInserted.Add(float64(count))
}

// RecordTreeBuild records a k-d tree construction.
func (m *Metrics) RecordTreeBuild(collection string, duration time.Duration, size int) {
	m.TreeBuildTotal.Inc()
	m.TreeBuildDuration.Observe(duration.Seconds())
	m.TreeSize.WithLabelValues(collection).Set(float64(size))
}

// RecordQuery records a tree query (nearest/knn/range) and its latency.
func (m *Metrics) RecordQuery(kind string, duration time.Duration) {
	m.QueriesTotal.WithLabelValues(kind).Inc()
	m.QueryLatency.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordClusterRun records a completed DBSCAN run.
func (m *Metrics) RecordClusterRun(collection string, duration time.Duration, clusterCount, noiseCount int) {
	m.ClusterRunsTotal.Inc()
	m.ClusterRunDuration.Observe(duration.Seconds())
	m.ClustersFormed.WithLabelValues(collection).Set(float64(clusterCount))
	m.PointsLabeledNoise.WithLabelValues(collection).Set(float64(noiseCount))
}

// RecordCacheHit records a query cache hit.
func (m *Metrics) RecordCacheHit() {
	m.CacheHits.Inc()
}

// RecordCacheMiss records a query cache miss.
func (m *Metrics) RecordCacheMiss() {
	m.CacheMisses.Inc()
}

// UpdateCacheSize updates the cache size gauge.
func (m *Metrics) UpdateCacheSize(size int) {
	m.CacheSize.Set(float64(size))
}

// UpdateCollectionCount updates the total collection count.
func (m *Metrics) UpdateCollectionCount(count int) {
	m.CollectionsTotal.Set(float64(count))
}

// UpdateCollectionQuota updates per-collection quota usage.
func (m *Metrics) UpdateCollectionQuota(collection, resource string, usage float64) {
	m.CollectionQuotaUsage.WithLabelValues(collection, resource).Set(usage)
}

// UpdateGoroutineCount updates the goroutine gauge.
func (m *Metrics) UpdateGoroutineCount(count int) {
	m.GoroutinesCount.Set(float64(count))
}

// UpdateMemoryUsage updates the memory usage gauge.
func (m *Metrics) UpdateMemoryUsage(bytes uint64) {
	m.MemoryUsage.Set(float64(bytes))
}

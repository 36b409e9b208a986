package grpc

// Messages are plain JSON-tagged structs rather than protobuf-generated
// types: they travel over real grpc-go transport using the JSON codec
// registered in codec.go, so the wire format is readable JSON frames
// instead of binary protobuf, while RPC dispatch, streaming, deadlines,
// and interceptors are all genuine grpc-go behavior.

// InsertRequest appends points (and optional parallel metadata) to a
// collection's buffer.
type InsertRequest struct {
	Collection string                   `json:"collection"`
	Points     [][]float64              `json:"points"`
	Metadata   []map[string]interface{} `json:"metadata,omitempty"`
}

// InsertResponse reports how many points now sit in the collection.
type InsertResponse struct {
	Inserted   int `json:"inserted"`
	TotalCount int `json:"total_count"`
}

// BuildRequest asks the server to (re)build the k-d tree over a
// collection's current points.
type BuildRequest struct {
	Collection string `json:"collection"`
	Metric     string `json:"metric,omitempty"`
}

// BuildResponse reports the resulting tree size.
type BuildResponse struct {
	Size int `json:"size"`
}

// ClusterRequest runs DBSCAN over a collection's current points.
type ClusterRequest struct {
	Collection string  `json:"collection"`
	Epsilon    float64 `json:"epsilon"`
	MinItems   int     `json:"min_items"`
}

// ClusterResponse reports one label per input point, index-aligned
// with the order points were inserted, plus a summary.
type ClusterResponse struct {
	Labels       []int `json:"labels"` // 0 = Noise, >0 = cluster ID
	ClusterCount int   `json:"cluster_count"`
	NoiseCount   int   `json:"noise_count"`
}

// SearchRequest finds the nearest point, or the K nearest points, to
// Query. K == 0 (or 1) means a single nearest-neighbor search; K > 1
// means a bounded k-NN search.
type SearchRequest struct {
	Collection string    `json:"collection"`
	Query      []float64 `json:"query"`
	K          int       `json:"k,omitempty"`
}

// SearchResult is a single neighbor: its coordinates and distance from
// the query point, plus whatever metadata was attached at Insert time
// (only populated for a RangeQuery carrying a Filter).
type SearchResult struct {
	Coords   []float64              `json:"coords"`
	Distance float64                `json:"distance"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// FilterSpec is the wire form of a single metadata comparison filter,
// translated into a query.ComparisonFilter server-side. Operator is
// one of "eq", "ne", "gt", "lt", "gte", "lte", "exists".
type FilterSpec struct {
	Field    string      `json:"field"`
	Operator string      `json:"operator"`
	Value    interface{} `json:"value,omitempty"`
}

// SearchResponse carries the matched neighbors, nearest first.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// RangeQueryRequest finds every point within Epsilon of Query. An
// optional Filter further restricts results to points whose attached
// metadata (see InsertRequest.Metadata) matches it.
type RangeQueryRequest struct {
	Collection string      `json:"collection"`
	Query      []float64   `json:"query"`
	Epsilon    float64     `json:"epsilon"`
	Filter     *FilterSpec `json:"filter,omitempty"`
}

// RangeQueryResponse carries the matched neighbors, unordered.
type RangeQueryResponse struct {
	Results []SearchResult `json:"results"`
}

// StatsRequest asks for a collection's current statistics. An empty
// Collection means "all collections".
type StatsRequest struct {
	Collection string `json:"collection,omitempty"`
}

// CollectionStats summarizes a single collection.
type CollectionStats struct {
	Name         string  `json:"name"`
	PointCount   int64   `json:"point_count"`
	HasTree      bool    `json:"has_tree"`
	ClusterCount int     `json:"cluster_count"`
	NoiseCount   int     `json:"noise_count"`
	CacheHitRate float64 `json:"cache_hit_rate"`
}

// StatsResponse reports server-wide uptime plus per-collection stats.
type StatsResponse struct {
	UptimeSeconds float64           `json:"uptime_seconds"`
	Collections   []CollectionStats `json:"collections"`
}

// HealthCheckRequest is empty; health checks take no parameters.
type HealthCheckRequest struct{}

// HealthCheckResponse reports liveness and uptime.
type HealthCheckResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

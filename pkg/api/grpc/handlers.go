package grpc

import (
	"context"
	"fmt"
	"time"

	"github.com/kb10uy/kdscan/internal/metricx"
	"github.com/kb10uy/kdscan/pkg/kdtree"
	"github.com/kb10uy/kdscan/pkg/query"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Insert implements ClusterServiceServer.
func (s *Server) Insert(ctx context.Context, req *InsertRequest) (*InsertResponse, error) {
	start := time.Now()

	if req.Collection == "" {
		return nil, status.Error(codes.InvalidArgument, "collection is required")
	}
	if len(req.Points) == 0 {
		return nil, status.Error(codes.InvalidArgument, "points must not be empty")
	}

	col := s.collections.GetOrCreate(req.Collection)
	points := make([]kdtree.Point, len(req.Points))
	for i, coords := range req.Points {
		points[i] = kdtree.NewPoint(coords...)
	}

	if err := col.InsertPoints(points, req.Metadata); err != nil {
		s.metrics.RecordError("Insert", "quota_exceeded")
		return nil, status.Error(codes.ResourceExhausted, err.Error())
	}

	s.metrics.RecordInsert(len(points))
	s.metrics.RecordRequest("Insert", "success", time.Since(start))
	return &InsertResponse{
		Inserted:   len(points),
		TotalCount: len(col.Points()),
	}, nil
}

// Build implements ClusterServiceServer.
func (s *Server) Build(ctx context.Context, req *BuildRequest) (*BuildResponse, error) {
	start := time.Now()

	if req.Collection == "" {
		return nil, status.Error(codes.InvalidArgument, "collection is required")
	}

	col, err := s.collections.Get(req.Collection)
	if err != nil {
		s.metrics.RecordError("Build", "not_found")
		return nil, status.Error(codes.NotFound, err.Error())
	}

	// Use the metric from the request, or the configured default.
	metricName := req.Metric
	if metricName == "" {
		metricName = s.config.Cluster.Metric
	}
	metric, _ := metricx.ByName(metricName)
	size, err := col.Build(metric)
	if err != nil {
		s.metrics.RecordError("Build", "build_failed")
		return nil, status.Error(codes.FailedPrecondition, err.Error())
	}

	duration := time.Since(start)
	s.metrics.RecordTreeBuild(req.Collection, duration, size)
	s.metrics.RecordRequest("Build", "success", duration)
	return &BuildResponse{Size: size}, nil
}

// Cluster implements ClusterServiceServer.
func (s *Server) Cluster(ctx context.Context, req *ClusterRequest) (*ClusterResponse, error) {
	start := time.Now()

	if req.Collection == "" {
		return nil, status.Error(codes.InvalidArgument, "collection is required")
	}

	// Use epsilon/min_items from the request, or the configured default.
	epsilon := req.Epsilon
	if epsilon == 0 {
		epsilon = s.config.Cluster.Epsilon
	}
	minItems := req.MinItems
	if minItems == 0 {
		minItems = s.config.Cluster.MinItems
	}

	if minItems < 1 {
		return nil, status.Error(codes.InvalidArgument, "min_items must be >= 1")
	}
	if epsilon < 0 {
		return nil, status.Error(codes.InvalidArgument, "epsilon must be >= 0")
	}

	col, err := s.collections.Get(req.Collection)
	if err != nil {
		s.metrics.RecordError("Cluster", "not_found")
		return nil, status.Error(codes.NotFound, err.Error())
	}

	labels, err := col.Cluster(epsilon, minItems)
	if err != nil {
		s.metrics.RecordError("Cluster", "cluster_failed")
		return nil, status.Error(codes.FailedPrecondition, err.Error())
	}

	out := make([]int, len(labels))
	clusterIDs := make(map[int]struct{})
	noiseCount := 0
	for i, l := range labels {
		if id, ok := l.ID(); ok {
			out[i] = id
			clusterIDs[id] = struct{}{}
		} else {
			out[i] = 0
			noiseCount++
		}
	}

	duration := time.Since(start)
	s.metrics.RecordClusterRun(req.Collection, duration, len(clusterIDs), noiseCount)
	s.metrics.RecordRequest("Cluster", "success", duration)

	return &ClusterResponse{
		Labels:       out,
		ClusterCount: len(clusterIDs),
		NoiseCount:   noiseCount,
	}, nil
}

// Search implements ClusterServiceServer: nearest-neighbor if K <= 1,
// otherwise bounded k-NN.
func (s *Server) Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	start := time.Now()

	if req.Collection == "" {
		return nil, status.Error(codes.InvalidArgument, "collection is required")
	}
	if len(req.Query) == 0 {
		return nil, status.Error(codes.InvalidArgument, "query must not be empty")
	}

	col, err := s.collections.Get(req.Collection)
	if err != nil {
		s.metrics.RecordError("Search", "not_found")
		return nil, status.Error(codes.NotFound, err.Error())
	}
	if err := col.CheckRateLimit(); err != nil {
		s.metrics.RecordError("Search", "rate_limited")
		return nil, status.Error(codes.ResourceExhausted, err.Error())
	}

	tree := col.Tree()
	if tree == nil {
		return nil, status.Error(codes.FailedPrecondition, fmt.Sprintf("collection '%s' has no built tree; call Build first", req.Collection))
	}

	q := kdtree.NewPoint(req.Query...)

	var results []SearchResult
	kind := "nearest"
	if req.K > 1 {
		kind = "knn"
		neighbors := tree.FindNearestN(q, req.K)
		results = make([]SearchResult, len(neighbors))
		for i, n := range neighbors {
			results[i] = SearchResult{Coords: n.Item.(kdtree.Point).Coords, Distance: n.Distance}
		}
	} else {
		item, found := col.CachedNearest(q)
		if found {
			p := item.(kdtree.Point)
			results = []SearchResult{{Coords: p.Coords, Distance: q.Distance(p)}}
		}
	}

	duration := time.Since(start)
	s.metrics.RecordQuery(kind, duration)
	s.metrics.RecordRequest("Search", "success", duration)

	return &SearchResponse{Results: results}, nil
}

// RangeQuery implements ClusterServiceServer.
func (s *Server) RangeQuery(ctx context.Context, req *RangeQueryRequest) (*RangeQueryResponse, error) {
	start := time.Now()

	if req.Collection == "" {
		return nil, status.Error(codes.InvalidArgument, "collection is required")
	}
	if req.Epsilon < 0 {
		return nil, status.Error(codes.InvalidArgument, "epsilon must be >= 0")
	}

	col, err := s.collections.Get(req.Collection)
	if err != nil {
		s.metrics.RecordError("RangeQuery", "not_found")
		return nil, status.Error(codes.NotFound, err.Error())
	}
	if err := col.CheckRateLimit(); err != nil {
		s.metrics.RecordError("RangeQuery", "rate_limited")
		return nil, status.Error(codes.ResourceExhausted, err.Error())
	}

	tree := col.Tree()
	if tree == nil {
		return nil, status.Error(codes.FailedPrecondition, fmt.Sprintf("collection '%s' has no built tree; call Build first", req.Collection))
	}

	q := kdtree.NewPoint(req.Query...)

	var results []SearchResult
	if req.Filter != nil {
		f := &query.ComparisonFilter{
			Field:    req.Filter.Field,
			Operator: query.FilterOperator(req.Filter.Operator),
			Value:    req.Filter.Value,
		}
		found := col.FilteredRange(q, req.Epsilon, f)
		results = make([]SearchResult, len(found))
		for i, ann := range found {
			p := ann.Item.(kdtree.Point)
			results[i] = SearchResult{Coords: p.Coords, Distance: q.Distance(p), Metadata: ann.Metadata}
		}
	} else {
		found := col.CachedRange(q, req.Epsilon)
		results = make([]SearchResult, len(found))
		for i, item := range found {
			p := item.(kdtree.Point)
			results[i] = SearchResult{Coords: p.Coords, Distance: q.Distance(p)}
		}
	}

	duration := time.Since(start)
	s.metrics.RecordQuery("range", duration)
	s.metrics.RecordRequest("RangeQuery", "success", duration)

	return &RangeQueryResponse{Results: results}, nil
}

// Stats implements ClusterServiceServer.
func (s *Server) Stats(ctx context.Context, req *StatsRequest) (*StatsResponse, error) {
	names := []string{}
	if req.Collection != "" {
		names = append(names, req.Collection)
	} else {
		for _, c := range s.collections.List() {
			names = append(names, c.Name)
		}
	}

	out := make([]CollectionStats, 0, len(names))
	for _, name := range names {
		col, err := s.collections.Get(name)
		if err != nil {
			continue
		}

		labels := col.Labels()
		clusterIDs := make(map[int]struct{})
		noiseCount := 0
		for _, l := range labels {
			if id, ok := l.ID(); ok {
				clusterIDs[id] = struct{}{}
			} else {
				noiseCount++
			}
		}

		out = append(out, CollectionStats{
			Name:         col.Name,
			PointCount:   col.Usage.PointCount,
			HasTree:      col.HasTree(),
			ClusterCount: len(clusterIDs),
			NoiseCount:   noiseCount,
			CacheHitRate: col.CacheStats().HitRate,
		})
	}

	return &StatsResponse{
		UptimeSeconds: s.Uptime().Seconds(),
		Collections:   out,
	}, nil
}

// HealthCheck implements ClusterServiceServer.
func (s *Server) HealthCheck(ctx context.Context, req *HealthCheckRequest) (*HealthCheckResponse, error) {
	return &HealthCheckResponse{
		Status:        "SERVING",
		UptimeSeconds: s.Uptime().Seconds(),
	}, nil
}

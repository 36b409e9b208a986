// Package collection manages named point collections: each collection
// buffers inserted points, holds the k-d tree built over them, and
// tracks the labels produced by the last clustering run. Resource
// quotas bound how many points and how many dimensions a collection
// may hold.
package collection

import (
	"fmt"
	"sync"
	"time"

	"github.com/kb10uy/kdscan/internal/metricx"
	"github.com/kb10uy/kdscan/pkg/dbscan"
	"github.com/kb10uy/kdscan/pkg/kdtree"
	"github.com/kb10uy/kdscan/pkg/query"
)

// defaultCacheCapacity/defaultCacheTTL are used by NewManager, when the
// caller has no pkg/config.CacheConfig to hand to NewManagerWithCache.
const (
	defaultCacheCapacity = 256
	defaultCacheTTL      = time.Minute
)

// Quota represents resource limits for a collection.
type Quota struct {
	MaxPoints     int64 // Maximum number of points; <= 0 means unlimited.
	MaxDimensions int   // Maximum point dimensionality; <= 0 means unlimited.
	RateLimitQPS  int   // Queries per second limit; <= 0 means unlimited.
}

// DefaultQuota returns a generous default quota.
func DefaultQuota() Quota {
	return Quota{
		MaxPoints:     1_000_000,
		MaxDimensions: 2048,
		RateLimitQPS:  1000,
	}
}

// UnlimitedQuota returns a quota with no enforced limits.
func UnlimitedQuota() Quota {
	return Quota{MaxPoints: -1, MaxDimensions: -1, RateLimitQPS: -1}
}

// Usage tracks current resource usage for a collection.
type Usage struct {
	PointCount    int64
	Dimensions    int
	LastQueryTime time.Time
	QueryCount    int64
}

// Collection is a named, independently-clustered set of points.
type Collection struct {
	ID        string
	Name      string
	Quota     Quota
	Usage     Usage
	CreatedAt time.Time
	UpdatedAt time.Time
	IsActive  bool

	mu            sync.RWMutex
	points        []kdtree.Point
	metadata      []map[string]interface{}
	tree          *kdtree.Tree
	annotated     *kdtree.Tree
	cached        *query.CachedTree
	labels        []dbscan.Label
	cacheCapacity int
	cacheTTL      time.Duration
}

// NewManager creates a new collection manager using a small built-in
// query-result cache for every collection it creates. Use
// NewManagerWithCache to size the cache from pkg/config.CacheConfig.
func NewManager() *Manager {
	return NewManagerWithCache(defaultCacheCapacity, defaultCacheTTL)
}

// NewManagerWithCache creates a collection manager whose collections
// cache nearest/range query results with the given capacity and TTL.
// A capacity of 0 effectively disables caching (every Put immediately
// evicts itself).
func NewManagerWithCache(cacheCapacity int, cacheTTL time.Duration) *Manager {
	return &Manager{
		collections:   make(map[string]*Collection),
		cacheCapacity: cacheCapacity,
		cacheTTL:      cacheTTL,
		defaultQuota:  DefaultQuota(),
	}
}

// Manager handles collection lifecycle and resource enforcement.
type Manager struct {
	mu            sync.RWMutex
	collections   map[string]*Collection
	cacheCapacity int
	cacheTTL      time.Duration
	defaultQuota  Quota
}

// SetDefaultQuota sets the quota GetOrCreate uses for collections it
// creates implicitly, the way s.config.HNSW.M seeds the teacher's
// index config at namespace-creation time. Does not affect collections
// that already exist.
func (m *Manager) SetDefaultQuota(q Quota) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultQuota = q
}

// Create creates a new collection with the given quota.
func (m *Manager) Create(name string, quota Quota) (*Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.collections[name]; exists {
		return nil, fmt.Errorf("collection '%s' already exists", name)
	}

	c := &Collection{
		ID:            generateCollectionID(name),
		Name:          name,
		Quota:         quota,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
		IsActive:      true,
		cacheCapacity: m.cacheCapacity,
		cacheTTL:      m.cacheTTL,
	}
	m.collections[name] = c
	return c, nil
}

// Get retrieves a collection by name.
func (m *Manager) Get(name string) (*Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, exists := m.collections[name]
	if !exists {
		return nil, fmt.Errorf("collection '%s' not found", name)
	}
	return c, nil
}

// GetOrCreate retrieves a collection, creating it with the default
// quota if it does not exist yet.
func (m *Manager) GetOrCreate(name string) *Collection {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, exists := m.collections[name]; exists {
		return c
	}
	c := &Collection{
		ID:            generateCollectionID(name),
		Name:          name,
		Quota:         m.defaultQuota,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
		IsActive:      true,
		cacheCapacity: m.cacheCapacity,
		cacheTTL:      m.cacheTTL,
	}
	m.collections[name] = c
	return c
}

// Delete removes a collection.
func (m *Manager) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.collections[name]; !exists {
		return fmt.Errorf("collection '%s' not found", name)
	}
	delete(m.collections, name)
	return nil
}

// List returns all collections.
func (m *Manager) List() []*Collection {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Collection, 0, len(m.collections))
	for _, c := range m.collections {
		out = append(out, c)
	}
	return out
}

// Count returns the number of collections, active or not.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.collections)
}

// Insert appends points to the collection's buffer, with no attached
// metadata, after a quota and dimensionality check. It does not
// rebuild the tree; call Build to pick up the new points. See
// InsertPoints to attach per-point metadata usable by FilteredRange.
func (c *Collection) Insert(points []kdtree.Point) error {
	return c.InsertPoints(points, nil)
}

// InsertPoints appends points and their parallel metadata to the
// collection's buffer. metadata may be nil (no metadata attached) or
// must have the same length as points; a nil entry within metadata
// means "no metadata for this point".
func (c *Collection) InsertPoints(points []kdtree.Point, metadata []map[string]interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(points) == 0 {
		return nil
	}
	if metadata != nil && len(metadata) != len(points) {
		return fmt.Errorf("metadata length %d does not match points length %d", len(metadata), len(points))
	}

	dim := len(points[0].Coords)
	for _, p := range points {
		if len(p.Coords) != dim {
			return fmt.Errorf("inconsistent point dimensionality: expected %d, got %d", dim, len(p.Coords))
		}
	}
	if c.Quota.MaxDimensions > 0 && dim > c.Quota.MaxDimensions {
		return fmt.Errorf("dimension quota exceeded: requested=%d, max=%d", dim, c.Quota.MaxDimensions)
	}
	if c.Quota.MaxPoints > 0 && int64(len(c.points))+int64(len(points)) > c.Quota.MaxPoints {
		return fmt.Errorf("point quota exceeded: current=%d, requested=%d, max=%d",
			len(c.points), len(points), c.Quota.MaxPoints)
	}

	c.points = append(c.points, points...)
	if metadata == nil {
		metadata = make([]map[string]interface{}, len(points))
	}
	c.metadata = append(c.metadata, metadata...)
	c.Usage.PointCount = int64(len(c.points))
	c.Usage.Dimensions = dim
	c.UpdatedAt = time.Now()
	return nil
}

// Build constructs the k-d tree over the collection's current points,
// plus a metadata-annotated twin tree for FilteredRange and a
// query-result cache in front of the plain tree. metric is persisted
// onto the collection's points (not just the items handed to the
// tree), so a later Cluster call agrees with Build on which distance
// function to use. It returns the number of points the tree was built
// over.
func (c *Collection) Build(metric metricx.DistanceFunc) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.points) == 0 {
		return 0, fmt.Errorf("collection '%s' has no points to build", c.Name)
	}

	for i := range c.points {
		c.points[i].Metric = metric
	}

	items := make([]kdtree.Item, len(c.points))
	for i, p := range c.points {
		items[i] = p
	}
	c.tree = kdtree.Build(items)
	c.annotated = kdtree.Build(query.Annotate(items, c.metadata))
	c.cached = query.NewCachedTree(c.tree, c.cacheCapacity, c.cacheTTL)
	c.UpdatedAt = time.Now()
	return c.tree.Len(), nil
}

// CachedNearest returns the nearest neighbor to q, serving repeated
// queries from the collection's result cache.
func (c *Collection) CachedNearest(q kdtree.Point) (kdtree.Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cached == nil {
		return nil, false
	}
	return c.cached.FindNearest(q)
}

// CachedRange returns every point within epsilon of q, serving
// repeated queries from the collection's result cache.
func (c *Collection) CachedRange(q kdtree.Point, epsilon float64) []kdtree.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cached == nil {
		return nil
	}
	return c.cached.FindRange(q, epsilon)
}

// CacheStats reports the collection's query-result cache performance.
func (c *Collection) CacheStats() query.CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cached == nil {
		return query.CacheStats{}
	}
	return c.cached.Stats()
}

// FilteredRange runs a range query over the metadata-annotated tree
// and discards results that do not pass f (a nil f matches everything
// within range). Returns nil if Build has not been called yet.
func (c *Collection) FilteredRange(q kdtree.Point, epsilon float64, f query.Filter) []query.Annotated {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.annotated == nil {
		return nil
	}

	found := query.FilteredRange(c.annotated, query.Annotated{Item: q}, epsilon, f)
	out := make([]query.Annotated, len(found))
	for i, item := range found {
		out[i] = item.(query.Annotated)
	}
	return out
}

// HasTree reports whether Build has been called. A later Insert does
// not clear the tree; it stays until the next Build replaces it.
func (c *Collection) HasTree() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tree != nil
}

// Tree returns the currently built tree, or nil if none has been built.
func (c *Collection) Tree() *kdtree.Tree {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tree
}

// Points returns a copy of the collection's current point buffer.
func (c *Collection) Points() []kdtree.Point {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]kdtree.Point, len(c.points))
	copy(out, c.points)
	return out
}

// Cluster runs DBSCAN over the collection's current points and stores
// the resulting labels. It does not require a prior Build call; it
// builds its own internal tree via dbscan.Run. If Build was already
// called, its points already carry the metric Build was given, so
// Cluster agrees with Build/Search on distance function instead of
// silently falling back to metricx.Euclidean.
func (c *Collection) Cluster(epsilon float64, minItems int) ([]dbscan.Label, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.points) == 0 {
		return nil, fmt.Errorf("collection '%s' has no points to cluster", c.Name)
	}

	items := make([]kdtree.Item, len(c.points))
	for i, p := range c.points {
		items[i] = p
	}
	c.labels = dbscan.Run(items, epsilon, minItems)
	c.UpdatedAt = time.Now()

	out := make([]dbscan.Label, len(c.labels))
	copy(out, c.labels)
	return out, nil
}

// Labels returns the labels from the last Cluster call, or nil if
// clustering has not yet run.
func (c *Collection) Labels() []dbscan.Label {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]dbscan.Label, len(c.labels))
	copy(out, c.labels)
	return out
}

// CheckRateLimit enforces the collection's per-second query quota.
func (c *Collection) CheckRateLimit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Quota.RateLimitQPS <= 0 {
		return nil
	}

	now := time.Now()
	if now.Sub(c.Usage.LastQueryTime) < time.Second {
		if c.Usage.QueryCount >= int64(c.Quota.RateLimitQPS) {
			return fmt.Errorf("rate limit exceeded: %d queries per second (max: %d)",
				c.Usage.QueryCount, c.Quota.RateLimitQPS)
		}
	} else {
		c.Usage.QueryCount = 0
		c.Usage.LastQueryTime = now
	}

	c.Usage.QueryCount++
	return nil
}

// UsagePercentage returns current usage as a percentage of quota, for
// the resources that have a finite quota configured.
func (c *Collection) UsagePercentage() map[string]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]float64)
	if c.Quota.MaxPoints > 0 {
		out["points"] = float64(c.Usage.PointCount) / float64(c.Quota.MaxPoints) * 100
	}
	return out
}

// SetActive sets the collection's active status.
func (c *Collection) SetActive(active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.IsActive = active
	c.UpdatedAt = time.Now()
}

func generateCollectionID(name string) string {
	return fmt.Sprintf("collection_%s_%d", name, time.Now().UnixNano())
}

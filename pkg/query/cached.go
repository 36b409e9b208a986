package query

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/kb10uy/kdscan/pkg/kdtree"
)

// Annotated pairs a kdtree.Item with metadata usable by Filter, the
// way pkg/dbscan's indexed wrapper pairs an Item with its input
// position: the wrapper must unwrap its peer before delegating,
// since a naive embedded-interface promotion would hand the inner
// item a fellow Annotated instead of the concrete type it expects.
type Annotated struct {
	Item     kdtree.Item
	Metadata map[string]interface{}
}

// CompareOnAxis implements kdtree.Item.
func (a Annotated) CompareOnAxis(other kdtree.Item, depth int) kdtree.Ordering {
	return a.Item.CompareOnAxis(other.(Annotated).Item, depth)
}

// Distance implements kdtree.Item.
func (a Annotated) Distance(other kdtree.Item) float64 {
	return a.Item.Distance(other.(Annotated).Item)
}

// DistanceToAxis implements kdtree.Item.
func (a Annotated) DistanceToAxis(other kdtree.Item, depth int) float64 {
	return a.Item.DistanceToAxis(other.(Annotated).Item, depth)
}

// Annotate wraps items with parallel metadata maps for filtered
// queries. metadata may be shorter than items (or nil); items past its
// end get nil metadata. A nil entry means "no metadata": it matches no
// ComparisonFilter or RangeFilter, and only a negated InListFilter.
func Annotate(items []kdtree.Item, metadata []map[string]interface{}) []kdtree.Item {
	out := make([]kdtree.Item, len(items))
	for i, it := range items {
		var md map[string]interface{}
		if i < len(metadata) {
			md = metadata[i]
		}
		out[i] = Annotated{Item: it, Metadata: md}
	}
	return out
}

// FilteredRange runs a range query and discards results whose
// metadata does not pass f. Unannotated items (or a nil filter) pass
// through unfiltered.
func FilteredRange(tree *kdtree.Tree, query kdtree.Item, epsilon float64, f Filter) []kdtree.Item {
	found := tree.FindRange(query, epsilon)
	if f == nil {
		return found
	}

	out := make([]kdtree.Item, 0, len(found))
	for _, it := range found {
		ann, ok := it.(Annotated)
		if !ok || f.Match(ann.Metadata) {
			out = append(out, it)
		}
	}
	return out
}

// CachedTree wraps a k-d tree with an LRU result cache, mirroring the
// cached-search-in-front-of-an-index pattern: a query key is derived
// from the request parameters, and only cache misses reach the tree.
type CachedTree struct {
	tree  *kdtree.Tree
	cache *LRUCache
}

// NewCachedTree creates a cached view over tree with the given cache
// capacity and entry TTL.
func NewCachedTree(tree *kdtree.Tree, capacity int, ttl time.Duration) *CachedTree {
	return &CachedTree{tree: tree, cache: NewLRUCache(capacity, ttl)}
}

// FindNearest returns the cached nearest-neighbor result for query, or
// computes and caches it on a miss.
func (ct *CachedTree) FindNearest(query kdtree.Point) (kdtree.Item, bool) {
	key := nearestKey(query)
	if cached, ok := ct.cache.Get(key); ok {
		result := cached.(nearestResult)
		return result.item, result.found
	}

	item, found := ct.tree.FindNearest(query)
	ct.cache.Put(key, nearestResult{item: item, found: found})
	return item, found
}

// FindRange returns the cached range-query result for (query, epsilon),
// or computes and caches it on a miss.
func (ct *CachedTree) FindRange(query kdtree.Point, epsilon float64) []kdtree.Item {
	key := rangeKey(query, epsilon)
	if cached, ok := ct.cache.Get(key); ok {
		return cached.([]kdtree.Item)
	}

	found := ct.tree.FindRange(query, epsilon)
	ct.cache.Put(key, found)
	return found
}

// InvalidateAll clears the query cache; call after rebuilding the
// underlying tree.
func (ct *CachedTree) InvalidateAll() {
	ct.cache.Clear()
}

// Stats returns cache performance statistics.
func (ct *CachedTree) Stats() CacheStats {
	return ct.cache.Stats()
}

type nearestResult struct {
	item  kdtree.Item
	found bool
}

func nearestKey(p kdtree.Point) CacheKey {
	return CacheKey(fmt.Sprintf("nearest:%s", hashCoords(p.Coords)))
}

func rangeKey(p kdtree.Point, epsilon float64) CacheKey {
	h := sha256.New()
	h.Write([]byte(hashCoords(p.Coords)))
	binary.Write(h, binary.LittleEndian, epsilon)
	return CacheKey(fmt.Sprintf("range:%x", h.Sum(nil)[:16]))
}

func hashCoords(coords []float64) string {
	h := sha256.New()
	for _, c := range coords {
		binary.Write(h, binary.LittleEndian, c)
	}
	return fmt.Sprintf("%x", h.Sum(nil)[:16])
}

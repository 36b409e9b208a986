package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLRUCacheGetMiss(t *testing.T) {
	c := NewLRUCache(10, 0)
	_, found := c.Get("missing")
	require.False(t, found)
}

func TestLRUCachePutGet(t *testing.T) {
	c := NewLRUCache(10, 0)
	c.Put("a", 1)
	v, found := c.Get("a")
	require.True(t, found)
	require.Equal(t, 1, v)
}

func TestLRUCacheEvictsOldest(t *testing.T) {
	c := NewLRUCache(2, 0)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	_, found := c.Get("a")
	require.False(t, found)

	_, found = c.Get("b")
	require.True(t, found)
	_, found = c.Get("c")
	require.True(t, found)
}

func TestLRUCacheTouchPreventsEviction(t *testing.T) {
	c := NewLRUCache(2, 0)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a") // touch a, making b the LRU entry
	c.Put("c", 3)

	_, found := c.Get("b")
	require.False(t, found)
	_, found = c.Get("a")
	require.True(t, found)
}

func TestLRUCacheTTLExpiry(t *testing.T) {
	c := NewLRUCache(10, time.Millisecond)
	c.Put("a", 1)
	time.Sleep(5 * time.Millisecond)

	_, found := c.Get("a")
	require.False(t, found)
}

func TestLRUCacheInvalidate(t *testing.T) {
	c := NewLRUCache(10, 0)
	c.Put("a", 1)
	c.Invalidate("a")
	_, found := c.Get("a")
	require.False(t, found)
}

func TestLRUCacheClear(t *testing.T) {
	c := NewLRUCache(10, 0)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Clear()
	require.Equal(t, 0, c.Size())

	stats := c.Stats()
	require.Equal(t, int64(0), stats.Hits)
	require.Equal(t, int64(0), stats.Misses)
}

func TestLRUCacheStats(t *testing.T) {
	c := NewLRUCache(10, 0)
	c.Put("a", 1)
	c.Get("a")
	c.Get("missing")

	stats := c.Stats()
	require.Equal(t, int64(1), stats.Hits)
	require.Equal(t, int64(1), stats.Misses)
	require.InDelta(t, 0.5, stats.HitRate, 1e-9)
}

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, capacity int) *ReportCache {
	t.Helper()
	c, err := NewReportCache(capacity)
	require.NoError(t, err)
	return c
}

func TestNewReportCache_InvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		c, err := NewReportCache(capacity)
		assert.ErrorIs(t, err, ErrInvalidCapacity)
		assert.Nil(t, c)
	}
}

func TestReportCache_GetPut(t *testing.T) {
	c := newTestCache(t, DefaultCapacity)

	c.Put("asset_type_distribution:abc", "result", 5*time.Millisecond)

	got, ok := c.Get("asset_type_distribution:abc")
	require.True(t, ok, "expected cache hit")
	assert.Equal(t, "result", got)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(0), stats.Misses)
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, DefaultCapacity, stats.Capacity)
}

func TestReportCache_Miss(t *testing.T) {
	c := newTestCache(t, 10)

	_, ok := c.Get("nonexistent")
	assert.False(t, ok)
	assert.Equal(t, int64(1), c.Stats().Misses)
	assert.Equal(t, int64(0), c.Stats().Hits)
}

func TestReportCache_PeekDoesNotCount(t *testing.T) {
	c := newTestCache(t, 10)
	c.Put("k", 1, 0)

	v, ok := c.Peek("k")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Peek("missing")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Zero(t, stats.Hits)
	assert.Zero(t, stats.Misses)
}

func TestReportCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newTestCache(t, 3)

	c.Put("a", 1, 0)
	c.Put("b", 2, 0)
	c.Put("c", 3, 0)

	// Touch "a" so "b" becomes the least recently used entry
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put("d", 4, 0)

	assert.Equal(t, 3, c.Size())
	_, ok = c.Peek("b")
	assert.False(t, ok, "b should have been evicted")
	for _, key := range []string{"a", "c", "d"} {
		_, ok := c.Peek(key)
		assert.True(t, ok, "%s should still be cached", key)
	}
	assert.Equal(t, []string{"d", "a", "c"}, c.Keys())
}

func TestReportCache_BoundRespected(t *testing.T) {
	c := newTestCache(t, DefaultCapacity)

	for i := 0; i < 120; i++ {
		c.Put(fmt.Sprintf("asset_type_distribution:%d", i), i, time.Millisecond)
	}

	assert.LessOrEqual(t, c.Size(), DefaultCapacity)
	assert.Equal(t, DefaultCapacity, c.Size())

	// The first 20 insertions were the least recently used
	_, ok := c.Peek("asset_type_distribution:19")
	assert.False(t, ok)
	_, ok = c.Peek("asset_type_distribution:20")
	assert.True(t, ok)
}

func TestReportCache_PutExistingKey(t *testing.T) {
	c := newTestCache(t, 2)

	c.Put("a", 1, 0)
	c.Put("b", 2, 0)
	c.Put("a", 10, 0)

	assert.Equal(t, 2, c.Size())
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 10, v)

	// "b" is now the least recently used
	c.Put("c", 3, 0)
	_, ok = c.Peek("b")
	assert.False(t, ok)
}

func TestReportCache_AverageComputationTime(t *testing.T) {
	c := newTestCache(t, 10)

	assert.Zero(t, c.Stats().AverageComputationTime)

	c.Put("a", 1, 10*time.Millisecond)
	c.Put("b", 2, 20*time.Millisecond)
	c.Put("c", 3, 30*time.Millisecond)

	assert.Equal(t, 20*time.Millisecond, c.Stats().AverageComputationTime)

	c.Put("d", 4, -time.Second)
	assert.Equal(t, 15*time.Millisecond, c.Stats().AverageComputationTime, "negative durations count as zero")
}

func TestReportCache_Invalidate(t *testing.T) {
	c := newTestCache(t, 10)

	c.Put("asset_type_distribution:1", 1, 0)
	c.Put("asset_type_distribution:2", 2, 0)
	c.Put("liquidity_analysis:1", 3, 0)
	c.Put("stress_test_results:1", 4, 0)
	c.Put("projection_results:1", 5, 0)

	removed := c.Invalidate("asset_type_distribution")

	assert.Equal(t, 2, removed)
	assert.Equal(t, 3, c.Size())
	for _, key := range []string{"liquidity_analysis:1", "stress_test_results:1", "projection_results:1"} {
		_, ok := c.Peek(key)
		assert.True(t, ok, "%s should survive", key)
	}

	// Substring semantics: the pattern may appear anywhere in the key
	assert.Equal(t, 1, c.Invalidate("analysis"))
	assert.Equal(t, 0, c.Invalidate("does-not-exist"))
	assert.Equal(t, 2, c.Invalidate(""))
	assert.Equal(t, 0, c.Size())
}

func TestReportCache_InvalidatePrefix(t *testing.T) {
	c := newTestCache(t, 10)

	c.Put("liquidity_analysis:1", 1, 0)
	c.Put("x:liquidity_analysis:2", 2, 0)

	assert.Equal(t, 1, c.InvalidatePrefix("liquidity_analysis:"))
	_, ok := c.Peek("x:liquidity_analysis:2")
	assert.True(t, ok)
}

func TestReportCache_Clear(t *testing.T) {
	c := newTestCache(t, 10)

	c.Put("a", 1, time.Millisecond)
	c.Get("a")
	c.Get("missing")

	c.Clear()

	stats := c.Stats()
	assert.Equal(t, 0, c.Size())
	assert.Zero(t, stats.Hits)
	assert.Zero(t, stats.Misses)
	assert.Zero(t, stats.AverageComputationTime)
	assert.Empty(t, c.Keys())

	// Still usable after a clear
	c.Put("b", 2, 0)
	_, ok := c.Get("b")
	assert.True(t, ok)
}

func TestReportCache_EntryBookkeeping(t *testing.T) {
	c := newTestCache(t, 10)

	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	c.Put("k", "v", 0)

	clock = clock.Add(time.Minute)
	c.Get("k")
	c.Get("k")

	e, ok := c.Entry("k")
	require.True(t, ok)
	assert.Equal(t, "k", e.Key)
	assert.Equal(t, int64(2), e.Hits)
	assert.Equal(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), e.CreatedAt)
	assert.Equal(t, clock, e.LastAccess)

	_, ok = c.Entry("missing")
	assert.False(t, ok)
}

func TestStats_HitRate(t *testing.T) {
	assert.Zero(t, Stats{}.HitRate())
	assert.InDelta(t, 0.75, Stats{Hits: 3, Misses: 1}.HitRate(), 1e-9)
}

func TestReportCache_ConcurrentAccess(t *testing.T) {
	c := newTestCache(t, 50)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("family:%d", (w*31+i)%80)
				if _, ok := c.Get(key); !ok {
					c.Put(key, i, time.Microsecond)
				}
				if i%100 == 0 {
					c.Invalidate("family:1")
				}
			}
		}(w)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Size(), 50)
	stats := c.Stats()
	assert.Equal(t, int64(8*500), stats.Hits+stats.Misses)
}

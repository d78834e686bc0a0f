// Package cache holds memoized report results behind their fingerprint keys.
package cache

import (
	"errors"
	"strings"
	"sync"
	"time"

	list "github.com/bahlo/generic-list-go"
)

// DefaultCapacity is the number of entries kept when the application does not configure one
const DefaultCapacity = 100

// ErrInvalidCapacity is returned when a cache is built with a capacity lower than 1
var ErrInvalidCapacity = errors.New("cache capacity must be positive")

// Entry is a memoized result and its bookkeeping
type Entry struct {
	Key        string
	Value      any
	CreatedAt  time.Time
	LastAccess time.Time
	Hits       int64
}

// Stats is a point-in-time view of the cache counters
type Stats struct {
	Hits                   int64
	Misses                 int64
	AverageComputationTime time.Duration // Running mean of the compute times recorded by Put
	Size                   int
	Capacity               int
}

// HitRate returns hits / (hits + misses), or 0 before the first lookup
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// ReportCache is a bounded key/value store with least-recently-used eviction
// and hit/miss/latency statistics. Safe for concurrent use.
// Eviction and statistics happen synchronously inside Get and Put; the cache owns no goroutine.
type ReportCache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element[*Entry]
	order    *list.List[*Entry] // Front is the most recently used entry

	hits         int64
	misses       int64
	computeTotal time.Duration
	computeCount int64

	now func() time.Time
}

// NewReportCache creates a cache holding at most capacity entries
func NewReportCache(capacity int) (*ReportCache, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &ReportCache{
		capacity: capacity,
		items:    make(map[string]*list.Element[*Entry], capacity),
		order:    list.New[*Entry](),
		now:      time.Now,
	}, nil
}

// Get returns the value stored under key
// A present key counts as a hit and becomes the most recently used entry.
// An absent key counts as a miss; the caller is expected to compute the value and Put it.
func (c *ReportCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}

	e := el.Value
	e.Hits++
	e.LastAccess = c.now()
	c.order.MoveToFront(el)
	c.hits++

	return e.Value, true
}

// Peek returns the value stored under key without touching statistics or recency
func (c *ReportCache) Peek(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	return el.Value.Value, true
}

// Put stores value under key together with the time it took to compute
// Inserting a new key into a full cache evicts the least recently used entry first.
func (c *ReportCache) Put(key string, value any, computeTime time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if computeTime < 0 {
		computeTime = 0
	}
	c.computeTotal += computeTime
	c.computeCount++

	now := c.now()

	// Existing key: replace in place, no capacity change
	if el, ok := c.items[key]; ok {
		el.Value.Value = value
		el.Value.LastAccess = now
		c.order.MoveToFront(el)
		return
	}

	for c.order.Len() >= c.capacity {
		c.evictOldest()
	}

	c.items[key] = c.order.PushFront(&Entry{
		Key:        key,
		Value:      value,
		CreatedAt:  now,
		LastAccess: now,
	})
}

// Size returns the number of stored entries
func (c *ReportCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Capacity returns the maximum number of entries
func (c *ReportCache) Capacity() int {
	return c.capacity
}

// Stats returns the current counters
func (c *ReportCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	var avg time.Duration
	if c.computeCount > 0 {
		avg = c.computeTotal / time.Duration(c.computeCount)
	}

	return Stats{
		Hits:                   c.hits,
		Misses:                 c.misses,
		AverageComputationTime: avg,
		Size:                   c.order.Len(),
		Capacity:               c.capacity,
	}
}

// Clear removes every entry and resets the statistics
func (c *ReportCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element[*Entry], c.capacity)
	c.order.Init()
	c.hits = 0
	c.misses = 0
	c.computeTotal = 0
	c.computeCount = 0
}

// Invalidate removes every entry whose key contains pattern and returns how many were removed
// An empty pattern matches every key.
func (c *ReportCache) Invalidate(pattern string) int {
	return c.removeWhere(func(key string) bool {
		return strings.Contains(key, pattern)
	})
}

// InvalidatePrefix removes every entry whose key starts with prefix
func (c *ReportCache) InvalidatePrefix(prefix string) int {
	return c.removeWhere(func(key string) bool {
		return strings.HasPrefix(key, prefix)
	})
}

// Keys returns the stored keys, most recently used first
func (c *ReportCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.Key)
	}
	return keys
}

// Entry returns a copy of the bookkeeping of key without counting a lookup
func (c *ReportCache) Entry(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return Entry{}, false
	}
	return *el.Value, true
}

func (c *ReportCache) removeWhere(match func(key string) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, el := range c.items {
		if match(key) {
			c.order.Remove(el)
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// evictOldest removes the least recently used entry. Must be called with mu held.
func (c *ReportCache) evictOldest() {
	el := c.order.Back()
	if el == nil {
		return
	}
	c.order.Remove(el)
	delete(c.items, el.Value.Key)
}

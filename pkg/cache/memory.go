package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lborres/ticketflow/core"
	"github.com/lborres/ticketflow/pkg/clock"
)

// InMemoryCache implements an in-memory cache of storage values
type InMemoryCache struct {
	cache   map[string]*cachedRecord
	mu      sync.RWMutex
	ttl     time.Duration
	maxSize int
	clock   clock.Clock

	// counters
	hits      int64
	misses    int64
	sets      int64
	deletes   int64
	evictions int64
}

type cachedRecord struct {
	value    string
	cachedAt time.Time
}

// NewInMemoryCache creates a new in-memory cache
func NewInMemoryCache(c core.CacheConfig) *InMemoryCache {
	return NewInMemoryCacheWithClock(c, clock.Real())
}

// NewInMemoryCacheWithClock creates a cache that measures TTL on clk.
func NewInMemoryCacheWithClock(c core.CacheConfig, clk clock.Clock) *InMemoryCache {
	if c.TTL == 0 {
		c.TTL = 5 * time.Minute
	}
	if c.MaxSize == 0 {
		c.MaxSize = 500
	}
	if clk == nil {
		clk = clock.Real()
	}

	return &InMemoryCache{
		cache:   make(map[string]*cachedRecord),
		ttl:     c.TTL,
		maxSize: c.MaxSize,
		clock:   clk,
	}
}

// Get retrieves a value from cache
func (c *InMemoryCache) Get(key string) (string, error) {
	c.mu.RLock()
	record, exists := c.cache[key]
	c.mu.RUnlock()

	if !exists {
		atomic.AddInt64(&c.misses, 1)
		return "", core.ErrCacheNotFound
	}

	if c.clock.Now().Sub(record.cachedAt) > c.ttl {
		// expired
		atomic.AddInt64(&c.misses, 1)
		if err := c.Delete(key); err != nil {
			return "", err
		}
		return "", core.ErrCacheNotFound
	}

	atomic.AddInt64(&c.hits, 1)
	return record.value, nil
}

// Set stores a value in cache
func (c *InMemoryCache) Set(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, replacing := c.cache[key]; !replacing && len(c.cache) >= c.maxSize {
		c.evictOldestLocked()
	}

	c.cache[key] = &cachedRecord{
		value:    value,
		cachedAt: c.clock.Now(),
	}

	atomic.AddInt64(&c.sets, 1)
	return nil
}

// evictOldestLocked drops the entry cached longest ago.
func (c *InMemoryCache) evictOldestLocked() {
	var oldest string
	var oldestAt time.Time
	found := false
	for k, record := range c.cache {
		if !found || record.cachedAt.Before(oldestAt) {
			oldest, oldestAt, found = k, record.cachedAt, true
		}
	}
	if !found {
		return
	}
	delete(c.cache, oldest)
	atomic.AddInt64(&c.evictions, 1)
}

// Delete removes a value from cache
func (c *InMemoryCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, existed := c.cache[key]; existed {
		delete(c.cache, key)
		atomic.AddInt64(&c.deletes, 1)
	}
	return nil
}

// Clear removes all values from cache
func (c *InMemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*cachedRecord)
	return nil
}

// Len returns the number of cached values
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Stats returns cache statistics
func (c *InMemoryCache) Stats() core.CacheStats {
	return core.CacheStats{
		Hits:      atomic.LoadInt64(&c.hits),
		Misses:    atomic.LoadInt64(&c.misses),
		Sets:      atomic.LoadInt64(&c.sets),
		Deletes:   atomic.LoadInt64(&c.deletes),
		Evictions: atomic.LoadInt64(&c.evictions),
		Size:      c.Len(),
		TTL:       c.ttl,
	}
}

package sessiontext

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
)

// DefaultCacheTTL is how long generated text stays reusable.
const DefaultCacheTTL = 24 * time.Hour

// CacheKey buckets a session so near-identical sessions share text:
// distance to the nearest half unit and the week to a 4-week block.
func CacheKey(templateID string, distance float64, phase domain.Focus, week int) string {
	return fmt.Sprintf("%s|%.1f|%s|%d", templateID, math.Round(distance*2)/2, phase, (week-1)/4)
}

type cacheEntry struct {
	out     domain.SessionTextOutput
	expires time.Time
}

// Cache is a TTL key-value store for session text, safe for concurrent use.
// Expired entries are dropped on read.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

// NewCache creates a cache. A non-positive ttl uses DefaultCacheTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{ttl: ttl, now: time.Now, entries: make(map[string]cacheEntry)}
}

// WithClock replaces the cache's time source. Intended for tests.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

func (c *Cache) Get(key string) (domain.SessionTextOutput, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return domain.SessionTextOutput{}, false
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, key)
		return domain.SessionTextOutput{}, false
	}
	return e.out, true
}

func (c *Cache) Put(key string, out domain.SessionTextOutput) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{out: out, expires: c.now().Add(c.ttl)}
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Package cache provides caching functionality for the descriptor loader.
package cache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// entry pairs a cached value with its expiry time.
type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Cache is an LRU cache with a per-entry TTL, backed by
// github.com/hashicorp/golang-lru for recency-based eviction.
type Cache struct {
	ttl time.Duration
	mu  sync.Mutex
	lru *lru.Cache
}

// New creates a new cache with the given capacity and TTL. A non-positive
// TTL disables expiry; entries only leave via LRU eviction or Delete/Clear.
func New(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	c, err := lru.New(capacity)
	if err != nil {
		// lru.New only errors on capacity <= 0, which is excluded above.
		panic(err)
	}
	return &Cache{ttl: ttl, lru: c}
}

// Get retrieves an item from the cache, evicting it in place if its TTL has
// elapsed.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	e := v.(*entry)
	if c.ttl > 0 && time.Now().After(e.expiresAt) {
		c.lru.Remove(key)
		return nil, false
	}
	return e.value, true
}

// Set stores an item in the cache, refreshing its TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, &entry{value: value, expiresAt: time.Now().Add(c.ttl)})
}

// Delete removes an item from the cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(key)
}

// Clear removes all items from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

// Size returns the number of items currently in the cache, including any
// not-yet-swept expired entries.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// CleanupExpired scans the cache and removes all expired items, returning
// the count removed. Intended to be called periodically rather than relying
// solely on lazy expiry in Get.
func (c *Cache) CleanupExpired() int {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for _, key := range c.lru.Keys() {
		v, ok := c.lru.Peek(key)
		if !ok {
			continue
		}
		if now.After(v.(*entry).expiresAt) {
			c.lru.Remove(key)
			removed++
		}
	}
	return removed
}

// Stats reports the current cache occupancy.
type Stats struct {
	Size     int
	Capacity int
}

// DefCache caches parsed definition graphs keyed by a content fingerprint
// (see internal/descriptor.Fingerprint).
type DefCache struct {
	cache *Cache
}

// NewDefCache creates a new definition-graph cache.
func NewDefCache(capacity int, ttl time.Duration) *DefCache {
	return &DefCache{cache: New(capacity, ttl)}
}

// Get retrieves a previously ingested definition graph by fingerprint.
func (c *DefCache) Get(fingerprint string) (interface{}, bool) {
	return c.cache.Get(fingerprint)
}

// Set stores an ingested definition graph by fingerprint.
func (c *DefCache) Set(fingerprint string, defs interface{}) {
	c.cache.Set(fingerprint, defs)
}

// Size returns the number of cached graphs.
func (c *DefCache) Size() int {
	return c.cache.Size()
}

// Clear empties the cache.
func (c *DefCache) Clear() {
	c.cache.Clear()
}

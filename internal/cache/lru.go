package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vslauncher/launcher/internal/domain"
)

// DefaultMaxSize is used when a non-positive capacity is requested
const DefaultMaxSize = 64

// node represents a node in the doubly-linked list
type node[V any] struct {
	key       string
	value     V
	expiresAt time.Time
	prev      *node[V]
	next      *node[V]
}

// LRUCache is a fixed-capacity cache with least-recently-used eviction and an
// optional per-entry TTL. A zero TTL keeps entries until they are evicted.
type LRUCache[V any] struct {
	maxSize int
	size    int
	ttl     time.Duration

	// Doubly-linked list for LRU ordering
	head *node[V]
	tail *node[V]

	cache map[string]*node[V]
	mutex sync.Mutex

	hits   int64
	misses int64

	now func() time.Time
}

// NewLRUCache creates a new LRU cache with the given capacity and entry lifetime
func NewLRUCache[V any](maxSize int, ttl time.Duration) *LRUCache[V] {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	head := &node[V]{}
	tail := &node[V]{}
	head.next = tail
	tail.prev = head

	return &LRUCache[V]{
		maxSize: maxSize,
		ttl:     ttl,
		head:    head,
		tail:    tail,
		cache:   make(map[string]*node[V]),
		now:     time.Now,
	}
}

// Get retrieves a value and marks it as recently used. Expired entries count as misses.
func (c *LRUCache[V]) Get(key string) (V, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var zero V
	found, exists := c.cache[key]
	if !exists {
		atomic.AddInt64(&c.misses, 1)
		return zero, false
	}
	if c.expired(found) {
		c.remove(found)
		atomic.AddInt64(&c.misses, 1)
		return zero, false
	}

	c.moveToFront(found)
	atomic.AddInt64(&c.hits, 1)
	return found.value, true
}

// Set adds or updates a value and restarts its lifetime
func (c *LRUCache[V]) Set(key string, value V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	expiresAt := time.Time{}
	if c.ttl > 0 {
		expiresAt = c.now().Add(c.ttl)
	}

	if existing, ok := c.cache[key]; ok {
		existing.value = value
		existing.expiresAt = expiresAt
		c.moveToFront(existing)
		return
	}

	n := &node[V]{key: key, value: value, expiresAt: expiresAt}
	c.addToFront(n)
	c.cache[key] = n
	c.size++

	if c.size > c.maxSize {
		c.evictLRU()
	}
}

// Invalidate removes a specific key from the cache
func (c *LRUCache[V]) Invalidate(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if n, ok := c.cache[key]; ok {
		c.remove(n)
	}
}

// Clear removes all entries and resets counters
func (c *LRUCache[V]) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.head.next = c.tail
	c.tail.prev = c.head
	c.cache = make(map[string]*node[V])
	c.size = 0

	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
}

// Len returns the number of stored entries, expired ones included until touched
func (c *LRUCache[V]) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.size
}

// Stats returns current cache statistics
func (c *LRUCache[V]) Stats() domain.CacheStats {
	c.mutex.Lock()
	size := c.size
	c.mutex.Unlock()

	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)

	var hitRatio float64
	if total := hits + misses; total > 0 {
		hitRatio = float64(hits) / float64(total)
	}

	return domain.CacheStats{
		Hits:     hits,
		Misses:   misses,
		Size:     size,
		MaxSize:  c.maxSize,
		HitRatio: hitRatio,
	}
}

// HealthCheck reports cache utilisation
func (c *LRUCache[V]) HealthCheck(ctx context.Context) domain.HealthStatus {
	stats := c.Stats()

	status := domain.HealthStatusHealthy
	message := "Cache is operating normally"
	details := map[string]any{
		"size":      stats.Size,
		"max_size":  stats.MaxSize,
		"hit_ratio": stats.HitRatio,
		"hits":      stats.Hits,
		"misses":    stats.Misses,
	}

	if stats.HitRatio < 0.5 && stats.Hits+stats.Misses > 100 {
		status = domain.HealthStatusDegraded
		message = "Low cache hit ratio"
		details["hit_ratio_warning"] = "Hit ratio below 50%"
	}

	return domain.HealthStatus{
		Status:    status,
		Message:   message,
		Details:   details,
		Timestamp: c.now(),
	}
}

func (c *LRUCache[V]) expired(n *node[V]) bool {
	return !n.expiresAt.IsZero() && !c.now().Before(n.expiresAt)
}

func (c *LRUCache[V]) moveToFront(n *node[V]) {
	c.unlink(n)
	c.addToFront(n)
}

func (c *LRUCache[V]) addToFront(n *node[V]) {
	n.prev = c.head
	n.next = c.head.next
	c.head.next.prev = n
	c.head.next = n
}

func (c *LRUCache[V]) unlink(n *node[V]) {
	n.prev.next = n.next
	n.next.prev = n.prev
}

func (c *LRUCache[V]) remove(n *node[V]) {
	c.unlink(n)
	delete(c.cache, n.key)
	c.size--
}

// evictLRU removes the least recently used item from the cache
func (c *LRUCache[V]) evictLRU() {
	if c.tail.prev == c.head {
		return
	}
	c.remove(c.tail.prev)
}

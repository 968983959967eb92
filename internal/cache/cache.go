package cache

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Key hashes the parts into a cache key. Parts are separated so that
// ("ab","c") and ("a","bc") produce different keys.
func Key(parts ...string) uint64 {
	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.WriteString(p)
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

type entry[V any] struct {
	value   V
	expires time.Time
	added   uint64
}

// Stats are cumulative hit and miss counters.
type Stats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// TTL is a mutex guarded map whose entries expire after a fixed duration.
// When full, the oldest entry is evicted.
type TTL[V any] struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[uint64]entry[V]
	seq        uint64
	hits       uint64
	misses     uint64
	now        func() time.Time
}

// New creates a cache. maxEntries <= 0 means unbounded.
func New[V any](ttl time.Duration, maxEntries int) *TTL[V] {
	return &TTL[V]{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[uint64]entry[V]),
		now:        time.Now,
	}
}

// Get returns the value stored under key if it has not expired.
func (c *TTL[V]) Get(key uint64) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if ok && c.now().Before(e.expires) {
		c.hits++
		return e.value, true
	}
	if ok {
		delete(c.entries, key)
	}
	c.misses++
	var zero V
	return zero, false
}

// Set stores value under key.
func (c *TTL[V]) Set(key uint64, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evict()
	}
	c.seq++
	c.entries[key] = entry[V]{value: value, expires: c.now().Add(c.ttl), added: c.seq}
}

// Delete removes key.
func (c *TTL[V]) Delete(key uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Stats returns the counters and the current entry count.
func (c *TTL[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Entries: len(c.entries)}
}

// evict drops expired entries, or the oldest one when none has expired. Callers hold mu.
func (c *TTL[V]) evict() {
	now := c.now()
	var (
		oldestKey uint64
		oldestSeq uint64
		found     bool
		removed   bool
	)
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
			removed = true
			continue
		}
		if !found || e.added < oldestSeq {
			oldestKey, oldestSeq, found = k, e.added, true
		}
	}
	if !removed && found {
		delete(c.entries, oldestKey)
	}
}

// Package lru provides a sharded, concurrency-safe LRU cache.
package lru

import (
	"container/list"
	"hash/maphash"
	"sync"
	"sync/atomic"
)

const (
	// ShardCount is the number of independently locked shards. It must be a
	// power of two.
	ShardCount = 8

	// DefaultCapacity is the per-shard capacity used when none is given.
	DefaultCapacity = 128

	shardMask = ShardCount - 1
)

// Cache is a sharded LRU cache. The zero value is not usable; call New.
type Cache[K comparable, V any] struct {
	seed     maphash.Seed
	shards   [ShardCount]shard[K, V]
	capacity int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type shard[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*list.Element
	order   list.List // front is most recently used
}

type entry[K comparable, V any] struct {
	key   K
	value V
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Len       int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// New returns a cache holding up to capacity entries per shard.
// A capacity <= 0 selects DefaultCapacity.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Cache[K, V]{seed: maphash.MakeSeed(), capacity: capacity}
	for i := range c.shards {
		c.shards[i].entries = make(map[K]*list.Element)
	}
	return c
}

func (c *Cache[K, V]) shardFor(key K) *shard[K, V] {
	return &c.shards[maphash.Comparable(c.seed, key)&shardMask]
}

// Get returns the value cached for key and marks it recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.entries[key]; ok {
		s.order.MoveToFront(el)
		c.hits.Add(1)
		return el.Value.(*entry[K, V]).value, true
	}
	c.misses.Add(1)
	var zero V
	return zero, false
}

// GetOrCreate returns the cached value for key, calling create on a miss.
// create runs with the shard locked and must not use the cache.
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) V {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.entries[key]; ok {
		s.order.MoveToFront(el)
		c.hits.Add(1)
		return el.Value.(*entry[K, V]).value
	}
	c.misses.Add(1)
	v := create()
	c.insert(s, key, v)
	return v
}

// Set stores value under key, evicting the least recently used entry of
// the shard when it is full.
func (c *Cache[K, V]) Set(key K, value V) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.entries[key]; ok {
		el.Value.(*entry[K, V]).value = value
		s.order.MoveToFront(el)
		return
	}
	c.insert(s, key, value)
}

// insert adds a new entry; s must be locked.
func (c *Cache[K, V]) insert(s *shard[K, V], key K, value V) {
	for s.order.Len() >= c.capacity {
		oldest := s.order.Back()
		s.order.Remove(oldest)
		delete(s.entries, oldest.Value.(*entry[K, V]).key)
		c.evictions.Add(1)
	}
	s.entries[key] = s.order.PushFront(&entry[K, V]{key: key, value: value})
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	n := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		n += len(s.entries)
		s.mu.Unlock()
	}
	return n
}

// Capacity returns the total capacity across shards.
func (c *Cache[K, V]) Capacity() int { return c.capacity * ShardCount }

// Stats returns the current counters.
func (c *Cache[K, V]) Stats() Stats {
	return Stats{
		Len:       c.Len(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

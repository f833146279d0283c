// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package cache provides the bounded result cache used by the lineage
// service to memoize pairwise comparisons of the current engine snapshot.
package cache

import (
	"container/list"
	"errors"
	"sync"
	"sync/atomic"
)

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 1024

// ErrLoadAborted is returned to callers waiting on a load that panicked.
var ErrLoadAborted = errors.New("cache load aborted")

// Stats is a point-in-time view of cache effectiveness.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Len       int   `json:"len"`
	Capacity  int   `json:"capacity"`
}

// HitRatio returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// LRU is a fixed-size, thread-safe least-recently-used cache.
//
// Description:
//
//	Get and Set are O(1). GetOrLoad collapses concurrent misses
//	for the same key into a single loader call.
//
// Thread Safety: All methods are safe for concurrent use.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[K]*list.Element
	order    *list.List // front = most recent

	// inflight holds loads in progress, keyed by the cache key itself.
	loadMu   sync.Mutex
	inflight map[K]*call[V]

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64

	onEvict func(K, V)
}

type entry[K comparable, V any] struct {
	key   K
	value V
}

// call is one load shared by every caller that missed on the same key.
type call[V any] struct {
	done chan struct{}
	val  V
	err  error
}

// Option configures an LRU.
type Option[K comparable, V any] func(*LRU[K, V])

// WithEvictCallback registers fn to run, under the cache lock, whenever an
// entry is evicted for capacity. fn must not call back into the cache.
func WithEvictCallback[K comparable, V any](fn func(K, V)) Option[K, V] {
	return func(c *LRU[K, V]) {
		c.onEvict = fn
	}
}

// New creates an LRU holding at most capacity entries.
//
// Example:
//
//	results := cache.New[pairKey, *graph.ComparisonResult](4096)
//	res, hit, err := results.GetOrLoad(key, func() (*graph.ComparisonResult, error) {
//	    return eng.Compare(a, b)
//	})
func New[K comparable, V any](capacity int, opts ...Option[K, V]) *LRU[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &LRU[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element, capacity),
		order:    list.New(),
		inflight: make(map[K]*call[V]),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		c.hits.Add(1)
		return elem.Value.(*entry[K, V]).value, true
	}

	c.misses.Add(1)
	var zero V
	return zero, false
}

// Set stores value under key, evicting the least recently used entry
// when the cache is full.
func (c *LRU[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*entry[K, V]).value = value
		return
	}

	if c.order.Len() >= c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			e := c.remove(oldest)
			c.evictions.Add(1)
			if c.onEvict != nil {
				c.onEvict(e.key, e.value)
			}
		}
	}

	c.items[key] = c.order.PushFront(&entry[K, V]{key: key, value: value})
}

// GetOrLoad returns the cached value for key, or calls load once for all
// concurrent callers missing on the same key and caches its result.
//
// Description:
//
//	Callers are joined only when their keys are equal under ==, so two
//	keys that merely print the same never share a load.
//
// Outputs:
//
//	V - The cached or loaded value.
//	bool - True when the value came from the cache.
//	error - The loader error. Failed loads are not cached.
func (c *LRU[K, V]) GetOrLoad(key K, load func() (V, error)) (V, bool, error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}

	c.loadMu.Lock()
	if cl, ok := c.inflight[key]; ok {
		c.loadMu.Unlock()
		<-cl.done
		if cl.err != nil {
			var zero V
			return zero, false, cl.err
		}
		return cl.val, false, nil
	}
	cl := &call[V]{done: make(chan struct{}), err: ErrLoadAborted}
	c.inflight[key] = cl
	c.loadMu.Unlock()

	defer func() {
		c.loadMu.Lock()
		delete(c.inflight, key)
		c.loadMu.Unlock()
		close(cl.done)
	}()

	cl.val, cl.err = load()
	if cl.err != nil {
		var zero V
		return zero, false, cl.err
	}
	c.Set(key, cl.val)
	return cl.val, false, nil
}

// Purge drops every entry and resets the counters.
func (c *LRU[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[K]*list.Element, c.capacity)
	c.order.Init()
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns hit, miss and eviction counters plus current occupancy.
func (c *LRU[K, V]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Len:       c.Len(),
		Capacity:  c.capacity,
	}
}

// remove unlinks elem. Caller must hold mu.
func (c *LRU[K, V]) remove(elem *list.Element) *entry[K, V] {
	c.order.Remove(elem)
	e := elem.Value.(*entry[K, V])
	delete(c.items, e.key)
	return e
}

// Package buildcache keeps recently fetched player builds for a short time so
// repeated card requests do not hit the data provider.
package buildcache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/buildcard/pkg/metrics"
)

const defaultTTL = time.Minute

type entry[V any] struct {
	key     string
	value   V
	expires time.Time
}

// Cache is a TTL cache bounded by size. Insertion order drives eviction.
type Cache[V any] struct {
	cfg config

	mu    sync.Mutex
	items map[string]*list.Element
	order *list.List // front = newest

	fetches singleflight.Group
}

// New creates a Cache.
func New[V any](opts ...Option) *Cache[V] {
	cfg := config{ttl: defaultTTL, maxSize: 10000, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Cache[V]{
		cfg:   cfg,
		items: map[string]*list.Element{},
		order: list.New(),
	}
}

// Get returns a fresh value for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		metrics.RecordCacheMiss()
		return zero, false
	}
	e := el.Value.(*entry[V])
	if !c.cfg.now().Before(e.expires) {
		c.removeLocked(el)
		metrics.RecordCacheMiss()
		return zero, false
	}
	metrics.RecordCacheHit()
	return e.value, true
}

// Set stores value under key, replacing any previous entry.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeLocked(el)
	}
	if c.cfg.maxSize > 0 {
		for c.order.Len() >= c.cfg.maxSize {
			c.removeLocked(c.order.Back())
		}
	}
	e := &entry[V]{key: key, value: value, expires: c.cfg.now().Add(c.cfg.ttl)}
	c.items[key] = c.order.PushFront(e)
	metrics.UpdateCacheEntries(len(c.items))
}

// GetOrFetch returns the cached value or calls fetch once for all concurrent
// callers of the same key. Errors are not cached.
func (c *Cache[V]) GetOrFetch(ctx context.Context, key string, fetch func(ctx context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	res, err, _ := c.fetches.Do(key, func() (any, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := fetch(ctx)
		if err != nil {
			return v, err
		}
		c.Set(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// Purge drops expired entries and returns how many were removed.
func (c *Cache[V]) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.cfg.now()
	removed := 0
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if !now.Before(el.Value.(*entry[V]).expires) {
			c.removeLocked(el)
			removed++
		}
		el = prev
	}
	metrics.UpdateCacheEntries(len(c.items))
	return removed
}

// Len returns the number of entries, fresh or not.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// removeLocked must be called with c.mu held.
func (c *Cache[V]) removeLocked(el *list.Element) {
	if el == nil {
		return
	}
	c.order.Remove(el)
	delete(c.items, el.Value.(*entry[V]).key)
}

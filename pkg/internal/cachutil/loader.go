// Package cachutil provides caching helpers built on ttlcache.
package cachutil

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"
)

// LoadFunc loads the value of key on a cache miss.
type LoadFunc[V any] func(ctx context.Context, key string) (V, error)

// Cache caches loaded values for a TTL and suppresses duplicate
// in-flight loads of the same key. Failed loads are not cached.
// A zero TTL disables caching but keeps load suppression.
type Cache[V any] struct {
	ttl   time.Duration
	load  LoadFunc[V]
	items *ttlcache.Cache[string, V]
	group singleflight.Group
}

// New returns a new Cache. Call Start to evict expired items in the background.
func New[V any](ttl time.Duration, load LoadFunc[V]) *Cache[V] {
	return &Cache[V]{
		ttl:  ttl,
		load: load,
		items: ttlcache.New[string, V](
			ttlcache.WithTTL[string, V](ttl),
			ttlcache.WithDisableTouchOnHit[string, V](),
		),
	}
}

// Get returns the cached value of key or loads it.
// Concurrent callers of the same key share one load.
//
// The shared load keeps the values of the first caller's ctx but not
// its cancellation, so the load func must bound its own run time.
// Each caller stops waiting when its own ctx is done.
func (c *Cache[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V
	if c.ttl > 0 {
		if item := c.items.Get(key); item != nil {
			return item.Value(), nil
		}
	}
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		v, err := c.load(loadCtx, key)
		if err != nil {
			return nil, err
		}
		if c.ttl > 0 {
			c.items.Set(key, v, ttlcache.DefaultTTL)
		}
		return v, nil
	})
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}

// Len returns the number of cached items.
func (c *Cache[V]) Len() int { return c.items.Len() }

// Start evicts expired items until ctx is done.
func (c *Cache[V]) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		c.items.Stop()
	}()
	c.items.Start()
}

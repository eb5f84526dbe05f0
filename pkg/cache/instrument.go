package cache

import (
	"context"
	"time"

	"github.com/matzehuels/stainedglass/pkg/observability"
)

// instrumented reports hits, misses, and writes of an inner cache to the
// registered cache hooks.
type instrumented struct {
	Cache
}

// Instrument wraps c so its traffic reaches observability.Cache().
func Instrument(c Cache) Cache {
	if c == nil {
		return nil
	}
	return &instrumented{Cache: c}
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, KeyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, KeyType(key))
		}
	}
	return data, hit, err
}

func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, KeyType(key), len(data))
	return nil
}

// Clear forwards to the inner cache when it supports clearing.
func (c *instrumented) Clear(ctx context.Context) error {
	if cl, ok := c.Cache.(Clearer); ok {
		return cl.Clear(ctx)
	}
	return nil
}

// Prune forwards to the inner cache. Backends that expire entries on their
// own report nothing pruned.
func (c *instrumented) Prune(ctx context.Context) (int, error) {
	if p, ok := c.Cache.(Pruner); ok {
		return p.Prune(ctx)
	}
	return 0, nil
}

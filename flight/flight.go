// Package flight coalesces concurrent GetItems calls for the same id
// set into one underlying operation.
//
// The core cache deliberately does not deduplicate overlapping calls:
// each one sweeps, reads, and potentially re-fetches on its own. Group
// is the higher layer for callers that want coalescing: requests with
// an equal id set (order and duplicates ignored) share a single
// in-flight operation and its result.
package flight

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/unkn0wn-root/offcache"
	"github.com/unkn0wn-root/offcache/internal/util"
)

// Group wraps a Cache with request coalescing. Safe for concurrent use.
type Group[T any] struct {
	cache offcache.Cache[T]
	sf    singleflight.Group
}

func New[T any](c offcache.Cache[T]) *Group[T] {
	return &Group[T]{cache: c}
}

// GetItems resolves ids through the underlying cache, sharing one
// operation between concurrent calls for the same id set. The stream is
// drained internally, so the result is a slice rather than an iterator.
// A remote-fetch failure is returned to every waiting caller.
func (g *Group[T]) GetItems(ctx context.Context, ids []string) ([]T, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	v, err, _ := g.sf.Do(util.SetKey("items", ids), func() (any, error) {
		return g.cache.GetItems(ctx, ids).Collect()
	})
	vals, _ := v.([]T)
	return vals, err
}

func (g *Group[T]) Invalidate(ctx context.Context, id string) error {
	return g.cache.Invalidate(ctx, id)
}

func (g *Group[T]) InvalidateAll(ctx context.Context) error {
	return g.cache.InvalidateAll(ctx)
}

func (g *Group[T]) Close(ctx context.Context) error {
	return g.cache.Close(ctx)
}

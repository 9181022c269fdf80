package offcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	cod "github.com/unkn0wn-root/offcache/codec"
	"github.com/unkn0wn-root/offcache/reach"
	st "github.com/unkn0wn-root/offcache/store"
)

const (
	defaultTTL           = 10 * time.Minute
	defaultSweepInterval = 5 * time.Second
)

type cache[T any] struct {
	kind   Kind[T]
	store  st.Store
	codec  cod.Codec[T]
	online reach.Status
	log    Logger
	hooks  Hooks

	ttl     time.Duration // resolved; NoExpiry => never expires
	sweeper *sweeper

	// storeReady is false when partition init failed: reads behave as
	// empty and writes are skipped, but remote fetch keeps working.
	storeReady bool

	now func() time.Time
}

func newCache[T any](opts Options[T]) (*cache[T], error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("offcache: store is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("offcache: codec is required")
	}
	if opts.Kind.Prefix == "" {
		return nil, fmt.Errorf("offcache: kind prefix is required")
	}
	if opts.Kind.KeyOf == nil {
		return nil, fmt.Errorf("offcache: kind KeyOf is required")
	}
	if opts.Kind.Fetch == nil {
		return nil, fmt.Errorf("offcache: kind Fetch is required")
	}

	c := &cache[T]{
		kind:  opts.Kind,
		store: opts.Store,
		codec: opts.Codec,
		now:   time.Now,
	}

	// defaults
	c.online = opts.Connectivity
	if c.online == nil {
		c.online = reach.Always()
	}
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})

	c.ttl = c.kind.TTL
	if c.ttl == 0 {
		c.ttl = coalesce[time.Duration](opts.DefaultTTL, defaultTTL)
	}

	c.sweeper = newSweeper(
		coalesce[time.Duration](opts.SweepInterval, defaultSweepInterval),
		func(ctx context.Context, now int64) error {
			return c.store.DeleteExpired(ctx, c.kind.Prefix, now)
		},
		func(err error) {
			c.log.Warn("expiration sweep failed", Fields{"prefix": c.kind.Prefix, "err": err})
			c.hooks.SweepFailed(c.kind.Prefix, err)
		},
	)

	// Partition init is idempotent. Failure leaves the kind inoperable
	// for persistence but must not crash the caller.
	if err := c.store.Init(context.Background(), c.kind.Prefix); err != nil {
		c.log.Error("partition init failed; persistence disabled", Fields{"prefix": c.kind.Prefix, "err": err})
		c.hooks.StoreUnavailable(c.kind.Prefix, err)
	} else {
		c.storeReady = true
	}
	return c, nil
}

func (c *cache[T]) Close(ctx context.Context) error {
	return c.store.Close(ctx)
}

func (c *cache[T]) Invalidate(ctx context.Context, id string) error {
	if !c.storeReady {
		return nil
	}
	return c.store.Delete(ctx, c.kind.Prefix, id)
}

func (c *cache[T]) InvalidateAll(ctx context.Context) error {
	if !c.storeReady {
		return nil
	}
	return c.store.DeleteAll(ctx, c.kind.Prefix)
}

func (c *cache[T]) GetItems(ctx context.Context, ids []string) *Items[T] {
	it := newItems[T]()
	if len(ids) == 0 {
		// empty input: empty result, no side effects
		close(it.ch)
		return it
	}
	go c.reconcile(ctx, ids, it)
	return it
}

// reconcile is one logical get-items operation: sweep, read, fetch the
// missing set while reachable, persist what was fetched, and stream the
// union to the caller. It owns the stream and closes it on completion.
func (c *cache[T]) reconcile(ctx context.Context, ids []string, it *Items[T]) {
	defer close(it.ch)

	now := c.now().UnixMilli()

	satisfied := make(map[string]struct{}, len(ids))
	if c.storeReady {
		c.sweeper.sweep(ctx, now)
		entries, err := c.store.GetMany(ctx, c.kind.Prefix, ids)
		if err != nil {
			// fail-soft: terminate the stream empty instead of surfacing
			// a hard failure
			c.log.Warn("storage read failed", Fields{"prefix": c.kind.Prefix, "err": err})
			c.hooks.ReadFailed(c.kind.Prefix, err)
			return
		}
		for _, e := range entries {
			v, derr := c.codec.Decode(e.Payload)
			if derr != nil {
				// self-heal: drop the corrupt row and treat it as a miss
				c.hooks.DecodeFailed(c.kind.Prefix, e.ID, derr)
				_ = c.store.Delete(ctx, c.kind.Prefix, e.ID)
				continue
			}
			satisfied[e.ID] = struct{}{}
			it.emit(ctx, v)
		}
	}

	missing := missingIDs(ids, satisfied)
	// connectivity is sampled once, here, not re-checked per id
	if len(missing) == 0 || !c.online.Online() {
		return
	}

	// one expiry for the whole fetched batch
	expiresAt := st.NeverExpires
	if c.ttl >= 0 {
		expiresAt = now + c.ttl.Milliseconds()
	}

	stream, err := c.kind.Fetch(ctx, missing)
	if err != nil {
		it.fail(&FetchError{Prefix: c.kind.Prefix, IDs: missing, Err: err})
		return
	}

	var wg sync.WaitGroup
	fetched := make(map[string]struct{}, len(missing))
	for v := range stream {
		fetched[c.kind.KeyOf(v)] = struct{}{}
		it.emit(ctx, v)
		wg.Add(1)
		go func(v T) {
			defer wg.Done()
			// issued writes run to settlement even when the caller is gone
			c.persist(context.WithoutCancel(ctx), v, expiresAt)
		}(v)
	}
	// completion is not signaled while any write is outstanding
	wg.Wait()

	if unresolved := len(missing) - len(fetched); unresolved > 0 {
		// ids the remote declined are dropped, not retried; only the
		// count is observable
		c.hooks.Unresolved(c.kind.Prefix, unresolved)
	}
}

func (c *cache[T]) persist(ctx context.Context, v T, expiresAt int64) {
	if !c.storeReady {
		return
	}
	id := c.kind.KeyOf(v)
	payload, err := c.codec.Encode(v)
	if err != nil {
		c.log.Warn("encode for persistence failed", Fields{"prefix": c.kind.Prefix, "id": id, "err": err})
		c.hooks.WriteFailed(c.kind.Prefix, id, err)
		return
	}
	errs := c.store.PutMany(ctx, c.kind.Prefix, []st.Entry{{ID: id, ExpiresAt: expiresAt, Payload: payload}})
	for _, perr := range errs {
		if perr != nil {
			// a write failure never removes the already-emitted entity
			c.log.Warn("persistence write failed", Fields{"prefix": c.kind.Prefix, "id": id, "err": perr})
			c.hooks.WriteFailed(c.kind.Prefix, id, perr)
		}
	}
}

// missingIDs computes ids − satisfied, collapsing duplicate requests to
// one fetch each while preserving first-seen order.
func missingIDs(ids []string, satisfied map[string]struct{}) []string {
	var missing []string
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := satisfied[id]; ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		missing = append(missing, id)
	}
	return missing
}

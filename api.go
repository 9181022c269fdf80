package offcache

import (
	"context"
	"time"

	cod "github.com/unkn0wn-root/offcache/codec"
	"github.com/unkn0wn-root/offcache/reach"
	st "github.com/unkn0wn-root/offcache/store"
)

// NoExpiry marks a kind whose entries are never purged by the sweep.
const NoExpiry time.Duration = -1

// FetchFunc asks the remote source for the entities behind the missing
// ids. The returned channel is an asynchronous sequence: the remote may
// return any subset of the requested ids, in any order, and must close
// the channel when done. A non-nil error means the remote call itself
// failed; a partial or empty result is not an error.
type FetchFunc[T any] func(ctx context.Context, ids []string) (<-chan T, error)

// Kind describes one entity kind. One generic cache instance per kind
// replaces a derived type per kind; the reconciliation logic is written
// once and configured here.
type Kind[T any] struct {
	// Prefix identifies this kind's storage partition. Must be unique
	// per kind and stable across restarts.
	Prefix string

	// TTL applies uniformly to every entity of this kind.
	// 0 => Options.DefaultTTL; NoExpiry => entries never expire.
	TTL time.Duration

	// KeyOf extracts an entity's identifier. Must be pure.
	KeyOf func(T) string

	// Fetch retrieves missing entities from the remote source.
	Fetch FetchFunc[T]
}

// Cache is the per-kind read-through cache API.
type Cache[T any] interface {
	// GetItems resolves the requested ids into a lazy, finite,
	// non-restartable stream: locally cached entities first, then
	// remotely fetched ones while reachable. Order does not follow ids,
	// and an id that is neither cached nor returned by the remote yields
	// no emission. The stream completes only after every persistence
	// write for fetched entities has settled.
	GetItems(ctx context.Context, ids []string) *Items[T]

	// Invalidate removes one entity from storage.
	Invalidate(ctx context.Context, id string) error

	// InvalidateAll clears the kind's whole partition.
	InvalidateAll(ctx context.Context) error

	// Close releases the underlying store.
	Close(ctx context.Context) error
}

// Options tune one cache instance. Kind, Store and Codec are required;
// the rest have defaults.
type Options[T any] struct {
	// Required
	Kind  Kind[T]
	Store st.Store
	Codec cod.Codec[T]

	// Connectivity is sampled once per GetItems call at the moment a
	// remote fetch would be issued. nil => reach.Always() (the caller
	// opted out of connectivity tracking).
	Connectivity reach.Status

	Logger Logger // nil => NopLogger
	Hooks  Hooks  // nil => NopHooks

	// DefaultTTL is used when Kind.TTL is 0. 0 => 10m.
	DefaultTTL time.Duration

	// SweepInterval is the minimum spacing between expiration purges,
	// regardless of call frequency. 0 => 5s.
	SweepInterval time.Duration
}

// New builds a cache for one entity kind. Partition initialization
// happens here; if the store is unavailable the error is logged and the
// cache comes up with persistence disabled rather than failing the
// caller (reads behave as empty, remote fetch still works).
func New[T any](opts Options[T]) (Cache[T], error) {
	return newCache[T](opts)
}

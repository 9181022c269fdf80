// Package store defines the storage abstraction used by offcache.
//
// A Store is a shared, process-wide key-value facility partitioned by a
// per-kind prefix. Each partition conceptually holds rows of
// (id, ttl, element) where ttl is an absolute expiry timestamp in unix
// milliseconds, or NeverExpires. Implementations must be safe for
// concurrent use across partitions and within one partition; offcache
// issues overlapping reads and writes without any outer locking, and the
// last write for an id wins.
//
// Implementations MUST be byte-for-byte transparent: GetMany must return
// exactly the payload bytes previously passed to PutMany for the same id
// (no re-encoding, no mutation).
package store

import "context"

// NeverExpires marks an entry the sweep must never purge.
const NeverExpires int64 = -1

// Entry is one stored row of a partition.
type Entry struct {
	// ID is the entity identifier, unique within a partition.
	ID string
	// ExpiresAt is the absolute expiry time in unix milliseconds,
	// or NeverExpires.
	ExpiresAt int64
	// Payload is the serialized entity.
	Payload []byte
}

// Expired reports whether the entry is purgeable at the given time
// (unix milliseconds). An entry expiring exactly at now is still valid.
func (e Entry) Expired(now int64) bool {
	return e.ExpiresAt != NeverExpires && e.ExpiresAt < now
}

// Store is the partitioned row store offcache persists into.
type Store interface {
	// Init prepares the partition for use. It is called once per kind
	// before any other operation and must be idempotent: initializing an
	// already-existing partition is not an error.
	Init(ctx context.Context, prefix string) error

	// GetMany returns the entries whose id is in ids, in no particular
	// order. Ids with no row are simply absent from the result. GetMany
	// does not filter on expiry; purging is DeleteExpired's job.
	GetMany(ctx context.Context, prefix string, ids []string) ([]Entry, error)

	// PutMany inserts the entries, overwriting on id conflict. The result
	// slice is aligned with entries: errs[i] is nil when entries[i] was
	// stored. A failed entry must not affect its siblings.
	PutMany(ctx context.Context, prefix string, entries []Entry) []error

	// Delete removes one row (best-effort; deleting a missing id is not
	// an error).
	Delete(ctx context.Context, prefix string, id string) error

	// DeleteAll removes every row in the partition.
	DeleteAll(ctx context.Context, prefix string) error

	// DeleteExpired removes rows with ExpiresAt != NeverExpires and
	// ExpiresAt strictly less than now (unix milliseconds). Stores whose
	// backend expires natively may make this a no-op.
	DeleteExpired(ctx context.Context, prefix string, now int64) error

	// Close releases resources.
	Close(ctx context.Context) error
}

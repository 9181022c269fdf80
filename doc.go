// Package offcache implements a generic read-through cache for
// environments with intermittent connectivity. Cached entities are
// served from local storage; entities not present locally are fetched
// from the remote source only while it is reachable, and fetched
// entities are persisted with a TTL so stale rows are periodically
// purged.
//
// Components:
//   - store.Store: partitioned (id, ttl, element) row store
//     (SQLite, Redis, BigCache, Ristretto, in-memory).
//   - codec.Codec[T]: (de)serializes T <-> []byte.
//   - reach.Status: sampled "is the remote reachable right now" signal.
//   - Kind[T]: per-entity-kind descriptor (partition prefix, TTL,
//     identifier extraction, remote fetch).
//
// A GetItems call sweeps expired rows (throttled), reads what is cached,
// fetches the missing ids remotely while online, streams cached and
// fetched entities through one Items sequence, and completes only after
// every persistence write has settled:
//
//	it := cache.GetItems(ctx, []string{"a", "b"})
//	for it.Next() {
//		use(it.Item())
//	}
//	if err := it.Err(); err != nil { ... }
//
// Concurrent GetItems calls for overlapping ids are intentionally not
// coalesced; wrap the cache in flight.Group when that matters.
package offcache

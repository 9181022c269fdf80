// Package redis provides a Redis-backed Store. Per-key expiry rides on
// Redis' native TTL, so DeleteExpired is a no-op; the absolute expiry
// also travels inside the wire frame so GetMany can report it back.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/offcache/internal/wire"
	"github.com/unkn0wn-root/offcache/store"
)

var ErrNilClient = errors.New("redis store: nil client")

type Store struct {
	rdb         goredis.UniversalClient
	closeClient bool
}

var _ store.Store = (*Store)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this store exclusively owns the client
}

func New(cfg Config) (*Store, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Store{rdb: cfg.Client, closeClient: cfg.CloseClient}, nil
}

func key(prefix, id string) string { return prefix + ":" + id }

// Init pings the server; Redis has no partitions to create.
func (s *Store) Init(ctx context.Context, _ string) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) GetMany(ctx context.Context, prefix string, ids []string) ([]store.Entry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = key(prefix, id)
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	var out []store.Entry
	for i, v := range vals {
		if v == nil {
			continue // miss
		}
		raw, ok := v.(string)
		if !ok {
			continue
		}
		expiresAt, payload, err := wire.Decode([]byte(raw))
		if err != nil {
			// foreign or corrupt value under our key; drop it
			_ = s.rdb.Del(ctx, keys[i]).Err()
			continue
		}
		out = append(out, store.Entry{ID: ids[i], ExpiresAt: expiresAt, Payload: payload})
	}
	return out, nil
}

func (s *Store) PutMany(ctx context.Context, prefix string, entries []store.Entry) []error {
	errs := make([]error, len(entries))
	now := time.Now().UnixMilli()
	for i, e := range entries {
		var ttl time.Duration // 0 => no expiry
		if e.ExpiresAt != store.NeverExpires {
			ttl = time.Duration(e.ExpiresAt-now) * time.Millisecond
			if ttl <= 0 {
				ttl = time.Millisecond // already due; let Redis reap it immediately
			}
		}
		errs[i] = s.rdb.Set(ctx, key(prefix, e.ID), wire.Encode(e.ExpiresAt, e.Payload), ttl).Err()
	}
	return errs
}

func (s *Store) Delete(ctx context.Context, prefix string, id string) error {
	return s.rdb.Del(ctx, key(prefix, id)).Err()
}

func (s *Store) DeleteAll(ctx context.Context, prefix string) error {
	var cursor uint64
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, prefix+":*", 256).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// DeleteExpired is a no-op: Redis expires keys natively.
func (s *Store) DeleteExpired(context.Context, string, int64) error { return nil }

// Close releases the underlying redis client only when this store owns
// it. Safe to call multiple times; repeated calls become no-ops.
func (s *Store) Close(context.Context) error {
	if s.closeClient {
		if err := s.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}

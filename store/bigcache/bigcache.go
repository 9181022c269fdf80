// Package bigcache provides a Store over allegro/bigcache. BigCache only
// supports a global LifeWindow, so the per-entry expiry lives in the
// wire frame and DeleteExpired walks the iterator.
package bigcache

import (
	"context"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/offcache/internal/wire"
	"github.com/unkn0wn-root/offcache/store"
)

type Store struct {
	c *bc.BigCache
}

var _ store.Store = (*Store)(nil)

type Config struct {
	LifeWindow         time.Duration // upper bound on any entry's lifetime
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(cfg Config) (*Store, error) {
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.NewBigCache(conf)
	if err != nil {
		return nil, err
	}
	return &Store{c: c}, nil
}

func key(prefix, id string) string { return prefix + ":" + id }

func (s *Store) Init(context.Context, string) error { return nil }

func (s *Store) GetMany(ctx context.Context, prefix string, ids []string) ([]store.Entry, error) {
	var out []store.Entry
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		raw, err := s.c.Get(key(prefix, id))
		if err == bc.ErrEntryNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		expiresAt, payload, err := wire.Decode(raw)
		if err != nil {
			_ = s.c.Delete(key(prefix, id))
			continue
		}
		out = append(out, store.Entry{ID: id, ExpiresAt: expiresAt, Payload: payload})
	}
	return out, nil
}

func (s *Store) PutMany(_ context.Context, prefix string, entries []store.Entry) []error {
	errs := make([]error, len(entries))
	for i, e := range entries {
		errs[i] = s.c.Set(key(prefix, e.ID), wire.Encode(e.ExpiresAt, e.Payload))
	}
	return errs
}

func (s *Store) Delete(_ context.Context, prefix string, id string) error {
	err := s.c.Delete(key(prefix, id))
	if err == bc.ErrEntryNotFound {
		return nil
	}
	return err
}

func (s *Store) DeleteAll(_ context.Context, prefix string) error {
	// Reset clears every partition sharing this BigCache instance, so
	// walk the iterator and delete only our keys.
	it := s.c.Iterator()
	var doomed []string
	for it.SetNext() {
		info, err := it.Value()
		if err != nil {
			continue
		}
		if hasPrefix(info.Key(), prefix) {
			doomed = append(doomed, info.Key())
		}
	}
	for _, k := range doomed {
		if err := s.c.Delete(k); err != nil && err != bc.ErrEntryNotFound {
			return err
		}
	}
	return nil
}

func (s *Store) DeleteExpired(_ context.Context, prefix string, now int64) error {
	it := s.c.Iterator()
	var doomed []string
	for it.SetNext() {
		info, err := it.Value()
		if err != nil {
			continue
		}
		if !hasPrefix(info.Key(), prefix) {
			continue
		}
		expiresAt, _, err := wire.Decode(info.Value())
		if err != nil {
			doomed = append(doomed, info.Key())
			continue
		}
		if expiresAt != store.NeverExpires && expiresAt < now {
			doomed = append(doomed, info.Key())
		}
	}
	for _, k := range doomed {
		if err := s.c.Delete(k); err != nil && err != bc.ErrEntryNotFound {
			return err
		}
	}
	return nil
}

func hasPrefix(k, prefix string) bool {
	return len(k) > len(prefix) && k[:len(prefix)] == prefix && k[len(prefix)] == ':'
}

func (s *Store) Close(context.Context) error { return s.c.Close() }

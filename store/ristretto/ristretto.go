// Package ristretto provides a Store over dgraph-io/ristretto. Entries
// carry their expiry natively via SetWithTTL; Ristretto has no iteration
// API, so DeleteExpired is a no-op and never-expiring entries may still
// be evicted under memory pressure.
package ristretto

import (
	"context"
	"errors"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/offcache/store"
)

type Store struct {
	c *rc.Cache
}

var _ store.Store = (*Store)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
}

func New(cfg Config) (*Store, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Store{c: c}, nil
}

func key(prefix, id string) string { return prefix + ":" + id }

func (s *Store) Init(context.Context, string) error { return nil }

func (s *Store) GetMany(_ context.Context, prefix string, ids []string) ([]store.Entry, error) {
	var out []store.Entry
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		v, ok := s.c.Get(key(prefix, id))
		if !ok {
			continue
		}
		e, ok := v.(store.Entry)
		if !ok {
			// unexpected entry shape; drop it
			s.c.Del(key(prefix, id))
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) PutMany(_ context.Context, prefix string, entries []store.Entry) []error {
	errs := make([]error, len(entries))
	now := time.Now().UnixMilli()
	for _, e := range entries {
		cost := int64(len(e.Payload)) + int64(len(e.ID))
		if e.ExpiresAt == store.NeverExpires {
			s.c.Set(key(prefix, e.ID), e, cost)
			continue
		}
		ttl := time.Duration(e.ExpiresAt-now) * time.Millisecond
		if ttl <= 0 {
			continue // already due; nothing to store
		}
		s.c.SetWithTTL(key(prefix, e.ID), e, cost, ttl)
	}
	return errs
}

func (s *Store) Delete(_ context.Context, prefix string, id string) error {
	s.c.Del(key(prefix, id))
	return nil
}

// DeleteAll clears the whole cache: Ristretto cannot enumerate keys, so
// partition-scoped clearing is not possible. Use a dedicated Store per
// kind if that matters.
func (s *Store) DeleteAll(context.Context, string) error {
	s.c.Clear()
	return nil
}

// DeleteExpired is a no-op: expiry is enforced by Ristretto itself.
func (s *Store) DeleteExpired(context.Context, string, int64) error { return nil }

func (s *Store) Close(context.Context) error {
	s.c.Wait()
	s.c.Close()
	return nil
}

// Metrics exposes Ristretto metrics when enabled in Config.
func (s *Store) Metrics() *rc.Metrics { return s.c.Metrics }

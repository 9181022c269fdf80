// Package memory provides an in-process Store. Rows are held as plain
// structs in a map per partition, so it is also the reference
// implementation the core tests run against.
package memory

import (
	"context"
	"sync"

	"github.com/unkn0wn-root/offcache/store"
)

type partition map[string]store.Entry

// Store keeps all partitions in process memory. Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	parts map[string]partition
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{parts: make(map[string]partition)}
}

func (s *Store) Init(_ context.Context, prefix string) error {
	s.mu.Lock()
	if _, ok := s.parts[prefix]; !ok {
		s.parts[prefix] = make(partition)
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) GetMany(_ context.Context, prefix string, ids []string) ([]store.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.parts[prefix]
	if p == nil {
		return nil, nil
	}
	var out []store.Entry
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if e, ok := p[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) PutMany(_ context.Context, prefix string, entries []store.Entry) []error {
	errs := make([]error, len(entries))
	s.mu.Lock()
	p := s.parts[prefix]
	if p == nil {
		p = make(partition)
		s.parts[prefix] = p
	}
	for _, e := range entries {
		p[e.ID] = e
	}
	s.mu.Unlock()
	return errs
}

func (s *Store) Delete(_ context.Context, prefix string, id string) error {
	s.mu.Lock()
	if p := s.parts[prefix]; p != nil {
		delete(p, id)
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) DeleteAll(_ context.Context, prefix string) error {
	s.mu.Lock()
	if p := s.parts[prefix]; p != nil {
		s.parts[prefix] = make(partition)
	}
	s.mu.Unlock()
	return nil
}

// DeleteExpired is a full scan of the partition. Predictable and O(n);
// the sweep throttle in the core keeps n scans per interval at one.
func (s *Store) DeleteExpired(_ context.Context, prefix string, now int64) error {
	s.mu.Lock()
	if p := s.parts[prefix]; p != nil {
		for id, e := range p {
			if e.Expired(now) {
				delete(p, id)
			}
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) Close(_ context.Context) error { return nil }

// Len reports the number of rows in a partition. Intended for tests.
func (s *Store) Len(prefix string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.parts[prefix])
}

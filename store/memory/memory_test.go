package memory

import (
	"context"
	"testing"

	"github.com/unkn0wn-root/offcache/store"
)

func put(t *testing.T, s *Store, prefix string, entries ...store.Entry) {
	t.Helper()
	for _, err := range s.PutMany(context.Background(), prefix, entries) {
		if err != nil {
			t.Fatalf("PutMany: %v", err)
		}
	}
}

func TestPutGetOverwrite(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.Init(ctx, "p"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	put(t, s, "p", store.Entry{ID: "a", ExpiresAt: 10, Payload: []byte("v1")})
	put(t, s, "p", store.Entry{ID: "a", ExpiresAt: 20, Payload: []byte("v2")})

	got, err := s.GetMany(ctx, "p", []string{"a", "ghost", "a"})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("overwrite must not duplicate, got %v", got)
	}
	if got[0].ExpiresAt != 20 || string(got[0].Payload) != "v2" {
		t.Fatalf("last write should win, got %+v", got[0])
	}
}

func TestPartitionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := New()
	put(t, s, "a", store.Entry{ID: "x", ExpiresAt: store.NeverExpires, Payload: []byte("pa")})
	put(t, s, "b", store.Entry{ID: "x", ExpiresAt: store.NeverExpires, Payload: []byte("pb")})

	if err := s.DeleteAll(ctx, "a"); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	if s.Len("a") != 0 {
		t.Fatalf("partition a should be empty")
	}
	got, err := s.GetMany(ctx, "b", []string{"x"})
	if err != nil || len(got) != 1 || string(got[0].Payload) != "pb" {
		t.Fatalf("partition b should be untouched, got %v (%v)", got, err)
	}
}

func TestDeleteExpiredBoundary(t *testing.T) {
	ctx := context.Background()
	s := New()
	put(t, s, "p",
		store.Entry{ID: "past", ExpiresAt: 99, Payload: []byte("x")},
		store.Entry{ID: "edge", ExpiresAt: 100, Payload: []byte("x")},
		store.Entry{ID: "future", ExpiresAt: 101, Payload: []byte("x")},
		store.Entry{ID: "forever", ExpiresAt: store.NeverExpires, Payload: []byte("x")},
	)

	if err := s.DeleteExpired(ctx, "p", 100); err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}

	got, err := s.GetMany(ctx, "p", []string{"past", "edge", "future", "forever"})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("only the strictly-expired row should go, got %v", got)
	}
	for _, e := range got {
		if e.ID == "past" {
			t.Fatalf("row expiring before now must be purged")
		}
	}
}

func TestDeleteOne(t *testing.T) {
	ctx := context.Background()
	s := New()
	put(t, s, "p", store.Entry{ID: "a", ExpiresAt: store.NeverExpires, Payload: []byte("x")})

	if err := s.Delete(ctx, "p", "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "p", "a"); err != nil {
		t.Fatalf("Delete of a missing id should be a no-op, got %v", err)
	}
	if s.Len("p") != 0 {
		t.Fatalf("row should be gone")
	}
}

package offcache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSweeperThrottleWindow(t *testing.T) {
	ctx := context.Background()
	base := time.Now().UnixMilli()
	var purges int
	s := newSweeper(5*time.Second,
		func(context.Context, int64) error { purges++; return nil },
		func(error) {})

	// fresh sweeper always fires on the first call
	s.sweep(ctx, base)
	if purges != 1 {
		t.Fatalf("first sweep should execute, purges=%d", purges)
	}

	s.sweep(ctx, base+4_999)
	if purges != 1 {
		t.Fatalf("sweep inside the window should be a no-op, purges=%d", purges)
	}

	s.sweep(ctx, base+5_000)
	if purges != 2 {
		t.Fatalf("sweep at the window edge should execute, purges=%d", purges)
	}
}

// The window is claimed before the delete runs, so overlapping calls in
// the same window collapse to one purge.
func TestSweeperConcurrentCallsCollapse(t *testing.T) {
	ctx := context.Background()
	var mu sync.Mutex
	purges := 0
	s := newSweeper(5*time.Second,
		func(context.Context, int64) error {
			mu.Lock()
			purges++
			mu.Unlock()
			return nil
		},
		func(error) {})

	now := time.Now().UnixMilli()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.sweep(ctx, now)
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if purges != 1 {
		t.Fatalf("overlapping sweeps in one window should collapse, purges=%d", purges)
	}
}

func TestSweeperReportsButSwallowsErrors(t *testing.T) {
	ctx := context.Background()
	sentinel := errors.New("purge failed")
	var reported error
	s := newSweeper(time.Second,
		func(context.Context, int64) error { return sentinel },
		func(err error) { reported = err })

	base := time.Now().UnixMilli()
	s.sweep(ctx, base)
	if !errors.Is(reported, sentinel) {
		t.Fatalf("expected purge error to be reported, got %v", reported)
	}
	// the failed window stays claimed; no immediate retry
	reported = nil
	s.sweep(ctx, base+1)
	if reported != nil {
		t.Fatalf("failed sweep should not retry inside the window")
	}
}

package offcache

import (
	"context"
	"sync/atomic"
	"time"
)

// sweeper rate-limits expiration purges: at most one per interval no
// matter how often GetItems runs. lastAt starts at zero (epoch), far
// outside any realistic window, so the first call after construction
// always sweeps.
type sweeper struct {
	interval time.Duration
	lastAt   atomic.Int64 // unix millis of the last executed sweep

	purge func(ctx context.Context, now int64) error
	onErr func(err error)
}

func newSweeper(interval time.Duration, purge func(context.Context, int64) error, onErr func(error)) *sweeper {
	return &sweeper{interval: interval, purge: purge, onErr: onErr}
}

// sweep purges expired rows if the throttle window has passed. The
// window is claimed (lastAt updated) before the delete is issued, so
// overlapping concurrent calls in the same window are suppressed rather
// than queued. A purge failure is reported through onErr and never
// fails the enclosing operation.
func (s *sweeper) sweep(ctx context.Context, now int64) {
	last := s.lastAt.Load()
	if now-last < s.interval.Milliseconds() {
		return
	}
	if !s.lastAt.CompareAndSwap(last, now) {
		return // another call claimed this window
	}
	if err := s.purge(ctx, now); err != nil {
		s.onErr(err)
	}
}

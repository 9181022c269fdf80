package offcache

import (
	"context"
	"sync"
)

// Items is the result stream of one GetItems call: lazy, finite, and
// not restartable (call GetItems again to re-query). Iterate with Next
// and Item, then check Err:
//
//	for it.Next() {
//		use(it.Item())
//	}
//	if err := it.Err(); err != nil { ... }
//
// Items is not safe for concurrent iteration.
type Items[T any] struct {
	ch   chan T
	stop chan struct{}
	once sync.Once

	cur T
	err error // written by the producer before it closes ch
}

func newItems[T any]() *Items[T] {
	// ch is unbuffered so emission is paced by the consumer
	return &Items[T]{ch: make(chan T), stop: make(chan struct{})}
}

// Next advances to the next entity. It returns false when the stream is
// complete; for a call that fetched remotely, that is only after all
// persistence writes have settled.
func (it *Items[T]) Next() bool {
	v, ok := <-it.ch
	if !ok {
		return false
	}
	it.cur = v
	return true
}

// Item returns the entity Next advanced to.
func (it *Items[T]) Item() T { return it.cur }

// Err reports a remote-fetch failure. Valid once Next has returned
// false. Storage read and write failures are never surfaced here; they
// fail soft (empty result, Hooks side channel).
func (it *Items[T]) Err() error { return it.err }

// Close releases interest in further emissions. The underlying
// operation still runs to completion: fetched entities keep being
// persisted, the writes just no longer have an audience. Next returns
// false for a closed iterator only once the operation finishes.
func (it *Items[T]) Close() {
	it.once.Do(func() { close(it.stop) })
}

// Collect drains the stream into a slice. Returns Err alongside
// whatever was emitted before the failure.
func (it *Items[T]) Collect() ([]T, error) {
	var vals []T
	for it.Next() {
		vals = append(vals, it.Item())
	}
	return vals, it.Err()
}

// emit delivers v to the consumer, or drops it when the consumer closed
// the iterator or the context was canceled. The producer continues with
// persistence either way.
func (it *Items[T]) emit(ctx context.Context, v T) {
	select {
	case it.ch <- v:
	case <-it.stop:
	case <-ctx.Done():
	}
}

// fail records a terminal error. Must only be called by the producer
// before it closes the channel, which orders the write before any Err
// read.
func (it *Items[T]) fail(err error) { it.err = err }

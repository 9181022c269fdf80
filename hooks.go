package offcache

// Hooks are lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking; the cache calls them
// on hot paths.
type Hooks interface {
	// The throttled expiration purge failed (non-fatal; storage growth
	// concern only).
	SweepFailed(prefix string, err error)

	// The storage read failed and the operation completed empty.
	ReadFailed(prefix string, err error)

	// A stored row could not be decoded and was deleted (self-heal).
	DecodeFailed(prefix, id string, err error)

	// A persistence write for a fetched entity failed. The entity was
	// still emitted; sibling writes were unaffected.
	WriteFailed(prefix, id string, err error)

	// Partition initialization failed; the kind runs without
	// persistence.
	StoreUnavailable(prefix string, err error)

	// count requested ids were neither cached nor returned by the
	// remote and were silently dropped from the stream.
	Unresolved(prefix string, count int)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) SweepFailed(string, error)          {}
func (NopHooks) ReadFailed(string, error)           {}
func (NopHooks) DecodeFailed(string, string, error) {}
func (NopHooks) WriteFailed(string, string, error)  {}
func (NopHooks) StoreUnavailable(string, error)     {}
func (NopHooks) Unresolved(string, int)             {}

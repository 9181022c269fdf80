package offcache

import "fmt"

// FetchError reports that the remote call for a set of missing ids
// failed outright. A remote returning a partial or empty result is not
// a FetchError; those ids are simply absent from the stream.
type FetchError struct {
	Prefix string
	IDs    []string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %d missing id(s) for %q failed: %v", len(e.IDs), e.Prefix, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

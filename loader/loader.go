package loader

import (
	"context"
	"fmt"

	"github.com/syssam/chatql"
)

// FetchFunc fetches the value for a single request.
type FetchFunc[V any] func(ctx context.Context) (V, error)

// Load resolves the value for key within the scope attached to ctx, invoking
// fetch at most once per scope. Concurrent callers for the same key all
// suspend on the same single fetch and resume together when it completes; a
// later caller for an already-resolved key returns immediately from the
// cache. A fetch failure is delivered identically to every current and
// future caller for that key until the scope ends or the caller invalidates
// the entry - Load never retries on its own.
//
// This is the sequential path: distinct keys execute their fetches one at a
// time, in the order they were first requested, which is what a store that
// shares one connection across reads and writes requires. Fetchers must not
// issue further scoped loads, or they would wait on themselves.
func Load[V any](ctx context.Context, key Key, fetch FetchFunc[V]) (V, error) {
	var zero V
	s, ok := FromContext(ctx)
	if !ok {
		return zero, chatql.ErrNoScope
	}
	e, owned, err := s.acquire(key)
	if err != nil {
		return zero, err
	}
	if !owned {
		return waitFor[V](ctx, e)
	}
	s.fetchMu.Lock()
	val, err := fetch(ctx)
	s.fetchMu.Unlock()
	if err != nil {
		e.resolve(nil, err)
		return zero, err
	}
	e.resolve(val, nil)
	return val, nil
}

// waitFor blocks on the entry and converts its value back to V.
func waitFor[V any](ctx context.Context, e *entry) (V, error) {
	var zero V
	v, err := e.wait(ctx)
	if err != nil {
		return zero, err
	}
	val, ok := v.(V)
	if !ok {
		return zero, fmt.Errorf("chatql/loader: cached value has type %T, want %T", v, zero)
	}
	return val, nil
}

// GetPrimed returns the cached value for key if the scope in ctx holds a
// resolved entry for it. It never triggers a fetch.
func GetPrimed[V any](ctx context.Context, key Key) (V, bool) {
	var zero V
	s, ok := FromContext(ctx)
	if !ok {
		return zero, false
	}
	s.mu.Lock()
	e, ok := s.entries[key]
	s.mu.Unlock()
	if !ok {
		return zero, false
	}
	select {
	case <-e.done:
	default:
		return zero, false
	}
	if e.err != nil {
		return zero, false
	}
	val, ok := e.val.(V)
	return val, ok
}

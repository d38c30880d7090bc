package loader

import (
	"context"
	"sync"

	"github.com/syssam/chatql"
)

// Scope owns the cache of one logical operation, typically one incoming
// GraphQL request. It is created when the operation starts and closed when
// the operation ends; everything it cached is discarded with it. Scopes are
// never shared between operations, which bounds cache growth to a single
// operation's lifetime and rules out cross-request leakage.
type Scope struct {
	mu      sync.Mutex
	fetchMu sync.Mutex // serializes sequential fetches in first-request order
	entries map[Key]*entry
	closed  bool
}

// entry is the pending-or-resolved slot for one key. At most one entry ever
// exists per key per scope, which is what makes the at-most-one-fetch
// guarantee hold.
type entry struct {
	done chan struct{}
	val  any
	err  error
}

// resolved returns an entry that already holds val.
func resolved(val any) *entry {
	e := &entry{done: make(chan struct{}), val: val}
	close(e.done)
	return e
}

// resolve completes the entry and wakes every waiter.
func (e *entry) resolve(val any, err error) {
	e.val, e.err = val, err
	close(e.done)
}

// wait blocks until the entry is resolved or the caller's context is done.
func (e *entry) wait(ctx context.Context) (any, error) {
	select {
	case <-e.done:
		return e.val, e.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{entries: make(map[Key]*entry)}
}

// Close tears the scope down and discards its cache. In-flight fetches are
// left to complete, but their results are not reused: waiters already
// attached still receive them, while later loads on this scope fail with
// ErrScopeClosed.
func (s *Scope) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = nil
}

// Prime seeds the cache with a value already known through another path,
// for example an entity obtained from a list query. It never overwrites:
// the first writer for a key wins, preserving the at-most-one-fetch
// invariant. It reports whether the value was stored.
func (s *Scope) Prime(key Key, val any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if _, ok := s.entries[key]; ok {
		return false
	}
	s.entries[key] = resolved(val)
	return true
}

// Invalidate drops the resolved entry for key so that the next load fetches
// again. This is the only way a caller can retry a failed fetch within one
// scope. Pending entries are left alone: waiters are still attached to them.
// It reports whether an entry was dropped.
func (s *Scope) Invalidate(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	e, ok := s.entries[key]
	if !ok {
		return false
	}
	select {
	case <-e.done:
		delete(s.entries, key)
		return true
	default:
		return false
	}
}

// Len returns the number of cached entries. Mostly useful in tests.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// acquire returns the entry for key, creating it on a true miss. The second
// return value reports whether the caller owns resolution of the entry.
func (s *Scope) acquire(key Key) (*entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, chatql.ErrScopeClosed
	}
	if e, ok := s.entries[key]; ok {
		return e, false, nil
	}
	e := &entry{done: make(chan struct{})}
	s.entries[key] = e
	return e, true, nil
}

// ctxKey is the context key for storing the scope.
type ctxKey struct{}

// WithScope attaches the scope to the context. Resolvers running under the
// returned context share one cache for the duration of the operation.
func WithScope(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext extracts the scope from the context.
func FromContext(ctx context.Context) (*Scope, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Scope)
	return s, ok
}

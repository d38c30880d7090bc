package loader

import (
	"context"
	"sync"
	"time"

	"github.com/syssam/chatql"
)

// BatchFunc loads the values for a batch of keys in one physical call. The
// returned slices must be key-aligned: values[i] and errs[i] belong to
// keys[i]. Use OrderByKeys to realign an unordered store result. To fail the
// whole batch, return no values and a single error.
type BatchFunc[K comparable, V any] func(ctx context.Context, keys []K) ([]V, []error)

const (
	defaultWait     = time.Millisecond
	defaultMaxBatch = 100
)

// Option configures a Loader.
type Option func(*options)

type options struct {
	wait     time.Duration
	maxBatch int
}

// WithWait sets the collection window: keys requested within this window
// after the first miss are merged into one fetch.
func WithWait(d time.Duration) Option {
	return func(o *options) { o.wait = d }
}

// WithMaxBatch caps the number of keys merged into one fetch. A full batch
// dispatches immediately without waiting for the window to elapse.
func WithMaxBatch(n int) Option {
	return func(o *options) { o.maxBatch = n }
}

// Loader merges single-key loads into multi-key fetches. It owns no cache of
// its own: results live in the Scope attached to the caller's context, so a
// Loader can safely be shared between operations while their results stay
// isolated.
//
// Unlike the sequential path, no ordering is guaranteed among the keys of
// one batch - they travel in a single physical call.
type Loader[K comparable, V any] struct {
	kind  string
	fetch BatchFunc[K, V]
	opts  options

	mu  sync.Mutex
	cur *batch[K, V]
}

// batch is one in-progress collection of keys.
type batch[K comparable, V any] struct {
	keys       []K
	entries    []*entry
	dispatched bool
}

// NewLoader returns a batched loader for the given entity kind. The kind
// namespaces the keys in the scope cache, so loaders for different entities
// never collide.
func NewLoader[K comparable, V any](kind string, fetch BatchFunc[K, V], opts ...Option) *Loader[K, V] {
	o := options{wait: defaultWait, maxBatch: defaultMaxBatch}
	for _, opt := range opts {
		opt(&o)
	}
	return &Loader[K, V]{kind: kind, fetch: fetch, opts: o}
}

// Load resolves the value for key within the scope attached to ctx. A key
// already pending or resolved in the scope is never fetched again; a true
// miss joins the current batch and suspends until the batch completes. A key
// absent from the batch result resolves to a NotFoundError, never silently
// dropped.
func (l *Loader[K, V]) Load(ctx context.Context, key K) (V, error) {
	return l.loadThunk(ctx, key)()
}

// LoadMany registers all keys before waiting on any of them, so the whole
// set lands in as few batches as possible. Results are key-aligned.
func (l *Loader[K, V]) LoadMany(ctx context.Context, keys []K) ([]V, []error) {
	thunks := make([]func() (V, error), len(keys))
	for i, key := range keys {
		thunks[i] = l.loadThunk(ctx, key)
	}
	values := make([]V, len(keys))
	errs := make([]error, len(keys))
	for i, thunk := range thunks {
		values[i], errs[i] = thunk()
	}
	return values, errs
}

// Prime seeds the scope cache with a value already known through another
// path. The first writer for a key wins. It reports whether the value was
// stored.
func (l *Loader[K, V]) Prime(ctx context.Context, key K, val V) bool {
	s, ok := FromContext(ctx)
	if !ok {
		return false
	}
	k, err := Encode(Entity{Kind: l.kind, ID: key})
	if err != nil {
		return false
	}
	return s.Prime(k, val)
}

// loadThunk registers the key and returns a function that blocks until its
// value is available. Registration errors are captured in the thunk.
func (l *Loader[K, V]) loadThunk(ctx context.Context, key K) func() (V, error) {
	fail := func(err error) func() (V, error) {
		return func() (V, error) {
			var zero V
			return zero, err
		}
	}
	s, ok := FromContext(ctx)
	if !ok {
		return fail(chatql.ErrNoScope)
	}
	k, err := Encode(Entity{Kind: l.kind, ID: key})
	if err != nil {
		return fail(err)
	}
	e, owned, err := s.acquire(k)
	if err != nil {
		return fail(err)
	}
	if owned {
		l.enqueue(ctx, key, e)
	}
	return func() (V, error) {
		return waitFor[V](ctx, e)
	}
}

// enqueue adds the key to the current batch, starting a new one (and its
// collection timer) if none is open.
func (l *Loader[K, V]) enqueue(ctx context.Context, key K, e *entry) {
	l.mu.Lock()
	b := l.cur
	if b == nil {
		b = &batch[K, V]{}
		l.cur = b
		time.AfterFunc(l.opts.wait, func() { l.dispatch(ctx, b) })
	}
	b.keys = append(b.keys, key)
	b.entries = append(b.entries, e)
	full := len(b.keys) >= l.opts.maxBatch
	l.mu.Unlock()
	if full {
		l.dispatch(ctx, b)
	}
}

// dispatch executes one physical fetch for the batch and fans the results
// back out, one per key. It runs at most once per batch: the collection
// timer and the full-batch path race for it.
func (l *Loader[K, V]) dispatch(ctx context.Context, b *batch[K, V]) {
	l.mu.Lock()
	if b.dispatched {
		l.mu.Unlock()
		return
	}
	b.dispatched = true
	if l.cur == b {
		l.cur = nil
	}
	keys, entries := b.keys, b.entries
	l.mu.Unlock()

	// One batch can carry keys from several operations, so the fetch must
	// not die with whichever caller happened to open it.
	values, errs := l.fetch(context.WithoutCancel(ctx), keys)
	// A single error with no values fails the whole batch: every waiter
	// receives the same failure.
	if len(values) == 0 && len(errs) == 1 && errs[0] != nil {
		err := chatql.NewFetchError(l.kind, errs[0])
		for _, e := range entries {
			e.resolve(nil, err)
		}
		return
	}
	for i, e := range entries {
		var err error
		if i < len(errs) {
			err = errs[i]
		}
		if err != nil {
			e.resolve(nil, err)
			continue
		}
		// A batch function that returns fewer values than keys did not find
		// the tail keys.
		if i >= len(values) {
			e.resolve(nil, chatql.NewNotFoundErrorWithID(l.kind, keys[i]))
			continue
		}
		e.resolve(values[i], nil)
	}
}

// KeyFunc extracts a key from an entity.
type KeyFunc[K comparable, V any] func(V) K

// OrderByKeys reorders entities to match the order of requested keys, which
// is what a BatchFunc must return. A key with no matching entity yields a
// NotFoundError in its slot.
func OrderByKeys[K comparable, V any](kind string, keys []K, values []V, keyFn KeyFunc[K, V]) ([]V, []error) {
	lookup := make(map[K]V, len(values))
	for _, v := range values {
		lookup[keyFn(v)] = v
	}
	result := make([]V, len(keys))
	errs := make([]error, len(keys))
	for i, key := range keys {
		if v, ok := lookup[key]; ok {
			result[i] = v
		} else {
			errs[i] = chatql.NewNotFoundErrorWithID(kind, key)
		}
	}
	return result, errs
}

// GroupByKey groups entities by a key function. Useful for one-to-many
// fetches where several entities share one parent key.
func GroupByKey[K comparable, V any](values []V, keyFn KeyFunc[K, V]) map[K][]V {
	result := make(map[K][]V)
	for _, v := range values {
		key := keyFn(v)
		result[key] = append(result[key], v)
	}
	return result
}

// OrderGroupsByKeys reorders grouped entities to match the order of
// requested keys. A key with no group yields an empty slice, not an error.
func OrderGroupsByKeys[K comparable, V any](keys []K, groups map[K][]V) [][]V {
	result := make([][]V, len(keys))
	for i, key := range keys {
		result[i] = groups[key]
	}
	return result
}

package loader

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/chatql"
)

func scopedContext(t *testing.T) context.Context {
	t.Helper()
	scope := NewScope()
	t.Cleanup(scope.Close)
	return WithScope(context.Background(), scope)
}

func TestLoadDeduplicates(t *testing.T) {
	t.Parallel()
	ctx := scopedContext(t)

	var fetches atomic.Int32
	fetch := func(ctx context.Context) (string, error) {
		fetches.Add(1)
		return "value", nil
	}

	// N concurrent callers for the identical key: the fetcher runs exactly
	// once and all callers receive the identical result.
	const n = 32
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			v, err := Load(gctx, Key("current-user"), fetch)
			if err != nil {
				return err
			}
			if v != "value" {
				return errors.New("unexpected value")
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), fetches.Load())
}

func TestLoadDistinctKeys(t *testing.T) {
	t.Parallel()
	ctx := scopedContext(t)

	var fetches atomic.Int32
	fetch := func(ctx context.Context) (int, error) {
		return int(fetches.Add(1)), nil
	}

	a, err := Load(ctx, Key("a"), fetch)
	require.NoError(t, err)
	b, err := Load(ctx, Key("b"), fetch)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Equal(t, int32(2), fetches.Load())
}

func TestLoadFailurePropagates(t *testing.T) {
	t.Parallel()
	ctx := scopedContext(t)

	boom := errors.New("store down")
	var fetches atomic.Int32
	fetch := func(ctx context.Context) (string, error) {
		fetches.Add(1)
		return "", boom
	}

	const n = 8
	g := new(errgroup.Group)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := Load(ctx, Key("k"), fetch)
			if !errors.Is(err, boom) {
				return errors.New("expected the original failure")
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), fetches.Load())

	// A later caller within the same scope still sees the same failure, and
	// no silent retry happens.
	_, err := Load(ctx, Key("k"), fetch)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), fetches.Load())
}

func TestInvalidateAllowsRetry(t *testing.T) {
	t.Parallel()
	scope := NewScope()
	defer scope.Close()
	ctx := WithScope(context.Background(), scope)

	boom := errors.New("transient")
	var fetches atomic.Int32
	failing := func(ctx context.Context) (string, error) {
		fetches.Add(1)
		return "", boom
	}
	_, err := Load(ctx, Key("k"), failing)
	require.ErrorIs(t, err, boom)

	require.True(t, scope.Invalidate(Key("k")))
	v, err := Load(ctx, Key("k"), func(ctx context.Context) (string, error) {
		fetches.Add(1)
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", v)
	assert.Equal(t, int32(2), fetches.Load())

	// Absent keys do not invalidate.
	assert.False(t, scope.Invalidate(Key("missing")))
}

func TestPrimeFirstWriterWins(t *testing.T) {
	t.Parallel()
	scope := NewScope()
	defer scope.Close()
	ctx := WithScope(context.Background(), scope)

	require.True(t, scope.Prime(Key("k"), "seeded"))
	assert.False(t, scope.Prime(Key("k"), "second"), "prime must not overwrite")

	var fetches atomic.Int32
	v, err := Load(ctx, Key("k"), func(ctx context.Context) (string, error) {
		fetches.Add(1)
		return "fetched", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "seeded", v)
	assert.Equal(t, int32(0), fetches.Load(), "primed key must not fetch")

	primed, ok := GetPrimed[string](ctx, Key("k"))
	require.True(t, ok)
	assert.Equal(t, "seeded", primed)
}

func TestScopeTeardown(t *testing.T) {
	t.Parallel()

	var fetches atomic.Int32
	fetch := func(ctx context.Context) (string, error) {
		fetches.Add(1)
		return "v", nil
	}

	first := NewScope()
	ctx := WithScope(context.Background(), first)
	_, err := Load(ctx, Key("k"), fetch)
	require.NoError(t, err)
	first.Close()

	// A load against the closed scope fails.
	_, err = Load(ctx, Key("k"), fetch)
	assert.ErrorIs(t, err, chatql.ErrScopeClosed)
	assert.False(t, first.Prime(Key("k"), "v"))
	assert.False(t, first.Invalidate(Key("k")))

	// A new scope for the same key triggers a fresh physical fetch: nothing
	// leaks across scopes.
	second := NewScope()
	defer second.Close()
	_, err = Load(WithScope(context.Background(), second), Key("k"), fetch)
	require.NoError(t, err)
	assert.Equal(t, int32(2), fetches.Load())
}

func TestLoadWithoutScope(t *testing.T) {
	t.Parallel()
	_, err := Load(context.Background(), Key("k"), func(ctx context.Context) (string, error) {
		return "", nil
	})
	assert.ErrorIs(t, err, chatql.ErrNoScope)
}

func TestScopeIsolation(t *testing.T) {
	t.Parallel()

	var fetches atomic.Int32
	fetch := func(ctx context.Context) (int, error) {
		return int(fetches.Add(1)), nil
	}

	a := NewScope()
	defer a.Close()
	b := NewScope()
	defer b.Close()

	va, err := Load(WithScope(context.Background(), a), Key("k"), fetch)
	require.NoError(t, err)
	vb, err := Load(WithScope(context.Background(), b), Key("k"), fetch)
	require.NoError(t, err)
	assert.NotEqual(t, va, vb, "scopes must not share cached results")
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 1, b.Len())
}

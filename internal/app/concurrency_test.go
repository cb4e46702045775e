package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/reqctx"
)

func TestParallel(t *testing.T) {
	ctx := context.Background()

	results, err := Parallel(ctx,
		func(_ context.Context) (int, error) { return 1, nil },
		func(_ context.Context) (int, error) { return 2, nil },
		func(_ context.Context) (int, error) { return 3, nil },
	)

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, results)
}

func TestParallel_Error(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	results, err := Parallel(ctx,
		func(_ context.Context) (int, error) { return 1, nil },
		func(_ context.Context) (int, error) { return 0, boom },
	)

	require.Error(t, err)
	require.ErrorIs(t, err, boom)
	assert.Nil(t, results)
}

func TestParallel_NoFunctions(t *testing.T) {
	results, err := Parallel[int](context.Background())

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestParallel_PropagatesRequestContext(t *testing.T) {
	scope := reqctx.NewScope()
	defer scope.Restore()

	parent := reqctx.Get()
	parent.SetData(DataKeyRequestID, NewStringData("par-1"))

	results, err := Parallel(context.Background(),
		func(_ context.Context) (bool, error) { return reqctx.Get() == parent, nil },
		func(_ context.Context) (bool, error) { return reqctx.Get() == parent, nil },
		func(_ context.Context) (bool, error) {
			return StringFromContext(reqctx.Get(), DataKeyRequestID) == "par-1", nil
		},
	)

	require.NoError(t, err)
	for i, saw := range results {
		assert.True(t, saw, "worker %d should observe the caller's context", i)
	}
}

func TestParallelLimit(t *testing.T) {
	ctx := context.Background()

	var current, peak atomic.Int32

	fns := make([]func(context.Context) (int, error), 8)
	for i := range fns {
		fns[i] = func(_ context.Context) (int, error) {
			n := current.Add(1)
			defer current.Add(-1)

			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}

			return i, nil
		}
	}

	results, err := ParallelLimit(ctx, 2, fns...)

	require.NoError(t, err)
	assert.Len(t, results, 8)
	assert.LessOrEqual(t, peak.Load(), int32(2), "no more than limit workers should run at once")

	for i, r := range results {
		assert.Equal(t, i, r)
	}
}

func TestParallelLimit_PropagatesRequestContext(t *testing.T) {
	scope := reqctx.NewScope()
	defer scope.Restore()

	parent := reqctx.Get()

	results, err := ParallelLimit(context.Background(), 1,
		func(_ context.Context) (bool, error) { return reqctx.Get() == parent, nil },
		func(_ context.Context) (bool, error) { return reqctx.Get() == parent, nil },
	)

	require.NoError(t, err)
	assert.Equal(t, []bool{true, true}, results)
}

func TestFanOut(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	var mu sync.Mutex
	seen := make(map[int]struct{})

	err := FanOut(context.Background(), 3, items, func(_ context.Context, item int) error {
		mu.Lock()
		defer mu.Unlock()
		seen[item] = struct{}{}

		return nil
	})

	require.NoError(t, err)
	assert.Len(t, seen, len(items))
}

func TestFanOut_Error(t *testing.T) {
	boom := errors.New("boom")

	err := FanOut(context.Background(), 2, []int{1, 2, 3}, func(_ context.Context, item int) error {
		if item == 2 {
			return boom
		}

		return nil
	})

	require.Error(t, err)
	require.ErrorIs(t, err, boom)
}

func TestFanOut_NoItems(t *testing.T) {
	err := FanOut(context.Background(), 2, nil, func(_ context.Context, _ int) error {
		return errors.New("should not be called")
	})

	require.NoError(t, err)
}

func TestFanOut_PropagatesRequestContext(t *testing.T) {
	scope := reqctx.NewScope()
	defer scope.Restore()

	parent := reqctx.Get()

	var mismatches atomic.Int32

	err := FanOut(context.Background(), 3, []int{1, 2, 3, 4, 5, 6}, func(_ context.Context, _ int) error {
		if reqctx.Get() != parent {
			mismatches.Add(1)
		}

		return nil
	})

	require.NoError(t, err)
	assert.Zero(t, mismatches.Load(), "every worker should observe the caller's context")
}

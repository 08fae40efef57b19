package cachutil

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_Get(t *testing.T) {
	var loads atomic.Int32
	c := New[string](time.Minute, func(ctx context.Context, key string) (string, error) {
		loads.Add(1)
		return "value-" + key, nil
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		v, err := c.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "value-a", v)
	}
	assert.EqualValues(t, 1, loads.Load())
	assert.Equal(t, 1, c.Len())
}

func TestCache_ErrorsNotCached(t *testing.T) {
	fail := true
	c := New[int](time.Minute, func(ctx context.Context, key string) (int, error) {
		if fail {
			return 0, errors.New("unreachable")
		}
		return 42, nil
	})
	_, err := c.Get(context.Background(), "srv")
	require.Error(t, err)
	assert.Zero(t, c.Len())

	fail = false
	v, err := c.Get(context.Background(), "srv")
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestCache_ZeroTTL(t *testing.T) {
	var loads atomic.Int32
	c := New[int](0, func(ctx context.Context, key string) (int, error) {
		return int(loads.Add(1)), nil
	})
	v1, _ := c.Get(context.Background(), "k")
	v2, _ := c.Get(context.Background(), "k")
	assert.Equal(t, 1, v1)
	assert.Equal(t, 2, v2)
	assert.Zero(t, c.Len())
}

func TestCache_SuppressesConcurrentLoads(t *testing.T) {
	var loads atomic.Int32
	release := make(chan struct{})
	c := New[int](0, func(ctx context.Context, key string) (int, error) {
		loads.Add(1)
		<-release
		return 7, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Get(context.Background(), "k")
			assert.NoError(t, err)
			assert.Equal(t, 7, v)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.EqualValues(t, 1, loads.Load())
}

func TestCache_CanceledCallerDoesNotFailOthers(t *testing.T) {
	var loads atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	c := New[int](time.Minute, func(ctx context.Context, key string) (int, error) {
		loads.Add(1)
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return 7, nil
	})

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Get(first, "k")
		firstErr <- err
	}()
	<-started

	type result struct {
		v   int
		err error
	}
	second := make(chan result, 1)
	go func() {
		v, err := c.Get(context.Background(), "k")
		second <- result{v, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, 7, res.v)
	assert.EqualValues(t, 1, loads.Load())

	// The load completed and was cached despite the first caller leaving.
	v, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.EqualValues(t, 1, loads.Load())
}

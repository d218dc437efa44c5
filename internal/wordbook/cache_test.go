package wordbook

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache(t *testing.T) {
	t.Run("ttl", func(t *testing.T) {
		clk := newManualClock()
		c := NewCache(clk, time.Minute)
		c.Set("k", 1)

		clk.Advance(59 * time.Second)
		v, ok := c.Get("k")
		require.True(t, ok)
		assert.Equal(t, 1, v)

		clk.Advance(time.Second)
		_, ok = c.Get("k")
		assert.False(t, ok, "an entry is stale once the ttl has fully elapsed")
		assert.Equal(t, 0, c.Stats().Entries)
	})

	t.Run("defaults", func(t *testing.T) {
		c := NewCache(nil, 0)
		assert.Equal(t, DefaultTTL, c.TTL())
	})

	t.Run("invalidate", func(t *testing.T) {
		c := NewCache(newManualClock(), time.Minute)
		c.Set("a", 1)
		c.Set("b", 2)
		c.Invalidate("a")
		_, ok := c.Get("a")
		assert.False(t, ok)
		_, ok = c.Get("b")
		assert.True(t, ok)

		c.Flush()
		_, ok = c.Get("b")
		assert.False(t, ok)
	})
}

func TestMemo(t *testing.T) {
	ctx := t.Context()

	t.Run("hit and expiry", func(t *testing.T) {
		clk := newManualClock()
		c := NewCache(clk, time.Minute)
		var calls atomic.Int32
		fill := func(context.Context) (int, error) {
			return int(calls.Add(1)), nil
		}
		for range 3 {
			v, err := Memo(ctx, c, "k", fill)
			require.NoError(t, err)
			assert.Equal(t, 1, v)
		}
		clk.Advance(time.Minute)
		v, err := Memo(ctx, c, "k", fill)
		require.NoError(t, err)
		assert.Equal(t, 2, v)
		assert.Equal(t, CacheStats{Hits: 2, Misses: 2, Entries: 1}, c.Stats())
	})

	t.Run("errors are not cached", func(t *testing.T) {
		c := NewCache(newManualClock(), time.Minute)
		boom := errors.New("boom")
		_, err := Memo(ctx, c, "k", func(context.Context) (string, error) { return "", boom })
		require.ErrorIs(t, err, boom)
		v, err := Memo(ctx, c, "k", func(context.Context) (string, error) { return "ok", nil })
		require.NoError(t, err)
		assert.Equal(t, "ok", v)
	})

	t.Run("fill raced by invalidation is discarded", func(t *testing.T) {
		c := NewCache(newManualClock(), time.Minute)
		v, err := Memo(ctx, c, "words", func(context.Context) (string, error) {
			c.Invalidate("words")
			return "stale", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "stale", v, "the caller still gets its result")
		_, ok := c.Get("words")
		assert.False(t, ok)
	})

	t.Run("type mismatch refills", func(t *testing.T) {
		c := NewCache(newManualClock(), time.Minute)
		c.Set("k", "text")
		v, err := Memo(ctx, c, "k", func(context.Context) (int, error) { return 7, nil })
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	})
}

func TestResource(t *testing.T) {
	var calls int
	r := NewResource(func() (*int, error) {
		calls++
		return &calls, nil
	})
	a, err := r.Get()
	require.NoError(t, err)
	b, err := r.Get()
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, calls)

	failing := NewResource(func() (int, error) { return 0, errors.New("no token") })
	_, err = failing.Get()
	require.Error(t, err)
}

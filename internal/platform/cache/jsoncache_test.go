package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestCache(t *testing.T) (*JSONCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewJSONCache(client, time.Minute), mr
}

func TestJSONCache_FetchJSON(t *testing.T) {
	ctx := context.Background()

	t.Run("miss populates and caches", func(t *testing.T) {
		c, mr := newTestCache(t)
		calls := 0
		loader := func(ctx context.Context) (any, error) {
			calls++
			return payload{Name: "summary", Count: 3}, nil
		}

		var got payload
		require.NoError(t, c.FetchJSON(ctx, "reports:test", &got, loader))
		assert.Equal(t, payload{Name: "summary", Count: 3}, got)
		assert.Equal(t, 1, calls)
		assert.True(t, mr.Exists("reports:test"))

		var again payload
		require.NoError(t, c.FetchJSON(ctx, "reports:test", &again, loader))
		assert.Equal(t, got, again)
		assert.Equal(t, 1, calls, "second fetch must hit the cache")
	})

	t.Run("loader error propagates and nothing is cached", func(t *testing.T) {
		c, mr := newTestCache(t)
		loader := func(ctx context.Context) (any, error) {
			return nil, errors.New("boom")
		}

		var got payload
		err := c.FetchJSON(ctx, "reports:bad", &got, loader)
		assert.Error(t, err)
		assert.False(t, mr.Exists("reports:bad"))
	})

	t.Run("nil client degrades to pass-through", func(t *testing.T) {
		c := NewJSONCache(nil, time.Minute)
		var got payload
		err := c.FetchJSON(ctx, "whatever", &got, func(ctx context.Context) (any, error) {
			return payload{Name: "direct", Count: 1}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "direct", got.Name)
	})
}

func TestJSONCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	var got payload
	require.NoError(t, c.FetchJSON(ctx, "key", &got, func(ctx context.Context) (any, error) {
		return payload{Name: "x"}, nil
	}))
	require.True(t, mr.Exists("key"))

	require.NoError(t, c.Invalidate(ctx, "key"))
	assert.False(t, mr.Exists("key"))
}

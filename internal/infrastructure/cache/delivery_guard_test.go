package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erp/bankfeed/internal/infrastructure/config"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("second acquire of a held key fails", func(t *testing.T) {
		g := NewInMemoryGuard()
		defer g.Close()

		token, ok, err := g.Acquire(ctx, "tx-1", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NotEmpty(t, token)

		token, ok, err = g.Acquire(ctx, "tx-1", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, token)

		_, ok, err = g.Acquire(ctx, "tx-2", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("release frees the key", func(t *testing.T) {
		g := NewInMemoryGuard()
		defer g.Close()

		token, _, _ := g.Acquire(ctx, "tx-1", time.Minute)
		require.NoError(t, g.Release(ctx, "tx-1", token))

		_, ok, err := g.Acquire(ctx, "tx-1", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("release with a foreign token keeps the hold", func(t *testing.T) {
		g := NewInMemoryGuard()
		defer g.Close()

		_, ok, _ := g.Acquire(ctx, "tx-1", time.Minute)
		require.True(t, ok)
		require.NoError(t, g.Release(ctx, "tx-1", "someone-else"))

		_, ok, err := g.Acquire(ctx, "tx-1", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("lapsed holder cannot free its successor", func(t *testing.T) {
		g := NewInMemoryGuard()
		defer g.Close()
		now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
		g.now = func() time.Time { return now }

		first, ok, _ := g.Acquire(ctx, "tx-1", 30*time.Second)
		require.True(t, ok)

		now = now.Add(31 * time.Second)
		second, ok, _ := g.Acquire(ctx, "tx-1", 30*time.Second)
		require.True(t, ok)
		require.NotEqual(t, first, second)

		require.NoError(t, g.Release(ctx, "tx-1", first))
		_, ok, _ = g.Acquire(ctx, "tx-1", 30*time.Second)
		assert.False(t, ok, "successor's hold survives the late release")

		require.NoError(t, g.Release(ctx, "tx-1", second))
		assert.Equal(t, 0, g.Size())
	})

	t.Run("expired holds can be retaken and are swept", func(t *testing.T) {
		g := NewInMemoryGuard()
		defer g.Close()
		now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
		g.now = func() time.Time { return now }

		_, ok, _ := g.Acquire(ctx, "tx-1", 30*time.Second)
		require.True(t, ok)

		now = now.Add(31 * time.Second)
		_, ok, _ = g.Acquire(ctx, "tx-1", 30*time.Second)
		assert.True(t, ok)

		now = now.Add(time.Minute)
		g.sweep()
		assert.Equal(t, 0, g.Size())
	})

	t.Run("exactly one concurrent caller wins", func(t *testing.T) {
		g := NewInMemoryGuard()
		defer g.Close()

		var wins int32
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, ok, _ := g.Acquire(ctx, "tx-race", time.Minute); ok {
					atomic.AddInt32(&wins, 1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		g := NewInMemoryGuard()
		assert.NoError(t, g.Close())
		assert.NoError(t, g.Close())
	})
}

func TestNoopGuard(t *testing.T) {
	var g NoopGuard
	for i := 0; i < 2; i++ {
		_, ok, err := g.Acquire(context.Background(), "k", time.Second)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.NoError(t, g.Release(context.Background(), "k", ""))
}

// sequentialTokens makes the per-acquire tokens predictable for redismock
func sequentialTokens(g *RedisGuard) {
	var n int
	g.newToken = func() string {
		n++
		return fmt.Sprintf("token-%d", n)
	}
}

func TestRedisGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("acquire uses SETNX with a fresh token per hold", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		g := NewRedisGuard(client, "")
		sequentialTokens(g)

		mock.ExpectSetNX("bankfeed:delivery:tx-1", "token-1", 30*time.Second).SetVal(true)
		mock.ExpectSetNX("bankfeed:delivery:tx-1", "token-2", 30*time.Second).SetVal(false)

		token, ok, err := g.Acquire(ctx, "tx-1", 30*time.Second)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "token-1", token)

		token, ok, err = g.Acquire(ctx, "tx-1", 30*time.Second)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, token)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("acquire reports redis errors", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		g := NewRedisGuard(client, "p:")
		sequentialTokens(g)

		mock.ExpectSetNX("p:tx-1", "token-1", time.Second).SetErr(assert.AnError)

		_, ok, err := g.Acquire(ctx, "tx-1", time.Second)
		assert.False(t, ok)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("release compares the hold's own token", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		g := NewRedisGuard(client, "")
		sequentialTokens(g)

		mock.ExpectSetNX("bankfeed:delivery:tx-1", "token-1", time.Second).SetVal(true)
		mock.ExpectEvalSha(releaseScript.Hash(), []string{"bankfeed:delivery:tx-1"}, "token-1").SetVal(int64(1))

		token, ok, err := g.Acquire(ctx, "tx-1", time.Second)
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, g.Release(ctx, "tx-1", token))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lapsed holder's release leaves the successor alone", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		g := NewRedisGuard(client, "")
		sequentialTokens(g)

		// token-1 expired in redis and token-2 now owns the key; the script
		// sees a mismatch and deletes nothing
		mock.ExpectSetNX("bankfeed:delivery:tx-1", "token-1", time.Second).SetVal(true)
		mock.ExpectSetNX("bankfeed:delivery:tx-1", "token-2", time.Second).SetVal(true)
		mock.ExpectEvalSha(releaseScript.Hash(), []string{"bankfeed:delivery:tx-1"}, "token-1").SetVal(int64(0))

		first, _, err := g.Acquire(ctx, "tx-1", time.Second)
		require.NoError(t, err)
		second, _, err := g.Acquire(ctx, "tx-1", time.Second)
		require.NoError(t, err)
		require.NotEqual(t, first, second)

		require.NoError(t, g.Release(ctx, "tx-1", first))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("default tokens are unique per acquire", func(t *testing.T) {
		client, _ := redismock.NewClientMock()
		g := NewRedisGuard(client, "")
		assert.NotEqual(t, g.newToken(), g.newToken())
	})
}

func TestNewDeliveryGuard(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		g, closer, err := NewDeliveryGuard("none", config.RedisConfig{})
		require.NoError(t, err)
		assert.IsType(t, NoopGuard{}, g)
		assert.NoError(t, closer.Close())
	})

	t.Run("memory", func(t *testing.T) {
		g, closer, err := NewDeliveryGuard("memory", config.RedisConfig{})
		require.NoError(t, err)
		assert.IsType(t, &InMemoryGuard{}, g)
		assert.NoError(t, closer.Close())
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, _, err := NewDeliveryGuard("etcd", config.RedisConfig{})
		assert.Error(t, err)
	})

	unreachable := config.RedisConfig{Host: "127.0.0.1", Port: 1}

	t.Run("unreachable redis falls back to memory", func(t *testing.T) {
		g, closer, err := NewDeliveryGuard("redis", unreachable)
		require.NoError(t, err)
		defer closer.Close()
		assert.IsType(t, &InMemoryGuard{}, g)
	})

	t.Run("unreachable redis fails without fallback", func(t *testing.T) {
		_, _, err := NewDeliveryGuard("redis", unreachable, WithInMemoryFallback(false))
		assert.ErrorContains(t, err, "unavailable")
	})
}

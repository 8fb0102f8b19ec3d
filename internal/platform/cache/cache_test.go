package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

type payload struct {
	Total string `json:"total"`
}

func TestVersionedFetchAndBump(t *testing.T) {
	_, client := newTestClient(t)
	c := NewVersioned(client, time.Minute)
	ctx := context.Background()

	var calls int32
	loader := func(context.Context) (any, error) {
		n := atomic.AddInt32(&calls, 1)
		return payload{Total: string(rune('0' + n))}, nil
	}

	key, err := c.BuildKey(ctx, "reports", "tb", "2025-04-01", "2025-04-30")
	require.NoError(t, err)
	require.Equal(t, "reports:tb:2025-04-01:2025-04-30:v1", key)

	var got payload
	require.NoError(t, c.FetchJSON(ctx, key, &got, loader))
	require.NoError(t, c.FetchJSON(ctx, key, &got, loader))
	require.Equal(t, int32(1), calls)
	require.Equal(t, "1", got.Total)

	require.NoError(t, c.Bump(ctx))
	key, err = c.BuildKey(ctx, "reports", "tb", "2025-04-01", "2025-04-30")
	require.NoError(t, err)
	require.Equal(t, "reports:tb:2025-04-01:2025-04-30:v2", key)
	require.NoError(t, c.FetchJSON(ctx, key, &got, loader))
	require.Equal(t, "2", got.Total)
}

func TestVersionedCollapsesConcurrentMisses(t *testing.T) {
	_, client := newTestClient(t)
	c := NewVersioned(client, time.Minute)
	ctx := context.Background()

	var calls int32
	release := make(chan struct{})
	loader := func(context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return payload{Total: "42"}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var got payload
			assert.NoError(t, c.FetchJSON(ctx, "reports:slow:v1", &got, loader))
			assert.Equal(t, "42", got.Total)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	require.LessOrEqual(t, atomic.LoadInt32(&calls), int32(2))
}

func TestVersionedWithoutClientCallsLoader(t *testing.T) {
	var c *Versioned
	var got payload
	err := c.FetchJSON(context.Background(), "k", &got, func(context.Context) (any, error) {
		return payload{Total: "7"}, nil
	})
	require.NoError(t, err)
	require.Equal(t, "7", got.Total)
	require.NoError(t, c.Bump(context.Background()))
}

func TestLockerExclusive(t *testing.T) {
	mr, client := newTestClient(t)
	locker := NewLocker(client)
	ctx := context.Background()

	release, ok, err := locker.TryLock(ctx, "ledger:recalc:all:lock", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.TryLock(ctx, "ledger:recalc:all:lock", time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	release()
	require.False(t, mr.Exists("ledger:recalc:all:lock"))

	_, ok, err = locker.TryLock(ctx, "ledger:recalc:all:lock", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
}

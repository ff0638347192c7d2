package cache

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yarey/backend/internal/domain"
	"yarey/backend/internal/loyalty"
)

func TestNoopLoyaltyCacheAlwaysMisses(t *testing.T) {
	c := NoopLoyaltyCache{}
	require.NoError(t, c.Set(context.Background(), "a@x.com", &loyalty.Summary{}, time.Minute))

	got, ok, err := c.Get(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.NoError(t, c.Delete(context.Background(), "a@x.com"))
}

func TestNoopLockerAlwaysGrants(t *testing.T) {
	release, err := NoopLocker{}.Obtain(context.Background(), SyncLockKey, time.Second)
	require.NoError(t, err)
	assert.NoError(t, release(context.Background()))
}

func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("YAREY_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set YAREY_TEST_REDIS_ADDR to run redis integration test")
	}

	ctx := context.Background()
	client := NewRedisClient(addr, "", 0)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())

	c := NewRedisLoyaltyCache(client)
	clientID := "it-" + time.Now().Format("150405.000000")
	summary := &loyalty.Summary{Client: domain.Client{ID: clientID}, Spend: domain.AmountFromInt(4500), Hours: 2}
	require.NoError(t, c.Set(ctx, clientID, summary, time.Minute))

	got, ok, err := c.Get(ctx, clientID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Spend.Equal(domain.AmountFromInt(4500)))

	require.NoError(t, c.Delete(ctx, clientID))
	_, ok, err = c.Get(ctx, clientID)
	require.NoError(t, err)
	assert.False(t, ok)

	locker := NewRedisLocker(client)
	key := "lock:it-" + clientID
	release, err := locker.Obtain(ctx, key, 5*time.Second)
	require.NoError(t, err)
	_, err = locker.Obtain(ctx, key, 5*time.Second)
	assert.ErrorIs(t, err, ErrLocked)
	require.NoError(t, release(ctx))
}

func TestKeepAliveRefreshesUntilStopped(t *testing.T) {
	var calls atomic.Int32
	stop := keepAlive("lock:test", 40*time.Millisecond, func(context.Context) error {
		calls.Add(1)
		return nil
	})
	time.Sleep(110 * time.Millisecond)
	stop()
	stop()

	n := calls.Load()
	assert.GreaterOrEqual(t, n, int32(2))
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, n, calls.Load(), "no refresh after stop")
}

func TestKeepAliveGivesUpAfterFailedRefresh(t *testing.T) {
	var calls atomic.Int32
	stop := keepAlive("lock:test", 20*time.Millisecond, func(context.Context) error {
		calls.Add(1)
		return errors.New("lock not held")
	})
	time.Sleep(80 * time.Millisecond)
	stop()
	assert.Equal(t, int32(1), calls.Load())
}

func TestRedisLockOutlivesTTL(t *testing.T) {
	addr := os.Getenv("YAREY_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set YAREY_TEST_REDIS_ADDR to run redis integration test")
	}

	ctx := context.Background()
	client := NewRedisClient(addr, "", 0)
	t.Cleanup(func() { _ = client.Close() })

	locker := NewRedisLocker(client)
	key := "lock:it-ttl-" + time.Now().Format("150405.000000")
	release, err := locker.Obtain(ctx, key, 300*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(time.Second)
	_, err = locker.Obtain(ctx, key, 300*time.Millisecond)
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, release(ctx))
	again, err := locker.Obtain(ctx, key, time.Second)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

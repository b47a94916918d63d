package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisLocker(t *testing.T, ttl time.Duration) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client, ttl), mr
}

func TestRedisLocker_secondLockWaitsForRelease(t *testing.T) {
	l, _ := newTestRedisLocker(t, 5*time.Second)
	ctx := context.Background()

	release, err := l.Lock(ctx, "golden-age")
	require.NoError(t, err)

	acquired := make(chan func(), 1)
	go func() {
		r, err := l.Lock(ctx, "golden-age")
		if !assert.NoError(t, err) {
			close(acquired)
			return
		}
		acquired <- r
	}()

	select {
	case <-acquired:
		t.Fatal("second Lock returned while the key was held")
	case <-time.After(400 * time.Millisecond):
	}

	release()
	select {
	case r, ok := <-acquired:
		require.True(t, ok)
		r()
	case <-time.After(2 * time.Second):
		t.Fatal("second Lock did not acquire after release")
	}
}

func TestRedisLocker_busyAfterMaxWait(t *testing.T) {
	l, _ := newTestRedisLocker(t, 300*time.Millisecond)
	ctx := context.Background()

	release, err := l.Lock(ctx, "golden-age")
	require.NoError(t, err)
	defer release()

	start := time.Now()
	_, err = l.Lock(ctx, "golden-age")
	assert.ErrorIs(t, err, ErrBusy)
	assert.GreaterOrEqual(t, time.Since(start), 300*time.Millisecond)

	other, err := l.Lock(ctx, "the-attic")
	require.NoError(t, err)
	other()
}

func TestRedisLocker_contextCancel(t *testing.T) {
	l, _ := newTestRedisLocker(t, 5*time.Second)

	release, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRedisLocker_releaseOnlyOwnToken(t *testing.T) {
	l, mr := newTestRedisLocker(t, time.Minute)
	ctx := context.Background()

	token, ok, err := l.TryLock(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.TryLock(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.Release(ctx, "a", "someone-else"))
	got, err := mr.Get(keyPrefix + "a")
	require.NoError(t, err)
	assert.Equal(t, token, got)

	require.NoError(t, l.Release(ctx, "a", token))
	assert.False(t, mr.Exists(keyPrefix+"a"))
}

func TestRedisLocker_expiredHolderFreesKey(t *testing.T) {
	l, mr := newTestRedisLocker(t, time.Minute)
	ctx := context.Background()

	_, ok, err := l.TryLock(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.Minute, mr.TTL(keyPrefix+"a"))

	mr.FastForward(time.Minute)
	_, ok, err = l.TryLock(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
}

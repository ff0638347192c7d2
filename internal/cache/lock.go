package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bsm/redislock"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrLocked is returned when another holder owns the lock.
var ErrLocked = errors.New("lock is held by another process")

const SyncLockKey = "lock:client-sync"

// Locker hands out short-lived exclusive locks. The returned release func
// must be called once the guarded work is done.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error)
}

type NoopLocker struct{}

func (NoopLocker) Obtain(_ context.Context, _ string, _ time.Duration) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}

type RedisLocker struct {
	client *redislock.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: redislock.New(client)}
}

// Obtain takes the lock and keeps extending it every ttl/2 until release,
// so long-running work stays exclusive.
func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	lock, err := l.client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLocked
	}
	if err != nil {
		return nil, err
	}

	stop := keepAlive(key, ttl, func(ctx context.Context) error {
		return lock.Refresh(ctx, ttl, nil)
	})
	return func(ctx context.Context) error {
		stop()
		err := lock.Release(ctx)
		if errors.Is(err, redislock.ErrLockNotHeld) {
			log.Warn().Str("key", key).Msg("[cache] lock expired before release; exclusivity was lost")
			return nil
		}
		return err
	}, nil
}

// keepAlive calls refresh every ttl/2 until the returned stop func is called
// or a refresh fails. stop waits for the loop to exit.
func keepAlive(key string, ttl time.Duration, refresh func(context.Context) error) func() {
	interval := ttl / 2
	if interval <= 0 {
		interval = time.Second
	}

	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), interval)
				err := refresh(ctx)
				cancel()
				if err != nil {
					log.Warn().Err(err).Str("key", key).Msg("[cache] failed to extend lock")
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
		<-exited
	}
}

package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

const (
	defaultTTL   = 5 * time.Minute
	pollInterval = 250 * time.Millisecond
	keyPrefix    = "vintagefeed:sync:"
)

// RedisLocker shares store locks between scheduler replicas. The TTL bounds
// how long a crashed holder can block others.
type RedisLocker struct {
	client  *redis.Client
	script  *redis.Script
	ttl     time.Duration
	maxWait time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisLocker{
		client:  client,
		script:  redis.NewScript(releaseScript),
		ttl:     ttl,
		maxWait: ttl,
	}
}

// TryLock makes a single SET NX attempt.
func (l *RedisLocker) TryLock(ctx context.Context, key string) (string, bool, error) {
	if l == nil || l.client == nil {
		return "", false, errors.New("lock client not configured")
	}
	if key == "" {
		return "", false, errors.New("lock key is empty")
	}
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, keyPrefix+key, token, l.ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

func (l *RedisLocker) Release(ctx context.Context, key, token string) error {
	if l == nil || l.client == nil || key == "" || token == "" {
		return nil
	}
	return l.script.Run(ctx, l.client, []string{keyPrefix + key}, token).Err()
}

// Lock polls until the key is free, ctx ends, or the wait exceeds the TTL.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	deadline := time.Now().Add(l.maxWait)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		token, ok, err := l.TryLock(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			var once sync.Once
			return func() {
				once.Do(func() {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = l.Release(ctx, key, token)
				})
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrBusy
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

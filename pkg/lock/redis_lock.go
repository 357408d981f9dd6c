package lock

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLock implements the lock with SET NX so concurrent instances agree on
// a single ingestion owner. The TTL bounds how long a crashed run can block
// the next one.
type RedisLock struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLock(client *redis.Client, ttl time.Duration) *RedisLock {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &RedisLock{
		client: client,
		ttl:    ttl,
	}
}

func (l *RedisLock) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := l.client.SetNX(ctx, key, "1", l.ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (l *RedisLock) Release(ctx context.Context, key string) error {
	return l.client.Del(ctx, key).Err()
}

func (l *RedisLock) Held(ctx context.Context, key string) (bool, error) {
	n, err := l.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

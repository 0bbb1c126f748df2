package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter shares attempt counters across processes.
type RedisLimiter struct {
	rdb *redis.Client
}

func NewRedisLimiter(rdb *redis.Client) *RedisLimiter {
	return &RedisLimiter{rdb: rdb}
}

func counterKey(key string) string { return fmt.Sprintf("ratelimit:%s", key) }

func (l *RedisLimiter) TooManyAttempts(ctx context.Context, key string, max int) (bool, error) {
	n, err := l.rdb.Get(ctx, counterKey(key)).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return n >= max, nil
}

func (l *RedisLimiter) Hit(ctx context.Context, key string, ttl time.Duration) error {
	n, err := l.rdb.Incr(ctx, counterKey(key)).Result()
	if err != nil {
		return err
	}
	if n == 1 {
		// 第一次命中开启窗口
		return l.rdb.Expire(ctx, counterKey(key), ttl).Err()
	}
	return nil
}

func (l *RedisLimiter) Clear(ctx context.Context, key string) error {
	return l.rdb.Del(ctx, counterKey(key)).Err()
}

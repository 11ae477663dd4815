package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter implements a fixed-window limiter shared by every API
// instance pointing at the same Redis.
type RedisRateLimiter struct {
	client    redis.UniversalClient
	limit     int
	window    time.Duration
	keyPrefix string
}

// NewRedisRateLimiter creates a Redis-backed limiter
func NewRedisRateLimiter(client redis.UniversalClient, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:    client,
		limit:     limit,
		window:    window,
		keyPrefix: "ratelimit",
	}
}

func (l *RedisRateLimiter) bucketKey(key string, now time.Time) string {
	bucket := now.UnixNano() / int64(l.window)
	return fmt.Sprintf("%s:%s:%d", l.keyPrefix, key, bucket)
}

// Allow increments the current window counter and compares it to the limit
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.bucketKey(key, time.Now())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit increment: %w", err)
	}

	return incr.Val() <= int64(l.limit), nil
}

// Reset clears the current window for key
func (l *RedisRateLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.bucketKey(key, time.Now())).Err()
}

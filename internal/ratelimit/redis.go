package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window limiter shared across server instances.
// Each window is one INCR counter that expires with the window.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewRedisLimiter allows limit actions per key per window.
// A non-positive limit disables limiting.
func NewRedisLimiter(client *redis.Client, prefix string, limit int64, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "spin:ratelimit"
	}
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}

	start := windowStart(l.now(), l.window)
	redisKey := l.prefix + ":" + key + ":" + strconv.FormatInt(start.Unix(), 10)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}

	return incr.Val() <= l.limit, nil
}

var _ Limiter = (*RedisLimiter)(nil)

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window attempt counter backed by Redis, shared across
// all replicas of the service. Key format: authlimit:<scope>:<client>
type Limiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewLimiter allows up to limit attempts per window for each key.
func NewLimiter(client *redis.Client, limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{client: client, limit: int64(limit), window: window}
}

// Allow counts one attempt and reports whether the caller is still within
// the window's budget.
func (l *Limiter) Allow(ctx context.Context, scope, client string) (bool, error) {
	key := l.key(scope, client)

	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("limiter incr: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, fmt.Errorf("limiter expire: %w", err)
		}
	}
	return n <= l.limit, nil
}

func (l *Limiter) key(scope, client string) string {
	return fmt.Sprintf("authlimit:%s:%s", scope, client)
}

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateWindow = time.Minute

// RateLimiter is a fixed-window counter backed by Redis, used to throttle
// sign-in attempts per client IP before any Identity Service call is made.
// Key format: ratelimit:signin:<ip>
type RateLimiter struct {
	client *redis.Client
	limit  int
}

// NewRateLimiter creates a RateLimiter allowing limit attempts per minute.
// A limit of zero or less disables throttling.
func NewRateLimiter(client *redis.Client, limit int) *RateLimiter {
	return &RateLimiter{client: client, limit: limit}
}

// Allow reports whether the caller identified by ip is within budget, and
// counts the attempt. Fails open: a Redis error never blocks a sign-in.
func (rl *RateLimiter) Allow(ctx context.Context, ip string) (bool, error) {
	if rl.limit <= 0 {
		return true, nil
	}

	key := rl.key(ip)
	n, err := rl.client.Incr(ctx, key).Result()
	if err != nil {
		return true, fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		if err := rl.client.Expire(ctx, key, rateWindow).Err(); err != nil {
			return true, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return n <= int64(rl.limit), nil
}

func (rl *RateLimiter) key(ip string) string {
	return fmt.Sprintf("ratelimit:signin:%s", ip)
}

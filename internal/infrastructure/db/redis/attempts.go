package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Rishisinghwindows/Destrone/internal/core/ports"
)

// AttemptLimiter counts failed OTP verifications per mobile in Redis.
// Key format: otp:attempts:<mobile>. The window starts at the first failure.
type AttemptLimiter struct {
	rdb    *redis.Client
	max    int64
	window time.Duration
}

var _ ports.AttemptLimiter = (*AttemptLimiter)(nil)

// NewAttemptLimiter blocks a key once max failures were recorded within window.
func NewAttemptLimiter(c *Client, max int, window time.Duration) *AttemptLimiter {
	return &AttemptLimiter{rdb: c.rdb, max: int64(max), window: window}
}

func (l *AttemptLimiter) Blocked(ctx context.Context, mobile string) (bool, error) {
	n, err := l.rdb.Get(ctx, attemptsKey(mobile)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("attempts check: %w", err)
	}
	return n >= l.max, nil
}

// Fail increments the counter and arms the window TTL in one MULTI/EXEC.
// EXPIRE NX only sets the TTL when the key has none, so the window still
// starts at the first failure and a counter can never be left without one.
func (l *AttemptLimiter) Fail(ctx context.Context, mobile string) error {
	key := attemptsKey(mobile)
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("attempts fail: %w", err)
	}
	return nil
}

func (l *AttemptLimiter) Reset(ctx context.Context, mobile string) error {
	if err := l.rdb.Del(ctx, attemptsKey(mobile)).Err(); err != nil {
		return fmt.Errorf("attempts reset: %w", err)
	}
	return nil
}

func attemptsKey(mobile string) string {
	return "otp:attempts:" + mobile
}

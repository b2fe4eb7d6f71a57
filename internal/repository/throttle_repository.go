package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/pupil-dashboard/pkg/errors"
)

const throttleKeyPrefix = "login-throttle:"

// ThrottleRepository keeps per-key attempt counters in Redis.
type ThrottleRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewThrottleRepository constructs a throttle repository. A nil client disables it.
func NewThrottleRepository(client *redis.Client, logger *zap.Logger) *ThrottleRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ThrottleRepository{client: client, logger: logger}
}

// Count returns the current attempt count, or ErrCacheMiss when no window is open.
func (r *ThrottleRepository) Count(ctx context.Context, key string) (int64, error) {
	if r.client == nil {
		return 0, appErrors.ErrCacheMiss
	}
	n, err := r.client.Get(ctx, throttleKeyPrefix+key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, appErrors.ErrCacheMiss
		}
		return 0, fmt.Errorf("redis get throttle %s: %w", key, err)
	}
	return n, nil
}

// Hit increments the counter and opens the window on the first attempt. The
// increment and the expiry run in one MULTI/EXEC so a counter never outlives
// its window.
func (r *ThrottleRepository) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	if r.client == nil {
		return 0, nil
	}
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr, _ = queueHit(ctx, pipe, throttleKeyPrefix+key, window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis hit throttle %s: %w", key, err)
	}
	return incr.Val(), nil
}

// queueHit queues INCR and EXPIRE NX; EXPIRE NX leaves an open window untouched.
func queueHit(ctx context.Context, pipe redis.Pipeliner, fullKey string, window time.Duration) (*redis.IntCmd, *redis.BoolCmd) {
	return pipe.Incr(ctx, fullKey), pipe.ExpireNX(ctx, fullKey, window)
}

// Reset clears the counter after a successful attempt.
func (r *ThrottleRepository) Reset(ctx context.Context, key string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, throttleKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del throttle %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *ThrottleRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

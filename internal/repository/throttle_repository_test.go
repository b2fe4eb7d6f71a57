package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/pupil-dashboard/pkg/errors"
)

func TestThrottleRepositoryWithoutClient(t *testing.T) {
	repo := NewThrottleRepository(nil, nil)
	ctx := context.Background()

	_, err := repo.Count(ctx, "k")
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)

	n, err := repo.Hit(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, repo.Reset(ctx, "k"))
	assert.NoError(t, repo.Close())
}

func TestThrottleRepositoryWrapsRedisErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	repo := NewThrottleRepository(client, nil)
	t.Cleanup(func() { _ = repo.Close() })
	ctx := context.Background()

	_, err := repo.Count(ctx, "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.Contains(t, err.Error(), "redis get throttle k")

	_, err = repo.Hit(ctx, "k", time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis hit throttle k")
}

func TestQueueHitIncrementsAndExpiresTogether(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	pipe := client.TxPipeline()
	incr, expire := queueHit(ctx, pipe, throttleKeyPrefix+"k", 90*time.Second)

	assert.Equal(t, 2, pipe.Len())
	assert.Equal(t, []interface{}{"incr", "login-throttle:k"}, incr.Args())
	assert.Equal(t, []interface{}{"expire", "login-throttle:k", int64(90), "nx"}, expire.Args())
}

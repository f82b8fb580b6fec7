package security

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlidingWindowLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	limiter := NewSlidingWindowLimiter(client, "comment", time.Minute, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(ctx, "user-1")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i)
	}
	res, err := limiter.Allow(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Zero(t, res.Remaining)
	assert.Equal(t, time.Minute, res.RetryAfter)

	// 不同主体互不影响
	res, err = limiter.Allow(ctx, "user-2")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

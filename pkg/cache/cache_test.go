package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewClient(mr.Addr(), "", 0)
	defer client.Close()
	locker := NewLocker(client)
	ctx := context.Background()

	ran := false
	err := locker.WithLock(ctx, "sweep", time.Minute, func(ctx context.Context) error {
		ran = true
		// 持有锁期间其他调用者拿不到锁
		inner := locker.WithLock(ctx, "sweep", time.Minute, func(context.Context) error {
			t.Fatal("lock acquired twice")
			return nil
		})
		assert.ErrorIs(t, inner, ErrLockHeld)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	// 释放之后可以再次获取
	require.NoError(t, locker.WithLock(ctx, "sweep", time.Minute, func(context.Context) error { return nil }))
}

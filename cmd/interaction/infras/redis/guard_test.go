package redis

import (
	"context"
	"testing"

	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"github.com/alicebob/miniredis/v2"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuard(t *testing.T) (*CommentGuard, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCommentGuard(client), mr
}

func TestCommentGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate content in window", func(t *testing.T) {
		g, _ := newGuard(t)
		require.NoError(t, g.Check(ctx, 1, "first!"))
		err := g.Check(ctx, 1, "  FIRST!  ")
		assert.True(t, errors.Is(err, errno.ParamErr))
		// 其他用户不受影响
		assert.NoError(t, g.Check(ctx, 2, "first!"))
	})

	t.Run("duplicate expires", func(t *testing.T) {
		g, mr := newGuard(t)
		require.NoError(t, g.Check(ctx, 1, "again"))
		mr.FastForward(constants.DuplicateCommentTTL)
		assert.NoError(t, g.Check(ctx, 1, "again"))
	})

	t.Run("release allows retry after failed write", func(t *testing.T) {
		g, mr := newGuard(t)
		require.NoError(t, g.Check(ctx, 1, "lost comment"))
		g.Release(ctx, 1, "Lost comment ")
		assert.False(t, mr.Exists(contentKey(1, "lost comment")))
		assert.NoError(t, g.Check(ctx, 1, "lost comment"))
	})

	t.Run("rate limit", func(t *testing.T) {
		g, _ := newGuard(t)
		for i := 0; i < constants.CommentRateLimit; i++ {
			require.NoError(t, g.Check(ctx, 7, string(rune('a'+i))))
		}
		err := g.Check(ctx, 7, "one more")
		assert.True(t, errors.Is(err, errno.TooManyRequestsErr))
	})

	t.Run("redis down never blocks", func(t *testing.T) {
		g, mr := newGuard(t)
		mr.Close()
		assert.NoError(t, g.Check(ctx, 1, "hello"))
	})

	t.Run("nil guard", func(t *testing.T) {
		var g *CommentGuard
		assert.NoError(t, g.Check(ctx, 1, "hello"))
		g.Release(ctx, 1, "hello")
	})
}

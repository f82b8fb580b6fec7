package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/metrics"
	"VidTube.com/pkg/security"
	"VidTube.com/pkg/utils"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/redis/go-redis/v9"
)

const (
	// 评论内容哈希 Key：comment_hash:{user_id}:{hash}
	CommentHashKeyTemplate = "comment_hash:%d:%s"
	commentRatePrefix      = "comment"
)

// CommentGuard 评论防刷：按用户的滑动窗口限流与短时间内的重复内容检测
// redis不可用时放行，不阻塞用户
type CommentGuard struct {
	client  redis.Cmdable
	limiter *security.SlidingWindowLimiter
}

var Guard *CommentGuard

func NewCommentGuard(client redis.Cmdable) *CommentGuard {
	return &CommentGuard{
		client:  client,
		limiter: security.NewSlidingWindowLimiter(client, commentRatePrefix, constants.CommentRateWindow, constants.CommentRateLimit),
	}
}

func Init(client redis.Cmdable) {
	Guard = NewCommentGuard(client)
}

// Check 通过返回nil
func (g *CommentGuard) Check(ctx context.Context, userID int64, content string) error {
	if g == nil {
		return nil
	}
	res, err := g.limiter.Allow(ctx, strconv.FormatInt(userID, 10))
	if err != nil {
		hlog.CtxWarnf(ctx, "Failed to check rate limit for user %d: %v", userID, err)
	} else if !res.Allowed {
		metrics.RateLimited.WithLabelValues(commentRatePrefix).Inc()
		return errno.TooManyRequestsErr.WithMessage("Comment rate limit exceeded, please try again later")
	}

	fresh, err := g.client.SetNX(ctx, contentKey(userID, content), "1", constants.DuplicateCommentTTL).Result()
	if err != nil {
		hlog.CtxWarnf(ctx, "Failed to check duplicate comment for user %d: %v", userID, err)
		return nil
	}
	if !fresh {
		return errno.ParamErr.WithMessage("Duplicate comment detected, please wait before posting similar content")
	}
	return nil
}

// Release 评论没有写入成功时删除去重标记，允许用户立即重试
func (g *CommentGuard) Release(ctx context.Context, userID int64, content string) {
	if g == nil {
		return
	}
	if err := g.client.Del(ctx, contentKey(userID, content)).Err(); err != nil {
		hlog.CtxWarnf(ctx, "Failed to release duplicate mark for user %d: %v", userID, err)
	}
}

func contentKey(userID int64, content string) string {
	normalized := strings.ToLower(strings.TrimSpace(content))
	return fmt.Sprintf(CommentHashKeyTemplate, userID, utils.MD5(normalized))
}

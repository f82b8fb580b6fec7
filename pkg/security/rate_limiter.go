package security

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimitResult 限流结果
type RateLimitResult struct {
	Allowed    bool          `json:"allowed"`
	Remaining  int64         `json:"remaining"`
	RetryAfter time.Duration `json:"retry_after"`
}

// SlidingWindowLimiter 基于有序集合的滑动窗口限流
type SlidingWindowLimiter struct {
	redis       redis.Cmdable
	prefix      string
	window      time.Duration
	maxRequests int64
}

func NewSlidingWindowLimiter(client redis.Cmdable, prefix string, window time.Duration, maxRequests int64) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		redis:       client,
		prefix:      prefix,
		window:      window,
		maxRequests: maxRequests,
	}
}

func (l *SlidingWindowLimiter) key(subject string) string {
	return fmt.Sprintf("ratelimit:%s:%s", l.prefix, subject)
}

// Allow 记录一次请求并判断是否超过窗口内的上限
func (l *SlidingWindowLimiter) Allow(ctx context.Context, subject string) (*RateLimitResult, error) {
	now := time.Now()
	windowStart := now.Add(-l.window)
	key := l.key(subject)

	pipe := l.redis.TxPipeline()
	// 清理过期记录
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	// 同一纳秒内的请求也要区分成员
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString()),
	})
	countCmd := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, l.window+time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	count := countCmd.Val()
	result := &RateLimitResult{
		Allowed:   count <= l.maxRequests,
		Remaining: l.maxRequests - count,
	}
	if result.Remaining < 0 {
		result.Remaining = 0
	}
	if !result.Allowed {
		result.RetryAfter = l.window
	}
	return result, nil
}

package cache

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// NewClient 创建redis客户端，连接失败只记录日志，依赖redis的功能各自降级
func NewClient(addr, password string, db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		hlog.Warnf("redis %s unavailable: %v", addr, err)
	}
	return client
}

// Locker 基于redsync的分布式锁，多实例部署时保证同一时刻只有一个实例执行
type Locker struct {
	rs *redsync.Redsync
}

func NewLocker(client redis.UniversalClient) *Locker {
	return &Locker{rs: redsync.New(goredis.NewPool(client))}
}

// ErrLockHeld 锁已被其他实例持有
var ErrLockHeld = errors.New("lock is held by another instance")

// WithLock 获取锁后执行fn，锁在expiry后自动过期
func (l *Locker) WithLock(ctx context.Context, name string, expiry time.Duration, fn func(ctx context.Context) error) error {
	mutex := l.rs.NewMutex(name, redsync.WithExpiry(expiry), redsync.WithTries(1))
	if err := mutex.LockContext(ctx); err != nil {
		var taken *redsync.ErrTaken
		if errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken) {
			return ErrLockHeld
		}
		return errors.WithMessage(err, "acquire lock")
	}
	defer func() {
		if _, err := mutex.UnlockContext(context.Background()); err != nil {
			hlog.Warnf("release lock %s: %v", name, err)
		}
	}()
	return fn(ctx)
}

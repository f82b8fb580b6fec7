package service

import (
	"context"
	"time"

	"VidTube.com/cmd/interaction/dal/db"
	relationdb "VidTube.com/cmd/relation/dal/db"
	userdb "VidTube.com/cmd/user/dal/db"
	videodb "VidTube.com/cmd/video/dal/db"
	"VidTube.com/pkg/cache"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/counter"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/metrics"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ReconcileService 以子记录为准重算冗余计数
type ReconcileService struct {
	ctx context.Context
}

func NewReconcileService(ctx context.Context) *ReconcileService {
	return &ReconcileService{ctx: ctx}
}

func (s *ReconcileService) recount(t counter.Target, children func(tx *gorm.DB) (int64, error)) (counter.Drift, error) {
	d, err := counter.Recount(s.ctx, db.DB, t, children)
	if err != nil {
		return d, err
	}
	if d.Repaired() {
		metrics.CounterRepairs.WithLabelValues(t.Table, t.Column).Inc()
		hlog.CtxInfof(s.ctx, "repaired %s.%s of %d: %d -> %d", t.Table, t.Column, t.ID, d.Cached, d.Actual)
	}
	return d, nil
}

// ReconcileVideo 重算视频的点赞数、评论数以及其下每条评论的点赞数
func (s *ReconcileService) ReconcileVideo(videoID int64) ([]counter.Drift, error) {
	drifts := make([]counter.Drift, 0, 2)
	d, err := s.recount(counter.VideoLikes(videoID), func(tx *gorm.DB) (int64, error) {
		return db.CountVideoLikes(tx, videoID)
	})
	if err != nil {
		if errors.Is(err, counter.ErrTargetNotFound) {
			return nil, errno.NotFoundErr.WithMessage("Video not found")
		}
		return nil, err
	}
	drifts = append(drifts, d)

	d, err = s.recount(counter.VideoComments(videoID), func(tx *gorm.DB) (int64, error) {
		return db.CountVideoComments(tx, videoID)
	})
	if err != nil {
		return nil, err
	}
	drifts = append(drifts, d)

	commentIDs, err := db.ListCommentIDsByVideo(s.ctx, videoID)
	if err != nil {
		return nil, err
	}
	for _, id := range commentIDs {
		commentID := id
		d, err = s.recount(counter.CommentLikes(commentID), func(tx *gorm.DB) (int64, error) {
			return db.CountCommentLikes(tx, commentID)
		})
		if errors.Is(err, counter.ErrTargetNotFound) {
			// 评论在遍历期间被删除
			continue
		}
		if err != nil {
			return nil, err
		}
		drifts = append(drifts, d)
	}
	return drifts, nil
}

// ReconcileUser 重算频道的订阅数
func (s *ReconcileService) ReconcileUser(userID int64) (counter.Drift, error) {
	d, err := s.recount(counter.SubscriberCount(userID), func(tx *gorm.DB) (int64, error) {
		return relationdb.CountSubscribers(tx, userID)
	})
	if errors.Is(err, counter.ErrTargetNotFound) {
		return d, errno.NotFoundErr.WithMessage("User not found")
	}
	return d, err
}

// SweepResult 一次全量对账的统计
type SweepResult struct {
	Videos   int `json:"videos"`
	Users    int `json:"users"`
	Repaired int `json:"repaired"`
}

// Sweep 分批遍历全部视频与用户
func (s *ReconcileService) Sweep(batch int) (*SweepResult, error) {
	if batch <= 0 {
		batch = 200
	}
	res := &SweepResult{}
	var after int64
	for {
		ids, err := videodb.ListVideoIDs(s.ctx, after, batch)
		if err != nil {
			return res, err
		}
		for _, id := range ids {
			drifts, err := s.ReconcileVideo(id)
			if err != nil && !errors.Is(err, errno.NotFoundErr) {
				return res, err
			}
			res.Videos++
			res.Repaired += countRepaired(drifts...)
		}
		if len(ids) < batch {
			break
		}
		after = ids[len(ids)-1]
	}

	after = 0
	for {
		ids, err := userdb.ListUserIDs(s.ctx, after, batch)
		if err != nil {
			return res, err
		}
		for _, id := range ids {
			d, err := s.ReconcileUser(id)
			if err != nil && !errors.Is(err, errno.NotFoundErr) {
				return res, err
			}
			res.Users++
			if err == nil {
				res.Repaired += countRepaired(d)
			}
		}
		if len(ids) < batch {
			break
		}
		after = ids[len(ids)-1]
	}
	return res, nil
}

func countRepaired(drifts ...counter.Drift) int {
	n := 0
	for _, d := range drifts {
		if d.Repaired() {
			n++
		}
	}
	return n
}

// StartSweeper 定期对账，多实例时由分布式锁保证只有一个实例执行
// interval为0时不启动
func StartSweeper(ctx context.Context, locker *cache.Locker, interval time.Duration, batch int) {
	if interval <= 0 || locker == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				err := locker.WithLock(ctx, constants.ReconcileLockName, constants.ReconcileLockTimeout, func(ctx context.Context) error {
					res, err := NewReconcileService(ctx).Sweep(batch)
					if res != nil {
						hlog.Infof("reconcile sweep: %d videos, %d users, %d counters repaired", res.Videos, res.Users, res.Repaired)
					}
					return err
				})
				if errors.Is(err, cache.ErrLockHeld) {
					hlog.Debugf("reconcile sweep skipped, lock held by another instance")
				} else if err != nil {
					hlog.Errorf("reconcile sweep failed: %v", err)
				}
			}
		}
	}()
}

package db

import (
	"context"
	"time"

	"VidTube.com/cmd/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordWatch 记录观看，同一视频只保留最近一次
func RecordWatch(ctx context.Context, userID, videoID int64, at time.Time) error {
	h := &model.WatchHistory{UserID: userID, VideoID: videoID, WatchedAt: at}
	err := DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"watched_at"}),
	}).Create(h).Error
	if err != nil {
		return errors.Wrap(err, "RecordWatch failed")
	}
	return nil
}

// ListWatchHistory 最近观看在前，已删除的视频不返回
func ListWatchHistory(ctx context.Context, userID int64, offset, limit int) ([]*model.Video, int64, error) {
	base := DB.WithContext(ctx).Table("watch_histories AS h").
		Joins("JOIN videos AS v ON v.id = h.video_id").
		Where("h.user_id = ?", userID)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "ListWatchHistory count failed")
	}
	var videos []*model.Video
	err := base.Session(&gorm.Session{}).
		Select("v.*").
		Order("h.watched_at DESC").
		Offset(offset).Limit(limit).
		Scan(&videos).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "ListWatchHistory failed")
	}
	return videos, total, nil
}

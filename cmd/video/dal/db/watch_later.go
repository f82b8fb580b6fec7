package db

import (
	"context"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/counter"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// AddWatchLater 重复添加返回counter.ErrDuplicate
func AddWatchLater(ctx context.Context, userID, videoID int64) (*model.WatchLater, error) {
	entry := &model.WatchLater{UserID: userID, VideoID: videoID}
	if err := DB.WithContext(ctx).Create(entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, counter.ErrDuplicate
		}
		return nil, errors.Wrap(err, "AddWatchLater failed")
	}
	return entry, nil
}

func InWatchLater(ctx context.Context, userID, videoID int64) (bool, error) {
	var count int64
	if err := DB.WithContext(ctx).Model(&model.WatchLater{}).
		Where("user_id = ? AND video_id = ?", userID, videoID).
		Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "InWatchLater failed")
	}
	return count > 0, nil
}

// ListWatchLater 最近加入的在前
func ListWatchLater(ctx context.Context, userID int64) ([]*model.Video, error) {
	var videos []*model.Video
	err := DB.WithContext(ctx).Table("watch_later AS w").
		Joins("JOIN videos AS v ON v.id = w.video_id").
		Where("w.user_id = ?", userID).
		Where("(v.is_published = ? OR v.user_id = ?)", true, userID).
		Select("v.*").
		Order("w.created_at DESC").Order("w.id DESC").
		Scan(&videos).Error
	if err != nil {
		return nil, errors.Wrap(err, "ListWatchLater failed")
	}
	return videos, nil
}

func RemoveWatchLater(ctx context.Context, userID, videoID int64) error {
	res := DB.WithContext(ctx).
		Where("user_id = ? AND video_id = ?", userID, videoID).
		Delete(&model.WatchLater{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "RemoveWatchLater failed")
	}
	if res.RowsAffected == 0 {
		return counter.ErrNothingDeleted
	}
	return nil
}

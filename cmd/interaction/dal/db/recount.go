package db

import (
	"VidTube.com/cmd/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// 对账使用的子记录计数，都在调用方的事务中执行

func CountVideoLikes(tx *gorm.DB, videoID int64) (int64, error) {
	var count int64
	if err := tx.Model(&model.Like{}).Where("video_id = ?", videoID).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "CountVideoLikes failed")
	}
	return count, nil
}

func CountVideoComments(tx *gorm.DB, videoID int64) (int64, error) {
	var count int64
	if err := tx.Model(&model.Comment{}).Where("video_id = ?", videoID).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "CountVideoComments failed")
	}
	return count, nil
}

func CountCommentLikes(tx *gorm.DB, commentID int64) (int64, error) {
	var count int64
	if err := tx.Model(&model.Like{}).Where("comment_id = ?", commentID).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "CountCommentLikes failed")
	}
	return count, nil
}

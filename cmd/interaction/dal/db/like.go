package db

import (
	"context"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/counter"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

func videoLikeScope(userID, videoID int64) counter.Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ? AND video_id = ?", userID, videoID)
	}
}

func commentLikeScope(userID, commentID int64) counter.Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ? AND comment_id = ?", userID, commentID)
	}
}

func getLike(ctx context.Context, scope counter.Scope) (*model.Like, error) {
	var like model.Like
	err := scope(DB.WithContext(ctx)).Take(&like).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get like failed")
	}
	return &like, nil
}

// GetVideoLike 不存在返回 (nil, nil)
func GetVideoLike(ctx context.Context, userID, videoID int64) (*model.Like, error) {
	return getLike(ctx, videoLikeScope(userID, videoID))
}

func GetCommentLike(ctx context.Context, userID, commentID int64) (*model.Like, error) {
	return getLike(ctx, commentLikeScope(userID, commentID))
}

// CreateLike 点赞记录与目标的点赞数一起提交
func CreateLike(ctx context.Context, like *model.Like) error {
	if !like.HasSingleTarget() {
		return errors.New("like must target exactly one of video or comment")
	}
	var target counter.Target
	if like.VideoID != nil {
		target = counter.VideoLikes(*like.VideoID)
	} else {
		target = counter.CommentLikes(*like.CommentID)
	}
	return counter.CreateWithCount(ctx, DB, like, target)
}

func DeleteVideoLike(ctx context.Context, userID, videoID int64) error {
	_, err := counter.DeleteWithCount(ctx, DB, &model.Like{}, videoLikeScope(userID, videoID), counter.VideoLikes(videoID))
	return err
}

func DeleteCommentLike(ctx context.Context, userID, commentID int64) error {
	_, err := counter.DeleteWithCount(ctx, DB, &model.Like{}, commentLikeScope(userID, commentID), counter.CommentLikes(commentID))
	return err
}

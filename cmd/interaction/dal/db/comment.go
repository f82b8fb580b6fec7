package db

import (
	"context"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/counter"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GetComment 不存在返回 (nil, nil)
func GetComment(ctx context.Context, id int64) (*model.Comment, error) {
	var comment model.Comment
	err := DB.WithContext(ctx).Where("id = ?", id).Take(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "GetComment failed")
	}
	return &comment, nil
}

// CreateComment 顶层评论，视频评论数加一
func CreateComment(ctx context.Context, comment *model.Comment) error {
	return counter.CreateWithCount(ctx, DB, comment, counter.VideoComments(comment.VideoID))
}

// CreateReply 回复、回复序列与视频评论数在同一事务中写入
func CreateReply(ctx context.Context, reply *model.Comment) error {
	return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := counter.CreateWithCountTx(tx, reply, counter.VideoComments(reply.VideoID)); err != nil {
			return err
		}
		return AppendReplyTx(tx, reply.ParentID, reply.ID)
	})
}

func UpdateCommentContent(ctx context.Context, id int64, content string) error {
	err := DB.WithContext(ctx).Model(&model.Comment{}).Where("id = ?", id).Update("content", content).Error
	if err != nil {
		return errors.Wrap(err, "UpdateCommentContent failed")
	}
	return nil
}

// DeleteComment 删除评论。顶层评论连同全部回复一起删除，
// 被删除评论上的点赞与回复序列一并清理，视频评论数减去实际删除的条数
func DeleteComment(ctx context.Context, comment *model.Comment) (int64, error) {
	var deleted int64
	err := DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := []int64{comment.ID}
		if !comment.IsReply() {
			var replyIDs []int64
			if err := tx.Model(&model.Comment{}).Where("parent_id = ?", comment.ID).Pluck("id", &replyIDs).Error; err != nil {
				return errors.Wrap(err, "load reply ids failed")
			}
			ids = append(ids, replyIDs...)
		}

		n, err := counter.DeleteWithCountTx(tx, &model.Comment{}, func(db *gorm.DB) *gorm.DB {
			return db.Where("id IN ?", ids)
		}, counter.VideoComments(comment.VideoID))
		if err != nil {
			return err
		}
		deleted = n

		if err = tx.Where("reply_id IN ? OR parent_id IN ?", ids, ids).Delete(&model.CommentReply{}).Error; err != nil {
			return errors.Wrap(err, "delete reply links failed")
		}
		if err = tx.Where("comment_id IN ?", ids).Delete(&model.Like{}).Error; err != nil {
			return errors.Wrap(err, "delete comment likes failed")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// ListVideoComments 视频下的顶层评论，最新的在前
func ListVideoComments(ctx context.Context, videoID int64, offset, limit int) ([]*model.Comment, int64, error) {
	var total int64
	base := func() *gorm.DB {
		return DB.WithContext(ctx).Model(&model.Comment{}).Where("video_id = ? AND parent_id = 0", videoID)
	}
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count video comments failed")
	}
	comments := make([]*model.Comment, 0, limit)
	if err := base().Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).Find(&comments).Error; err != nil {
		return nil, 0, errors.Wrap(err, "ListVideoComments failed")
	}
	return comments, total, nil
}

// GetCommentsByIDs 批量读取，返回顺序不保证与ids一致
func GetCommentsByIDs(ctx context.Context, ids []int64) ([]*model.Comment, error) {
	comments := make([]*model.Comment, 0, len(ids))
	if len(ids) == 0 {
		return comments, nil
	}
	if err := DB.WithContext(ctx).Where("id IN ?", ids).Find(&comments).Error; err != nil {
		return nil, errors.Wrap(err, "GetCommentsByIDs failed")
	}
	return comments, nil
}

// ListCommentIDsByVideo 对账时遍历视频下的全部评论
func ListCommentIDsByVideo(ctx context.Context, videoID int64) ([]int64, error) {
	var ids []int64
	if err := DB.WithContext(ctx).Model(&model.Comment{}).
		Where("video_id = ?", videoID).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, errors.Wrap(err, "ListCommentIDsByVideo failed")
	}
	return ids, nil
}

// DeleteVideoInteractions 删除视频时清理评论、回复序列与点赞
func DeleteVideoInteractions(tx *gorm.DB, videoID int64) error {
	var commentIDs []int64
	if err := tx.Model(&model.Comment{}).Where("video_id = ?", videoID).Pluck("id", &commentIDs).Error; err != nil {
		return errors.Wrap(err, "load video comment ids failed")
	}
	if len(commentIDs) > 0 {
		if err := tx.Where("reply_id IN ?", commentIDs).Delete(&model.CommentReply{}).Error; err != nil {
			return errors.Wrap(err, "delete video reply links failed")
		}
		if err := tx.Where("comment_id IN ?", commentIDs).Delete(&model.Like{}).Error; err != nil {
			return errors.Wrap(err, "delete video comment likes failed")
		}
	}
	if err := tx.Where("video_id = ?", videoID).Delete(&model.Comment{}).Error; err != nil {
		return errors.Wrap(err, "delete video comments failed")
	}
	if err := tx.Where("video_id = ?", videoID).Delete(&model.Like{}).Error; err != nil {
		return errors.Wrap(err, "delete video likes failed")
	}
	return nil
}

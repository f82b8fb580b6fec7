package db

import (
	"context"

	"VidTube.com/cmd/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// AppendReplyTx 把回复追加到父评论的回复序列末尾
func AppendReplyTx(tx *gorm.DB, parentID, replyID int64) error {
	if err := tx.Create(&model.CommentReply{ParentID: parentID, ReplyID: replyID}).Error; err != nil {
		return errors.Wrap(err, "AppendReply failed")
	}
	return nil
}

// SliceReplyIDs 按插入顺序截取回复序列的一页，不读取评论本身
func SliceReplyIDs(ctx context.Context, parentID int64, offset, limit int) ([]int64, error) {
	var ids []int64
	err := DB.WithContext(ctx).Model(&model.CommentReply{}).
		Where("parent_id = ?", parentID).
		Order("seq").
		Offset(offset).Limit(limit).
		Pluck("reply_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "SliceReplyIDs failed")
	}
	return ids, nil
}

// CountReplyIDs 回复序列的长度
func CountReplyIDs(ctx context.Context, parentID int64) (int64, error) {
	var count int64
	if err := DB.WithContext(ctx).Model(&model.CommentReply{}).
		Where("parent_id = ?", parentID).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "CountReplyIDs failed")
	}
	return count, nil
}

// CountRepliesByParents 列表页展示每条评论的回复数
func CountRepliesByParents(ctx context.Context, parentIDs []int64) (map[int64]int64, error) {
	res := make(map[int64]int64, len(parentIDs))
	if len(parentIDs) == 0 {
		return res, nil
	}
	var rows []struct {
		ParentID int64
		Total    int64
	}
	err := DB.WithContext(ctx).Model(&model.CommentReply{}).
		Select("parent_id, COUNT(*) AS total").
		Where("parent_id IN ?", parentIDs).
		Group("parent_id").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "CountRepliesByParents failed")
	}
	for _, r := range rows {
		res[r.ParentID] = r.Total
	}
	return res, nil
}

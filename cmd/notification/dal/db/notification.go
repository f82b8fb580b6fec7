package db

import (
	"context"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/sharding"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const TableName = "notifications"

// 所有查询都带上recipient_id，分表插件据此路由到对应分表

func CreateNotification(ctx context.Context, n *model.Notification) error {
	if err := DB.WithContext(ctx).Create(n).Error; err != nil {
		return errors.Wrap(err, "CreateNotification failed")
	}
	return nil
}

func recipientScope(recipientID int64, unreadOnly bool) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("recipient_id = ?", recipientID)
		if unreadOnly {
			db = db.Where("is_read = ?", false)
		}
		return db
	}
}

// ListNotifications 最新的在前，total与列表使用同一个过滤条件
func ListNotifications(ctx context.Context, recipientID int64, unreadOnly bool, offset, limit int) ([]*model.Notification, int64, error) {
	var total int64
	if err := DB.WithContext(ctx).Model(&model.Notification{}).
		Scopes(recipientScope(recipientID, unreadOnly)).
		Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "ListNotifications count failed")
	}
	list := make([]*model.Notification, 0, limit)
	if err := DB.WithContext(ctx).
		Scopes(recipientScope(recipientID, unreadOnly)).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&list).Error; err != nil {
		return nil, 0, errors.Wrap(err, "ListNotifications failed")
	}
	return list, total, nil
}

func CountUnread(ctx context.Context, recipientID int64) (int64, error) {
	var count int64
	if err := DB.WithContext(ctx).Model(&model.Notification{}).
		Scopes(recipientScope(recipientID, true)).
		Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "CountUnread failed")
	}
	return count, nil
}

func MarkAllRead(ctx context.Context, recipientID int64) (int64, error) {
	res := DB.WithContext(ctx).Model(&model.Notification{}).
		Scopes(recipientScope(recipientID, true)).
		UpdateColumn("is_read", true)
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "MarkAllRead failed")
	}
	return res.RowsAffected, nil
}

// GetNotification 按接收者查找，不存在返回 (nil, nil)
func GetNotification(ctx context.Context, id, recipientID int64) (*model.Notification, error) {
	var n model.Notification
	err := DB.WithContext(ctx).Where("recipient_id = ? AND id = ?", recipientID, id).Take(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "GetNotification failed")
	}
	return &n, nil
}

// NotificationExists 只知道主键时判断通知是否存在
// 分表时没有分片键，直接逐个查询物理分表
func NotificationExists(ctx context.Context, id int64) (bool, error) {
	tables := []string{TableName}
	if Shards > 0 {
		tables = sharding.TableNames(TableName, Shards)
	}
	for _, table := range tables {
		var count int64
		if err := DB.WithContext(ctx).Table(table).Where("id = ?", id).Count(&count).Error; err != nil {
			return false, errors.Wrap(err, "NotificationExists failed")
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

func MarkRead(ctx context.Context, id, recipientID int64) error {
	err := DB.WithContext(ctx).Model(&model.Notification{}).
		Where("recipient_id = ? AND id = ?", recipientID, id).
		UpdateColumn("is_read", true).Error
	if err != nil {
		return errors.Wrap(err, "MarkRead failed")
	}
	return nil
}

package db

import (
	"context"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/counter"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GetSubscription 不存在返回 (nil, nil)
func GetSubscription(ctx context.Context, subscriberID, channelID int64) (*model.Subscription, error) {
	var sub model.Subscription
	err := DB.WithContext(ctx).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		Take(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "GetSubscription failed")
	}
	return &sub, nil
}

// CreateSubscription 订阅关系与频道的订阅数在同一事务中写入
func CreateSubscription(ctx context.Context, sub *model.Subscription) error {
	return counter.CreateWithCount(ctx, DB, sub, counter.SubscriberCount(sub.ChannelID))
}

func DeleteSubscription(ctx context.Context, subscriberID, channelID int64) error {
	_, err := counter.DeleteWithCount(ctx, DB, &model.Subscription{}, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID)
	}, counter.SubscriberCount(channelID))
	return err
}

func SetNotifications(ctx context.Context, subscriberID, channelID int64, enabled bool) error {
	err := DB.WithContext(ctx).Model(&model.Subscription{}).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		UpdateColumn("notifications_enabled", enabled).Error
	if err != nil {
		return errors.Wrap(err, "SetNotifications failed")
	}
	return nil
}

// CountSubscriptions 用户订阅了多少个频道
func CountSubscriptions(ctx context.Context, subscriberID int64) (int64, error) {
	var count int64
	if err := DB.WithContext(ctx).Model(&model.Subscription{}).
		Where("subscriber_id = ?", subscriberID).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "CountSubscriptions failed")
	}
	return count, nil
}

// CountSubscribers 频道的真实订阅数，对账时使用
func CountSubscribers(tx *gorm.DB, channelID int64) (int64, error) {
	var count int64
	if err := tx.Model(&model.Subscription{}).
		Where("channel_id = ?", channelID).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "CountSubscribers failed")
	}
	return count, nil
}

func ListSubscriptions(ctx context.Context, subscriberID int64, offset, limit int) ([]*model.Subscription, int64, error) {
	return listBy(ctx, "subscriber_id", subscriberID, offset, limit)
}

func ListSubscribers(ctx context.Context, channelID int64, offset, limit int) ([]*model.Subscription, int64, error) {
	return listBy(ctx, "channel_id", channelID, offset, limit)
}

func listBy(ctx context.Context, column string, id int64, offset, limit int) ([]*model.Subscription, int64, error) {
	var total int64
	if err := DB.WithContext(ctx).Model(&model.Subscription{}).
		Where(column+" = ?", id).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrapf(err, "count subscriptions by %s failed", column)
	}
	subs := make([]*model.Subscription, 0, limit)
	if err := DB.WithContext(ctx).
		Where(column+" = ?", id).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&subs).Error; err != nil {
		return nil, 0, errors.Wrapf(err, "list subscriptions by %s failed", column)
	}
	return subs, total, nil
}

// ListNotifiableSubscriberIDs 开启了通知的订阅者，按id分批遍历
func ListNotifiableSubscriberIDs(ctx context.Context, channelID, afterID int64, limit int) ([]int64, error) {
	var ids []int64
	err := DB.WithContext(ctx).Model(&model.Subscription{}).
		Where("channel_id = ? AND notifications_enabled = ? AND subscriber_id > ?", channelID, true, afterID).
		Order("subscriber_id").
		Limit(limit).
		Pluck("subscriber_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "ListNotifiableSubscriberIDs failed")
	}
	return ids, nil
}

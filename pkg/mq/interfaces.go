package mq

import "context"

// NotificationPublisher 通知事件的生产者
type NotificationPublisher interface {
	PublishNotificationEvent(ctx context.Context, event *NotificationEvent) error
}

// NotificationEventHandler 通知事件的消费者
type NotificationEventHandler interface {
	HandleNotificationEvent(ctx context.Context, event *NotificationEvent) error
}

// 确保Producer实现NotificationPublisher接口
var _ NotificationPublisher = (*Producer)(nil)

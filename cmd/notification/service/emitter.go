package service

import (
	"context"
	"sync"

	"VidTube.com/pkg/metrics"
	"VidTube.com/pkg/mq"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// Emitter 核心流程在自身状态落库之后调用，只管发出，不关心结果
type Emitter interface {
	Emit(ctx context.Context, n *Notice)
}

// DirectEmitter 在当前请求中同步写入
type DirectEmitter struct{}

func (DirectEmitter) Emit(ctx context.Context, n *Notice) {
	Notify(ctx, n)
}

// QueueEmitter 投递到RabbitMQ，由EventHandler异步写入
// 投递失败时退回同步写入
type QueueEmitter struct {
	Publisher mq.NotificationPublisher
	Fallback  Emitter
}

func (q *QueueEmitter) Emit(ctx context.Context, n *Notice) {
	if n == nil || n.RecipientID == 0 {
		return
	}
	if n.selfNotice() {
		metrics.Notifications.WithLabelValues(n.Type, metrics.OutcomeSuppressed).Inc()
		return
	}
	event := mq.NewNotificationEvent(n.RecipientID, n.SenderID, n.Type, n.Content)
	event.EntityType = n.EntityType
	event.EntityID = n.EntityID
	if err := q.Publisher.PublishNotificationEvent(ctx, event); err != nil {
		hlog.CtxWarnf(ctx, "publish notification event failed, writing directly: %v", err)
		if q.Fallback != nil {
			q.Fallback.Emit(ctx, n)
		}
	}
}

var (
	emitterMu sync.RWMutex
	emitter   Emitter = DirectEmitter{}
)

// SetEmitter 启动时按notification.mode选择
func SetEmitter(e Emitter) {
	emitterMu.Lock()
	defer emitterMu.Unlock()
	emitter = e
}

// Emit 使用当前的Emitter发出通知
func Emit(ctx context.Context, n *Notice) {
	emitterMu.RLock()
	e := emitter
	emitterMu.RUnlock()
	e.Emit(ctx, n)
}

// EventHandler 消费队列中的通知事件
type EventHandler struct{}

func (EventHandler) HandleNotificationEvent(ctx context.Context, event *mq.NotificationEvent) error {
	_, err := notify(ctx, &Notice{
		RecipientID: event.RecipientID,
		SenderID:    event.SenderID,
		Type:        event.Type,
		Content:     event.Content,
		EntityType:  event.EntityType,
		EntityID:    event.EntityID,
	})
	return err
}

var _ mq.NotificationEventHandler = EventHandler{}

package service

import (
	"context"

	"VidTube.com/cmd/model"
	"VidTube.com/cmd/notification/dal/db"
	userdb "VidTube.com/cmd/user/dal/db"
	"VidTube.com/pkg/metrics"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// Notice 一次通知请求
type Notice struct {
	RecipientID int64
	SenderID    int64
	Type        string
	Content     string
	EntityType  string
	EntityID    *int64
}

func (n *Notice) selfNotice() bool {
	return n.RecipientID == n.SenderID
}

func (n *Notice) toModel() *model.Notification {
	return &model.Notification{
		RecipientID: n.RecipientID,
		SenderID:    n.SenderID,
		Type:        n.Type,
		Content:     n.Content,
		EntityType:  n.EntityType,
		EntityID:    n.EntityID,
	}
}

// Notify 尽力写入一条通知，主操作已经持久化后才会调用
// 自己给自己的通知和接收者不存在时返回nil，写入失败只记录日志
func Notify(ctx context.Context, n *Notice) *model.Notification {
	created, err := notify(ctx, n)
	if err != nil {
		hlog.CtxErrorf(ctx, "notification %s to %d failed: %v", n.Type, n.RecipientID, err)
		return nil
	}
	return created
}

func notify(ctx context.Context, n *Notice) (*model.Notification, error) {
	if n == nil || n.RecipientID == 0 {
		return nil, nil
	}
	if n.selfNotice() {
		metrics.Notifications.WithLabelValues(n.Type, metrics.OutcomeSuppressed).Inc()
		return nil, nil
	}
	exists, err := userdb.UserExists(ctx, n.RecipientID)
	if err != nil {
		metrics.Notifications.WithLabelValues(n.Type, metrics.OutcomeFailed).Inc()
		return nil, err
	}
	if !exists {
		hlog.CtxInfof(ctx, "notification recipient %d not found, skipped", n.RecipientID)
		metrics.Notifications.WithLabelValues(n.Type, metrics.OutcomeSkipped).Inc()
		return nil, nil
	}
	row := n.toModel()
	if err = db.CreateNotification(ctx, row); err != nil {
		metrics.Notifications.WithLabelValues(n.Type, metrics.OutcomeFailed).Inc()
		return nil, err
	}
	metrics.Notifications.WithLabelValues(n.Type, metrics.OutcomeEmitted).Inc()
	return row, nil
}

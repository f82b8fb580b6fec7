package notification

import (
	"context"
	"strconv"

	"VidTube.com/cmd/api/handlers"
	"VidTube.com/cmd/api/router/authfunc"
	"VidTube.com/cmd/notification/service"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

type markAllData struct {
	Updated int64 `json:"updated"`
}

// List ?unreadOnly=true 或 ?unread=true 只返回未读
func List(ctx context.Context, c *app.RequestContext) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	page, limit := handlers.Page(c)
	raw := c.Query("unreadOnly")
	if raw == "" {
		raw = c.Query("unread")
	}
	unreadOnly, _ := strconv.ParseBool(raw)
	notifications, err := service.NewNotificationService(ctx).List(identity.ID, page, limit, unreadOnly)
	handlers.SendResponse(c, err, notifications)
}

func MarkAllRead(ctx context.Context, c *app.RequestContext) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	n, err := service.NewNotificationService(ctx).MarkAllRead(identity.ID)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	handlers.SendMessage(c, consts.StatusOK, "All notifications marked as read", markAllData{Updated: n})
}

func MarkRead(ctx context.Context, c *app.RequestContext) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	n, err := service.NewNotificationService(ctx).MarkRead(identity.ID, id)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	handlers.SendMessage(c, consts.StatusOK, "Notification marked as read", n)
}

package relation

import (
	"context"

	"VidTube.com/cmd/api/handlers"
	"VidTube.com/cmd/api/router/authfunc"
	"VidTube.com/cmd/relation/service"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

func Subscribe(ctx context.Context, c *app.RequestContext) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	var req service.SubscribeRequest
	if err := c.BindAndValidate(&req); err != nil {
		handlers.SendResponse(c, handlers.BindErr(err), nil)
		return
	}
	sub, err := service.NewRelationService(ctx).Subscribe(identity.ID, &req)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	handlers.SendCreated(c, "Subscribed successfully", sub)
}

func Unsubscribe(ctx context.Context, c *app.RequestContext) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	var req service.SubscribeRequest
	if len(c.Request.Body()) > 0 {
		if err := c.BindAndValidate(&req); err != nil {
			handlers.SendResponse(c, handlers.BindErr(err), nil)
			return
		}
	}
	if req.ChannelID == "" {
		req.ChannelID = c.Query("channel_id")
	}
	if err := service.NewRelationService(ctx).Unsubscribe(identity.ID, req.ChannelID); err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	handlers.SendMessage(c, consts.StatusOK, "Unsubscribed successfully", nil)
}

func ToggleNotifications(ctx context.Context, c *app.RequestContext) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	var req service.ToggleNotificationsRequest
	if err := c.BindAndValidate(&req); err != nil {
		handlers.SendResponse(c, handlers.BindErr(err), nil)
		return
	}
	sub, err := service.NewRelationService(ctx).ToggleNotifications(identity.ID, &req)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	handlers.SendMessage(c, consts.StatusOK, "Notification preference updated", sub)
}

// ListMine 我订阅的频道
func ListMine(ctx context.Context, c *app.RequestContext) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	page, limit := handlers.Page(c)
	subs, err := service.NewRelationService(ctx).ListMine(identity.ID, page, limit)
	handlers.SendResponse(c, err, subs)
}

// ListSubscribers 订阅了我的频道的用户
func ListSubscribers(ctx context.Context, c *app.RequestContext) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	page, limit := handlers.Page(c)
	subs, err := service.NewRelationService(ctx).ListSubscribers(identity.ID, page, limit)
	handlers.SendResponse(c, err, subs)
}

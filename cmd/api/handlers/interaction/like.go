package interaction

import (
	"context"

	"VidTube.com/cmd/api/handlers"
	"VidTube.com/cmd/api/router/authfunc"
	"VidTube.com/cmd/interaction/service"
	"VidTube.com/pkg/errno"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// bindLike body优先，DELETE请求没有body时读取query
func bindLike(c *app.RequestContext) (*service.LikeRequest, error) {
	var req service.LikeRequest
	if len(c.Request.Body()) > 0 {
		if err := c.BindAndValidate(&req); err != nil {
			return nil, handlers.BindErr(err)
		}
	}
	if req.VideoID == "" && req.CommentID == "" {
		req.VideoID = c.Query("video_id")
		req.CommentID = c.Query("comment_id")
	}
	return &req, nil
}

func Like(ctx context.Context, c *app.RequestContext) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	req, err := bindLike(c)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	like, err := service.NewLikeService(ctx).Like(identity.ID, req)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	handlers.SendCreated(c, "Liked successfully", like)
}

func Unlike(ctx context.Context, c *app.RequestContext) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	req, err := bindLike(c)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	if err = service.NewLikeService(ctx).Unlike(identity.ID, req); err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	handlers.SendMessage(c, consts.StatusOK, "Like removed successfully", nil)
}

// bindCommentLike /likes/comment 只接受comment_id，同时带video_id时直接拒绝
func bindCommentLike(c *app.RequestContext) (*service.LikeRequest, error) {
	req, err := bindLike(c)
	if err != nil {
		return nil, err
	}
	if req.VideoID != "" {
		return nil, errno.ParamErr.WithMessage("Only comment_id is accepted when liking a comment")
	}
	return req, nil
}

// LikeComment /likes/comment 只接受comment_id
func LikeComment(ctx context.Context, c *app.RequestContext) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	req, err := bindCommentLike(c)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	like, err := service.NewLikeService(ctx).Like(identity.ID, req)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	handlers.SendCreated(c, "Comment liked successfully", like)
}

func UnlikeComment(ctx context.Context, c *app.RequestContext) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	req, err := bindCommentLike(c)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	if err = service.NewLikeService(ctx).Unlike(identity.ID, req); err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	handlers.SendMessage(c, consts.StatusOK, "Comment like removed successfully", nil)
}

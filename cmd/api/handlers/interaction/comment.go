package interaction

import (
	"context"

	"VidTube.com/cmd/api/handlers"
	"VidTube.com/cmd/api/router/authfunc"
	"VidTube.com/cmd/interaction/service"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

type deleteCommentData struct {
	Deleted int64 `json:"deleted"`
}

// CreateComment POST /comments/:id，id为视频ID
func CreateComment(ctx context.Context, c *app.RequestContext) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	videoID, err := handlers.ParseID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	var req service.CommentRequest
	if err = c.BindAndValidate(&req); err != nil {
		handlers.SendResponse(c, handlers.BindErr(err), nil)
		return
	}
	comment, err := service.NewCommentService(ctx).CreateComment(identity.ID, videoID, &req)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	handlers.SendCreated(c, "Comment added successfully", comment)
}

func UpdateComment(ctx context.Context, c *app.RequestContext) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	var req service.CommentRequest
	if err = c.BindAndValidate(&req); err != nil {
		handlers.SendResponse(c, handlers.BindErr(err), nil)
		return
	}
	comment, err := service.NewCommentService(ctx).UpdateComment(identity, id, &req)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	handlers.SendMessage(c, consts.StatusOK, "Comment updated successfully", comment)
}

// DeleteComment 删除顶层评论时其回复一并删除
func DeleteComment(ctx context.Context, c *app.RequestContext) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	n, err := service.NewCommentService(ctx).DeleteComment(identity, id)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	handlers.SendMessage(c, consts.StatusOK, "Comment deleted successfully", deleteCommentData{Deleted: n})
}

func VideoComments(ctx context.Context, c *app.RequestContext) {
	videoID, err := handlers.ParseID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	page, limit := handlers.Page(c)
	comments, err := service.NewCommentService(ctx).ListVideoComments(videoID, authfunc.ViewerID(c), page, limit)
	handlers.SendResponse(c, err, comments)
}

// AppendReply POST /comments/reply/:id，id为顶层评论ID
func AppendReply(ctx context.Context, c *app.RequestContext) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	parentID, err := handlers.ParseID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	var req service.CommentRequest
	if err = c.BindAndValidate(&req); err != nil {
		handlers.SendResponse(c, handlers.BindErr(err), nil)
		return
	}
	reply, err := service.NewReplyService(ctx).AppendReply(identity.ID, parentID, &req)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	handlers.SendCreated(c, "Reply added successfully", reply)
}

func ListReplies(ctx context.Context, c *app.RequestContext) {
	parentID, err := handlers.ParseID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	page, limit := handlers.Page(c)
	replies, err := service.NewReplyService(ctx).ListReplies(parentID, authfunc.ViewerID(c), page, limit)
	handlers.SendResponse(c, err, replies)
}

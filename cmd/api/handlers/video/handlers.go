package video

import (
	"context"

	"VidTube.com/cmd/api/handlers"
	"VidTube.com/cmd/api/router/authfunc"
	"VidTube.com/cmd/video/service"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// List 已发布视频的搜索，支持 query/sort_by/sort_type/user_id
func List(ctx context.Context, c *app.RequestContext) {
	var req service.ListRequest
	if err := c.BindAndValidate(&req); err != nil {
		handlers.SendResponse(c, handlers.BindErr(err), nil)
		return
	}
	page, err := service.NewVideoService(ctx).List(&req)
	handlers.SendResponse(c, err, page)
}

// Upload multipart表单：video_file 与 thumbnail 为必填文件
func Upload(ctx context.Context, c *app.RequestContext) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	var req service.UploadRequest
	if err := c.BindAndValidate(&req); err != nil {
		handlers.SendResponse(c, handlers.BindErr(err), nil)
		return
	}
	var err error
	if req.VideoPath, req.VideoContentType, err = handlers.SaveUpload(c, "video_file", true); err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	if req.ThumbnailPath, req.ThumbnailContentType, err = handlers.SaveUpload(c, "thumbnail", true); err != nil {
		handlers.Discard(req.VideoPath)
		handlers.SendResponse(c, err, nil)
		return
	}
	video, err := service.NewVideoService(ctx).Upload(identity.ID, &req)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	handlers.SendCreated(c, "Video uploaded successfully", video)
}

func MyVideos(ctx context.Context, c *app.RequestContext) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	page, limit := handlers.Page(c)
	videos, err := service.NewVideoService(ctx).MyVideos(identity.ID, page, limit)
	handlers.SendResponse(c, err, videos)
}

func Get(ctx context.Context, c *app.RequestContext) {
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	video, err := service.NewVideoService(ctx).Get(id, authfunc.ViewerID(c))
	handlers.SendResponse(c, err, video)
}

// Update 支持JSON或multipart，multipart时可附带新的thumbnail
func Update(ctx context.Context, c *app.RequestContext) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	var req service.UpdateRequest
	if err = c.BindAndValidate(&req); err != nil {
		handlers.SendResponse(c, handlers.BindErr(err), nil)
		return
	}
	if req.ThumbnailPath, req.ThumbnailContentType, err = handlers.SaveUpload(c, "thumbnail", false); err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	video, err := service.NewVideoService(ctx).Update(identity, id, &req)
	handlers.SendResponse(c, err, video)
}

func TogglePublish(ctx context.Context, c *app.RequestContext) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	video, err := service.NewVideoService(ctx).TogglePublish(identity, id)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	msg := "Video unpublished"
	if video.IsPublished {
		msg = "Video published"
	}
	handlers.SendMessage(c, consts.StatusOK, msg, video)
}

func Delete(ctx context.Context, c *app.RequestContext) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	if err = service.NewVideoService(ctx).Delete(identity, id); err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	handlers.SendMessage(c, consts.StatusOK, "Video deleted successfully", nil)
}

package video

import (
	"context"

	"VidTube.com/cmd/api/handlers"
	"VidTube.com/cmd/api/router/authfunc"
	"VidTube.com/cmd/video/service"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

func CreatePlaylist(ctx context.Context, c *app.RequestContext) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	var req service.CreatePlaylistRequest
	if err := c.BindAndValidate(&req); err != nil {
		handlers.SendResponse(c, handlers.BindErr(err), nil)
		return
	}
	playlist, err := service.NewPlaylistService(ctx).Create(identity.ID, &req)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	handlers.SendCreated(c, "Playlist created successfully", playlist)
}

func DeletePlaylist(ctx context.Context, c *app.RequestContext) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	if err = service.NewPlaylistService(ctx).Delete(identity.ID, id); err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	handlers.SendMessage(c, consts.StatusOK, "Playlist deleted successfully", nil)
}

// UserPlaylists 非本人只能看到公开的播放列表
func UserPlaylists(ctx context.Context, c *app.RequestContext) {
	userID, err := handlers.ParseID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	page, limit := handlers.Page(c)
	playlists, err := service.NewPlaylistService(ctx).ListByUser(userID, authfunc.ViewerID(c), page, limit)
	handlers.SendResponse(c, err, playlists)
}

func AddPlaylistVideo(ctx context.Context, c *app.RequestContext) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	var req service.AddVideoRequest
	if err = c.BindAndValidate(&req); err != nil {
		handlers.SendResponse(c, handlers.BindErr(err), nil)
		return
	}
	entry, err := service.NewPlaylistService(ctx).AddVideo(identity.ID, id, &req)
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	handlers.SendCreated(c, "Video added to playlist", entry)
}

func PlaylistVideos(ctx context.Context, c *app.RequestContext) {
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	page, limit := handlers.Page(c)
	videos, err := service.NewPlaylistService(ctx).ListVideos(id, authfunc.ViewerID(c), page, limit)
	handlers.SendResponse(c, err, videos)
}

func RemovePlaylistVideo(ctx context.Context, c *app.RequestContext) {
	identity, ok := authfunc.MustIdentity(c)
	if !ok {
		return
	}
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	videoID, err := handlers.ParseID(c, "video_id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	if err = service.NewPlaylistService(ctx).RemoveVideo(identity.ID, id, videoID); err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	handlers.SendMessage(c, consts.StatusOK, "Video removed from playlist", nil)
}

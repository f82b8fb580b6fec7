package main

import (
	"VidTube.com/cmd/api/handlers"
	handler_admin "VidTube.com/cmd/api/handlers/admin"
	handler_interaction "VidTube.com/cmd/api/handlers/interaction"
	handler_notification "VidTube.com/cmd/api/handlers/notification"
	handler_relation "VidTube.com/cmd/api/handlers/relation"
	handler_user "VidTube.com/cmd/api/handlers/user"
	handler_video "VidTube.com/cmd/api/handlers/video"
	"VidTube.com/cmd/api/router/authfunc"
	"VidTube.com/pkg/jwt"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func _authMW() []app.HandlerFunc     { return authfunc.Auth() }
func _optionalMW() []app.HandlerFunc { return authfunc.OptionalAuth() }
func _adminMW() []app.HandlerFunc    { return authfunc.AdminOnly() }

// register 注册所有路由
func register(r *server.Hertz) {
	r.GET(`/health`, handlers.Health)
	r.GET(`/metrics`, adaptor.HertzHandler(promhttp.Handler()))

	users := r.Group(`/users`)
	{
		users.POST(`/signup`, handler_user.Signup)
		users.POST(`/login`, jwt.AuthMiddleware.LoginHandler)
		users.GET(`/refresh_token`, jwt.AuthMiddleware.RefreshHandler)
		users.GET(`/profile/:username`, append(_optionalMW(), handler_user.GetProfile)...)
		users.GET(`/me`, append(_authMW(), handler_user.GetMe)...)
		users.PUT(`/me`, append(_authMW(), handler_user.UpdateProfile)...)
		users.PATCH(`/me/avatar`, append(_authMW(), handler_user.UpdateAvatar)...)
		users.PATCH(`/me/cover`, append(_authMW(), handler_user.UpdateCover)...)
		users.PATCH(`/change-password`, append(_authMW(), handler_user.ChangePassword)...)
		users.GET(`/history`, append(_authMW(), handler_user.History)...)
	}

	videos := r.Group(`/videos`)
	{
		videos.GET(``, handler_video.List)
		videos.POST(``, append(_authMW(), handler_video.Upload)...)
		videos.GET(`/my-videos`, append(_authMW(), handler_video.MyVideos)...)
		videos.GET(`/:id`, append(_optionalMW(), handler_video.Get)...)
		videos.PUT(`/:id`, append(_authMW(), handler_video.Update)...)
		videos.PATCH(`/:id/publish`, append(_authMW(), handler_video.TogglePublish)...)
		videos.DELETE(`/:id`, append(_authMW(), handler_video.Delete)...)
	}

	comments := r.Group(`/comments`)
	{
		comments.GET(`/video/:id`, append(_optionalMW(), handler_interaction.VideoComments)...)
		comments.GET(`/reply/:id`, append(_optionalMW(), handler_interaction.ListReplies)...)
		comments.POST(`/reply/:id`, append(_authMW(), handler_interaction.AppendReply)...)
		comments.POST(`/:id`, append(_authMW(), handler_interaction.CreateComment)...)
		comments.PATCH(`/:id`, append(_authMW(), handler_interaction.UpdateComment)...)
		comments.DELETE(`/:id`, append(_authMW(), handler_interaction.DeleteComment)...)
	}

	likes := r.Group(`/likes`, _authMW()...)
	{
		likes.POST(``, handler_interaction.Like)
		likes.DELETE(``, handler_interaction.Unlike)
		likes.POST(`/comment`, handler_interaction.LikeComment)
		likes.DELETE(`/comment`, handler_interaction.UnlikeComment)
	}

	subscriptions := r.Group(`/subscriptions`, _authMW()...)
	{
		subscriptions.GET(``, handler_relation.ListMine)
		subscriptions.POST(``, handler_relation.Subscribe)
		subscriptions.DELETE(``, handler_relation.Unsubscribe)
		subscriptions.GET(`/subscribers`, handler_relation.ListSubscribers)
		subscriptions.PATCH(`/notifications`, handler_relation.ToggleNotifications)
	}

	notifications := r.Group(`/notifications`, _authMW()...)
	{
		notifications.GET(``, handler_notification.List)
		notifications.PATCH(`/read`, handler_notification.MarkAllRead)
		notifications.PATCH(`/read/:id`, handler_notification.MarkRead)
	}

	watchLater := r.Group(`/watch-later`, _authMW()...)
	{
		watchLater.GET(``, handler_video.ListWatchLater)
		watchLater.POST(`/:id`, handler_video.AddWatchLater)
		watchLater.DELETE(`/:id`, handler_video.RemoveWatchLater)
	}

	playlists := r.Group(`/playlists`)
	{
		playlists.POST(``, append(_authMW(), handler_video.CreatePlaylist)...)
		playlists.DELETE(`/:id`, append(_authMW(), handler_video.DeletePlaylist)...)
		playlists.GET(`/:id/user`, append(_optionalMW(), handler_video.UserPlaylists)...)
		playlists.GET(`/:id/videos`, append(_optionalMW(), handler_video.PlaylistVideos)...)
		playlists.POST(`/:id/videos`, append(_authMW(), handler_video.AddPlaylistVideo)...)
		playlists.DELETE(`/:id/videos/:video_id`, append(_authMW(), handler_video.RemovePlaylistVideo)...)
	}

	admin := r.Group(`/admin`, _adminMW()...)
	{
		admin.POST(`/reconcile/videos/:id`, handler_admin.ReconcileVideo)
		admin.POST(`/reconcile/users/:id`, handler_admin.ReconcileUser)
		admin.POST(`/reconcile/sweep`, handler_admin.Sweep)
	}
}

package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"VidTube.com/cmd/dal/daltest"
	interactionservice "VidTube.com/cmd/interaction/service"
	"VidTube.com/cmd/model"
	relationservice "VidTube.com/cmd/relation/service"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/oss"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useLocalStore(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev := oss.Store
	oss.Store = oss.NewLocalStore(dir, "/media")
	t.Cleanup(func() { oss.Store = prev })
	return dir
}

func tempFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestListVideos(t *testing.T) {
	ctx := context.Background()
	daltest.Open(t)
	u := daltest.CreateUser(t, "alice")
	other := daltest.CreateUser(t, "bob")
	daltest.CreateVideo(t, u.ID, "Go concurrency", true)
	daltest.CreateVideo(t, u.ID, "100%_real", true)
	daltest.CreateVideo(t, u.ID, "draft go", false)
	daltest.CreateVideo(t, other.ID, "cooking", true)

	page, err := NewVideoService(ctx).List(&ListRequest{Query: "GO"})
	require.NoError(t, err)
	require.Len(t, page.Videos, 1)
	assert.Equal(t, "Go concurrency", page.Videos[0].Title)
	require.NotNil(t, page.Videos[0].Owner)
	assert.Equal(t, "alice", page.Videos[0].Owner.Username)

	t.Run("wildcards are literal", func(t *testing.T) {
		page, err := NewVideoService(ctx).List(&ListRequest{Query: "%_"})
		require.NoError(t, err)
		require.Len(t, page.Videos, 1)
		assert.Equal(t, "100%_real", page.Videos[0].Title)
	})

	t.Run("by user", func(t *testing.T) {
		page, err := NewVideoService(ctx).List(&ListRequest{UserID: fmt.Sprint(other.ID)})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.TotalResults)

		_, err = NewVideoService(ctx).List(&ListRequest{UserID: "x"})
		assert.True(t, errors.Is(err, errno.ParamErr))
	})

	t.Run("paging and sort", func(t *testing.T) {
		page, err := NewVideoService(ctx).List(&ListRequest{Page: 1, Limit: 2, SortBy: "title", SortType: "asc"})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.TotalResults)
		assert.Equal(t, int64(2), page.TotalPages)
		require.Len(t, page.Videos, 2)
		assert.Equal(t, "100%_real", page.Videos[0].Title)
	})

	t.Run("my videos include drafts", func(t *testing.T) {
		page, err := NewVideoService(ctx).MyVideos(u.ID, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.TotalResults)
	})
}

func TestGetVideo(t *testing.T) {
	ctx := context.Background()
	db := daltest.Open(t)
	owner := daltest.CreateUser(t, "owner")
	viewer := daltest.CreateUser(t, "viewer")
	v := daltest.CreateVideo(t, owner.ID, "clip", true)
	draft := daltest.CreateVideo(t, owner.ID, "draft", false)

	got, err := NewVideoService(ctx).Get(v.ID, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Views)
	_, err = NewVideoService(ctx).Get(v.ID, 0)
	require.NoError(t, err)

	var stored model.Video
	daltest.Reload(t, db, &stored, v.ID)
	assert.Equal(t, int64(2), stored.Views)

	var history int64
	require.NoError(t, db.Model(&model.WatchHistory{}).Where("user_id = ?", viewer.ID).Count(&history).Error)
	assert.Equal(t, int64(1), history)

	_, err = NewVideoService(ctx).Get(draft.ID, viewer.ID)
	assert.True(t, errors.Is(err, errno.NotFoundErr))
	_, err = NewVideoService(ctx).Get(draft.ID, owner.ID)
	assert.NoError(t, err)
}

func TestUploadAndDelete(t *testing.T) {
	ctx := context.Background()
	db := daltest.Open(t)
	dir := useLocalStore(t)
	owner := daltest.CreateUser(t, "owner")
	fan := daltest.CreateUser(t, "fan")

	t.Run("missing fields", func(t *testing.T) {
		_, err := NewVideoService(ctx).Upload(owner.ID, &UploadRequest{Title: "t", Description: "d"})
		assert.True(t, errors.Is(err, errno.ParamErr))
	})

	videoPath := tempFile(t, "clip.mp4", "not really a video")
	thumbPath := tempFile(t, "thumb.jpg", "jpeg")
	v, err := NewVideoService(ctx).Upload(owner.ID, &UploadRequest{
		Title:         " My clip ",
		Description:   "desc",
		Tags:          "Go, go ,tips",
		VideoPath:     videoPath,
		ThumbnailPath: thumbPath,
	})
	require.NoError(t, err)
	assert.Equal(t, "My clip", v.Title)
	assert.Equal(t, "go,tips", v.Tags)
	assert.False(t, v.IsPublished)
	assert.FileExists(t, filepath.Join(dir, filepath.FromSlash(v.VideoPublicID)))
	assert.NoFileExists(t, videoPath)

	_, err = NewVideoService(ctx).TogglePublish(fan.Identity(), v.ID)
	assert.True(t, errors.Is(err, errno.ForbiddenErr))
	_, err = NewVideoService(ctx).TogglePublish(owner.Identity(), v.ID)
	require.NoError(t, err)

	_, err = interactionservice.NewLikeService(ctx).LikeVideo(fan.ID, v.ID)
	require.NoError(t, err)
	_, err = interactionservice.NewCommentService(ctx).CreateComment(fan.ID, v.ID, &interactionservice.CommentRequest{Content: "cool"})
	require.NoError(t, err)
	_, err = NewWatchLaterService(ctx).Add(fan.ID, v.ID)
	require.NoError(t, err)

	err = NewVideoService(ctx).Delete(fan.Identity(), v.ID)
	assert.True(t, errors.Is(err, errno.ForbiddenErr))
	require.NoError(t, NewVideoService(ctx).Delete(owner.Identity(), v.ID))

	for _, m := range []interface{}{&model.Video{}, &model.Comment{}, &model.Like{}, &model.WatchLater{}} {
		var n int64
		require.NoError(t, db.Model(m).Count(&n).Error)
		assert.Zero(t, n, "%T", m)
	}
	assert.NoFileExists(t, filepath.Join(dir, filepath.FromSlash(v.VideoPublicID)))

	err = NewVideoService(ctx).Delete(owner.Identity(), v.ID)
	assert.True(t, errors.Is(err, errno.NotFoundErr))
}

func TestUpdateVideo(t *testing.T) {
	ctx := context.Background()
	daltest.Open(t)
	owner := daltest.CreateUser(t, "owner")
	v := daltest.CreateVideo(t, owner.ID, "clip", true)

	_, err := NewVideoService(ctx).Update(owner.Identity(), v.ID, &UpdateRequest{})
	assert.True(t, errors.Is(err, errno.ParamErr))

	empty := "  "
	_, err = NewVideoService(ctx).Update(owner.Identity(), v.ID, &UpdateRequest{Title: &empty})
	assert.True(t, errors.Is(err, errno.ParamErr))

	title := "renamed"
	got, err := NewVideoService(ctx).Update(owner.Identity(), v.ID, &UpdateRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
}

func TestPublishNotifiesSubscribers(t *testing.T) {
	ctx := context.Background()
	db := daltest.Open(t)
	owner := daltest.CreateUser(t, "owner")
	loud := daltest.CreateUser(t, "loud")
	quiet := daltest.CreateUser(t, "quiet")
	off := false
	_, err := relationservice.NewRelationService(ctx).Subscribe(loud.ID, &relationservice.SubscribeRequest{ChannelID: fmt.Sprint(owner.ID)})
	require.NoError(t, err)
	_, err = relationservice.NewRelationService(ctx).Subscribe(quiet.ID, &relationservice.SubscribeRequest{ChannelID: fmt.Sprint(owner.ID), NotificationsEnabled: &off})
	require.NoError(t, err)

	v := daltest.CreateVideo(t, owner.ID, "premiere", false)
	got, err := NewVideoService(ctx).TogglePublish(owner.Identity(), v.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPublished)

	count := func(id int64) int64 {
		var n int64
		require.NoError(t, db.Model(&model.Notification{}).
			Where("recipient_id = ? AND type = ?", id, constants.NotificationVideo).Count(&n).Error)
		return n
	}
	assert.Equal(t, int64(1), count(loud.ID))
	assert.Zero(t, count(quiet.ID))

	// 取消发布不通知
	got, err = NewVideoService(ctx).TogglePublish(owner.Identity(), v.ID)
	require.NoError(t, err)
	assert.False(t, got.IsPublished)
	assert.Equal(t, int64(1), count(loud.ID))
}

func TestPlaylists(t *testing.T) {
	ctx := context.Background()
	daltest.Open(t)
	owner := daltest.CreateUser(t, "owner")
	other := daltest.CreateUser(t, "other")
	v := daltest.CreateVideo(t, other.ID, "clip", true)
	draft := daltest.CreateVideo(t, other.ID, "draft", false)

	_, err := NewPlaylistService(ctx).Create(owner.ID, &CreatePlaylistRequest{Name: " "})
	assert.True(t, errors.Is(err, errno.ParamErr))

	private := false
	pub, err := NewPlaylistService(ctx).Create(owner.ID, &CreatePlaylistRequest{Name: "favs"})
	require.NoError(t, err)
	assert.True(t, pub.IsPublic)
	priv, err := NewPlaylistService(ctx).Create(owner.ID, &CreatePlaylistRequest{Name: "secret", IsPublic: &private})
	require.NoError(t, err)

	t.Run("add video", func(t *testing.T) {
		req := &AddVideoRequest{VideoID: fmt.Sprint(v.ID)}
		_, err := NewPlaylistService(ctx).AddVideo(owner.ID, pub.ID, req)
		require.NoError(t, err)
		_, err = NewPlaylistService(ctx).AddVideo(owner.ID, pub.ID, req)
		assert.True(t, errors.Is(err, errno.ConflictErr))
		_, err = NewPlaylistService(ctx).AddVideo(other.ID, pub.ID, req)
		assert.True(t, errors.Is(err, errno.ForbiddenErr))
		_, err = NewPlaylistService(ctx).AddVideo(owner.ID, pub.ID, &AddVideoRequest{VideoID: fmt.Sprint(draft.ID)})
		assert.True(t, errors.Is(err, errno.NotFoundErr))
	})

	t.Run("visibility", func(t *testing.T) {
		page, err := NewPlaylistService(ctx).ListByUser(owner.ID, other.ID, 1, 10)
		require.NoError(t, err)
		require.Len(t, page.Playlists, 1)
		assert.Equal(t, int64(1), page.Playlists[0].VideoCount)

		page, err = NewPlaylistService(ctx).ListByUser(owner.ID, owner.ID, 1, 10)
		require.NoError(t, err)
		assert.Len(t, page.Playlists, 2)

		_, err = NewPlaylistService(ctx).ListVideos(priv.ID, other.ID, 1, 10)
		assert.True(t, errors.Is(err, errno.ForbiddenErr))

		videos, err := NewPlaylistService(ctx).ListVideos(pub.ID, 0, 1, 10)
		require.NoError(t, err)
		require.Len(t, videos.Videos, 1)
		assert.Equal(t, v.ID, videos.Videos[0].ID)
	})

	t.Run("remove video", func(t *testing.T) {
		require.NoError(t, NewPlaylistService(ctx).RemoveVideo(owner.ID, pub.ID, v.ID))
		err := NewPlaylistService(ctx).RemoveVideo(owner.ID, pub.ID, v.ID)
		assert.True(t, errors.Is(err, errno.NotFoundErr))
	})

	t.Run("delete", func(t *testing.T) {
		err := NewPlaylistService(ctx).Delete(other.ID, priv.ID)
		assert.True(t, errors.Is(err, errno.ForbiddenErr))
		require.NoError(t, NewPlaylistService(ctx).Delete(owner.ID, priv.ID))
		_, err = NewPlaylistService(ctx).ListVideos(priv.ID, owner.ID, 1, 10)
		assert.True(t, errors.Is(err, errno.NotFoundErr))
	})
}

func TestWatchLater(t *testing.T) {
	ctx := context.Background()
	daltest.Open(t)
	u := daltest.CreateUser(t, "alice")
	v := daltest.CreateVideo(t, u.ID, "clip", true)
	draft := daltest.CreateVideo(t, u.ID, "draft", false)

	_, err := NewWatchLaterService(ctx).Add(u.ID, draft.ID)
	assert.True(t, errors.Is(err, errno.NotFoundErr))

	_, err = NewWatchLaterService(ctx).Add(u.ID, v.ID)
	require.NoError(t, err)
	_, err = NewWatchLaterService(ctx).Add(u.ID, v.ID)
	assert.True(t, errors.Is(err, errno.ConflictErr))

	videos, err := NewWatchLaterService(ctx).List(u.ID)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, v.ID, videos[0].ID)

	require.NoError(t, NewWatchLaterService(ctx).Remove(u.ID, v.ID))
	err = NewWatchLaterService(ctx).Remove(u.ID, v.ID)
	assert.True(t, errors.Is(err, errno.NotFoundErr))
}

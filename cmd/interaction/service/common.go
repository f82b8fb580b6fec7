package service

import (
	"context"

	"VidTube.com/cmd/model"
	userdb "VidTube.com/cmd/user/dal/db"
	videodb "VidTube.com/cmd/video/dal/db"
	"VidTube.com/pkg/errno"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// loadVisibleVideo 未发布的视频只对作者可见
func loadVisibleVideo(ctx context.Context, videoID, viewerID int64) (*model.Video, error) {
	video, err := videodb.GetVideoByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil || (!video.IsPublished && video.UserID != viewerID) {
		return nil, errno.NotFoundErr.WithMessage("Video not found")
	}
	return video, nil
}

// senderName 通知文案中的用户名，查询失败时使用占位
func senderName(ctx context.Context, userID int64) string {
	user, err := userdb.GetUserByID(ctx, userID)
	if err != nil {
		hlog.CtxWarnf(ctx, "load sender %d failed: %v", userID, err)
		return "Someone"
	}
	if user == nil {
		return "Someone"
	}
	return user.Username
}

func attachAuthors(ctx context.Context, comments []*model.Comment) error {
	ids := make([]int64, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.UserID)
	}
	users, err := userdb.GetUserSummaries(ctx, ids)
	if err != nil {
		return err
	}
	for _, c := range comments {
		if u, ok := users[c.UserID]; ok {
			u := u
			c.Author = &u
		}
	}
	return nil
}

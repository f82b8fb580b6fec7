package service

import (
	"context"
	"strings"

	"VidTube.com/cmd/model"
	userdb "VidTube.com/cmd/user/dal/db"
	"VidTube.com/cmd/video/dal/db"
	"VidTube.com/pkg/errno"
)

// loadVisibleVideo 未发布的视频只对作者可见，其他人看到的是NotFound
func loadVisibleVideo(ctx context.Context, videoID, viewerID int64) (*model.Video, error) {
	video, err := db.GetVideoByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil || (!video.IsPublished && video.UserID != viewerID) {
		return nil, errno.NotFoundErr.WithMessage("Video not found")
	}
	return video, nil
}

// loadOwnVideo 先判断存在再判断归属
func loadOwnVideo(ctx context.Context, identity *model.Identity, videoID int64, allowAdmin bool) (*model.Video, error) {
	video, err := db.GetVideoByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, errno.NotFoundErr.WithMessage("Video not found")
	}
	if video.UserID != identity.ID && !(allowAdmin && identity.IsAdmin()) {
		return nil, errno.ForbiddenErr.WithMessage("You are not the owner of this video")
	}
	return video, nil
}

func attachOwners(ctx context.Context, videos ...*model.Video) error {
	ids := make([]int64, 0, len(videos))
	for _, v := range videos {
		ids = append(ids, v.UserID)
	}
	users, err := userdb.GetUserSummaries(ctx, ids)
	if err != nil {
		return err
	}
	for _, v := range videos {
		if u, ok := users[v.UserID]; ok {
			u := u
			v.Owner = &u
		}
	}
	return nil
}

// normalizeTags 逗号分隔，去掉空白与重复
func normalizeTags(raw string) string {
	seen := make(map[string]struct{})
	tags := make([]string, 0)
	for _, t := range strings.Split(raw, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return strings.Join(tags, ",")
}

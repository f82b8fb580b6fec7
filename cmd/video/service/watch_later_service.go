package service

import (
	"context"

	"VidTube.com/cmd/model"
	"VidTube.com/cmd/video/dal/db"
	"VidTube.com/pkg/counter"
	"VidTube.com/pkg/errno"
	"github.com/pkg/errors"
)

type WatchLaterService struct {
	ctx context.Context
}

func NewWatchLaterService(ctx context.Context) *WatchLaterService {
	return &WatchLaterService{ctx: ctx}
}

// Add 只能添加已发布的视频
func (s *WatchLaterService) Add(userID, videoID int64) (*model.WatchLater, error) {
	video, err := db.GetVideoByID(s.ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil || !video.IsPublished {
		return nil, errno.NotFoundErr.WithMessage("Video not found")
	}
	present, err := db.InWatchLater(s.ctx, userID, videoID)
	if err != nil {
		return nil, err
	}
	if present {
		return nil, errno.ConflictErr.WithMessage("Video already in watch later list")
	}
	entry, err := db.AddWatchLater(s.ctx, userID, videoID)
	if errors.Is(err, counter.ErrDuplicate) {
		return nil, errno.ConflictErr.WithMessage("Video already in watch later list")
	}
	return entry, err
}

func (s *WatchLaterService) List(userID int64) ([]*model.Video, error) {
	videos, err := db.ListWatchLater(s.ctx, userID)
	if err != nil {
		return nil, err
	}
	if err = attachOwners(s.ctx, videos...); err != nil {
		return nil, err
	}
	return videos, nil
}

func (s *WatchLaterService) Remove(userID, videoID int64) error {
	err := db.RemoveWatchLater(s.ctx, userID, videoID)
	if errors.Is(err, counter.ErrNothingDeleted) {
		return errno.NotFoundErr.WithMessage("Video not found in watch later list")
	}
	return err
}

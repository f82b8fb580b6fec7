package service

import (
	"time"

	"VidTube.com/cmd/model"
	"VidTube.com/cmd/user/dal/db"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/utils"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

type HistoryPage struct {
	Videos      []*model.Video `json:"videos"`
	TotalCount  int64          `json:"total_count"`
	CurrentPage int            `json:"current_page"`
	TotalPages  int64          `json:"total_pages"`
}

func (s *UserService) History(userID int64, page, limit int) (*HistoryPage, error) {
	page, limit = utils.ParsePage(page, limit, constants.DefaultLimit, constants.MaxLimit)
	videos, total, err := db.ListWatchHistory(s.ctx, userID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	if videos == nil {
		videos = []*model.Video{}
	}
	return &HistoryPage{
		Videos:      videos,
		TotalCount:  total,
		CurrentPage: page,
		TotalPages:  utils.TotalPages(total, limit),
	}, nil
}

// RecordWatch 观看记录是附带的副作用，失败只记录日志
func (s *UserService) RecordWatch(userID, videoID int64) {
	if err := db.RecordWatch(s.ctx, userID, videoID, time.Now()); err != nil {
		hlog.CtxWarnf(s.ctx, "record watch history user=%d video=%d: %v", userID, videoID, err)
	}
}

package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"VidTube.com/cmd/model"
	notifyservice "VidTube.com/cmd/notification/service"
	relationdb "VidTube.com/cmd/relation/dal/db"
	userservice "VidTube.com/cmd/user/service"
	"VidTube.com/cmd/video/dal/db"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/counter"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/oss"
	"VidTube.com/pkg/utils"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
)

const fanoutBatch = 500

type VideoService struct {
	ctx context.Context
}

func NewVideoService(ctx context.Context) *VideoService {
	return &VideoService{ctx: ctx}
}

type ListRequest struct {
	Page     int    `query:"page"`
	Limit    int    `query:"limit"`
	Query    string `query:"query"`
	SortBy   string `query:"sort_by"`
	SortType string `query:"sort_type"`
	UserID   string `query:"user_id"`
}

type VideoPage struct {
	Videos       []*model.Video `json:"videos"`
	TotalResults int64          `json:"total_results"`
	CurrentPage  int            `json:"current_page"`
	TotalPages   int64          `json:"total_pages"`
}

// List 已发布视频的搜索与分页
func (s *VideoService) List(req *ListRequest) (*VideoPage, error) {
	page, limit := utils.ParsePage(req.Page, req.Limit, constants.DefaultLimit, constants.MaxLimit)
	q := &db.VideoQuery{
		Query:         req.Query,
		SortBy:        req.SortBy,
		SortType:      req.SortType,
		OnlyPublished: true,
		Offset:        (page - 1) * limit,
		Limit:         limit,
	}
	if req.UserID != "" {
		uid, err := utils.ConvertStringToInt64(req.UserID)
		if err != nil {
			return nil, errno.ParamErr.WithMessage("Invalid user_id")
		}
		q.UserID = uid
	}
	return s.page(q, page, limit)
}

// MyVideos 作者自己的视频，包含未发布的
func (s *VideoService) MyVideos(userID int64, page, limit int) (*VideoPage, error) {
	page, limit = utils.ParsePage(page, limit, constants.DefaultLimit, constants.MaxLimit)
	return s.page(&db.VideoQuery{
		UserID: userID,
		Offset: (page - 1) * limit,
		Limit:  limit,
	}, page, limit)
}

func (s *VideoService) page(q *db.VideoQuery, page, limit int) (*VideoPage, error) {
	videos, total, err := db.ListVideos(s.ctx, q)
	if err != nil {
		return nil, err
	}
	if err = attachOwners(s.ctx, videos...); err != nil {
		return nil, err
	}
	return &VideoPage{
		Videos:       videos,
		TotalResults: total,
		CurrentPage:  page,
		TotalPages:   utils.TotalPages(total, limit),
	}, nil
}

// Get 播放量加一，登录用户记录观看历史
func (s *VideoService) Get(videoID, viewerID int64) (*model.Video, error) {
	video, err := loadVisibleVideo(s.ctx, videoID, viewerID)
	if err != nil {
		return nil, err
	}
	if err = db.IncrementViews(s.ctx, video.ID); err != nil {
		if errors.Is(err, counter.ErrTargetNotFound) {
			return nil, errno.NotFoundErr.WithMessage("Video not found")
		}
		return nil, err
	}
	video.Views++
	if viewerID != 0 {
		userservice.NewUserService(s.ctx).RecordWatch(viewerID, video.ID)
	}
	if err = attachOwners(s.ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

type UpdateRequest struct {
	Title       *string `json:"title" form:"title"`
	Description *string `json:"description" form:"description"`
	Tags        *string `json:"tags" form:"tags"`
	// 新封面的本地路径，由handler保存上传文件后填入
	ThumbnailPath        string `json:"-" form:"-"`
	ThumbnailContentType string `json:"-" form:"-"`
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", errno.ParamErr.WithMessage("Title is required")
	}
	if utf8.RuneCountInString(title) > constants.MaxTitleLength {
		return "", errno.ParamErr.WithMessage(fmt.Sprintf("Title must be at most %d characters", constants.MaxTitleLength))
	}
	return title, nil
}

func (s *VideoService) Update(identity *model.Identity, videoID int64, req *UpdateRequest) (*model.Video, error) {
	defer removeTemp(req.ThumbnailPath)
	video, err := loadOwnVideo(s.ctx, identity, videoID, false)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]interface{})
	if req.Title != nil {
		title, err := validateTitle(*req.Title)
		if err != nil {
			return nil, err
		}
		fields["title"] = title
		video.Title = title
	}
	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		fields["description"] = desc
		video.Description = desc
	}
	if req.Tags != nil {
		tags := normalizeTags(*req.Tags)
		fields["tags"] = tags
		video.Tags = tags
	}

	var oldThumbnail string
	if req.ThumbnailPath != "" {
		media, err := upload(s.ctx, req.ThumbnailPath, "thumbnails", req.ThumbnailContentType)
		if err != nil {
			return nil, err
		}
		oldThumbnail = video.ThumbnailPublicID
		fields["thumbnail_url"] = media.URL
		fields["thumbnail_public_id"] = media.PublicID
		video.ThumbnailURL = media.URL
		video.ThumbnailPublicID = media.PublicID
	}
	if len(fields) == 0 {
		return nil, errno.ParamErr.WithMessage("Nothing to update")
	}
	if err = db.UpdateVideo(s.ctx, video.ID, fields); err != nil {
		if req.ThumbnailPath != "" {
			oss.DeleteQuietly(s.ctx, oss.Store, video.ThumbnailPublicID)
		}
		return nil, err
	}
	if oldThumbnail != "" {
		oss.DeleteQuietly(s.ctx, oss.Store, oldThumbnail)
	}
	return video, nil
}

// TogglePublish 切换发布状态，从未发布变为发布时通知开启了提醒的订阅者
func (s *VideoService) TogglePublish(identity *model.Identity, videoID int64) (*model.Video, error) {
	video, err := loadOwnVideo(s.ctx, identity, videoID, false)
	if err != nil {
		return nil, err
	}
	video.IsPublished = !video.IsPublished
	if err = db.SetPublished(s.ctx, video.ID, video.IsPublished); err != nil {
		return nil, err
	}
	if video.IsPublished {
		s.notifySubscribers(video)
	}
	return video, nil
}

func (s *VideoService) notifySubscribers(video *model.Video) {
	owner := "A channel you follow"
	if err := attachOwners(s.ctx, video); err != nil {
		hlog.CtxWarnf(s.ctx, "load owner of video %d failed: %v", video.ID, err)
	} else if video.Owner != nil {
		owner = video.Owner.Username
	}
	content := fmt.Sprintf("%s published a new video: %s", owner, video.Title)

	var after int64
	for {
		ids, err := relationdb.ListNotifiableSubscriberIDs(s.ctx, video.UserID, after, fanoutBatch)
		if err != nil {
			hlog.CtxErrorf(s.ctx, "load subscribers of %d failed: %v", video.UserID, err)
			return
		}
		for _, id := range ids {
			notifyservice.Emit(s.ctx, &notifyservice.Notice{
				RecipientID: id,
				SenderID:    video.UserID,
				Type:        constants.NotificationVideo,
				Content:     content,
				EntityType:  constants.EntityVideo,
				EntityID:    &video.ID,
			})
		}
		if len(ids) < fanoutBatch {
			return
		}
		after = ids[len(ids)-1]
	}
}

// Delete 作者或管理员删除视频，数据库提交后再删除媒体文件
func (s *VideoService) Delete(identity *model.Identity, videoID int64) error {
	video, err := loadOwnVideo(s.ctx, identity, videoID, true)
	if err != nil {
		return err
	}
	if err = db.DeleteVideo(s.ctx, video.ID); err != nil {
		if errors.Is(err, counter.ErrNothingDeleted) {
			return errno.NotFoundErr.WithMessage("Video not found")
		}
		return err
	}
	oss.DeleteQuietly(s.ctx, oss.Store, video.VideoPublicID, video.ThumbnailPublicID)
	return nil
}

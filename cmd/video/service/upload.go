package service

import (
	"context"
	"os"
	"strings"

	"VidTube.com/cmd/model"
	"VidTube.com/cmd/video/dal/db"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/oss"
	"VidTube.com/pkg/utils"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
)

// UploadRequest 表单字段与handler落盘后的临时文件
type UploadRequest struct {
	Title                string `form:"title"`
	Description          string `form:"description"`
	Tags                 string `form:"tags"`
	VideoPath            string `form:"-"`
	VideoContentType     string `form:"-"`
	ThumbnailPath        string `form:"-"`
	ThumbnailContentType string `form:"-"`
}

func upload(ctx context.Context, localPath, folder, contentType string) (*oss.Media, error) {
	if oss.Store == nil {
		return nil, errno.ServiceErr.WithMessage("Media storage is not configured")
	}
	media, err := oss.Store.Upload(ctx, localPath, folder, contentType)
	if err != nil {
		return nil, errors.WithMessagef(err, "upload %s", folder)
	}
	return media, nil
}

// Upload 上传视频与封面，新视频默认不发布
func (s *VideoService) Upload(userID int64, req *UploadRequest) (*model.Video, error) {
	defer removeTemp(req.VideoPath, req.ThumbnailPath)

	title, err := validateTitle(req.Title)
	if err != nil {
		return nil, err
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, errno.ParamErr.WithMessage("Description is required")
	}
	if req.VideoPath == "" || req.ThumbnailPath == "" {
		return nil, errno.ParamErr.WithMessage("Video file and thumbnail are required")
	}

	duration, err := utils.ProbeDuration(req.VideoPath)
	if err != nil {
		hlog.CtxWarnf(s.ctx, "probe duration of %s failed: %v", req.VideoPath, err)
	}

	videoMedia, err := upload(s.ctx, req.VideoPath, "videos", req.VideoContentType)
	if err != nil {
		return nil, err
	}
	thumbMedia, err := upload(s.ctx, req.ThumbnailPath, "thumbnails", req.ThumbnailContentType)
	if err != nil {
		oss.DeleteQuietly(s.ctx, oss.Store, videoMedia.PublicID)
		return nil, err
	}

	video := &model.Video{
		UserID:            userID,
		Title:             title,
		Description:       description,
		Tags:              normalizeTags(req.Tags),
		VideoURL:          videoMedia.URL,
		VideoPublicID:     videoMedia.PublicID,
		ThumbnailURL:      thumbMedia.URL,
		ThumbnailPublicID: thumbMedia.PublicID,
		Duration:          duration,
	}
	if err = db.CreateVideo(s.ctx, video); err != nil {
		oss.DeleteQuietly(s.ctx, oss.Store, videoMedia.PublicID, thumbMedia.PublicID)
		return nil, err
	}
	return video, nil
}

func removeTemp(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			hlog.Warnf("remove temp file %s: %v", p, err)
		}
	}
}

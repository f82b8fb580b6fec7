package service

import (
	"context"
	"fmt"

	"VidTube.com/cmd/interaction/dal/db"
	"VidTube.com/cmd/model"
	notifyservice "VidTube.com/cmd/notification/service"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/counter"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/utils"
	"github.com/pkg/errors"
)

type LikeService struct {
	ctx context.Context
}

func NewLikeService(ctx context.Context) *LikeService {
	return &LikeService{ctx: ctx}
}

// LikeRequest VideoID与CommentID必须恰好给出一个
type LikeRequest struct {
	VideoID   string `json:"video_id"`
	CommentID string `json:"comment_id"`
}

type likeTarget struct {
	videoID   int64
	commentID int64
}

func parseTargetID(raw, name string) (int64, error) {
	id, err := utils.ConvertStringToInt64(raw)
	if err != nil || id <= 0 {
		return 0, errno.ParamErr.WithMessage(fmt.Sprintf("Invalid %s", name))
	}
	return id, nil
}

// resolve 在写入之前校验点赞目标的互斥性
func (r *LikeRequest) resolve() (likeTarget, error) {
	var t likeTarget
	hasVideo, hasComment := r.VideoID != "", r.CommentID != ""
	if hasVideo == hasComment {
		return t, errno.ParamErr.WithMessage("Exactly one of video_id or comment_id is required")
	}
	var err error
	if hasVideo {
		t.videoID, err = parseTargetID(r.VideoID, "video_id")
	} else {
		t.commentID, err = parseTargetID(r.CommentID, "comment_id")
	}
	return t, err
}

// Like 点赞视频或评论
func (s *LikeService) Like(userID int64, req *LikeRequest) (*model.Like, error) {
	t, err := req.resolve()
	if err != nil {
		return nil, err
	}
	if t.videoID != 0 {
		return s.LikeVideo(userID, t.videoID)
	}
	return s.LikeComment(userID, t.commentID)
}

// Unlike 取消点赞视频或评论
func (s *LikeService) Unlike(userID int64, req *LikeRequest) error {
	t, err := req.resolve()
	if err != nil {
		return err
	}
	if t.videoID != 0 {
		return s.UnlikeVideo(userID, t.videoID)
	}
	return s.UnlikeComment(userID, t.commentID)
}

func (s *LikeService) LikeVideo(userID, videoID int64) (*model.Like, error) {
	video, err := loadVisibleVideo(s.ctx, videoID, userID)
	if err != nil {
		return nil, err
	}
	existing, err := db.GetVideoLike(s.ctx, userID, videoID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errno.ConflictErr.WithMessage("You have already liked this video")
	}

	like := &model.Like{UserID: userID, VideoID: &video.ID}
	if err = db.CreateLike(s.ctx, like); err != nil {
		switch {
		case errors.Is(err, counter.ErrDuplicate):
			return nil, errno.ConflictErr.WithMessage("You have already liked this video")
		case errors.Is(err, counter.ErrTargetNotFound):
			return nil, errno.NotFoundErr.WithMessage("Video not found")
		}
		return nil, err
	}

	notifyservice.Emit(s.ctx, &notifyservice.Notice{
		RecipientID: video.UserID,
		SenderID:    userID,
		Type:        constants.NotificationLike,
		Content:     fmt.Sprintf("%s liked your video \"%s\"", senderName(s.ctx, userID), video.Title),
		EntityType:  constants.EntityVideo,
		EntityID:    &video.ID,
	})
	return like, nil
}

func (s *LikeService) UnlikeVideo(userID, videoID int64) error {
	err := db.DeleteVideoLike(s.ctx, userID, videoID)
	switch {
	case errors.Is(err, counter.ErrNothingDeleted):
		return errno.NotFoundErr.WithMessage("You have not liked this video")
	case errors.Is(err, counter.ErrTargetNotFound):
		return errno.NotFoundErr.WithMessage("Video not found")
	}
	return err
}

func (s *LikeService) LikeComment(userID, commentID int64) (*model.Like, error) {
	comment, err := db.GetComment(s.ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, errno.NotFoundErr.WithMessage("Comment not found")
	}
	// 未发布视频下的评论只有作者能点赞
	if _, err = loadVisibleVideo(s.ctx, comment.VideoID, userID); err != nil {
		return nil, err
	}
	existing, err := db.GetCommentLike(s.ctx, userID, commentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errno.ConflictErr.WithMessage("You have already liked this comment")
	}

	like := &model.Like{UserID: userID, CommentID: &comment.ID}
	if err = db.CreateLike(s.ctx, like); err != nil {
		switch {
		case errors.Is(err, counter.ErrDuplicate):
			return nil, errno.ConflictErr.WithMessage("You have already liked this comment")
		case errors.Is(err, counter.ErrTargetNotFound):
			return nil, errno.NotFoundErr.WithMessage("Comment not found")
		}
		return nil, err
	}

	notifyservice.Emit(s.ctx, &notifyservice.Notice{
		RecipientID: comment.UserID,
		SenderID:    userID,
		Type:        constants.NotificationLike,
		Content:     fmt.Sprintf("%s liked your comment", senderName(s.ctx, userID)),
		EntityType:  constants.EntityComment,
		EntityID:    &comment.ID,
	})
	return like, nil
}

func (s *LikeService) UnlikeComment(userID, commentID int64) error {
	err := db.DeleteCommentLike(s.ctx, userID, commentID)
	switch {
	case errors.Is(err, counter.ErrNothingDeleted):
		return errno.NotFoundErr.WithMessage("You have not liked this comment")
	case errors.Is(err, counter.ErrTargetNotFound):
		return errno.NotFoundErr.WithMessage("Comment not found")
	}
	return err
}

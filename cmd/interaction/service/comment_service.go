package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"VidTube.com/cmd/interaction/dal/db"
	"VidTube.com/cmd/interaction/infras/redis"
	"VidTube.com/cmd/model"
	notifyservice "VidTube.com/cmd/notification/service"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/counter"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/utils"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
)

type CommentService struct {
	ctx context.Context
}

func NewCommentService(ctx context.Context) *CommentService {
	return &CommentService{ctx: ctx}
}

type CommentRequest struct {
	Content string `json:"content"`
}

// validateCommentContent 去掉首尾空白后校验
func validateCommentContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", errno.ParamErr.WithMessage("Comment content cannot be empty")
	}
	if utf8.RuneCountInString(content) > constants.MaxCommentLength {
		return "", errno.ParamErr.WithMessage(fmt.Sprintf("Comment too long, maximum %d characters allowed", constants.MaxCommentLength))
	}
	if hasExcessiveRepetition(content) {
		return "", errno.ParamErr.WithMessage("Comment contains inappropriate content")
	}
	return content, nil
}

// hasExcessiveRepetition 同一字符连续出现超过10次
func hasExcessiveRepetition(content string) bool {
	var prev rune
	count := 0
	for _, r := range content {
		if r == prev {
			count++
			if count > 10 {
				return true
			}
		} else {
			prev = r
			count = 1
		}
	}
	return false
}

// CreateComment 在视频下发表顶层评论
func (s *CommentService) CreateComment(userID, videoID int64, req *CommentRequest) (*model.Comment, error) {
	content, err := validateCommentContent(req.Content)
	if err != nil {
		return nil, err
	}
	video, err := loadVisibleVideo(s.ctx, videoID, userID)
	if err != nil {
		return nil, err
	}
	if err = redis.Guard.Check(s.ctx, userID, content); err != nil {
		return nil, err
	}

	comment := &model.Comment{VideoID: video.ID, UserID: userID, Content: content}
	if err = db.CreateComment(s.ctx, comment); err != nil {
		redis.Guard.Release(s.ctx, userID, content)
		if errors.Is(err, counter.ErrTargetNotFound) {
			return nil, errno.NotFoundErr.WithMessage("Video not found")
		}
		return nil, err
	}

	notifyservice.Emit(s.ctx, &notifyservice.Notice{
		RecipientID: video.UserID,
		SenderID:    userID,
		Type:        constants.NotificationComment,
		Content:     fmt.Sprintf("%s commented on your video \"%s\"", senderName(s.ctx, userID), video.Title),
		EntityType:  constants.EntityVideo,
		EntityID:    &video.ID,
	})
	return comment, nil
}

// loadOwnComment 先判断存在再判断归属
func (s *CommentService) loadOwnComment(identity *model.Identity, commentID int64, action string) (*model.Comment, error) {
	comment, err := db.GetComment(s.ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, errno.NotFoundErr.WithMessage("Comment not found")
	}
	if comment.UserID != identity.ID && !(action == "delete" && identity.IsAdmin()) {
		return nil, errno.ForbiddenErr.WithMessage(fmt.Sprintf("You can only %s your own comments", action))
	}
	return comment, nil
}

func (s *CommentService) UpdateComment(identity *model.Identity, commentID int64, req *CommentRequest) (*model.Comment, error) {
	content, err := validateCommentContent(req.Content)
	if err != nil {
		return nil, err
	}
	comment, err := s.loadOwnComment(identity, commentID, "edit")
	if err != nil {
		return nil, err
	}
	if err = db.UpdateCommentContent(s.ctx, comment.ID, content); err != nil {
		return nil, err
	}
	comment.Content = content
	return comment, nil
}

// DeleteComment 返回删除的评论条数，顶层评论包含其回复
func (s *CommentService) DeleteComment(identity *model.Identity, commentID int64) (int64, error) {
	comment, err := s.loadOwnComment(identity, commentID, "delete")
	if err != nil {
		return 0, err
	}
	deleted, err := db.DeleteComment(s.ctx, comment)
	if err != nil {
		if errors.Is(err, counter.ErrNothingDeleted) {
			return 0, errno.NotFoundErr.WithMessage("Comment not found")
		}
		return 0, err
	}
	hlog.CtxInfof(s.ctx, "comment %d deleted by %d, %d rows removed", comment.ID, identity.ID, deleted)
	return deleted, nil
}

type CommentPage struct {
	Comments    []*model.Comment `json:"comments"`
	TotalCount  int64            `json:"total_count"`
	CurrentPage int              `json:"current_page"`
	TotalPages  int64            `json:"total_pages"`
}

// ListVideoComments viewerID为0表示未登录
func (s *CommentService) ListVideoComments(videoID, viewerID int64, page, limit int) (*CommentPage, error) {
	if _, err := loadVisibleVideo(s.ctx, videoID, viewerID); err != nil {
		return nil, err
	}
	page, limit = utils.ParsePage(page, limit, constants.DefaultLimit, constants.MaxLimit)
	comments, total, err := db.ListVideoComments(s.ctx, videoID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	if err = attachAuthors(s.ctx, comments); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
	}
	counts, err := db.CountRepliesByParents(s.ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		c.ReplyCount = counts[c.ID]
	}
	return &CommentPage{
		Comments:    comments,
		TotalCount:  total,
		CurrentPage: page,
		TotalPages:  utils.TotalPages(total, limit),
	}, nil
}

package service

import (
	"context"
	"fmt"

	"VidTube.com/cmd/interaction/dal/db"
	"VidTube.com/cmd/interaction/infras/redis"
	"VidTube.com/cmd/model"
	notifyservice "VidTube.com/cmd/notification/service"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/counter"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/utils"
	"github.com/pkg/errors"
)

// ReplyService 维护父评论的回复序列，回复只有一层
type ReplyService struct {
	ctx context.Context
}

func NewReplyService(ctx context.Context) *ReplyService {
	return &ReplyService{ctx: ctx}
}

func (s *ReplyService) loadParent(parentID int64) (*model.Comment, error) {
	parent, err := db.GetComment(s.ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, errno.NotFoundErr.WithMessage("Comment not found")
	}
	return parent, nil
}

// AppendReply 创建回复并追加到父评论的回复序列
func (s *ReplyService) AppendReply(userID, parentID int64, req *CommentRequest) (*model.Comment, error) {
	content, err := validateCommentContent(req.Content)
	if err != nil {
		return nil, err
	}
	parent, err := s.loadParent(parentID)
	if err != nil {
		return nil, err
	}
	if parent.IsReply() {
		return nil, errno.ParamErr.WithMessage("Cannot reply to a reply")
	}
	if _, err = loadVisibleVideo(s.ctx, parent.VideoID, userID); err != nil {
		return nil, err
	}
	if err = redis.Guard.Check(s.ctx, userID, content); err != nil {
		return nil, err
	}

	reply := &model.Comment{
		VideoID:  parent.VideoID,
		UserID:   userID,
		ParentID: parent.ID,
		Content:  content,
	}
	if err = db.CreateReply(s.ctx, reply); err != nil {
		redis.Guard.Release(s.ctx, userID, content)
		if errors.Is(err, counter.ErrTargetNotFound) {
			return nil, errno.NotFoundErr.WithMessage("Video not found")
		}
		return nil, err
	}

	notifyservice.Emit(s.ctx, &notifyservice.Notice{
		RecipientID: parent.UserID,
		SenderID:    userID,
		Type:        constants.NotificationReply,
		Content:     fmt.Sprintf("%s replied to your comment", senderName(s.ctx, userID)),
		EntityType:  constants.EntityComment,
		EntityID:    &parent.ID,
	})
	return reply, nil
}

type ReplyPage struct {
	Replies      []*model.Comment `json:"replies"`
	TotalReplies int64            `json:"total_replies"`
	CurrentPage  int              `json:"current_page"`
	TotalPages   int64            `json:"total_pages"`
}

// ListReplies 先按序列截取一页id，再批量读取回复
// 读取结果按id顺序重排，读不到的id直接丢弃；TotalReplies取序列长度
// 未发布视频下的回复只对视频作者可见，viewerID为0表示未登录
func (s *ReplyService) ListReplies(parentID, viewerID int64, page, limit int) (*ReplyPage, error) {
	parent, err := s.loadParent(parentID)
	if err != nil {
		return nil, err
	}
	if _, err = loadVisibleVideo(s.ctx, parent.VideoID, viewerID); err != nil {
		return nil, err
	}
	page, limit = utils.ParsePage(page, limit, constants.DefaultLimit, constants.MaxLimit)
	total, err := db.CountReplyIDs(s.ctx, parentID)
	if err != nil {
		return nil, err
	}
	ids, err := db.SliceReplyIDs(s.ctx, parentID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	fetched, err := db.GetCommentsByIDs(s.ctx, ids)
	if err != nil {
		return nil, err
	}
	replies := orderByIDs(ids, fetched)
	if err = attachAuthors(s.ctx, replies); err != nil {
		return nil, err
	}
	return &ReplyPage{
		Replies:      replies,
		TotalReplies: total,
		CurrentPage:  page,
		TotalPages:   utils.TotalPages(total, limit),
	}, nil
}

func orderByIDs(ids []int64, comments []*model.Comment) []*model.Comment {
	byID := make(map[int64]*model.Comment, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
	}
	ordered := make([]*model.Comment, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered
}

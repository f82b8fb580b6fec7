package service

import (
	"context"

	"VidTube.com/cmd/model"
	"VidTube.com/cmd/notification/dal/db"
	userdb "VidTube.com/cmd/user/dal/db"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/utils"
)

type NotificationService struct {
	ctx context.Context
}

func NewNotificationService(ctx context.Context) *NotificationService {
	return &NotificationService{ctx: ctx}
}

type NotificationPage struct {
	Notifications []*model.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unread_count"`
	TotalCount    int64                 `json:"total_count"`
	CurrentPage   int                   `json:"current_page"`
	TotalPages    int64                 `json:"total_pages"`
}

// List 调用者的通知，附带发送者信息
func (s *NotificationService) List(recipientID int64, page, limit int, unreadOnly bool) (*NotificationPage, error) {
	page, limit = utils.ParsePage(page, limit, constants.DefaultLimit, constants.MaxLimit)
	list, total, err := db.ListNotifications(s.ctx, recipientID, unreadOnly, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	unread, err := db.CountUnread(s.ctx, recipientID)
	if err != nil {
		return nil, err
	}

	senderIDs := make([]int64, 0, len(list))
	for _, n := range list {
		senderIDs = append(senderIDs, n.SenderID)
	}
	senders, err := userdb.GetUserSummaries(s.ctx, senderIDs)
	if err != nil {
		return nil, err
	}
	for _, n := range list {
		if u, ok := senders[n.SenderID]; ok {
			u := u
			n.Sender = &u
		}
	}

	return &NotificationPage{
		Notifications: list,
		UnreadCount:   unread,
		TotalCount:    total,
		CurrentPage:   page,
		TotalPages:    utils.TotalPages(total, limit),
	}, nil
}

func (s *NotificationService) MarkAllRead(recipientID int64) (int64, error) {
	return db.MarkAllRead(s.ctx, recipientID)
}

// MarkRead 不存在返回NotFound，不是接收者返回Forbidden
func (s *NotificationService) MarkRead(recipientID, id int64) (*model.Notification, error) {
	n, err := db.GetNotification(s.ctx, id, recipientID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		exists, err := db.NotificationExists(s.ctx, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, errno.ForbiddenErr.WithMessage("You can only update your own notifications")
		}
		return nil, errno.NotFoundErr.WithMessage("Notification not found")
	}
	if !n.IsRead {
		if err = db.MarkRead(s.ctx, id, recipientID); err != nil {
			return nil, err
		}
		n.IsRead = true
	}
	return n, nil
}

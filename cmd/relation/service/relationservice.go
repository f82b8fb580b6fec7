package service

import (
	"context"
	"fmt"

	"VidTube.com/cmd/model"
	notifyservice "VidTube.com/cmd/notification/service"
	"VidTube.com/cmd/relation/dal/db"
	userdb "VidTube.com/cmd/user/dal/db"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/counter"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/utils"
	"github.com/pkg/errors"
)

type RelationService struct {
	ctx context.Context
}

func NewRelationService(ctx context.Context) *RelationService {
	return &RelationService{ctx: ctx}
}

type SubscribeRequest struct {
	ChannelID string `json:"channel_id"`
	// NotificationsEnabled 缺省为true
	NotificationsEnabled *bool `json:"notifications_enabled"`
}

func parseChannelID(raw string) (int64, error) {
	if raw == "" {
		return 0, errno.ParamErr.WithMessage("Channel ID is required")
	}
	id, err := utils.ConvertStringToInt64(raw)
	if err != nil || id <= 0 {
		return 0, errno.ParamErr.WithMessage("Invalid channel ID")
	}
	return id, nil
}

// Subscribe 订阅频道，频道订阅数与订阅关系一起提交
func (s *RelationService) Subscribe(subscriberID int64, req *SubscribeRequest) (*model.Subscription, error) {
	channelID, err := parseChannelID(req.ChannelID)
	if err != nil {
		return nil, err
	}
	if channelID == subscriberID {
		return nil, errno.ParamErr.WithMessage("You cannot subscribe to yourself")
	}
	subscriber, err := userdb.GetUserByID(s.ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	if subscriber == nil {
		return nil, errno.AuthErr.WithMessage("User no longer exists")
	}
	exists, err := userdb.UserExists(s.ctx, channelID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errno.NotFoundErr.WithMessage("Channel not found")
	}
	existing, err := db.GetSubscription(s.ctx, subscriber.ID, channelID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errno.ConflictErr.WithMessage("You are already subscribed to this channel")
	}

	enabled := true
	if req.NotificationsEnabled != nil {
		enabled = *req.NotificationsEnabled
	}
	sub := &model.Subscription{
		SubscriberID:         subscriber.ID,
		ChannelID:            channelID,
		NotificationsEnabled: enabled,
	}
	if err = db.CreateSubscription(s.ctx, sub); err != nil {
		switch {
		case errors.Is(err, counter.ErrDuplicate):
			return nil, errno.ConflictErr.WithMessage("You are already subscribed to this channel")
		case errors.Is(err, counter.ErrTargetNotFound):
			return nil, errno.NotFoundErr.WithMessage("Channel not found")
		}
		return nil, err
	}

	notifyservice.Emit(s.ctx, &notifyservice.Notice{
		RecipientID: channelID,
		SenderID:    subscriber.ID,
		Type:        constants.NotificationSubscribe,
		Content:     fmt.Sprintf("%s subscribed to your channel", subscriber.Username),
		EntityType:  constants.EntityUser,
		EntityID:    &subscriber.ID,
	})
	return sub, nil
}

func (s *RelationService) Unsubscribe(subscriberID int64, rawChannelID string) error {
	channelID, err := parseChannelID(rawChannelID)
	if err != nil {
		return err
	}
	err = db.DeleteSubscription(s.ctx, subscriberID, channelID)
	if errors.Is(err, counter.ErrNothingDeleted) {
		return errno.NotFoundErr.WithMessage("You are not subscribed to this channel")
	}
	return err
}

type ToggleNotificationsRequest struct {
	ChannelID string `json:"channel_id"`
	// Enabled 为空时取反
	Enabled *bool `json:"notifications_enabled"`
}

func (s *RelationService) ToggleNotifications(subscriberID int64, req *ToggleNotificationsRequest) (*model.Subscription, error) {
	channelID, err := parseChannelID(req.ChannelID)
	if err != nil {
		return nil, err
	}
	sub, err := db.GetSubscription(s.ctx, subscriberID, channelID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, errno.NotFoundErr.WithMessage("You are not subscribed to this channel")
	}
	enabled := !sub.NotificationsEnabled
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	if err = db.SetNotifications(s.ctx, subscriberID, channelID, enabled); err != nil {
		return nil, err
	}
	sub.NotificationsEnabled = enabled
	return sub, nil
}

type SubscriptionPage struct {
	Subscriptions []*model.Subscription `json:"subscriptions"`
	TotalCount    int64                 `json:"total_count"`
	CurrentPage   int                   `json:"current_page"`
	TotalPages    int64                 `json:"total_pages"`
}

// ListMine 我订阅的频道
func (s *RelationService) ListMine(subscriberID int64, page, limit int) (*SubscriptionPage, error) {
	page, limit = utils.ParsePage(page, limit, constants.DefaultLimit, constants.MaxLimit)
	subs, total, err := db.ListSubscriptions(s.ctx, subscriberID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	if err = s.attachUsers(subs, true); err != nil {
		return nil, err
	}
	return &SubscriptionPage{subs, total, page, utils.TotalPages(total, limit)}, nil
}

// ListSubscribers 订阅我频道的用户
func (s *RelationService) ListSubscribers(channelID int64, page, limit int) (*SubscriptionPage, error) {
	page, limit = utils.ParsePage(page, limit, constants.DefaultLimit, constants.MaxLimit)
	subs, total, err := db.ListSubscribers(s.ctx, channelID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	if err = s.attachUsers(subs, false); err != nil {
		return nil, err
	}
	return &SubscriptionPage{subs, total, page, utils.TotalPages(total, limit)}, nil
}

func (s *RelationService) attachUsers(subs []*model.Subscription, channel bool) error {
	ids := make([]int64, 0, len(subs))
	for _, sub := range subs {
		if channel {
			ids = append(ids, sub.ChannelID)
		} else {
			ids = append(ids, sub.SubscriberID)
		}
	}
	users, err := userdb.GetUserSummaries(s.ctx, ids)
	if err != nil {
		return err
	}
	for _, sub := range subs {
		if channel {
			if u, ok := users[sub.ChannelID]; ok {
				u := u
				sub.Channel = &u
			}
		} else if u, ok := users[sub.SubscriberID]; ok {
			u := u
			sub.Subscriber = &u
		}
	}
	return nil
}

package mq

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// NotificationEvent 一条待落库的通知
type NotificationEvent struct {
	EventID     string `json:"event_id"`
	RecipientID int64  `json:"recipient_id"`
	SenderID    int64  `json:"sender_id"`
	Type        string `json:"type"` // like, comment, subscribe, video, reply
	EntityType  string `json:"entity_type,omitempty"`
	EntityID    *int64 `json:"entity_id,omitempty"`
	Content     string `json:"content"`
	Timestamp   int64  `json:"timestamp"`
}

const (
	NotificationEventExchange = "notification_events"
	NotificationEventQueue    = "notification_event_queue"
)

// NewNotificationEvent 填充事件ID和时间戳
func NewNotificationEvent(recipientID, senderID int64, typ, content string) *NotificationEvent {
	return &NotificationEvent{
		EventID:     uuid.NewString(),
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        typ,
		Content:     content,
		Timestamp:   time.Now().Unix(),
	}
}

func (e *NotificationEvent) Validate() error {
	if e.RecipientID <= 0 || e.SenderID <= 0 {
		return errors.New("notification event without recipient or sender")
	}
	if e.Type == "" {
		return errors.New("notification event without type")
	}
	return nil
}

func DecodeNotificationEvent(body []byte) (*NotificationEvent, error) {
	var event NotificationEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, errors.WithMessage(err, "unmarshal notification event")
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	return &event, nil
}

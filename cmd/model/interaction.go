package model

import (
	"time"

	"VidTube.com/pkg/utils"
	"gorm.io/gorm"
)

// Comment ParentID为0表示顶层评论，否则是ParentID的回复
type Comment struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	VideoID   int64     `json:"video_id" gorm:"index:idx_comment_video,priority:1"`
	UserID    int64     `json:"user_id" gorm:"index"`
	ParentID  int64     `json:"parent_id" gorm:"index;not null;default:0"`
	Content   string    `json:"content" gorm:"size:1024"`
	Likes     int64     `json:"likes" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_comment_video,priority:2"`
	UpdatedAt time.Time `json:"updated_at"`

	Author     *UserSummary `json:"author,omitempty" gorm:"-"`
	ReplyCount int64        `json:"reply_count" gorm:"-"`
}

func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	if c.ID == 0 {
		c.ID = utils.GenerateID()
	}
	return nil
}

func (c *Comment) IsReply() bool {
	return c.ParentID != 0
}

// CommentReply 父评论的回复序列，Seq即插入顺序
type CommentReply struct {
	Seq       int64     `json:"seq" gorm:"primaryKey;autoIncrement"`
	ParentID  int64     `json:"parent_id" gorm:"index"`
	ReplyID   int64     `json:"reply_id" gorm:"uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}

// Like VideoID与CommentID有且只有一个非空
type Like struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	UserID    int64     `json:"user_id" gorm:"uniqueIndex:idx_like_video,priority:1;uniqueIndex:idx_like_comment,priority:1"`
	VideoID   *int64    `json:"video_id,omitempty" gorm:"uniqueIndex:idx_like_video,priority:2;index"`
	CommentID *int64    `json:"comment_id,omitempty" gorm:"uniqueIndex:idx_like_comment,priority:2;index"`
	CreatedAt time.Time `json:"created_at"`
}

func (l *Like) BeforeCreate(_ *gorm.DB) error {
	if l.ID == 0 {
		l.ID = utils.GenerateID()
	}
	return nil
}

// HasSingleTarget 点赞目标必须恰好是视频或评论之一
func (l *Like) HasSingleTarget() bool {
	return (l.VideoID == nil) != (l.CommentID == nil)
}

type Subscription struct {
	ID                   int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	SubscriberID         int64     `json:"subscriber_id" gorm:"uniqueIndex:idx_subscription,priority:1"`
	ChannelID            int64     `json:"channel_id" gorm:"uniqueIndex:idx_subscription,priority:2;index"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`

	Channel    *UserSummary `json:"channel,omitempty" gorm:"-"`
	Subscriber *UserSummary `json:"subscriber,omitempty" gorm:"-"`
}

func (s *Subscription) BeforeCreate(_ *gorm.DB) error {
	if s.ID == 0 {
		s.ID = utils.GenerateID()
	}
	return nil
}

// Notification 除了IsRead从false变为true之外不会被修改
type Notification struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	RecipientID int64     `json:"recipient_id" gorm:"index:idx_notification_recipient,priority:1"`
	SenderID    int64     `json:"sender_id"`
	Type        string    `json:"type" gorm:"size:16"`
	EntityType  string    `json:"entity_type,omitempty" gorm:"size:16"`
	EntityID    *int64    `json:"entity_id,omitempty"`
	Content     string    `json:"content" gorm:"size:512"`
	IsRead      bool      `json:"is_read" gorm:"index:idx_notification_recipient,priority:2"`
	CreatedAt   time.Time `json:"created_at"`

	Sender *UserSummary `json:"sender,omitempty" gorm:"-"`
}

func (n *Notification) BeforeCreate(_ *gorm.DB) error {
	if n.ID == 0 {
		n.ID = utils.GenerateID()
	}
	return nil
}

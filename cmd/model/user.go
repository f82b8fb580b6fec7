package model

import (
	"time"

	"VidTube.com/pkg/utils"
	"gorm.io/gorm"
)

type User struct {
	ID              int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Username        string    `json:"username" gorm:"size:64;uniqueIndex"`
	Email           string    `json:"email" gorm:"size:128;uniqueIndex"`
	Password        string    `json:"-" gorm:"size:128"`
	FullName        string    `json:"full_name" gorm:"size:128"`
	Avatar          string    `json:"avatar"`
	AvatarPublicID  string    `json:"-" gorm:"size:255"`
	CoverImage      string    `json:"cover_image"`
	CoverPublicID   string    `json:"-" gorm:"size:255"`
	Bio             string    `json:"bio" gorm:"size:512"`
	Role            string    `json:"role" gorm:"size:16"`
	SubscriberCount int64     `json:"subscriber_count" gorm:"not null;default:0"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == 0 {
		u.ID = utils.GenerateID()
	}
	return nil
}

// UserSummary 列表中嵌入的发送者/作者信息
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Avatar   string `json:"avatar"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, FullName: u.FullName, Avatar: u.Avatar}
}

// Identity 通过身份校验后的调用者
type Identity struct {
	ID   int64  `json:"id"`
	Role string `json:"role"`
}

func (u *User) Identity() *Identity {
	return &Identity{ID: u.ID, Role: u.Role}
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == "admin"
}

// WatchHistory 每个(用户,视频)只保留最近一次观看
type WatchHistory struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	UserID    int64     `json:"user_id" gorm:"uniqueIndex:idx_history_user_video,priority:1;index:idx_history_user_time,priority:1"`
	VideoID   int64     `json:"video_id" gorm:"uniqueIndex:idx_history_user_video,priority:2"`
	WatchedAt time.Time `json:"watched_at" gorm:"index:idx_history_user_time,priority:2"`
}

func (h *WatchHistory) BeforeCreate(_ *gorm.DB) error {
	if h.ID == 0 {
		h.ID = utils.GenerateID()
	}
	return nil
}

package model

import (
	"time"

	"VidTube.com/pkg/utils"
	"gorm.io/gorm"
)

type Video struct {
	ID                int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	UserID            int64     `json:"user_id" gorm:"index"`
	Title             string    `json:"title" gorm:"size:128"`
	Description       string    `json:"description" gorm:"size:2048"`
	Tags              string    `json:"tags" gorm:"size:512"`
	VideoURL          string    `json:"video_url"`
	VideoPublicID     string    `json:"-" gorm:"size:255"`
	ThumbnailURL      string    `json:"thumbnail_url"`
	ThumbnailPublicID string    `json:"-" gorm:"size:255"`
	Duration          float64   `json:"duration"`
	Views             int64     `json:"views" gorm:"not null;default:0"`
	Likes             int64     `json:"likes" gorm:"not null;default:0"`
	Comments          int64     `json:"comments" gorm:"not null;default:0"`
	IsPublished       bool      `json:"is_published" gorm:"index"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	Owner *UserSummary `json:"owner,omitempty" gorm:"-"`
}

func (v *Video) BeforeCreate(_ *gorm.DB) error {
	if v.ID == 0 {
		v.ID = utils.GenerateID()
	}
	return nil
}

// Playlist 用户的播放列表，视频顺序由PlaylistVideo的ID决定
type Playlist struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	OwnerID     int64     `json:"owner_id" gorm:"index"`
	Name        string    `json:"name" gorm:"size:128"`
	Description string    `json:"description" gorm:"size:1024"`
	IsPublic    bool      `json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	VideoCount int64 `json:"video_count" gorm:"-"`
}

func (p *Playlist) BeforeCreate(_ *gorm.DB) error {
	if p.ID == 0 {
		p.ID = utils.GenerateID()
	}
	return nil
}

type PlaylistVideo struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	PlaylistID int64     `json:"playlist_id" gorm:"uniqueIndex:idx_playlist_video,priority:1"`
	VideoID    int64     `json:"video_id" gorm:"uniqueIndex:idx_playlist_video,priority:2"`
	CreatedAt  time.Time `json:"created_at"`
}

func (p *PlaylistVideo) BeforeCreate(_ *gorm.DB) error {
	if p.ID == 0 {
		p.ID = utils.GenerateID()
	}
	return nil
}

type WatchLater struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	UserID    int64     `json:"user_id" gorm:"uniqueIndex:idx_watch_later,priority:1"`
	VideoID   int64     `json:"video_id" gorm:"uniqueIndex:idx_watch_later,priority:2"`
	CreatedAt time.Time `json:"created_at"`
}

func (WatchLater) TableName() string {
	return "watch_later"
}

func (w *WatchLater) BeforeCreate(_ *gorm.DB) error {
	if w.ID == 0 {
		w.ID = utils.GenerateID()
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"VidTube.com/cmd/model"
	userdb "VidTube.com/cmd/user/dal/db"
	"VidTube.com/cmd/video/dal/db"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/counter"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/utils"
	"github.com/pkg/errors"
)

type PlaylistService struct {
	ctx context.Context
}

func NewPlaylistService(ctx context.Context) *PlaylistService {
	return &PlaylistService{ctx: ctx}
}

type CreatePlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	// IsPublic 缺省为true
	IsPublic *bool `json:"is_public"`
}

func (s *PlaylistService) Create(ownerID int64, req *CreatePlaylistRequest) (*model.Playlist, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errno.ParamErr.WithMessage("Playlist name is required")
	}
	if utf8.RuneCountInString(name) > constants.MaxPlaylistNameLen {
		return nil, errno.ParamErr.WithMessage(fmt.Sprintf("Playlist name must be at most %d characters", constants.MaxPlaylistNameLen))
	}
	p := &model.Playlist{
		OwnerID:     ownerID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		IsPublic:    true,
	}
	if req.IsPublic != nil {
		p.IsPublic = *req.IsPublic
	}
	if err := db.CreatePlaylist(s.ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PlaylistService) loadPlaylist(id int64) (*model.Playlist, error) {
	p, err := db.GetPlaylist(s.ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errno.NotFoundErr.WithMessage("Playlist not found")
	}
	return p, nil
}

// loadOwnPlaylist 先判断存在再判断归属
func (s *PlaylistService) loadOwnPlaylist(ownerID, id int64) (*model.Playlist, error) {
	p, err := s.loadPlaylist(id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, errno.ForbiddenErr.WithMessage("You are not the owner of this playlist")
	}
	return p, nil
}

func (s *PlaylistService) Delete(ownerID, id int64) error {
	p, err := s.loadOwnPlaylist(ownerID, id)
	if err != nil {
		return err
	}
	return db.DeletePlaylist(s.ctx, p.ID)
}

type PlaylistPage struct {
	Playlists   []*model.Playlist `json:"playlists"`
	TotalCount  int64             `json:"total_count"`
	CurrentPage int               `json:"current_page"`
	TotalPages  int64             `json:"total_pages"`
}

// ListByUser 私有的播放列表只对本人可见
func (s *PlaylistService) ListByUser(userID, viewerID int64, page, limit int) (*PlaylistPage, error) {
	exists, err := userdb.UserExists(s.ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errno.NotFoundErr.WithMessage("User not found")
	}
	page, limit = utils.ParsePage(page, limit, constants.DefaultLimit, constants.MaxLimit)
	list, total, err := db.ListUserPlaylists(s.ctx, userID, userID == viewerID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &PlaylistPage{list, total, page, utils.TotalPages(total, limit)}, nil
}

type AddVideoRequest struct {
	VideoID string `json:"video_id"`
}

func (s *PlaylistService) AddVideo(ownerID, playlistID int64, req *AddVideoRequest) (*model.PlaylistVideo, error) {
	videoID, err := utils.ConvertStringToInt64(req.VideoID)
	if err != nil || videoID <= 0 {
		return nil, errno.ParamErr.WithMessage("Video ID is required")
	}
	p, err := s.loadOwnPlaylist(ownerID, playlistID)
	if err != nil {
		return nil, err
	}
	if _, err = loadVisibleVideo(s.ctx, videoID, ownerID); err != nil {
		return nil, err
	}
	present, err := db.PlaylistHasVideo(s.ctx, p.ID, videoID)
	if err != nil {
		return nil, err
	}
	if present {
		return nil, errno.ConflictErr.WithMessage("Video already in playlist")
	}
	item, err := db.AddPlaylistVideo(s.ctx, p.ID, videoID)
	if errors.Is(err, counter.ErrDuplicate) {
		return nil, errno.ConflictErr.WithMessage("Video already in playlist")
	}
	return item, err
}

type PlaylistVideos struct {
	Playlist    *model.Playlist `json:"playlist"`
	Videos      []*model.Video  `json:"videos"`
	TotalCount  int64           `json:"total_count"`
	CurrentPage int             `json:"current_page"`
	TotalPages  int64           `json:"total_pages"`
}

// ListVideos 私有播放列表对其他人返回Forbidden
func (s *PlaylistService) ListVideos(playlistID, viewerID int64, page, limit int) (*PlaylistVideos, error) {
	p, err := s.loadPlaylist(playlistID)
	if err != nil {
		return nil, err
	}
	if !p.IsPublic && p.OwnerID != viewerID {
		return nil, errno.ForbiddenErr.WithMessage("This playlist is private")
	}
	page, limit = utils.ParsePage(page, limit, constants.DefaultLimit, constants.MaxLimit)
	videos, total, err := db.ListPlaylistVideos(s.ctx, p.ID, viewerID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	if err = attachOwners(s.ctx, videos...); err != nil {
		return nil, err
	}
	p.VideoCount = total
	return &PlaylistVideos{p, videos, total, page, utils.TotalPages(total, limit)}, nil
}

func (s *PlaylistService) RemoveVideo(ownerID, playlistID, videoID int64) error {
	p, err := s.loadOwnPlaylist(ownerID, playlistID)
	if err != nil {
		return err
	}
	err = db.RemovePlaylistVideo(s.ctx, p.ID, videoID)
	if errors.Is(err, counter.ErrNothingDeleted) {
		return errno.NotFoundErr.WithMessage("Video not found in playlist")
	}
	return err
}

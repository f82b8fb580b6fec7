package db

import (
	"context"

	"VidTube.com/cmd/model"
	"VidTube.com/pkg/counter"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

func CreatePlaylist(ctx context.Context, p *model.Playlist) error {
	if err := DB.WithContext(ctx).Create(p).Error; err != nil {
		return errors.Wrap(err, "CreatePlaylist failed")
	}
	return nil
}

// GetPlaylist 不存在返回 (nil, nil)
func GetPlaylist(ctx context.Context, id int64) (*model.Playlist, error) {
	var p model.Playlist
	err := DB.WithContext(ctx).Where("id = ?", id).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "GetPlaylist failed")
	}
	return &p, nil
}

// DeletePlaylist 连同播放列表中的条目一起删除
func DeletePlaylist(ctx context.Context, id int64) error {
	return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("playlist_id = ?", id).Delete(&model.PlaylistVideo{}).Error; err != nil {
			return errors.Wrap(err, "delete playlist videos failed")
		}
		if err := tx.Where("id = ?", id).Delete(&model.Playlist{}).Error; err != nil {
			return errors.Wrap(err, "DeletePlaylist failed")
		}
		return nil
	})
}

// ListUserPlaylists includePrivate只在本人查看时为true
func ListUserPlaylists(ctx context.Context, ownerID int64, includePrivate bool, offset, limit int) ([]*model.Playlist, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("owner_id = ?", ownerID)
		if !includePrivate {
			db = db.Where("is_public = ?", true)
		}
		return db
	}
	var total int64
	if err := DB.WithContext(ctx).Model(&model.Playlist{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "ListUserPlaylists count failed")
	}
	playlists := make([]*model.Playlist, 0, limit)
	if err := DB.WithContext(ctx).Scopes(scope).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&playlists).Error; err != nil {
		return nil, 0, errors.Wrap(err, "ListUserPlaylists failed")
	}
	if err := fillVideoCounts(ctx, playlists); err != nil {
		return nil, 0, err
	}
	return playlists, total, nil
}

func fillVideoCounts(ctx context.Context, playlists []*model.Playlist) error {
	if len(playlists) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(playlists))
	for _, p := range playlists {
		ids = append(ids, p.ID)
	}
	var rows []struct {
		PlaylistID int64
		Total      int64
	}
	err := DB.WithContext(ctx).Model(&model.PlaylistVideo{}).
		Select("playlist_id, COUNT(*) AS total").
		Where("playlist_id IN ?", ids).
		Group("playlist_id").
		Scan(&rows).Error
	if err != nil {
		return errors.Wrap(err, "count playlist videos failed")
	}
	counts := make(map[int64]int64, len(rows))
	for _, r := range rows {
		counts[r.PlaylistID] = r.Total
	}
	for _, p := range playlists {
		p.VideoCount = counts[p.ID]
	}
	return nil
}

// AddPlaylistVideo 重复添加返回counter.ErrDuplicate
func AddPlaylistVideo(ctx context.Context, playlistID, videoID int64) (*model.PlaylistVideo, error) {
	item := &model.PlaylistVideo{PlaylistID: playlistID, VideoID: videoID}
	if err := DB.WithContext(ctx).Create(item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, counter.ErrDuplicate
		}
		return nil, errors.Wrap(err, "AddPlaylistVideo failed")
	}
	return item, nil
}

func PlaylistHasVideo(ctx context.Context, playlistID, videoID int64) (bool, error) {
	var count int64
	if err := DB.WithContext(ctx).Model(&model.PlaylistVideo{}).
		Where("playlist_id = ? AND video_id = ?", playlistID, videoID).
		Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "PlaylistHasVideo failed")
	}
	return count > 0, nil
}

// ListPlaylistVideos 按加入顺序返回，未发布的视频只对作者可见
func ListPlaylistVideos(ctx context.Context, playlistID, viewerID int64, offset, limit int) ([]*model.Video, int64, error) {
	base := DB.WithContext(ctx).Table("playlist_videos AS pv").
		Joins("JOIN videos AS v ON v.id = pv.video_id").
		Where("pv.playlist_id = ?", playlistID).
		Where("(v.is_published = ? OR v.user_id = ?)", true, viewerID)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "ListPlaylistVideos count failed")
	}
	var videos []*model.Video
	err := base.Session(&gorm.Session{}).
		Select("v.*").
		Order("pv.created_at").Order("pv.id").
		Offset(offset).Limit(limit).
		Scan(&videos).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "ListPlaylistVideos failed")
	}
	return videos, total, nil
}

// RemovePlaylistVideo 条目不存在返回counter.ErrNothingDeleted
func RemovePlaylistVideo(ctx context.Context, playlistID, videoID int64) error {
	res := DB.WithContext(ctx).
		Where("playlist_id = ? AND video_id = ?", playlistID, videoID).
		Delete(&model.PlaylistVideo{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "RemovePlaylistVideo failed")
	}
	if res.RowsAffected == 0 {
		return counter.ErrNothingDeleted
	}
	return nil
}

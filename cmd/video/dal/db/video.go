package db

import (
	"context"
	"strings"

	interactiondb "VidTube.com/cmd/interaction/dal/db"
	"VidTube.com/cmd/model"
	"VidTube.com/pkg/counter"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 允许排序的列，请求里的驼峰写法也接受
var sortColumns = map[string]string{
	"created_at": "created_at",
	"createdAt":  "created_at",
	"views":      "views",
	"likes":      "likes",
	"comments":   "comments",
	"duration":   "duration",
	"title":      "title",
}

// VideoQuery 视频列表的过滤与排序条件
type VideoQuery struct {
	Query    string
	UserID   int64
	SortBy   string
	SortType string
	// OnlyPublished 为false时包含未发布的视频，只用于作者自己的列表
	OnlyPublished bool
	Offset        int
	Limit         int
}

// escapeLike 用户输入按字面匹配，转义符使用!，兼容mysql与sqlite
func escapeLike(s string) string {
	return strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`).Replace(s)
}

func (q *VideoQuery) scope(db *gorm.DB) *gorm.DB {
	if q.OnlyPublished {
		db = db.Where("is_published = ?", true)
	}
	if q.UserID != 0 {
		db = db.Where("user_id = ?", q.UserID)
	}
	if kw := strings.TrimSpace(q.Query); kw != "" {
		pattern := "%" + escapeLike(strings.ToLower(kw)) + "%"
		db = db.Where(`(LOWER(title) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!' OR LOWER(tags) LIKE ? ESCAPE '!')`,
			pattern, pattern, pattern)
	}
	return db
}

func (q *VideoQuery) order() clause.OrderByColumn {
	col, ok := sortColumns[q.SortBy]
	if !ok {
		col = "created_at"
	}
	return clause.OrderByColumn{
		Column: clause.Column{Name: col},
		Desc:   !strings.EqualFold(q.SortType, "asc"),
	}
}

// ListVideos total与列表使用同一组过滤条件
func ListVideos(ctx context.Context, q *VideoQuery) ([]*model.Video, int64, error) {
	var total int64
	if err := DB.WithContext(ctx).Model(&model.Video{}).Scopes(q.scope).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "ListVideos count failed")
	}
	videos := make([]*model.Video, 0, q.Limit)
	err := DB.WithContext(ctx).Scopes(q.scope).
		Order(q.order()).Order("id DESC").
		Offset(q.Offset).Limit(q.Limit).
		Find(&videos).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "ListVideos failed")
	}
	return videos, total, nil
}

func CreateVideo(ctx context.Context, video *model.Video) error {
	if err := DB.WithContext(ctx).Create(video).Error; err != nil {
		return errors.Wrap(err, "CreateVideo failed")
	}
	return nil
}

// GetVideoByID 不存在返回 (nil, nil)
func GetVideoByID(ctx context.Context, id int64) (*model.Video, error) {
	var video model.Video
	err := DB.WithContext(ctx).Where("id = ?", id).Take(&video).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "GetVideoByID failed")
	}
	return &video, nil
}

func UpdateVideo(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	if err := DB.WithContext(ctx).Model(&model.Video{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return errors.Wrap(err, "UpdateVideo failed")
	}
	return nil
}

func SetPublished(ctx context.Context, id int64, published bool) error {
	err := DB.WithContext(ctx).Model(&model.Video{}).Where("id = ?", id).Update("is_published", published).Error
	if err != nil {
		return errors.Wrap(err, "SetPublished failed")
	}
	return nil
}

// IncrementViews 播放量使用原子自增
func IncrementViews(ctx context.Context, id int64) error {
	return counter.Increment(ctx, DB, counter.VideoViews(id))
}

// DeleteVideo 视频与其评论、点赞、播放列表条目、稍后观看和观看记录一起删除
func DeleteVideo(ctx context.Context, id int64) error {
	return DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := interactiondb.DeleteVideoInteractions(tx, id); err != nil {
			return err
		}
		for _, m := range []interface{}{&model.PlaylistVideo{}, &model.WatchLater{}, &model.WatchHistory{}} {
			if err := tx.Where("video_id = ?", id).Delete(m).Error; err != nil {
				return errors.Wrap(err, "delete video references failed")
			}
		}
		res := tx.Where("id = ?", id).Delete(&model.Video{})
		if res.Error != nil {
			return errors.Wrap(res.Error, "DeleteVideo failed")
		}
		if res.RowsAffected == 0 {
			return counter.ErrNothingDeleted
		}
		return nil
	})
}

// ListVideoIDs 分批遍历视频，对账任务使用
func ListVideoIDs(ctx context.Context, afterID int64, limit int) ([]int64, error) {
	var ids []int64
	err := DB.WithContext(ctx).Model(&model.Video{}).
		Where("id > ?", afterID).
		Order("id").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "ListVideoIDs failed")
	}
	return ids, nil
}

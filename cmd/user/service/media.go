package service

import (
	"os"

	"VidTube.com/cmd/model"
	"VidTube.com/cmd/user/dal/db"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/oss"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
)

// 头像与频道封面
const (
	MediaAvatar = "avatar"
	MediaCover  = "cover"
)

// UpdateMedia 上传新的头像或封面，成功后删除旧文件
func (s *UserService) UpdateMedia(id int64, kind, localPath, contentType string) (*model.User, error) {
	defer func() {
		if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
			hlog.CtxWarnf(s.ctx, "remove temp file %s: %v", localPath, err)
		}
	}()

	var urlCol, idCol, folder string
	switch kind {
	case MediaAvatar:
		urlCol, idCol, folder = "avatar", "avatar_public_id", "avatars"
	case MediaCover:
		urlCol, idCol, folder = "cover_image", "cover_public_id", "covers"
	default:
		return nil, errno.ParamErr.WithMessage("Unknown media kind")
	}
	if oss.Store == nil {
		return nil, errno.ServiceErr.WithMessage("Media storage is not configured")
	}
	user, err := s.GetMe(id)
	if err != nil {
		return nil, err
	}

	media, err := oss.Store.Upload(s.ctx, localPath, folder, contentType)
	if err != nil {
		return nil, errors.WithMessagef(err, "upload %s", kind)
	}
	if err = db.UpdateUser(s.ctx, id, map[string]interface{}{urlCol: media.URL, idCol: media.PublicID}); err != nil {
		oss.DeleteQuietly(s.ctx, oss.Store, media.PublicID)
		return nil, err
	}

	old := user.AvatarPublicID
	if kind == MediaCover {
		old = user.CoverPublicID
	}
	oss.DeleteQuietly(s.ctx, oss.Store, old)
	return s.GetMe(id)
}

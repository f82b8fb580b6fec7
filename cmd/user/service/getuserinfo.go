package service

import (
	"strings"

	"VidTube.com/cmd/model"
	relationdb "VidTube.com/cmd/relation/dal/db"
	"VidTube.com/cmd/user/dal/db"
	"VidTube.com/pkg/errno"
)

// Profile 频道主页
type Profile struct {
	*model.User
	SubscribedToCount int64 `json:"subscribed_to_count"`
	IsSubscribed      bool  `json:"is_subscribed"`
}

// GetProfile viewerID为0表示未登录
func (s *UserService) GetProfile(username string, viewerID int64) (*Profile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, errno.ParamErr.WithMessage("Username is required")
	}
	user, err := db.GetUserByUsername(s.ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errno.NotFoundErr.WithMessage("User not found")
	}
	subscribedTo, err := relationdb.CountSubscriptions(s.ctx, user.ID)
	if err != nil {
		return nil, err
	}
	profile := &Profile{User: user, SubscribedToCount: subscribedTo}
	if viewerID != 0 && viewerID != user.ID {
		sub, err := relationdb.GetSubscription(s.ctx, viewerID, user.ID)
		if err != nil {
			return nil, err
		}
		profile.IsSubscribed = sub != nil
	}
	return profile, nil
}

func (s *UserService) GetMe(id int64) (*model.User, error) {
	user, err := db.GetUserByID(s.ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errno.NotFoundErr.WithMessage("User not found")
	}
	return user, nil
}

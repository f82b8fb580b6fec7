package model

// All 需要建表的全部模型
func All() []interface{} {
	return []interface{}{
		&User{},
		&WatchHistory{},
		&Video{},
		&Playlist{},
		&PlaylistVideo{},
		&WatchLater{},
		&Comment{},
		&CommentReply{},
		&Like{},
		&Subscription{},
		&Notification{},
	}
}

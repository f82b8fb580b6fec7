package constants

import "time"

const (
	DataFormate = "2006-01-02 15:04:05"

	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	ServiceName = "vidtube-api"

	// hertz RequestContext 中保存调用者身份的key
	IdentityKey = "identity"

	RoleUser  = "user"
	RoleAdmin = "admin"

	AccessTokenTTL = 24 * time.Hour
	MaxRefreshTTL  = 7 * 24 * time.Hour
)

// 通知类型
const (
	NotificationLike      = "like"
	NotificationComment   = "comment"
	NotificationSubscribe = "subscribe"
	NotificationVideo     = "video"
	NotificationReply     = "reply"
)

// 通知关联的实体类型
const (
	EntityVideo   = "video"
	EntityComment = "comment"
	EntityUser    = "user"
)

// 表名与计数列，供计数一致性引擎使用
const (
	TableVideos   = "videos"
	TableComments = "comments"
	TableUsers    = "users"

	ColumnLikes           = "likes"
	ColumnComments        = "comments"
	ColumnViews           = "views"
	ColumnSubscriberCount = "subscriber_count"
)

const (
	MaxCommentLength     = 500
	MaxTitleLength       = 100
	MaxPlaylistNameLen   = 100
	MaxBioLength         = 300
	CommentRateLimit     = 10
	CommentRateWindow    = time.Minute
	DuplicateCommentTTL  = 300 * time.Second
	ReconcileLockName    = "vidtube:reconcile:lock"
	ReconcileLockTimeout = 5 * time.Minute
)

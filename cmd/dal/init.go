package dal

import (
	interactiondb "VidTube.com/cmd/interaction/dal/db"
	"VidTube.com/cmd/model"
	notificationdb "VidTube.com/cmd/notification/dal/db"
	relationdb "VidTube.com/cmd/relation/dal/db"
	userdb "VidTube.com/cmd/user/dal/db"
	videodb "VidTube.com/cmd/video/dal/db"
	"VidTube.com/pkg/sharding"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Init 建表并把连接交给各领域的dal
// notificationShards大于0时通知表按接收者分表，分表需要在注册插件之前建好
func Init(db *gorm.DB, notificationShards uint) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return errors.WithMessage(err, "auto migrate")
	}
	if notificationShards > 0 {
		for _, table := range sharding.TableNames(notificationdb.TableName, notificationShards) {
			if err := db.Table(table).AutoMigrate(&model.Notification{}); err != nil {
				return errors.WithMessagef(err, "migrate %s", table)
			}
		}
		if err := db.Use(sharding.NewSharding("recipient_id", notificationShards, notificationdb.TableName)); err != nil {
			return errors.WithMessage(err, "register notification sharding")
		}
		hlog.Infof("notifications sharded into %d tables", notificationShards)
	}

	userdb.Init(db)
	videodb.Init(db)
	interactiondb.Init(db)
	relationdb.Init(db)
	notificationdb.Init(db, notificationShards)
	return nil
}

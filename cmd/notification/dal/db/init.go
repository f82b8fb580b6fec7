package db

import (
	"gorm.io/gorm"
)

var (
	DB *gorm.DB
	// Shards 通知表的分表数量，0表示不分表
	Shards uint
)

func Init(db *gorm.DB, shards uint) {
	DB = db
	Shards = shards
}

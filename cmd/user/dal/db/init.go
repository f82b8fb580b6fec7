package db

import (
	"gorm.io/gorm"
)

var DB *gorm.DB

// Init 注入共享的数据库连接
func Init(db *gorm.DB) {
	DB = db
}

// Package daltest 为service层测试准备sqlite库与基础数据
package daltest

import (
	"context"
	"path/filepath"
	"testing"

	"VidTube.com/cmd/dal"
	"VidTube.com/cmd/model"
	userdb "VidTube.com/cmd/user/dal/db"
	videodb "VidTube.com/cmd/video/dal/db"
	"VidTube.com/pkg/database"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Open 在临时目录中建库建表，并把连接交给各领域的dal
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.Options{
		Driver:     database.DriverSQLite,
		SqlitePath: filepath.Join(t.TempDir(), "vidtube.db"),
	})
	require.NoError(t, err)
	require.NoError(t, dal.Init(db, 0))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func CreateUser(t testing.TB, username string) *model.User {
	t.Helper()
	u := &model.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
		Role:     "user",
	}
	require.NoError(t, userdb.CreateUser(context.Background(), u))
	return u
}

func CreateAdmin(t testing.TB, username string) *model.User {
	t.Helper()
	u := CreateUser(t, username)
	require.NoError(t, userdb.UpdateUser(context.Background(), u.ID, map[string]interface{}{"role": "admin"}))
	u.Role = "admin"
	return u
}

func CreateVideo(t testing.TB, ownerID int64, title string, published bool) *model.Video {
	t.Helper()
	v := &model.Video{
		UserID:      ownerID,
		Title:       title,
		Description: title + " description",
		VideoURL:    "/media/videos/" + title + ".mp4",
		IsPublished: published,
	}
	require.NoError(t, videodb.CreateVideo(context.Background(), v))
	return v
}

// Reload 重新读取一行，用于断言计数列
func Reload(t testing.TB, db *gorm.DB, dest interface{}, id int64) {
	t.Helper()
	require.NoError(t, db.First(dest, id).Error)
}

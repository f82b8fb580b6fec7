package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMysqlDSN(t *testing.T) {
	dsn := MysqlDSN(Options{
		Username: "root",
		Password: "pw",
		Addr:     "127.0.0.1:3306",
		Database: "vidtube",
		Params:   "timeout=3s",
	})
	assert.Equal(t, "root:pw@tcp(127.0.0.1:3306)/vidtube?charset=utf8mb4&parseTime=True&loc=Local&clientFoundRows=true&timeout=3s", dsn)
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(Options{Driver: "oracle"})
	assert.Error(t, err)
}

type sample struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;size:32"`
}

func TestOpenSqliteTranslatesDuplicateKey(t *testing.T) {
	db, err := Open(Options{Driver: DriverSQLite, SqlitePath: filepath.Join(t.TempDir(), "t.db")})
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, db.AutoMigrate(&sample{}))
	require.NoError(t, db.Create(&sample{ID: 1, Name: "a"}).Error)
	err = db.Create(&sample{ID: 2, Name: "a"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

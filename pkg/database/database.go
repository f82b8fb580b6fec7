package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	gormopentracing "gorm.io/plugin/opentracing"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Options 数据库连接参数，由config.ConfigInfo.Mysql填充
type Options struct {
	Driver          string
	Addr            string
	Database        string
	Username        string
	Password        string
	Charset         string
	Params          string
	SqlitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// Tracing 为true时注册opentracing插件，span写入全局tracer
	Tracing bool
	LogMode logger.LogLevel
}

// MysqlDSN 生成mysql的dsn
// clientFoundRows 让UPDATE返回匹配行数，计数器在下限处钳制时仍能判断目标行存在
func MysqlDSN(o Options) string {
	charset := o.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	dsn := strings.Join([]string{o.Username, ":", o.Password, "@tcp(", o.Addr, ")/", o.Database,
		"?charset=", charset, "&parseTime=True&loc=Local&clientFoundRows=true"}, "")
	if o.Params != "" {
		dsn += "&" + strings.TrimPrefix(o.Params, "&")
	}
	return dsn
}

// SqliteDSN 开发与测试使用的sqlite文件
// 事务使用BEGIN IMMEDIATE，并发写入按顺序排队而不是直接返回SQLITE_BUSY
func SqliteDSN(path string) string {
	return fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate", path)
}

func dialector(o Options) (gorm.Dialector, error) {
	switch o.Driver {
	case DriverMySQL, "":
		return mysql.Open(MysqlDSN(o)), nil
	case DriverSQLite:
		return sqlite.Open(SqliteDSN(o.SqlitePath)), nil
	default:
		return nil, errors.Errorf("unsupported database driver %q", o.Driver)
	}
}

// Open 打开数据库连接
// TranslateError 打开后唯一索引冲突统一为gorm.ErrDuplicatedKey，业务层据此返回Conflict
func Open(o Options) (*gorm.DB, error) {
	d, err := dialector(o)
	if err != nil {
		return nil, err
	}
	level := o.LogMode
	if level == 0 {
		level = logger.Warn
	}
	db, err := gorm.Open(d, &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	})
	if err != nil {
		return nil, errors.WithMessage(err, "open database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.WithMessage(err, "get sql.DB")
	}
	if o.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(o.MaxOpenConns)
	}
	if o.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(o.MaxIdleConns)
	}
	if o.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(o.ConnMaxLifetime)
	}

	if o.Tracing {
		if err = db.Use(gormopentracing.New()); err != nil {
			return nil, errors.WithMessage(err, "register opentracing plugin")
		}
	}
	hlog.Infof("database opened, driver=%s", db.Dialector.Name())
	return db, nil
}

// Close 关闭底层连接池
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

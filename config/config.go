package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var ConfigInfo config

// DevJwtSecret 未配置jwt.secret时使用，仅用于开发环境
const DevJwtSecret = "vidtube-dev-secret"

// 配置文件的搜索路径，兼容从仓库根目录和cmd子目录启动
var configPaths = []string{
	"../../config",
	"./config",
	"../config",
	".",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "0.0.0.0:8888")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.max_body_size", 512*1024*1024)
	v.SetDefault("server.upload_dir", os.TempDir())
	v.SetDefault("server.pprof_addr", ":6060")
	v.SetDefault("server.worker_id", 1)
	v.SetDefault("server.datacenter_id", 1)
	v.SetDefault("mysql.driver", "mysql")
	v.SetDefault("mysql.charset", "utf8mb4")
	v.SetDefault("mysql.sqlite_path", "vidtube.db")
	v.SetDefault("mysql.max_open_conns", 100)
	v.SetDefault("mysql.max_idle_conns", 10)
	v.SetDefault("mysql.conn_max_lifetime", time.Hour)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("rabbitmq.addr", "localhost:5672")
	v.SetDefault("rabbitmq.username", "guest")
	v.SetDefault("rabbitmq.password", "guest")
	v.SetDefault("minio.bucket", "vidtube")
	v.SetDefault("jwt.secret", DevJwtSecret)
	v.SetDefault("jwt.timeout", 24*time.Hour)
	v.SetDefault("jwt.max_refresh", 7*24*time.Hour)
	v.SetDefault("notification.mode", "direct")
	v.SetDefault("sentinel.write_qps", 200)
	v.SetDefault("sentinel.read_qps", 2000)
	v.SetDefault("smtp.port", "587")
	v.SetDefault("reconcile.interval", 0)
	v.SetDefault("reconcile.batch", 200)
}

// 使用Viper的好处在于支持配置文件的热更新 同时viper对于大小写并不敏感 都是统一进行处理
func Init() {
	v := viper.New()
	Load(v)
}

// Load 从给定的viper实例读取配置，找不到配置文件时只使用默认值和环境变量
func Load(v *viper.Viper) {
	wd, _ := os.Getwd()
	logrus.Infof("Current working directory: %s", wd)

	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetConfigName("config.yml")
	for _, path := range configPaths {
		v.AddConfigPath(path)
		absPath, _ := filepath.Abs(path)
		logrus.Debugf("Added config path: %s (absolute: %s)", path, absPath)
	}

	// VIDTUBE_MYSQL_ADDR 覆盖 mysql.addr
	v.SetEnvPrefix("vidtube")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logrus.Warnf("config file not found, using defaults: %v", err)
		} else {
			logrus.Errorf("config error: %v", err)
		}
	} else {
		logrus.Infof("Successfully read config file: %s", v.ConfigFileUsed())
	}

	// 手动从viper获取配置值，避免Unmarshal问题
	ConfigInfo.Server.Addr = v.GetString("server.addr")
	ConfigInfo.Server.Env = v.GetString("server.env")
	ConfigInfo.Server.AllowOrigins = v.GetStringSlice("server.allow_origins")
	ConfigInfo.Server.MaxBodySize = v.GetInt("server.max_body_size")
	ConfigInfo.Server.UploadDir = v.GetString("server.upload_dir")
	ConfigInfo.Server.Pprof = v.GetBool("server.pprof")
	ConfigInfo.Server.PprofAddr = v.GetString("server.pprof_addr")
	ConfigInfo.Server.WorkerID = v.GetInt64("server.worker_id")
	ConfigInfo.Server.DatacenterID = v.GetInt64("server.datacenter_id")
	ConfigInfo.Server.ExposeInternal = v.GetBool("server.expose_internal")

	ConfigInfo.Mysql.Driver = v.GetString("mysql.driver")
	ConfigInfo.Mysql.Addr = v.GetString("mysql.addr")
	ConfigInfo.Mysql.Database = v.GetString("mysql.database")
	ConfigInfo.Mysql.Username = v.GetString("mysql.username")
	ConfigInfo.Mysql.Password = v.GetString("mysql.password")
	ConfigInfo.Mysql.Charset = v.GetString("mysql.charset")
	ConfigInfo.Mysql.Params = v.GetString("mysql.params")
	ConfigInfo.Mysql.SqlitePath = v.GetString("mysql.sqlite_path")
	ConfigInfo.Mysql.MaxOpenConns = v.GetInt("mysql.max_open_conns")
	ConfigInfo.Mysql.MaxIdleConns = v.GetInt("mysql.max_idle_conns")
	ConfigInfo.Mysql.ConnMaxLifetime = v.GetDuration("mysql.conn_max_lifetime")
	ConfigInfo.Mysql.NotificationShards = v.GetUint("mysql.notification_shards")

	ConfigInfo.Redis.Addr = v.GetString("redis.addr")
	ConfigInfo.Redis.Password = v.GetString("redis.password")
	ConfigInfo.Redis.DB = v.GetInt("redis.db")

	ConfigInfo.RabbitMq.Addr = v.GetString("rabbitmq.addr")
	ConfigInfo.RabbitMq.Username = v.GetString("rabbitmq.username")
	ConfigInfo.RabbitMq.Password = v.GetString("rabbitmq.password")

	ConfigInfo.Minio.Endpoint = v.GetString("minio.endpoint")
	ConfigInfo.Minio.AccessKey = v.GetString("minio.access_key")
	ConfigInfo.Minio.SecretKey = v.GetString("minio.secret_key")
	ConfigInfo.Minio.UseSSL = v.GetBool("minio.use_ssl")
	ConfigInfo.Minio.Bucket = v.GetString("minio.bucket")
	ConfigInfo.Minio.PublicURL = v.GetString("minio.public_url")

	ConfigInfo.Jwt.Secret = v.GetString("jwt.secret")
	ConfigInfo.Jwt.Timeout = v.GetDuration("jwt.timeout")
	ConfigInfo.Jwt.MaxRefresh = v.GetDuration("jwt.max_refresh")

	ConfigInfo.Notification.Mode = v.GetString("notification.mode")

	ConfigInfo.Jaeger.Enable = v.GetBool("jaeger.enable")
	ConfigInfo.Jaeger.AgentAddr = v.GetString("jaeger.agent_addr")

	ConfigInfo.Sentinel.Enable = v.GetBool("sentinel.enable")
	ConfigInfo.Sentinel.WriteQPS = v.GetFloat64("sentinel.write_qps")
	ConfigInfo.Sentinel.ReadQPS = v.GetFloat64("sentinel.read_qps")

	ConfigInfo.Smtp.Host = v.GetString("smtp.host")
	ConfigInfo.Smtp.Port = v.GetString("smtp.port")
	ConfigInfo.Smtp.Username = v.GetString("smtp.username")
	ConfigInfo.Smtp.Password = v.GetString("smtp.password")
	ConfigInfo.Smtp.From = v.GetString("smtp.from")

	ConfigInfo.Reconcile.Interval = v.GetDuration("reconcile.interval")
	ConfigInfo.Reconcile.Batch = v.GetInt("reconcile.batch")

	logrus.Infof("Config loaded - %s: %s:%s@%s/%s", ConfigInfo.Mysql.Driver,
		ConfigInfo.Mysql.Username, "***", ConfigInfo.Mysql.Addr, ConfigInfo.Mysql.Database)
	logrus.Infof("Notification mode: %s, reconcile interval: %s",
		ConfigInfo.Notification.Mode, ConfigInfo.Reconcile.Interval)

	if ConfigInfo.Jwt.Secret == DevJwtSecret && IsProduction() {
		logrus.Warn("Using the development jwt secret in production!")
	}
}

// RabbitMQURL 拼接amqp连接串
func RabbitMQURL() string {
	return "amqp://" + ConfigInfo.RabbitMq.Username + ":" + ConfigInfo.RabbitMq.Password + "@" + ConfigInfo.RabbitMq.Addr + "/"
}

func IsProduction() bool {
	return ConfigInfo.Server.Env == "production"
}

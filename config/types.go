package config

import "time"

type config struct {
	Server       server       `yaml:"server" mapstructure:"server"`
	Mysql        mysql        `yaml:"mysql" mapstructure:"mysql"`
	Redis        redis        `yaml:"redis" mapstructure:"redis"`
	RabbitMq     rabbitmq     `yaml:"rabbitmq" mapstructure:"rabbitmq"`
	Minio        minio        `yaml:"minio" mapstructure:"minio"`
	Jwt          jwt          `yaml:"jwt" mapstructure:"jwt"`
	Notification notification `yaml:"notification" mapstructure:"notification"`
	Jaeger       jaeger       `yaml:"jaeger" mapstructure:"jaeger"`
	Sentinel     sentinel     `yaml:"sentinel" mapstructure:"sentinel"`
	Smtp         smtp         `yaml:"smtp" mapstructure:"smtp"`
	Reconcile    reconcile    `yaml:"reconcile" mapstructure:"reconcile"`
}

type server struct {
	Addr           string   `yaml:"addr"`
	Env            string   `yaml:"env"`
	AllowOrigins   []string `yaml:"allow_origins" mapstructure:"allow_origins"`
	MaxBodySize    int      `yaml:"max_body_size" mapstructure:"max_body_size"`
	UploadDir      string   `yaml:"upload_dir" mapstructure:"upload_dir"`
	Pprof          bool     `yaml:"pprof"`
	PprofAddr      string   `yaml:"pprof_addr" mapstructure:"pprof_addr"`
	WorkerID       int64    `yaml:"worker_id" mapstructure:"worker_id"`
	DatacenterID   int64    `yaml:"datacenter_id" mapstructure:"datacenter_id"`
	ExposeInternal bool     `yaml:"expose_internal" mapstructure:"expose_internal"`
}

type mysql struct {
	// Driver mysql 或 sqlite，sqlite 用于本地开发
	Driver          string        `yaml:"driver"`
	Addr            string        `yaml:"addr"`
	Database        string        `yaml:"database"`
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"`
	Charset         string        `yaml:"charset"`
	Params          string        `yaml:"params"`
	SqlitePath      string        `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
	// NotificationShards 大于0时按接收者对通知表分表
	NotificationShards uint `yaml:"notification_shards" mapstructure:"notification_shards"`
}

type redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type rabbitmq struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type minio struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl" mapstructure:"use_ssl"`
	Bucket    string `yaml:"bucket"`
	PublicURL string `yaml:"public_url" mapstructure:"public_url"`
}

type jwt struct {
	Secret     string        `yaml:"secret"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRefresh time.Duration `yaml:"max_refresh" mapstructure:"max_refresh"`
}

type notification struct {
	// Mode direct 为进程内同步写入，queue 为投递到RabbitMQ
	Mode string `yaml:"mode"`
}

type jaeger struct {
	Enable    bool   `yaml:"enable"`
	AgentAddr string `yaml:"agent_addr" mapstructure:"agent_addr"`
}

type sentinel struct {
	Enable bool `yaml:"enable"`
	// 每秒允许的写请求与读请求
	WriteQPS float64 `yaml:"write_qps" mapstructure:"write_qps"`
	ReadQPS  float64 `yaml:"read_qps" mapstructure:"read_qps"`
}

type smtp struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type reconcile struct {
	Interval time.Duration `yaml:"interval"`
	Batch    int           `yaml:"batch"`
}

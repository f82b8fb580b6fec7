package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"VidTube.com/cmd/api/handlers"
	handler_user "VidTube.com/cmd/api/handlers/user"
	"VidTube.com/cmd/api/middleware"
	"VidTube.com/cmd/dal"
	guard "VidTube.com/cmd/interaction/infras/redis"
	interactionservice "VidTube.com/cmd/interaction/service"
	notifyservice "VidTube.com/cmd/notification/service"
	"VidTube.com/config"
	"VidTube.com/config/jaeger"
	"VidTube.com/config/pprof"
	"VidTube.com/pkg/cache"
	"VidTube.com/pkg/constants"
	"VidTube.com/pkg/database"
	"VidTube.com/pkg/jwt"
	"VidTube.com/pkg/mail"
	"VidTube.com/pkg/mq"
	"VidTube.com/pkg/oss"
	"VidTube.com/pkg/utils"
	"github.com/cloudwego/hertz/pkg/app/server"
	hzconfig "github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/hertz-contrib/cors"
	"github.com/pkg/errors"
)

// closers 退出时按注册的逆序关闭
var closers []io.Closer

func initDB() error {
	c := config.ConfigInfo.Mysql
	db, err := database.Open(database.Options{
		Driver:          c.Driver,
		Addr:            c.Addr,
		Database:        c.Database,
		Username:        c.Username,
		Password:        c.Password,
		Charset:         c.Charset,
		Params:          c.Params,
		SqlitePath:      c.SqlitePath,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		Tracing:         config.ConfigInfo.Jaeger.Enable,
	})
	if err != nil {
		return err
	}
	return dal.Init(db, c.NotificationShards)
}

// initNotification queue模式下连接失败时退回direct
func initNotification(ctx context.Context) {
	if config.ConfigInfo.Notification.Mode != "queue" {
		notifyservice.SetEmitter(notifyservice.DirectEmitter{})
		return
	}
	url := config.RabbitMQURL()
	producer, err := mq.NewProducer(url)
	if err != nil {
		hlog.Errorf("rabbitmq producer unavailable, notifications fall back to direct mode: %v", err)
		return
	}
	consumer, err := mq.NewConsumer(url)
	if err != nil {
		producer.Close()
		hlog.Errorf("rabbitmq consumer unavailable, notifications fall back to direct mode: %v", err)
		return
	}
	if err = consumer.ConsumeNotificationEvents(ctx, notifyservice.EventHandler{}); err != nil {
		producer.Close()
		consumer.Close()
		hlog.Errorf("start notification consumer failed, notifications fall back to direct mode: %v", err)
		return
	}
	closers = append(closers, producer, consumer)
	notifyservice.SetEmitter(&notifyservice.QueueEmitter{
		Publisher: producer,
		Fallback:  notifyservice.DirectEmitter{},
	})
	hlog.Info("notifications dispatched through rabbitmq")
}

func initStorage() error {
	m := config.ConfigInfo.Minio
	if m.Endpoint == "" {
		oss.InitLocal(filepath.Join(config.ConfigInfo.Server.UploadDir, "media"), "/media")
		return nil
	}
	return oss.InitMinio(m.Endpoint, m.AccessKey, m.SecretKey, m.UseSSL, m.Bucket, m.PublicURL)
}

func initMail() {
	s := config.ConfigInfo.Smtp
	if s.Host == "" {
		return
	}
	mail.Default = mail.NewSMTPSender(s.Host, s.Port, s.Username, s.Password, s.From)
}

func Init(ctx context.Context) error {
	config.Init()
	if err := utils.InitSnowflake(config.ConfigInfo.Server.WorkerID, config.ConfigInfo.Server.DatacenterID); err != nil {
		return err
	}
	if config.ConfigInfo.Jaeger.Enable {
		closer, err := jaeger.Init(constants.ServiceName, config.ConfigInfo.Jaeger.AgentAddr)
		if err != nil {
			return err
		}
		closers = append(closers, closer)
	}
	if err := initDB(); err != nil {
		return errors.WithMessage(err, "init database")
	}

	rc := config.ConfigInfo.Redis
	client := cache.NewClient(rc.Addr, rc.Password, rc.DB)
	closers = append(closers, client)
	guard.Init(client)
	if interval := config.ConfigInfo.Reconcile.Interval; interval > 0 {
		interactionservice.StartSweeper(ctx, cache.NewLocker(client), interval, config.ConfigInfo.Reconcile.Batch)
	}

	initNotification(ctx)
	if err := initStorage(); err != nil {
		return errors.WithMessage(err, "init media storage")
	}
	initMail()

	if config.ConfigInfo.Sentinel.Enable {
		if err := middleware.InitSentinel(config.ConfigInfo.Sentinel.ReadQPS, config.ConfigInfo.Sentinel.WriteQPS); err != nil {
			return err
		}
	}
	if config.ConfigInfo.Server.Pprof {
		pprof.Load(config.ConfigInfo.Server.PprofAddr)
	}
	j := config.ConfigInfo.Jwt
	return jwt.Init(j.Secret, j.Timeout, j.MaxRefresh, handler_user.Login, handlers.TokenResponder{})
}

// newServer 组装中间件与路由，测试中直接使用返回的引擎
func newServer(opts ...hzconfig.Option) *server.Hertz {
	base := []hzconfig.Option{
		server.WithHostPorts(config.ConfigInfo.Server.Addr),
		server.WithHandleMethodNotAllowed(true),
	}
	if size := config.ConfigInfo.Server.MaxBodySize; size > 0 {
		base = append(base, server.WithMaxRequestBodySize(size))
	}
	r := server.New(append(base, opts...)...)

	r.Use(middleware.Recovery())

	// 配置 CORS
	origins := config.ConfigInfo.Server.AllowOrigins
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowAllOrigins:  len(origins) == 0,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: len(origins) > 0,
		MaxAge:           12 * 3600,
	}))

	r.Use(middleware.Tracing(), middleware.Metrics())
	if config.ConfigInfo.Sentinel.Enable {
		r.Use(middleware.Sentinel())
	}

	// 本地存储的媒体文件，请求路径与目录结构一致
	if config.ConfigInfo.Minio.Endpoint == "" && config.ConfigInfo.Server.UploadDir != "" {
		r.Static("/media", config.ConfigInfo.Server.UploadDir)
	}

	// 注册路由
	register(r)
	return r
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := Init(ctx); err != nil {
		hlog.Fatalf("init failed: %v", err)
	}
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				hlog.Warnf("close: %v", err)
			}
		}
	}()

	r := newServer()
	r.Spin()
}

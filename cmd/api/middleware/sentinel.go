package middleware

import (
	"context"

	"VidTube.com/cmd/api/handlers"
	"VidTube.com/pkg/errno"
	"VidTube.com/pkg/metrics"
	sentinel "github.com/alibaba/sentinel-golang/api"
	"github.com/alibaba/sentinel-golang/core/base"
	sentinelcfg "github.com/alibaba/sentinel-golang/core/config"
	"github.com/alibaba/sentinel-golang/core/flow"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/pkg/errors"
)

const (
	ResourceRead  = "vidtube:read"
	ResourceWrite = "vidtube:write"
)

// InitSentinel 读写两类入口流量各一条QPS规则，超出直接拒绝
func InitSentinel(readQPS, writeQPS float64) error {
	conf := sentinelcfg.NewDefaultConfig()
	conf.Sentinel.App.Name = "vidtube-api"
	if err := sentinel.InitWithConfig(conf); err != nil {
		return errors.WithMessage(err, "init sentinel")
	}
	_, err := flow.LoadRules([]*flow.Rule{
		{
			Resource:               ResourceRead,
			TokenCalculateStrategy: flow.Direct,
			ControlBehavior:        flow.Reject,
			Threshold:              readQPS,
			StatIntervalInMs:       1000,
		},
		{
			Resource:               ResourceWrite,
			TokenCalculateStrategy: flow.Direct,
			ControlBehavior:        flow.Reject,
			Threshold:              writeQPS,
			StatIntervalInMs:       1000,
		},
	})
	return errors.WithMessage(err, "load sentinel flow rules")
}

func resourceOf(c *app.RequestContext) string {
	switch string(c.Method()) {
	case consts.MethodGet, consts.MethodHead, consts.MethodOptions:
		return ResourceRead
	default:
		return ResourceWrite
	}
}

// Sentinel 被限流时返回429
func Sentinel() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		entry, blocked := sentinel.Entry(resourceOf(c), sentinel.WithTrafficType(base.Inbound))
		if blocked != nil {
			metrics.RateLimited.WithLabelValues("sentinel").Inc()
			handlers.SendResponse(c, errno.TooManyRequestsErr, nil)
			c.Abort()
			return
		}
		defer entry.Exit()
		c.Next(ctx)
	}
}

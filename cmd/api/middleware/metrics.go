package middleware

import (
	"context"
	"strconv"
	"time"

	"VidTube.com/pkg/metrics"
	"github.com/cloudwego/hertz/pkg/app"
)

func Metrics() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		c.Next(ctx)
		method, path := string(c.Method()), route(c)
		metrics.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(c.Response.StatusCode())).Inc()
		metrics.HTTPDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

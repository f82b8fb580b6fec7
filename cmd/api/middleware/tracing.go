package middleware

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

// Tracing 为每个请求开启一个span，gorm插件从ctx中取出它作为父span
func Tracing() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		tracer := opentracing.GlobalTracer()
		header := http.Header{}
		c.Request.Header.VisitAll(func(k, v []byte) {
			header.Add(string(k), string(v))
		})

		opts := []opentracing.StartSpanOption{ext.SpanKindRPCServer}
		if parent, err := tracer.Extract(opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(header)); err == nil {
			opts = append(opts, opentracing.ChildOf(parent))
		}
		span := tracer.StartSpan(string(c.Method())+" "+route(c), opts...)
		defer span.Finish()
		ext.HTTPMethod.Set(span, string(c.Method()))
		ext.HTTPUrl.Set(span, string(c.Path()))

		c.Next(opentracing.ContextWithSpan(ctx, span))

		status := c.Response.StatusCode()
		ext.HTTPStatusCode.Set(span, uint16(status))
		if status >= http.StatusInternalServerError {
			ext.Error.Set(span, true)
		}
	}
}

// route 未匹配的请求统一归为unmatched，避免标签基数失控
func route(c *app.RequestContext) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return "unmatched"
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vidtube"

var (
	// HTTPRequests 按路由与状态码统计请求
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// Notifications 通知扇出结果：emitted, suppressed, skipped, failed
	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Notification fan-out outcomes by type.",
	}, []string{"type", "outcome"})

	// CounterRepairs 对账时发现并修正的计数漂移
	CounterRepairs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "counter_repairs_total",
		Help:      "Denormalized counters rewritten by reconciliation.",
	}, []string{"table", "column"})

	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Requests rejected by flow control or anti-spam.",
	}, []string{"source"})
)

const (
	OutcomeEmitted    = "emitted"
	OutcomeSuppressed = "suppressed"
	OutcomeSkipped    = "skipped"
	OutcomeFailed     = "failed"
)

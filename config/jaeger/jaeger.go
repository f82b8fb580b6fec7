package jaeger

import (
	"io"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

// Init 创建jaeger tracer并注册为opentracing全局tracer
// 返回的Closer在进程退出前调用，把缓冲中的span刷出
func Init(serviceName, agentAddr string) (io.Closer, error) {
	cfg := jaegercfg.Configuration{
		ServiceName: serviceName,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: 1,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LogSpans:           false,
			LocalAgentHostPort: agentAddr,
		},
	}
	tracer, closer, err := cfg.NewTracer(jaegercfg.Logger(jaeger.NullLogger))
	if err != nil {
		return nil, errors.WithMessage(err, "create jaeger tracer")
	}
	opentracing.SetGlobalTracer(tracer)
	hlog.Infof("jaeger tracer ready, service=%s agent=%s", serviceName, agentAddr)
	return closer, nil
}

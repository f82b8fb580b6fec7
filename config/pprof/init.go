package pprof

import (
	"net/http"
	_ "net/http/pprof"
	"runtime"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// Load 在独立端口上暴露pprof，不与业务路由共用
func Load(addr string) {
	runtime.SetMutexProfileFraction(1)
	runtime.SetBlockProfileRate(1)

	go func() {
		hlog.Infof("pprof listening on %s", addr)
		if err := http.ListenAndServe(addr, nil); err != nil {
			hlog.Errorf("pprof server stopped: %v", err)
		}
	}()
}

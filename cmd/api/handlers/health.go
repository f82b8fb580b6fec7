package handlers

import (
	"context"
	"runtime"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

type healthData struct {
	Status     string  `json:"status"`
	Goroutines int     `json:"goroutines"`
	CPUPercent float64 `json:"cpu_percent"`
	MemPercent float64 `json:"mem_percent"`
	MemUsedMB  uint64  `json:"mem_used_mb"`
	MemTotalMB uint64  `json:"mem_total_mb"`
}

// Health 主机状态快照，采集失败的字段保持为0
func Health(ctx context.Context, c *app.RequestContext) {
	data := healthData{Status: "ok", Goroutines: runtime.NumGoroutine()}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		data.CPUPercent = percents[0]
	} else if err != nil {
		hlog.CtxWarnf(ctx, "read cpu stats: %v", err)
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		data.MemPercent = vm.UsedPercent
		data.MemUsedMB = vm.Used >> 20
		data.MemTotalMB = vm.Total >> 20
	} else {
		hlog.CtxWarnf(ctx, "read memory stats: %v", err)
	}
	SendMessage(c, consts.StatusOK, "Service is healthy", data)
}

package admin

import (
	"context"
	"strconv"

	"VidTube.com/cmd/api/handlers"
	"VidTube.com/cmd/interaction/service"
	"VidTube.com/config"
	"github.com/cloudwego/hertz/pkg/app"
)

// ReconcileVideo 用关联表重新计算视频及其评论的点赞数与评论数
func ReconcileVideo(ctx context.Context, c *app.RequestContext) {
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	drifts, err := service.NewReconcileService(ctx).ReconcileVideo(id)
	handlers.SendResponse(c, err, drifts)
}

func ReconcileUser(ctx context.Context, c *app.RequestContext) {
	id, err := handlers.ParseID(c, "id")
	if err != nil {
		handlers.SendResponse(c, err, nil)
		return
	}
	drift, err := service.NewReconcileService(ctx).ReconcileUser(id)
	handlers.SendResponse(c, err, drift)
}

// Sweep 全量对账，?batch= 覆盖配置的批大小
func Sweep(ctx context.Context, c *app.RequestContext) {
	batch := config.ConfigInfo.Reconcile.Batch
	if v, err := strconv.Atoi(c.Query("batch")); err == nil && v > 0 {
		batch = v
	}
	res, err := service.NewReconcileService(ctx).Sweep(batch)
	handlers.SendResponse(c, err, res)
}

package routes

import (
	"github.com/kataras/iris/v12"

	"polycopy/api/routes/api"
	"polycopy/service"
)

// ApiRoutes api路由加载
func ApiRoutes(app *iris.Application, copySvc *service.ServiceCopy, statsSvc *service.ServiceStats) {
	// 默认路由
	api.BaseRoutes(app)
	// Debug路由
	api.PprofRoutes(app)
	// 存活探针
	healthRoutes := app.Party("/health")
	{
		api.HealthRoutes(healthRoutes)
	}
	reportRoutes := app.Party("/v1/report")
	{
		api.ReportRoutes(reportRoutes, copySvc)
	}
	traderRoutes := app.Party("/v1/trader")
	{
		api.TraderRoutes(traderRoutes, copySvc, statsSvc)
	}
}

package api

import (
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/core/router"

	"polycopy/api/controllers"
	"polycopy/service"
)

func TraderRoutes(app router.Party, copySvc *service.ServiceCopy, statsSvc *service.ServiceStats) {
	c := controllers.TraderController{Copy: copySvc, Stats: statsSvc}

	app.Get("/list", func(ctx iris.Context) {
		c.List(ctx)
	})
	app.Get("/switch", func(ctx iris.Context) {
		c.SwitchStatus(ctx)
	})
}

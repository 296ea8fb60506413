package api

import (
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/core/router"

	"polycopy/api/controllers"
	"polycopy/service"
)

func ReportRoutes(app router.Party, copySvc *service.ServiceCopy) {
	c := controllers.ReportController{Copy: copySvc}

	app.Get("/summary", func(ctx iris.Context) {
		c.Summary(ctx)
	})
	app.Get("/trades", func(ctx iris.Context) {
		c.Trades(ctx)
	})
}

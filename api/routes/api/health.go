package api

import (
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/core/router"

	"polycopy/api/controllers"
)

func HealthRoutes(app router.Party) {
	c := controllers.HealthController{}

	app.Get("/live", func(ctx iris.Context) {
		c.Live(ctx)
	})
}

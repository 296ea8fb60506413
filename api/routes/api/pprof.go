package api

import (
	"github.com/kataras/iris/v12/core/router"
	"github.com/kataras/iris/v12/middleware/pprof"
)

func PprofRoutes(app router.Party) {
	app.Get("/debug/pprof", pprof.New())
	app.Get("/debug/pprof/{action:path}", pprof.New())
}

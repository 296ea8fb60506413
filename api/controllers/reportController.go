package controllers

import (
	"github.com/kataras/iris/v12"

	"polycopy/service"
)

type ReportController struct {
	BaseController
	Copy *service.ServiceCopy
}

// Summary 复制交易报告接口
func (c *ReportController) Summary(ctx iris.Context) error {
	data := map[string]interface{}{
		"code":    "0",
		"message": "success",
	}

	report, err := c.Copy.PerformanceReport()
	if err != nil {
		data["code"] = "10500"
		data["message"] = err.Error()
		return ctx.JSON(data)
	}
	data["data"] = report
	return ctx.JSON(data)
}

// Trades 复制交易记录接口
func (c *ReportController) Trades(ctx iris.Context) error {
	data := map[string]interface{}{
		"code":    "0",
		"message": "success",
	}

	trades, err := c.Copy.CopyTrades()
	if err != nil {
		data["code"] = "10500"
		data["message"] = err.Error()
		return ctx.JSON(data)
	}
	data["data"] = trades
	data["total"] = len(trades)
	return ctx.JSON(data)
}

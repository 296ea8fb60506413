package controllers

import (
	"strings"

	"github.com/kataras/iris/v12"

	"polycopy/service"
	"polycopy/types"
)

type TraderController struct {
	BaseController
	Copy  *service.ServiceCopy
	Stats *service.ServiceStats
}

// List 跟随交易员列表接口
func (c *TraderController) List(ctx iris.Context) error {
	data := map[string]interface{}{
		"code":    "0",
		"message": "success",
	}

	type traderItem struct {
		Rule    interface{} `json:"rule"`
		Profile interface{} `json:"profile,omitempty"`
	}

	items := make(map[string]traderItem)
	for _, rule := range c.Copy.Rules() {
		item := traderItem{Rule: rule}
		if profile, ok := c.Stats.Profile(rule.TraderAddress); ok {
			item.Profile = profile
		}
		items[rule.TraderAddress] = item
	}
	data["data"] = items
	return ctx.JSON(data)
}

// SwitchStatus 暂停/恢复跟单接口
func (c *TraderController) SwitchStatus(ctx iris.Context) error {
	data := map[string]interface{}{
		"code":    "0",
		"message": "success",
	}

	var trader string
	if trader = ctx.URLParamTrim("trader"); len(trader) == 0 {
		data["code"] = "10401"
		data["message"] = "please set trader address"
		return ctx.JSON(data)
	}

	status := ctx.URLParamTrim("status")
	types.RuleStatusChan <- types.RuleStatus{
		TraderAddress: strings.ToLower(trader),
		Active:        status == "true",
	}
	return ctx.JSON(data)
}

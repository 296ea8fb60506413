package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/glebarez/sqlite"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"polycopy/bot"
	"polycopy/exchange"
	"polycopy/model"
	"polycopy/source"
	"polycopy/storage"
	"polycopy/utils"
	"polycopy/utils/config"
	logadapter "polycopy/utils/log"
)

func main() {
	// 获取基础配置
	var (
		apiKey        = viper.GetString("api.key")
		apiSecret     = viper.GetString("api.secret")
		apiPassphrase = viper.GetString("api.passphrase")
		apiAddress    = viper.GetString("api.address")
		proxyStatus   = viper.GetBool("proxy.status")
		proxyUrl      = viper.GetString("proxy.url")
		feedUrl       = viper.GetString("feed.url")
		tradersConfig = viper.GetStringMap("traders")
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 监听配置文件变化
	config.WatchConf()

	settings := model.SettingsFromViper()

	exchangeOptions := []exchange.PolymarketOption{
		exchange.WithPolymarketCredentials(exchange.PolymarketCredentials{
			APIKey:     apiKey,
			Secret:     apiSecret,
			Passphrase: apiPassphrase,
			Address:    apiAddress,
		}),
	}
	if proxyStatus {
		exchangeOptions = append(
			exchangeOptions,
			exchange.WithPolymarketProxy(proxyUrl),
		)
	}

	polymarket, err := exchange.NewPolymarket(ctx, exchangeOptions...)
	if err != nil {
		utils.Log.Fatal(err)
	}

	storagePath := viper.GetString("storage.path")
	if storagePath == "" {
		storagePath = "./data/copytrading.db"
	}
	dir := filepath.Dir(storagePath)
	// 判断文件目录是否存在
	_, err = os.Stat(dir)
	if err != nil {
		err = os.MkdirAll(dir, os.ModePerm)
		if err != nil {
			utils.Log.Panicf("mkdir error : %s", err.Error())
		}
	}
	st, err := storage.FromSQL(sqlite.Open(storagePath), &gorm.Config{
		Logger: logadapter.NewGormLogger(utils.Log),
	})
	if err != nil {
		utils.Log.Fatal(err)
	}

	feed := source.NewUserFeed(feedUrl, settings.MonitoringInterval)

	b, err := bot.NewBot(
		ctx,
		settings,
		polymarket,
		polymarket,
		feed,
		bot.WithStorage(st),
		bot.WithProfiler(polymarket),
		bot.WithHttpServer(),
	)
	if err != nil {
		utils.Log.Fatalln(err)
	}

	for trader, val := range tradersConfig {
		valMap, ok := val.(map[string]interface{})
		if !ok {
			utils.Log.Fatalf("invalid rule config for trader %s", trader)
		}

		rule := ruleFromConfig(strings.ToLower(trader), valMap)
		if err := b.AddTrader(rule); err != nil {
			utils.Log.Fatalf("invalid rule for trader %s: %s", trader, err.Error())
		}
	}

	b.Run(ctx)
	b.Summary()
}

func ruleFromConfig(trader string, conf map[string]interface{}) model.CopyRule {
	rule := model.CopyRule{
		TraderAddress:    trader,
		CopyPercentage:   0.1,
		MinCopyAmount:    10,
		MaxCopyAmount:    500,
		MaxDailyCopy:     2000,
		MaxOddsThreshold: 0.95,
		Active:           true,
	}

	if v, ok := conf["copypercentage"].(float64); ok {
		rule.CopyPercentage = v
	}
	if v, ok := conf["mincopyamount"].(float64); ok {
		rule.MinCopyAmount = v
	}
	if v, ok := conf["maxcopyamount"].(float64); ok {
		rule.MaxCopyAmount = v
	}
	if v, ok := conf["maxdailycopy"].(float64); ok {
		rule.MaxDailyCopy = v
	}
	if v, ok := conf["minmarketliquidity"].(float64); ok {
		rule.MinMarketLiquidity = v
	}
	if v, ok := conf["maxoddsthreshold"].(float64); ok {
		rule.MaxOddsThreshold = v
	}
	if v, ok := conf["mintraderamount"].(float64); ok {
		rule.MinTraderAmount = v
	}
	if v, ok := conf["copysells"].(bool); ok {
		rule.CopySells = v
	}
	if v, ok := conf["active"].(bool); ok {
		rule.Active = v
	}
	if v, ok := conf["categoriesfilter"].([]interface{}); ok {
		for _, category := range v {
			if name, ok := category.(string); ok {
				rule.CategoriesFilter = append(rule.CategoriesFilter, name)
			}
		}
	}

	return rule
}

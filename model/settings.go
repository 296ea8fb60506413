package model

import (
	"time"

	"github.com/spf13/viper"
	str2duration "github.com/xhit/go-str2duration/v2"
)

// Account-level defaults, matching the engine's documented behavior.
const (
	DefaultMaxDailyBudget      = 5000.0
	DefaultMinAccountBalance   = 1000.0
	DefaultMaxConcurrentCopies = 20

	DefaultMonitoringInterval = 30 * time.Second
	DefaultTradeCheckInterval = 60 * time.Second
	DefaultRiskCheckInterval  = 300 * time.Second
	DefaultStatsInterval      = 3600 * time.Second
	DefaultTradeFillTimeout   = 300 * time.Second
)

type TelegramSettings struct {
	Enabled bool
	Token   string
	Users   []int
}

// Settings carries the account-level limits and loop intervals for the bot.
type Settings struct {
	MaxDailyBudget      float64
	MinAccountBalance   float64
	MaxConcurrentCopies int

	MonitoringInterval time.Duration
	TradeCheckInterval time.Duration
	RiskCheckInterval  time.Duration
	StatsInterval      time.Duration
	TradeFillTimeout   time.Duration

	Telegram TelegramSettings
}

func DefaultSettings() Settings {
	return Settings{
		MaxDailyBudget:      DefaultMaxDailyBudget,
		MinAccountBalance:   DefaultMinAccountBalance,
		MaxConcurrentCopies: DefaultMaxConcurrentCopies,
		MonitoringInterval:  DefaultMonitoringInterval,
		TradeCheckInterval:  DefaultTradeCheckInterval,
		RiskCheckInterval:   DefaultRiskCheckInterval,
		StatsInterval:       DefaultStatsInterval,
		TradeFillTimeout:    DefaultTradeFillTimeout,
	}
}

// SettingsFromViper overlays config values onto the defaults. Durations are
// accepted in str2duration form ("30s", "1h", "2m30s").
func SettingsFromViper() Settings {
	settings := DefaultSettings()

	if viper.IsSet("trading.maxDailyBudget") {
		settings.MaxDailyBudget = viper.GetFloat64("trading.maxDailyBudget")
	}
	if viper.IsSet("trading.minAccountBalance") {
		settings.MinAccountBalance = viper.GetFloat64("trading.minAccountBalance")
	}
	if viper.IsSet("trading.maxConcurrentCopies") {
		settings.MaxConcurrentCopies = viper.GetInt("trading.maxConcurrentCopies")
	}

	settings.MonitoringInterval = durationOr("trading.monitoringInterval", settings.MonitoringInterval)
	settings.TradeCheckInterval = durationOr("trading.tradeCheckInterval", settings.TradeCheckInterval)
	settings.RiskCheckInterval = durationOr("trading.riskCheckInterval", settings.RiskCheckInterval)
	settings.StatsInterval = durationOr("trading.statsInterval", settings.StatsInterval)
	settings.TradeFillTimeout = durationOr("trading.tradeFillTimeout", settings.TradeFillTimeout)

	settings.Telegram = TelegramSettings{
		Enabled: viper.GetBool("telegram.enabled"),
		Token:   viper.GetString("telegram.token"),
		Users:   viper.GetIntSlice("telegram.users"),
	}

	return settings
}

func durationOr(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	if raw == "" {
		return fallback
	}
	d, err := str2duration.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

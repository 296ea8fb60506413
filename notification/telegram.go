package notification

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	tb "gopkg.in/tucnak/telebot.v2"

	"polycopy/model"
	"polycopy/reference"
	"polycopy/service"
	"polycopy/utils"
)

var ErrInvalidTelegramSettings = errors.New("invalid telegram settings: token and users are required")

type telegram struct {
	settings model.Settings
	client   *tb.Bot
	copySvc  *service.ServiceCopy
}

// NewTelegram wires a telegram bot as the engine notifier. Only the
// configured user IDs may talk to it.
func NewTelegram(copySvc *service.ServiceCopy, settings model.Settings) (reference.Telegram, error) {
	if settings.Telegram.Token == "" || len(settings.Telegram.Users) == 0 {
		return nil, ErrInvalidTelegramSettings
	}

	menu := &tb.ReplyMarkup{ResizeReplyKeyboard: true}
	poller := &tb.LongPoller{Timeout: 10 * time.Second}
	userMiddleware := tb.NewMiddlewarePoller(poller, func(u *tb.Update) bool {
		if u.Message == nil || u.Message.Sender == nil {
			utils.Log.Error("no message, ", u)
			return false
		}

		if !lo.Contains(settings.Telegram.Users, int(u.Message.Sender.ID)) {
			utils.Log.Errorf("unauthorized user: %v", u.Message.Sender.ID)
			return false
		}

		return true
	})

	client, err := tb.NewBot(tb.Settings{
		ParseMode: tb.ModeMarkdown,
		Token:     settings.Telegram.Token,
		Poller:    userMiddleware,
	})
	if err != nil {
		return nil, err
	}

	var (
		statusBtn  = menu.Text("/status")
		reportBtn  = menu.Text("/report")
		tradersBtn = menu.Text("/traders")
	)
	menu.Reply(
		menu.Row(statusBtn, reportBtn, tradersBtn),
	)

	bot := &telegram{
		settings: settings,
		client:   client,
		copySvc:  copySvc,
	}

	client.Handle("/status", bot.StatusHandle)
	client.Handle("/report", bot.ReportHandle)
	client.Handle("/traders", bot.TradersHandle)

	return bot, nil
}

func (t telegram) Start() {
	go t.client.Start()
	for _, user := range t.settings.Telegram.Users {
		_, err := t.client.Send(&tb.User{ID: int64(user)}, "Copy trading bot initialized.")
		if err != nil {
			utils.Log.Error(err)
		}
	}
}

func (t telegram) Notify(text string) {
	for _, user := range t.settings.Telegram.Users {
		_, err := t.client.Send(&tb.User{ID: int64(user)}, text)
		if err != nil {
			utils.Log.Error(err)
		}
	}
}

func (t telegram) StatusHandle(m *tb.Message) {
	status := fmt.Sprintf("Status: `%s`", t.copySvc.Status())
	_, err := t.client.Send(m.Sender, status)
	if err != nil {
		utils.Log.Error(err)
	}
}

func (t telegram) ReportHandle(m *tb.Message) {
	report, err := t.copySvc.PerformanceReport()
	if err != nil {
		t.OnError(err)
		return
	}

	message := fmt.Sprintf(
		"*Copy trading report*\nTrades: %d\nVolume copied: $%.2f\nSpent today: $%.2f\nBudget remaining: $%.2f\nExposure: $%.2f\nTraders followed: %d",
		report.TotalCopyTrades,
		report.TotalVolumeCopied,
		report.DailySpent,
		report.DailyBudgetRemaining,
		report.TotalExposure,
		report.ActiveTradersFollowed,
	)
	_, err = t.client.Send(m.Sender, message)
	if err != nil {
		utils.Log.Error(err)
	}
}

func (t telegram) TradersHandle(m *tb.Message) {
	message := "*Followed traders*\n"
	for _, rule := range t.copySvc.Rules() {
		copied, err := t.copySvc.DailyCopiedAmount(rule.TraderAddress)
		if err != nil {
			t.OnError(err)
			return
		}
		message += fmt.Sprintf("`%s` copy %.0f%%, today $%.2f of $%.2f\n",
			rule.TraderAddress, rule.CopyPercentage*100, copied, rule.MaxDailyCopy)
	}

	_, err := t.client.Send(m.Sender, message)
	if err != nil {
		utils.Log.Error(err)
	}
}

func (t telegram) OnLeadFound(event model.TradeEvent, rule model.CopyRule) {
	t.Notify(fmt.Sprintf(
		"🎯 *Lead found*\n%s %s $%.2f @ %.3f\n%s (%s)\ncopying %.0f%%",
		event.Side,
		event.TraderAddress,
		event.Amount,
		event.Price,
		event.MarketQuestion,
		event.Outcome,
		rule.CopyPercentage*100,
	))
}

func (t telegram) OnTransaction(trade model.CopyTrade, phase string) {
	var title string
	switch phase {
	case reference.PhaseFilled:
		title = "✅ *Copy trade filled*"
	default:
		title = "📈 *Copy trade executed*"
	}

	t.Notify(fmt.Sprintf(
		"%s\n%s $%.2f (%.4f shares @ $%.3f)\nfollowing `%s`\norder `%s`",
		title,
		trade.Side,
		trade.CopyAmount,
		trade.Shares,
		trade.Price,
		trade.OriginalTrader,
		trade.OrderID,
	))
}

func (t telegram) OnError(err error) {
	title := "🛑 *ERROR*"

	var orderError *model.OrderError
	if errors.As(err, &orderError) {
		message := fmt.Sprintf("%s\n-----\nCannot place order for %s:\n`%v`", title, orderError.TokenID, orderError.Err)
		t.Notify(message)
		return
	}

	t.Notify(fmt.Sprintf("%s\n-----\n%v", title, err))
}

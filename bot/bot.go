package bot

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"polycopy/model"
	"polycopy/notification"
	"polycopy/reference"
	"polycopy/serv"
	"polycopy/service"
	"polycopy/storage"
	"polycopy/types"
	"polycopy/utils"
)

// Bot wires the gateway, the trade feed and the services together and owns
// one monitor goroutine per followed trader. Events from one trader are
// processed in arrival order; traders are independent of each other.
type Bot struct {
	mu       sync.Mutex
	running  bool
	ctx      context.Context
	storage  storage.Storage
	settings model.Settings
	gateway  reference.Gateway
	market   reference.MarketInfo
	feeder   reference.Feeder
	profiler reference.Profiler
	notifier reference.Notifier
	telegram reference.Telegram
	httpServ bool

	serviceDecision *service.ServiceDecision
	serviceCopy     *service.ServiceCopy
	serviceRisk     *service.ServiceRisk
	serviceStats    *service.ServiceStats

	monitors sync.WaitGroup
}

type Option func(*Bot)

func NewBot(ctx context.Context, settings model.Settings, gateway reference.Gateway,
	market reference.MarketInfo, feeder reference.Feeder, options ...Option) (*Bot, error) {
	// 初始化bot参数
	bot := &Bot{
		ctx:      ctx,
		settings: settings,
		gateway:  gateway,
		market:   market,
		feeder:   feeder,
	}
	// 加载用户配置
	for _, option := range options {
		option(bot)
	}
	if bot.storage == nil {
		var err error
		bot.storage, err = storage.FromMemory()
		if err != nil {
			return nil, err
		}
	}
	// 加载决策服务
	bot.serviceDecision = service.NewServiceDecision(market, settings)
	// 加载复制交易服务
	bot.serviceCopy = service.NewServiceCopy(ctx, gateway, bot.storage, bot.serviceDecision, settings)
	// 加载风控服务
	bot.serviceRisk = service.NewServiceRisk(ctx, bot.serviceCopy, gateway, settings)
	// 加载交易员档案服务
	bot.serviceStats = service.NewServiceStats(ctx, bot.serviceCopy, bot.profiler, settings)
	// 加载通知服务
	if settings.Telegram.Enabled {
		var err error
		bot.telegram, err = notification.NewTelegram(bot.serviceCopy, settings)
		if err != nil {
			return nil, err
		}
		// register telegram as notifier
		WithNotifier(bot.telegram)(bot)
	} else if bot.notifier != nil {
		WithNotifier(bot.notifier)(bot)
	}

	return bot, nil
}

// WithStorage sets the copy-trade ledger, by default an in-memory store is used
func WithStorage(storage storage.Storage) Option {
	return func(bot *Bot) {
		bot.storage = storage
	}
}

// WithNotifier registers a notifier to the bot, currently only telegram is supported
func WithNotifier(notifier reference.Notifier) Option {
	return func(bot *Bot) {
		bot.notifier = notifier
		if bot.serviceCopy != nil {
			bot.serviceCopy.SetNotifier(notifier)
			bot.serviceRisk.SetNotifier(notifier)
		}
	}
}

// WithProfiler enables trader profile refreshing
func WithProfiler(profiler reference.Profiler) Option {
	return func(bot *Bot) {
		bot.profiler = profiler
	}
}

// WithHttpServer exposes the report and trader endpoints when the bot runs
func WithHttpServer() Option {
	return func(bot *Bot) {
		bot.httpServ = true
	}
}

// AddTrader registers a copy rule. When the bot is already running the
// monitor for the trader starts immediately.
func (n *Bot) AddTrader(rule model.CopyRule) error {
	if err := n.serviceCopy.AddTrader(rule); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.running {
		n.startMonitor(rule.TraderAddress)
	}
	return nil
}

func (n *Bot) CopyService() *service.ServiceCopy {
	return n.serviceCopy
}

func (n *Bot) StatsService() *service.ServiceStats {
	return n.serviceStats
}

func (n *Bot) startMonitor(trader string) {
	n.monitors.Add(1)
	go n.monitorTrader(n.ctx, trader)
}

func (n *Bot) monitorTrader(ctx context.Context, trader string) {
	defer n.monitors.Done()

	cevent, cerr := n.feeder.TradesSubscription(ctx, trader)
	utils.Log.Infof("[MONITOR] watching trader %s", trader)

	for {
		select {
		case event, ok := <-cevent:
			if !ok {
				utils.Log.Infof("[MONITOR] feed closed for %s", trader)
				return
			}
			n.serviceCopy.Process(event)
		case err, ok := <-cerr:
			if !ok {
				cerr = nil
				continue
			}
			utils.Log.Errorf("[MONITOR] feed error for %s: %v", trader, err)
		case <-ctx.Done():
			return
		}
	}
}

func (n *Bot) listenRuleStatus(ctx context.Context) {
	for {
		select {
		case status := <-types.RuleStatusChan:
			if !n.serviceCopy.SetRuleStatus(status.TraderAddress, status.Active) {
				utils.Log.Warnf("[RULE] no rule for trader %s", status.TraderAddress)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Run starts the services and one monitor per followed trader, then blocks
// until the context is canceled.
func (n *Bot) Run(ctx context.Context) {
	n.mu.Lock()
	if n.running {
		n.mu.Unlock()
		return
	}
	n.running = true

	// 启动复制交易服务
	n.serviceCopy.Start()
	// 启动风控服务
	n.serviceRisk.Start()
	// 启动交易员档案服务
	n.serviceStats.Start()

	// Start notifies
	if n.telegram != nil {
		n.telegram.Start()
	}

	go n.listenRuleStatus(ctx)

	for _, trader := range n.serviceCopy.FollowedTraders() {
		n.startMonitor(trader)
	}
	n.mu.Unlock()

	if n.httpServ {
		go serv.StartHttpServer(n.serviceCopy, n.serviceStats)
	}

	<-ctx.Done()
	n.Stop()
}

// Stop waits for the monitors to drain and shuts the services down. The
// copy service settles pending entries one last time before stopping.
func (n *Bot) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.running {
		return
	}
	n.running = false

	n.monitors.Wait()
	n.serviceStats.Stop()
	n.serviceRisk.Stop()
	n.serviceCopy.Stop()
	utils.Log.Info("Bot stopped.")
}

func (n *Bot) Summary() {
	trades, err := n.serviceCopy.CopyTrades()
	if err != nil {
		utils.Log.Error(err)
		return
	}

	var (
		totalVolume float64
		totalFilled int
	)

	buffer := bytes.NewBuffer(nil)
	table := tablewriter.NewWriter(buffer)
	table.SetHeader([]string{"Trader", "Trades", "Pending", "Filled", "Failed", "Volume"})
	table.SetFooterAlignment(tablewriter.ALIGN_RIGHT)

	byTrader := lo.GroupBy(trades, func(t *model.CopyTrade) string { return t.OriginalTrader })
	for trader, entries := range byTrader {
		pending := lo.CountBy(entries, func(t *model.CopyTrade) bool { return t.Status == model.CopyTradeStatusPending })
		filled := lo.CountBy(entries, func(t *model.CopyTrade) bool { return t.Status == model.CopyTradeStatusFilled })
		failed := lo.CountBy(entries, func(t *model.CopyTrade) bool { return t.Status == model.CopyTradeStatusFailed })
		volume := lo.SumBy(entries, func(t *model.CopyTrade) float64 { return t.CopyAmount })

		table.Append([]string{
			trader,
			strconv.Itoa(len(entries)),
			strconv.Itoa(pending),
			strconv.Itoa(filled),
			strconv.Itoa(failed),
			fmt.Sprintf("%.2f", volume),
		})
		totalVolume += volume
		totalFilled += filled
	}

	table.SetFooter([]string{
		"TOTAL",
		strconv.Itoa(len(trades)),
		"",
		strconv.Itoa(totalFilled),
		"",
		fmt.Sprintf("%.2f", totalVolume),
	})
	table.Render()

	fmt.Println(buffer.String())

	report, err := n.serviceCopy.PerformanceReport()
	if err != nil {
		utils.Log.Error(err)
		return
	}
	fmt.Printf("Spent today: $%.2f | Budget remaining: $%.2f | Exposure: $%.2f\n",
		report.DailySpent, report.DailyBudgetRemaining, report.TotalExposure)
}

package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"polycopy/model"
	"polycopy/reference"
	"polycopy/storage"
	"polycopy/utils"
)

type Status string

const (
	StatusRunning Status = "running"
	StatusStopped Status = "stopped"
)

// ServiceCopy owns the copy rules and the trade ledger and turns approved
// decisions into venue orders. Every Process call runs its whole
// read-decide-append sequence under one mutex, so two concurrent decisions
// can never jointly overshoot a daily budget. The same service runs the
// reconciliation loop that settles pending ledger entries.
type ServiceCopy struct {
	mtx      sync.Mutex
	ctx      context.Context
	gateway  reference.Gateway
	storage  storage.Storage
	decision *ServiceDecision
	notifier reference.Notifier
	validate *validator.Validate
	settings model.Settings
	rules    map[string]model.CopyRule
	finish   chan bool
	status   Status
}

func NewServiceCopy(ctx context.Context, gateway reference.Gateway, st storage.Storage,
	decision *ServiceDecision, settings model.Settings) *ServiceCopy {

	return &ServiceCopy{
		ctx:      ctx,
		gateway:  gateway,
		storage:  st,
		decision: decision,
		settings: settings,
		validate: validator.New(),
		rules:    make(map[string]model.CopyRule),
		finish:   make(chan bool),
	}
}

func (c *ServiceCopy) SetNotifier(notifier reference.Notifier) {
	c.notifier = notifier
}

// AddTrader registers or replaces the copy rule for a trader. Invalid rule
// bounds are rejected here, before any monitor starts.
func (c *ServiceCopy) AddTrader(rule model.CopyRule) error {
	if err := c.validate.Struct(rule); err != nil {
		return err
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.rules[rule.TraderAddress] = rule
	utils.Log.Infof("[RULE] following trader %s (copy %.0f%%, max daily $%.2f)",
		rule.TraderAddress, rule.CopyPercentage*100, rule.MaxDailyCopy)
	return nil
}

// SetRuleStatus pauses or resumes copying for a followed trader. Returns
// false when the trader has no rule.
func (c *ServiceCopy) SetRuleStatus(trader string, active bool) bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	rule, ok := c.rules[trader]
	if !ok {
		return false
	}
	rule.Active = active
	c.rules[trader] = rule
	utils.Log.Infof("[RULE] trader %s active=%v", trader, active)
	return true
}

func (c *ServiceCopy) Rule(trader string) (model.CopyRule, bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	rule, ok := c.rules[trader]
	return rule, ok
}

func (c *ServiceCopy) Rules() []model.CopyRule {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return lo.Values(c.rules)
}

func (c *ServiceCopy) FollowedTraders() []string {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return lo.Keys(c.rules)
}

// Process evaluates one observed trade and, when approved, executes the
// sized replica order. Safe for concurrent use from every monitor loop.
func (c *ServiceCopy) Process(event model.TradeEvent) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	rule, ok := c.rules[event.TraderAddress]
	if !ok || !rule.Active {
		return
	}

	open, err := c.storage.CopyTrades(
		storage.WithStatusIn(model.CopyTradeStatusPending, model.CopyTradeStatusFilled),
	)
	if err != nil {
		c.notifyError(err)
		return
	}
	if len(open) >= c.settings.MaxConcurrentCopies {
		utils.Log.Warnf("[COPY] max concurrent copies reached (%d), skipping trade from %s",
			c.settings.MaxConcurrentCopies, event.TraderAddress)
		return
	}

	dailyCopied, err := c.dailyCopiedAmount(event.TraderAddress)
	if err != nil {
		c.notifyError(err)
		return
	}

	if !c.decision.ShouldCopy(c.ctx, event, rule, dailyCopied) {
		return
	}

	availableBalance, err := c.gateway.AvailableBalance(c.ctx)
	if err != nil {
		c.notifyError(err)
		return
	}
	dailySpent, err := c.dailySpent()
	if err != nil {
		c.notifyError(err)
		return
	}

	amount := c.decision.CalculateCopyAmount(event, rule, availableBalance, dailySpent)
	if amount <= 0 {
		return
	}

	c.fireLeadFound(event, rule)
	c.execute(event, amount)
}

// execute submits the sized order. A venue rejection leaves no ledger
// entry; only an accepted submission creates a pending copy trade.
func (c *ServiceCopy) execute(event model.TradeEvent, amount float64) {
	if !c.gateway.CanTrade() {
		utils.Log.Warn("[COPY] cannot execute trades in read-only mode")
		return
	}

	price, err := c.gateway.ReferencePrice(c.ctx, event.TokenID)
	if err != nil {
		utils.Log.Errorf("[COPY] could not get price for %s: %v", event.TokenID, err)
		return
	}
	if price <= 0 {
		utils.Log.Errorf("[COPY] no reference price for %s", event.TokenID)
		return
	}

	shares := amount / price

	receipt, err := c.gateway.SubmitOrder(c.ctx, event.TokenID, event.Side, price, shares)
	if err != nil {
		c.notifyError(&model.OrderError{Err: err, TokenID: event.TokenID, Amount: amount})
		return
	}
	if !receipt.Accepted {
		utils.Log.Errorf("[COPY] order rejected for %s %s", event.Side, event.TokenID)
		return
	}

	now := time.Now().UTC()
	trade := model.CopyTrade{
		OriginalTrader: event.TraderAddress,
		MarketID:       event.MarketID,
		TokenID:        event.TokenID,
		Side:           event.Side,
		CopyAmount:     amount,
		Shares:         shares,
		Price:          price,
		OrderID:        receipt.OrderID,
		Status:         model.CopyTradeStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := c.storage.CreateCopyTrade(&trade); err != nil {
		c.notifyError(err)
		return
	}

	c.fireTransaction(trade, reference.PhaseExecuted)
	utils.Log.Infof("[COPY EXECUTED] $%.2f following %s in market %s", amount, event.TraderAddress, event.MarketQuestion)
}

// updateTrades settles pending ledger entries older than the fill timeout.
// TODO: replace the timeout heuristic with an order-status query once the
// gateway exposes one.
func (c *ServiceCopy) updateTrades() {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	pending, err := c.storage.CopyTrades(storage.WithStatusIn(model.CopyTradeStatusPending))
	if err != nil {
		c.notifyError(err)
		return
	}

	cutoff := time.Now().UTC().Add(-c.settings.TradeFillTimeout)
	for _, trade := range pending {
		if trade.CreatedAt.After(cutoff) {
			continue
		}

		trade.Status = model.CopyTradeStatusFilled
		trade.UpdatedAt = time.Now().UTC()
		if err := c.storage.UpdateCopyTrade(trade); err != nil {
			c.notifyError(err)
			continue
		}

		c.fireTransaction(*trade, reference.PhaseFilled)
		utils.Log.Infof("[COPY FILLED] %s", trade.OrderID)
	}
}

func (c *ServiceCopy) dailyCopiedAmount(trader string) (float64, error) {
	trades, err := c.storage.CopyTrades(
		storage.WithTrader(trader),
		storage.WithCreatedAtAfterOrEqual(startOfDayUTC(time.Now())),
		storage.WithStatusIn(model.CopyTradeStatusPending, model.CopyTradeStatusFilled),
	)
	if err != nil {
		return 0, err
	}
	return sumCopyAmount(trades), nil
}

func (c *ServiceCopy) dailySpent() (float64, error) {
	trades, err := c.storage.CopyTrades(
		storage.WithCreatedAtAfterOrEqual(startOfDayUTC(time.Now())),
		storage.WithStatusIn(model.CopyTradeStatusPending, model.CopyTradeStatusFilled),
	)
	if err != nil {
		return 0, err
	}
	return sumCopyAmount(trades), nil
}

// DailyCopiedAmount returns today's pending+filled copy total for a trader.
func (c *ServiceCopy) DailyCopiedAmount(trader string) (float64, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.dailyCopiedAmount(trader)
}

// DailySpent returns today's pending+filled copy total across all traders.
func (c *ServiceCopy) DailySpent() (float64, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.dailySpent()
}

// TotalExposure sums the notional of every copy trade not confirmed closed.
func (c *ServiceCopy) TotalExposure() (float64, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	trades, err := c.storage.CopyTrades(
		storage.WithStatusIn(model.CopyTradeStatusPending, model.CopyTradeStatusFilled),
	)
	if err != nil {
		return 0, err
	}
	return sumCopyAmount(trades), nil
}

// CopyTrades returns ledger entries matching the filters, oldest first.
func (c *ServiceCopy) CopyTrades(filters ...storage.TradeFilter) ([]*model.CopyTrade, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.storage.CopyTrades(filters...)
}

// Report summarizes copy activity for the HTTP surface and the CLI tools.
type Report struct {
	TotalCopyTrades       int       `json:"total_copy_trades"`
	TotalVolumeCopied     float64   `json:"total_volume_copied"`
	DailySpent            float64   `json:"daily_spent"`
	DailyBudgetRemaining  float64   `json:"daily_budget_remaining"`
	TotalExposure         float64   `json:"total_exposure"`
	ActiveTradersFollowed int       `json:"active_traders_followed"`
	LastUpdated           time.Time `json:"last_updated"`
}

func (c *ServiceCopy) PerformanceReport() (Report, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	trades, err := c.storage.CopyTrades()
	if err != nil {
		return Report{}, err
	}

	spent, err := c.dailySpent()
	if err != nil {
		return Report{}, err
	}

	exposure := sumCopyAmount(lo.Filter(trades, func(t *model.CopyTrade, _ int) bool {
		return t.Status == model.CopyTradeStatusPending || t.Status == model.CopyTradeStatusFilled
	}))

	active := lo.CountBy(lo.Values(c.rules), func(r model.CopyRule) bool { return r.Active })

	return Report{
		TotalCopyTrades:       len(trades),
		TotalVolumeCopied:     sumCopyAmount(trades),
		DailySpent:            spent,
		DailyBudgetRemaining:  c.settings.MaxDailyBudget - spent,
		TotalExposure:         exposure,
		ActiveTradersFollowed: active,
		LastUpdated:           time.Now().UTC(),
	}, nil
}

func (c *ServiceCopy) Status() Status {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.status
}

// Start launches the reconciliation loop.
func (c *ServiceCopy) Start() {
	c.mtx.Lock()
	if c.status == StatusRunning {
		c.mtx.Unlock()
		return
	}
	c.status = StatusRunning
	c.mtx.Unlock()

	go func() {
		ticker := time.NewTicker(c.settings.TradeCheckInterval)
		for {
			select {
			case <-ticker.C:
				c.updateTrades()
			case <-c.finish:
				ticker.Stop()
				return
			}
		}
	}()
	utils.Log.Info("Copy service started.")
}

func (c *ServiceCopy) Stop() {
	c.mtx.Lock()
	if c.status != StatusRunning {
		c.mtx.Unlock()
		return
	}
	c.status = StatusStopped
	c.mtx.Unlock()

	c.updateTrades()
	c.finish <- true
	utils.Log.Info("Copy service stopped.")
}

func (c *ServiceCopy) notifyError(err error) {
	utils.Log.Error(err)
	if c.notifier != nil {
		c.notifier.OnError(err)
	}
}

// Hooks are best effort: a panicking notifier must never abort the copy
// pipeline.
func (c *ServiceCopy) fireLeadFound(event model.TradeEvent, rule model.CopyRule) {
	if c.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			utils.Log.Errorf("[NOTIFY] lead found hook failed: %v", r)
		}
	}()
	c.notifier.OnLeadFound(event, rule)
}

func (c *ServiceCopy) fireTransaction(trade model.CopyTrade, phase string) {
	if c.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			utils.Log.Errorf("[NOTIFY] transaction hook failed: %v", r)
		}
	}()
	c.notifier.OnTransaction(trade, phase)
}

func sumCopyAmount(trades []*model.CopyTrade) float64 {
	return lo.SumBy(trades, func(t *model.CopyTrade) float64 { return t.CopyAmount })
}

func startOfDayUTC(now time.Time) time.Time {
	year, month, day := now.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

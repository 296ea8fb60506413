package service

import (
	"context"
	"math"

	"polycopy/model"
	"polycopy/reference"
	"polycopy/utils"
)

// ServiceDecision evaluates whether an observed trade should be copied and
// how much to commit. Given fixed inputs every method is deterministic; all
// market lookups go through the MarketInfo collaborator and any lookup
// failure rejects the trade.
type ServiceDecision struct {
	market            reference.MarketInfo
	maxDailyBudget    float64
	minAccountBalance float64
}

func NewServiceDecision(market reference.MarketInfo, settings model.Settings) *ServiceDecision {
	return &ServiceDecision{
		market:            market,
		maxDailyBudget:    settings.MaxDailyBudget,
		minAccountBalance: settings.MinAccountBalance,
	}
}

// ShouldCopy applies the rule filters in order, short-circuiting on the
// first failure. dailyCopied is today's pending+filled copy total for the
// event's trader, read under the caller's lock.
func (s *ServiceDecision) ShouldCopy(ctx context.Context, event model.TradeEvent, rule model.CopyRule, dailyCopied float64) bool {
	if event.Amount < rule.MinTraderAmount {
		utils.Log.Debugf("[DECISION] trade amount $%.2f below minimum $%.2f", event.Amount, rule.MinTraderAmount)
		return false
	}

	category, err := s.market.Category(ctx, event.MarketID)
	if err != nil {
		utils.Log.Errorf("[DECISION] category lookup failed for %s: %v", event.MarketID, err)
		return false
	}
	if !rule.AllowsCategory(category) {
		utils.Log.Debugf("[DECISION] market category %s not in filter", category)
		return false
	}

	if event.Price > rule.MaxOddsThreshold {
		utils.Log.Debugf("[DECISION] odds %.2f above threshold %.2f, poor payoff", event.Price, rule.MaxOddsThreshold)
		return false
	}

	liquidity, err := s.market.Liquidity(ctx, event.MarketID)
	if err != nil {
		utils.Log.Errorf("[DECISION] liquidity lookup failed for %s: %v", event.MarketID, err)
		return false
	}
	if liquidity < rule.MinMarketLiquidity {
		utils.Log.Debugf("[DECISION] market liquidity $%.2f below minimum $%.2f", liquidity, rule.MinMarketLiquidity)
		return false
	}

	if dailyCopied >= rule.MaxDailyCopy {
		utils.Log.Debugf("[DECISION] daily copy limit reached for %s: $%.2f", event.TraderAddress, dailyCopied)
		return false
	}

	if event.Side == model.SideTypeSell && !rule.CopySells {
		utils.Log.Debugf("[DECISION] sell trade ignored, copySells disabled")
		return false
	}

	return true
}

// CalculateCopyAmount sizes the replica order: percentage of the original
// trade, clamped to the rule's min/max, then capped by account headroom and
// by the remaining global daily budget. Returns 0 when any cap collapses
// the amount; 0 means "do not execute".
func (s *ServiceDecision) CalculateCopyAmount(event model.TradeEvent, rule model.CopyRule, availableBalance, dailySpent float64) float64 {
	base := event.Amount * rule.CopyPercentage

	amount := math.Max(rule.MinCopyAmount, math.Min(rule.MaxCopyAmount, base))

	headroom := availableBalance - s.minAccountBalance
	if amount > headroom {
		amount = math.Max(0, headroom)
	}

	if dailySpent+amount > s.maxDailyBudget {
		amount = math.Max(0, s.maxDailyBudget-dailySpent)
	}

	return amount
}

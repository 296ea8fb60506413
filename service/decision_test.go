package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polycopy/exchange"
	"polycopy/model"
)

type failingMarket struct{}

func (failingMarket) Category(context.Context, string) (string, error) {
	return "", errors.New("metadata service down")
}

func (failingMarket) Liquidity(context.Context, string) (float64, error) {
	return 0, errors.New("metadata service down")
}

func testSettings() model.Settings {
	settings := model.DefaultSettings()
	settings.MaxDailyBudget = 5000
	settings.MinAccountBalance = 1000
	return settings
}

func testRule() model.CopyRule {
	return model.CopyRule{
		TraderAddress:      "0xabc",
		CopyPercentage:     0.1,
		MinCopyAmount:      20,
		MaxCopyAmount:      500,
		MaxDailyCopy:       2000,
		MinMarketLiquidity: 10000,
		MaxOddsThreshold:   0.9,
		MinTraderAmount:    100,
		Active:             true,
	}
}

func testEvent() model.TradeEvent {
	return model.TradeEvent{
		TraderAddress: "0xabc",
		MarketID:      "market-1",
		TokenID:       "token-1",
		Side:          model.SideTypeBuy,
		Amount:        500,
		Price:         0.65,
	}
}

func testMarket() *exchange.PaperGateway {
	return exchange.NewPaperGateway(
		exchange.WithPaperMarket("market-1", "Politics", 50000),
	)
}

func TestShouldCopyApprovesQualifyingTrade(t *testing.T) {
	decision := NewServiceDecision(testMarket(), testSettings())

	require.True(t, decision.ShouldCopy(context.Background(), testEvent(), testRule(), 0))
}

func TestShouldCopyRejectsSmallTrades(t *testing.T) {
	decision := NewServiceDecision(testMarket(), testSettings())

	event := testEvent()
	event.Amount = 50

	assert.False(t, decision.ShouldCopy(context.Background(), event, testRule(), 0))
}

func TestShouldCopyRejectsFilteredCategory(t *testing.T) {
	decision := NewServiceDecision(testMarket(), testSettings())

	rule := testRule()
	rule.CategoriesFilter = []string{"Sports", "Crypto"}

	assert.False(t, decision.ShouldCopy(context.Background(), testEvent(), rule, 0))

	rule.CategoriesFilter = []string{"Politics"}
	assert.True(t, decision.ShouldCopy(context.Background(), testEvent(), rule, 0))
}

func TestShouldCopyRejectsHighOdds(t *testing.T) {
	decision := NewServiceDecision(testMarket(), testSettings())

	event := testEvent()
	event.Price = 0.95

	assert.False(t, decision.ShouldCopy(context.Background(), event, testRule(), 0))
}

func TestShouldCopyRejectsThinMarkets(t *testing.T) {
	market := exchange.NewPaperGateway(
		exchange.WithPaperMarket("market-1", "Politics", 500),
	)
	decision := NewServiceDecision(market, testSettings())

	assert.False(t, decision.ShouldCopy(context.Background(), testEvent(), testRule(), 0))
}

func TestShouldCopyRejectsWhenDailyLimitReached(t *testing.T) {
	decision := NewServiceDecision(testMarket(), testSettings())

	rule := testRule()
	assert.False(t, decision.ShouldCopy(context.Background(), testEvent(), rule, rule.MaxDailyCopy))
}

func TestShouldCopyRejectsSellsWhenDisabled(t *testing.T) {
	decision := NewServiceDecision(testMarket(), testSettings())

	event := testEvent()
	event.Side = model.SideTypeSell

	rule := testRule()
	rule.CopySells = false
	assert.False(t, decision.ShouldCopy(context.Background(), event, rule, 0))

	rule.CopySells = true
	assert.True(t, decision.ShouldCopy(context.Background(), event, rule, 0))
}

func TestShouldCopyFailsClosedOnLookupErrors(t *testing.T) {
	decision := NewServiceDecision(failingMarket{}, testSettings())

	assert.False(t, decision.ShouldCopy(context.Background(), testEvent(), testRule(), 0))
}

func TestCalculateCopyAmountScalesTrade(t *testing.T) {
	decision := NewServiceDecision(testMarket(), testSettings())

	amount := decision.CalculateCopyAmount(testEvent(), testRule(), 10000, 0)
	assert.Equal(t, 50.0, amount)
}

func TestCalculateCopyAmountClampsToMinimum(t *testing.T) {
	decision := NewServiceDecision(testMarket(), testSettings())

	event := testEvent()
	event.Amount = 100

	amount := decision.CalculateCopyAmount(event, testRule(), 10000, 0)
	assert.Equal(t, 20.0, amount)
}

func TestCalculateCopyAmountClampsToMaximum(t *testing.T) {
	decision := NewServiceDecision(testMarket(), testSettings())

	event := testEvent()
	event.Amount = 100000

	amount := decision.CalculateCopyAmount(event, testRule(), 100000, 0)
	assert.Equal(t, 500.0, amount)
}

func TestCalculateCopyAmountRespectsBalanceFloor(t *testing.T) {
	decision := NewServiceDecision(testMarket(), testSettings())

	// Balance exactly at the floor leaves no headroom at all.
	amount := decision.CalculateCopyAmount(testEvent(), testRule(), 1000, 0)
	assert.Equal(t, 0.0, amount)

	// Partial headroom shrinks the copy instead of skipping it.
	amount = decision.CalculateCopyAmount(testEvent(), testRule(), 1030, 0)
	assert.Equal(t, 30.0, amount)
}

func TestCalculateCopyAmountRespectsDailyBudget(t *testing.T) {
	settings := testSettings()
	settings.MaxDailyBudget = 100
	decision := NewServiceDecision(testMarket(), settings)

	amount := decision.CalculateCopyAmount(testEvent(), testRule(), 10000, 100)
	assert.Equal(t, 0.0, amount)

	amount = decision.CalculateCopyAmount(testEvent(), testRule(), 10000, 70)
	assert.Equal(t, 30.0, amount)
}

func TestCalculateCopyAmountMonotonicInTradeSize(t *testing.T) {
	decision := NewServiceDecision(testMarket(), testSettings())
	rule := testRule()

	// The copy size never shrinks as the observed trade grows, and once the
	// max clamp engages it stays flat.
	prev := 0.0
	for amount := 50.0; amount <= 10000; amount += 50 {
		event := testEvent()
		event.Amount = amount

		got := decision.CalculateCopyAmount(event, rule, 10000, 0)
		assert.GreaterOrEqual(t, got, prev, "amount %.0f", amount)
		prev = got
	}
	assert.Equal(t, rule.MaxCopyAmount, prev)

	event := testEvent()
	event.Amount = 100000
	assert.Equal(t, rule.MaxCopyAmount, decision.CalculateCopyAmount(event, rule, 10000, 0))
}

func TestCalculateCopyAmountIsDeterministic(t *testing.T) {
	decision := NewServiceDecision(testMarket(), testSettings())

	first := decision.CalculateCopyAmount(testEvent(), testRule(), 10000, 0)
	second := decision.CalculateCopyAmount(testEvent(), testRule(), 10000, 0)
	assert.Equal(t, first, second)
}

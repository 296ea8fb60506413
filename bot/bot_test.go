package bot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polycopy/exchange"
	"polycopy/model"
	"polycopy/types"
)

type fakeFeeder struct {
	events map[string][]model.TradeEvent
}

func (f fakeFeeder) TradesSubscription(ctx context.Context, trader string) (chan model.TradeEvent, chan error) {
	cevent := make(chan model.TradeEvent)
	cerr := make(chan error)

	go func() {
		defer close(cevent)
		defer close(cerr)
		for _, event := range f.events[trader] {
			select {
			case cevent <- event:
			case <-ctx.Done():
				return
			}
		}
		<-ctx.Done()
	}()

	return cevent, cerr
}

func testGateway() *exchange.PaperGateway {
	return exchange.NewPaperGateway(
		exchange.WithPaperBalance(10000),
		exchange.WithPaperPrice("token-1", 0.65),
		exchange.WithPaperMarket("market-1", "Politics", 50000),
	)
}

func testRule() model.CopyRule {
	return model.CopyRule{
		TraderAddress:    "0xabc",
		CopyPercentage:   0.1,
		MinCopyAmount:    20,
		MaxCopyAmount:    500,
		MaxDailyCopy:     2000,
		MaxOddsThreshold: 0.9,
		Active:           true,
	}
}

func TestBotCopiesObservedTrades(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feeder := fakeFeeder{events: map[string][]model.TradeEvent{
		"0xabc": {
			{
				TraderAddress: "0xabc",
				MarketID:      "market-1",
				TokenID:       "token-1",
				Side:          model.SideTypeBuy,
				Amount:        500,
				Price:         0.65,
			},
		},
	}}

	gateway := testGateway()
	b, err := NewBot(ctx, model.DefaultSettings(), gateway, gateway, feeder)
	require.NoError(t, err)
	require.NoError(t, b.AddTrader(testRule()))

	go b.Run(ctx)

	require.Eventually(t, func() bool {
		trades, err := b.CopyService().CopyTrades()
		return err == nil && len(trades) == 1
	}, 2*time.Second, 10*time.Millisecond)

	trades, err := b.CopyService().CopyTrades()
	require.NoError(t, err)
	assert.Equal(t, model.CopyTradeStatusPending, trades[0].Status)
	assert.Equal(t, 50.0, trades[0].CopyAmount)

	orders := gateway.SubmittedOrders()
	require.Len(t, orders, 1)
	assert.Equal(t, "token-1", orders[0].TokenID)
}

func TestBotRuleStatusSwitch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gateway := testGateway()
	b, err := NewBot(ctx, model.DefaultSettings(), gateway, gateway, fakeFeeder{})
	require.NoError(t, err)
	require.NoError(t, b.AddTrader(testRule()))

	go b.Run(ctx)

	types.RuleStatusChan <- types.RuleStatus{TraderAddress: "0xabc", Active: false}

	require.Eventually(t, func() bool {
		rule, ok := b.CopyService().Rule("0xabc")
		return ok && !rule.Active
	}, 2*time.Second, 10*time.Millisecond)
}

func TestBotStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	gateway := testGateway()
	b, err := NewBot(ctx, model.DefaultSettings(), gateway, gateway, fakeFeeder{})
	require.NoError(t, err)
	require.NoError(t, b.AddTrader(testRule()))

	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("bot did not stop after context cancel")
	}
}

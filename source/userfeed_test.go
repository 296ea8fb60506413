package source

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polycopy/model"
)

func TestParseTradeEventsSingleMessage(t *testing.T) {
	raw := []byte(`{
		"event_type": "trade",
		"maker_address": "0xabc",
		"market": "market-1",
		"asset_id": "token-1",
		"side": "BUY",
		"price": "0.65",
		"size": "100",
		"timestamp": "1700000000000",
		"title": "Will it happen?",
		"outcome": "Yes"
	}`)

	events := parseTradeEvents(raw, "0xabc")
	require.Len(t, events, 1)

	event := events[0]
	assert.Equal(t, "0xabc", event.TraderAddress)
	assert.Equal(t, "market-1", event.MarketID)
	assert.Equal(t, "token-1", event.TokenID)
	assert.Equal(t, model.SideTypeBuy, event.Side)
	assert.InDelta(t, 65.0, event.Amount, 1e-9)
	assert.Equal(t, 0.65, event.Price)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), event.Timestamp)
	assert.Equal(t, "Will it happen?", event.MarketQuestion)
	assert.Equal(t, "Yes", event.Outcome)
}

func TestParseTradeEventsArrayMessage(t *testing.T) {
	raw := []byte(`[
		{"event_type": "trade", "maker_address": "0xabc", "side": "BUY", "price": "0.5", "size": "10"},
		{"event_type": "trade", "maker_address": "0xabc", "side": "SELL", "price": "0.4", "size": "20"}
	]`)

	events := parseTradeEvents(raw, "0xabc")
	require.Len(t, events, 2)
	assert.Equal(t, model.SideTypeBuy, events[0].Side)
	assert.Equal(t, model.SideTypeSell, events[1].Side)
}

func TestParseTradeEventsFiltersOtherTraders(t *testing.T) {
	raw := []byte(`{"event_type": "trade", "maker_address": "0xother", "side": "BUY", "price": "0.5", "size": "10"}`)

	assert.Empty(t, parseTradeEvents(raw, "0xabc"))
}

func TestParseTradeEventsIgnoresNonTradeMessages(t *testing.T) {
	raw := []byte(`{"event_type": "order", "maker_address": "0xabc", "price": "0.5", "size": "10"}`)

	assert.Empty(t, parseTradeEvents(raw, "0xabc"))
}

func TestParseTradeEventsSkipsMalformedEntries(t *testing.T) {
	assert.Empty(t, parseTradeEvents([]byte(`not json`), "0xabc"))

	raw := []byte(`{"event_type": "trade", "maker_address": "0xabc", "side": "BUY", "price": "n/a", "size": "10"}`)
	assert.Empty(t, parseTradeEvents(raw, "0xabc"))
}

func TestTradersTracksSubscriptions(t *testing.T) {
	feed := NewUserFeed("", 0)
	assert.Empty(t, feed.Traders())
}

func TestMonitoringIntervalCapsReconnectBackoff(t *testing.T) {
	feed := NewUserFeed("", 30*time.Second)
	assert.Equal(t, 30*time.Second, feed.reconnectMax)

	feed = NewUserFeed("", 0)
	assert.Equal(t, defaultReconnectMax, feed.reconnectMax)
}

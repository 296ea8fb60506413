package source

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/StudioSol/set"
	"github.com/gorilla/websocket"
	"github.com/jpillora/backoff"

	"polycopy/model"
	"polycopy/utils"
)

const (
	defaultFeedURL = "wss://ws-subscriptions-clob.polymarket.com/ws/user"

	defaultReconnectMax = 1 * time.Minute

	pingInterval = 10 * time.Second
	readTimeout  = 60 * time.Second
)

// UserFeed streams a trader's fills from the venue websocket. One
// subscription per followed trader; events are delivered in arrival order
// and the connection reconnects with backoff on any failure. The monitoring
// interval caps the reconnect backoff, so a broken feed is retried at least
// once per interval.
type UserFeed struct {
	mu           sync.Mutex
	url          string
	reconnectMax time.Duration
	traders      *set.LinkedHashSetString
}

func NewUserFeed(url string, monitoringInterval time.Duration) *UserFeed {
	if url == "" {
		url = defaultFeedURL
	}
	if monitoringInterval <= 0 {
		monitoringInterval = defaultReconnectMax
	}
	return &UserFeed{
		url:          url,
		reconnectMax: monitoringInterval,
		traders:      set.NewLinkedHashSetString(),
	}
}

// Traders lists the addresses with an active subscription, in subscribe order.
func (f *UserFeed) Traders() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.traders.AsSlice()
}

type subscribeMessage struct {
	Type  string   `json:"type"`
	Users []string `json:"users"`
}

type userTradeMessage struct {
	EventType string `json:"event_type"`
	Maker     string `json:"maker_address"`
	Market    string `json:"market"`
	AssetID   string `json:"asset_id"`
	Side      string `json:"side"`
	Price     string `json:"price"`
	Size      string `json:"size"`
	Timestamp string `json:"timestamp"`
	Title     string `json:"title"`
	Outcome   string `json:"outcome"`
}

func (f *UserFeed) TradesSubscription(ctx context.Context, trader string) (chan model.TradeEvent, chan error) {
	cevent := make(chan model.TradeEvent)
	cerr := make(chan error)

	f.mu.Lock()
	f.traders.Add(trader)
	f.mu.Unlock()

	go func() {
		defer close(cevent)
		defer close(cerr)

		ba := &backoff.Backoff{
			Min: 1 * time.Second,
			Max: f.reconnectMax,
		}

		for {
			if ctx.Err() != nil {
				return
			}

			conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.url, nil)
			if err != nil {
				if !f.report(ctx, cerr, err) {
					return
				}
				if !sleep(ctx, ba.Duration()) {
					return
				}
				continue
			}

			err = conn.WriteJSON(subscribeMessage{Type: "user", Users: []string{trader}})
			if err == nil {
				ba.Reset()
				err = f.readLoop(ctx, conn, trader, cevent)
			}
			_ = conn.Close()

			if ctx.Err() != nil {
				return
			}
			if err != nil && !f.report(ctx, cerr, err) {
				return
			}
			if !sleep(ctx, ba.Duration()) {
				return
			}
		}
	}()

	return cevent, cerr
}

func (f *UserFeed) readLoop(ctx context.Context, conn *websocket.Conn, trader string, cevent chan model.TradeEvent) error {
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	stopPing := make(chan struct{})
	defer close(stopPing)
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_ = conn.WriteMessage(websocket.PingMessage, nil)
			case <-stopPing:
				return
			}
		}
	}()

	for {
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		for _, event := range parseTradeEvents(raw, trader) {
			select {
			case cevent <- event:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// parseTradeEvents extracts this trader's fills from one feed message.
// Non-trade messages and malformed entries are skipped.
func parseTradeEvents(raw []byte, trader string) []model.TradeEvent {
	var messages []userTradeMessage
	if err := json.Unmarshal(raw, &messages); err != nil {
		var single userTradeMessage
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil
		}
		messages = []userTradeMessage{single}
	}

	events := make([]model.TradeEvent, 0, len(messages))
	for _, msg := range messages {
		if msg.EventType != "trade" || msg.Maker != trader {
			continue
		}

		price, err := strconv.ParseFloat(msg.Price, 64)
		if err != nil {
			utils.Log.Debugf("[FEED] skipping trade with bad price %q", msg.Price)
			continue
		}
		size, err := strconv.ParseFloat(msg.Size, 64)
		if err != nil {
			utils.Log.Debugf("[FEED] skipping trade with bad size %q", msg.Size)
			continue
		}

		timestamp := time.Now().UTC()
		if ms, err := strconv.ParseInt(msg.Timestamp, 10, 64); err == nil {
			timestamp = time.UnixMilli(ms).UTC()
		}

		events = append(events, model.TradeEvent{
			TraderAddress:  msg.Maker,
			MarketID:       msg.Market,
			TokenID:        msg.AssetID,
			Side:           model.SideType(msg.Side),
			Amount:         price * size,
			Price:          price,
			Timestamp:      timestamp,
			MarketQuestion: msg.Title,
			Outcome:        msg.Outcome,
		})
	}
	return events
}

func (f *UserFeed) report(ctx context.Context, cerr chan error, err error) bool {
	select {
	case cerr <- err:
		return true
	case <-ctx.Done():
		return false
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

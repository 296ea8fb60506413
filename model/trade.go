package model

import (
	"fmt"
	"time"
)

type SideType string

var (
	SideTypeBuy  SideType = "BUY"
	SideTypeSell SideType = "SELL"
)

// TradeEvent is a single observed trade from a followed trader. Events are
// immutable; the monitor loop for a trader is the only producer.
type TradeEvent struct {
	TraderAddress  string    `json:"trader_address"`
	MarketID       string    `json:"market_id"`
	TokenID        string    `json:"token_id"`
	Side           SideType  `json:"side"`
	Amount         float64   `json:"amount"`
	Price          float64   `json:"price"`
	Timestamp      time.Time `json:"timestamp"`
	MarketQuestion string    `json:"market_question"`
	Outcome        string    `json:"outcome"`
}

func (e TradeEvent) String() string {
	return fmt.Sprintf("%s %s $%.2f @ %.3f by %s | %s (%s)",
		e.Side, e.TokenID, e.Amount, e.Price, e.TraderAddress, e.MarketQuestion, e.Outcome)
}

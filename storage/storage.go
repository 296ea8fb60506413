package storage

import (
	"time"

	"polycopy/model"
)

type TradeFilter func(model.CopyTrade) bool

// Storage is the copy-trade ledger. Entries are appended on accepted order
// submission and updated only by the reconciliation loop; they are never
// removed.
type Storage interface {
	CreateCopyTrade(trade *model.CopyTrade) error
	UpdateCopyTrade(trade *model.CopyTrade) error
	CopyTrades(filters ...TradeFilter) ([]*model.CopyTrade, error)
}

func WithStatusIn(status ...model.CopyTradeStatus) TradeFilter {
	return func(trade model.CopyTrade) bool {
		for _, s := range status {
			if s == trade.Status {
				return true
			}
		}
		return false
	}
}

func WithTrader(trader string) TradeFilter {
	return func(trade model.CopyTrade) bool {
		return trade.OriginalTrader == trader
	}
}

func WithMarket(marketID string) TradeFilter {
	return func(trade model.CopyTrade) bool {
		return trade.MarketID == marketID
	}
}

func WithCreatedAtAfterOrEqual(t time.Time) TradeFilter {
	return func(trade model.CopyTrade) bool {
		return !trade.CreatedAt.Before(t)
	}
}

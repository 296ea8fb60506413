package model

import (
	"fmt"
	"time"
)

type CopyTradeStatus string

var (
	CopyTradeStatusPending CopyTradeStatus = "PENDING"
	CopyTradeStatusFilled  CopyTradeStatus = "FILLED"
	CopyTradeStatusFailed  CopyTradeStatus = "FAILED"
)

// CopyTrade is one ledger entry: the replica order placed for an observed
// trade. Entries are created on accepted submission and never deleted; only
// the reconciliation loop moves a pending entry to filled.
type CopyTrade struct {
	ID             int64           `db:"id" json:"id" gorm:"primaryKey,autoIncrement"`
	OriginalTrader string          `db:"original_trader" json:"original_trader"`
	MarketID       string          `db:"market_id" json:"market_id"`
	TokenID        string          `db:"token_id" json:"token_id"`
	Side           SideType        `db:"side" json:"side"`
	CopyAmount     float64         `db:"copy_amount" json:"copy_amount"`
	Shares         float64         `db:"shares" json:"shares"`
	Price          float64         `db:"price" json:"price"`
	OrderID        string          `db:"order_id" json:"order_id"`
	Status         CopyTradeStatus `db:"status" json:"status"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

func (t CopyTrade) String() string {
	return fmt.Sprintf("[%s] %s %s | $%.2f (%.4f x $%.3f) following %s, OrderID: %s",
		t.Status, t.Side, t.TokenID, t.CopyAmount, t.Shares, t.Price, t.OriginalTrader, t.OrderID)
}

// OrderReceipt is the venue's answer to an order submission.
type OrderReceipt struct {
	Accepted bool   `json:"accepted"`
	OrderID  string `json:"order_id"`
}

type OrderError struct {
	Err     error
	TokenID string
	Amount  float64
}

func (o *OrderError) Error() string {
	return fmt.Sprintf("order error: %v", o.Err)
}

func (o *OrderError) Unwrap() error {
	return o.Err
}

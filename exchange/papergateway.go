package exchange

import (
	"context"
	"fmt"
	"sync"

	"polycopy/model"
)

type paperMarket struct {
	category  string
	liquidity float64
}

// PaperGateway is a simulated venue for dry runs and tests. Prices, balance
// and market metadata are configured up front; every accepted order is
// recorded and debited from the balance.
type PaperGateway struct {
	mtx       sync.Mutex
	balance   float64
	readOnly  bool
	rejectAll bool
	prices    map[string]float64
	markets   map[string]paperMarket
	orders    []model.CopyTrade
	lastID    int
}

type PaperGatewayOption func(*PaperGateway)

func WithPaperBalance(balance float64) PaperGatewayOption {
	return func(p *PaperGateway) {
		p.balance = balance
	}
}

func WithPaperPrice(tokenID string, price float64) PaperGatewayOption {
	return func(p *PaperGateway) {
		p.prices[tokenID] = price
	}
}

func WithPaperMarket(marketID, category string, liquidity float64) PaperGatewayOption {
	return func(p *PaperGateway) {
		p.markets[marketID] = paperMarket{category: category, liquidity: liquidity}
	}
}

func WithPaperReadOnly() PaperGatewayOption {
	return func(p *PaperGateway) {
		p.readOnly = true
	}
}

func WithPaperRejections() PaperGatewayOption {
	return func(p *PaperGateway) {
		p.rejectAll = true
	}
}

func NewPaperGateway(options ...PaperGatewayOption) *PaperGateway {
	gateway := &PaperGateway{
		balance: 10000,
		prices:  make(map[string]float64),
		markets: make(map[string]paperMarket),
	}
	for _, option := range options {
		option(gateway)
	}
	return gateway
}

func (p *PaperGateway) CanTrade() bool {
	return !p.readOnly
}

func (p *PaperGateway) ReferencePrice(_ context.Context, tokenID string) (float64, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	price, ok := p.prices[tokenID]
	if !ok {
		return 0, ErrNoReferencePrice
	}
	return price, nil
}

func (p *PaperGateway) SubmitOrder(_ context.Context, tokenID string, side model.SideType, price, size float64) (model.OrderReceipt, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.rejectAll {
		return model.OrderReceipt{Accepted: false}, nil
	}

	p.lastID++
	orderID := fmt.Sprintf("paper-%d", p.lastID)
	p.orders = append(p.orders, model.CopyTrade{
		TokenID: tokenID,
		Side:    side,
		Price:   price,
		Shares:  size,
		OrderID: orderID,
	})
	if side == model.SideTypeBuy {
		p.balance -= price * size
	} else {
		p.balance += price * size
	}

	return model.OrderReceipt{Accepted: true, OrderID: orderID}, nil
}

func (p *PaperGateway) AvailableBalance(_ context.Context) (float64, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.balance, nil
}

func (p *PaperGateway) Category(_ context.Context, marketID string) (string, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	market, ok := p.markets[marketID]
	if !ok {
		return "Unknown", nil
	}
	return market.category, nil
}

func (p *PaperGateway) Liquidity(_ context.Context, marketID string) (float64, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	market, ok := p.markets[marketID]
	if !ok {
		return 0, nil
	}
	return market.liquidity, nil
}

// SubmittedOrders returns a copy of everything the venue accepted.
func (p *PaperGateway) SubmittedOrders() []model.CopyTrade {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	orders := make([]model.CopyTrade, len(p.orders))
	copy(orders, p.orders)
	return orders
}

package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"polycopy/model"
	"polycopy/utils"
)

var (
	ErrNoReferencePrice = errors.New("no reference price available")
	ErrRequestFailed    = errors.New("venue request failed")
)

const (
	defaultClobHost  = "https://clob.polymarket.com"
	defaultGammaHost = "https://gamma-api.polymarket.com"
	defaultDataHost  = "https://data-api.polymarket.com"

	requestTimeout = 10 * time.Second
)

type PolymarketCredentials struct {
	APIKey     string
	Secret     string
	Passphrase string
	Address    string
}

// Polymarket talks to the CLOB for pricing/orders/balance, to the gamma API
// for market metadata and to the data API for trader profiles. Without
// credentials the gateway is read-only: prices and metadata work, order
// submission is refused upstream.
type Polymarket struct {
	clob  *resty.Client
	gamma *resty.Client
	data  *resty.Client
	creds PolymarketCredentials
}

type PolymarketOption func(*Polymarket)

func WithPolymarketCredentials(creds PolymarketCredentials) PolymarketOption {
	return func(p *Polymarket) {
		p.creds = creds
	}
}

func WithPolymarketHosts(clobHost, gammaHost, dataHost string) PolymarketOption {
	return func(p *Polymarket) {
		p.clob.SetBaseURL(clobHost)
		p.gamma.SetBaseURL(gammaHost)
		p.data.SetBaseURL(dataHost)
	}
}

func WithPolymarketProxy(proxyURL string) PolymarketOption {
	return func(p *Polymarket) {
		p.clob.SetProxy(proxyURL)
		p.gamma.SetProxy(proxyURL)
		p.data.SetProxy(proxyURL)
	}
}

func NewPolymarket(_ context.Context, options ...PolymarketOption) (*Polymarket, error) {
	newClient := func(host string) *resty.Client {
		return resty.New().
			SetBaseURL(host).
			SetTimeout(requestTimeout).
			SetHeader("Accept", "application/json")
	}

	exchange := &Polymarket{
		clob:  newClient(defaultClobHost),
		gamma: newClient(defaultGammaHost),
		data:  newClient(defaultDataHost),
	}
	for _, option := range options {
		option(exchange)
	}

	if exchange.CanTrade() {
		utils.Log.Infof("[POLYMARKET] gateway ready for %s", exchange.creds.Address)
	} else {
		utils.Log.Warn("[POLYMARKET] no credentials configured, running read-only")
	}

	return exchange, nil
}

func (p *Polymarket) CanTrade() bool {
	return p.creds.APIKey != "" && p.creds.Secret != ""
}

func (p *Polymarket) ReferencePrice(ctx context.Context, tokenID string) (float64, error) {
	var payload struct {
		Mid string `json:"mid"`
	}

	resp, err := p.clob.R().
		SetContext(ctx).
		SetQueryParam("token_id", tokenID).
		SetResult(&payload).
		Get("/midpoint")
	if err != nil {
		return 0, err
	}
	if resp.IsError() {
		return 0, fmt.Errorf("%w: midpoint returned %s", ErrRequestFailed, resp.Status())
	}

	price, err := strconv.ParseFloat(payload.Mid, 64)
	if err != nil || price <= 0 || price >= 1 {
		return 0, ErrNoReferencePrice
	}
	return price, nil
}

func (p *Polymarket) SubmitOrder(ctx context.Context, tokenID string, side model.SideType, price, size float64) (model.OrderReceipt, error) {
	body := map[string]interface{}{
		"token_id":   tokenID,
		"side":       side,
		"price":      price,
		"size":       size,
		"order_type": "GTC",
		"owner":      p.creds.Address,
	}
	rawBody, err := json.Marshal(body)
	if err != nil {
		return model.OrderReceipt{}, err
	}

	var payload struct {
		Success bool   `json:"success"`
		OrderID string `json:"orderID"`
		Error   string `json:"errorMsg"`
	}

	resp, err := p.clob.R().
		SetContext(ctx).
		SetHeaders(p.authHeaders("POST", "/order", string(rawBody))).
		SetBody(rawBody).
		SetResult(&payload).
		Post("/order")
	if err != nil {
		return model.OrderReceipt{}, err
	}
	if resp.IsError() {
		return model.OrderReceipt{}, fmt.Errorf("%w: order returned %s", ErrRequestFailed, resp.Status())
	}

	if !payload.Success {
		utils.Log.Debugf("[POLYMARKET] order declined: %s", payload.Error)
		return model.OrderReceipt{Accepted: false}, nil
	}
	return model.OrderReceipt{Accepted: true, OrderID: payload.OrderID}, nil
}

func (p *Polymarket) AvailableBalance(ctx context.Context) (float64, error) {
	var payload struct {
		Balance string `json:"balance"`
	}

	resp, err := p.clob.R().
		SetContext(ctx).
		SetHeaders(p.authHeaders("GET", "/balance-allowance", "")).
		SetQueryParam("asset_type", "COLLATERAL").
		SetResult(&payload).
		Get("/balance-allowance")
	if err != nil {
		return 0, err
	}
	if resp.IsError() {
		return 0, fmt.Errorf("%w: balance returned %s", ErrRequestFailed, resp.Status())
	}

	balance, err := strconv.ParseFloat(payload.Balance, 64)
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// Category resolves the market category via the gamma API, degrading to
// "Unknown" on lookup failure so the copy filters fail closed.
func (p *Polymarket) Category(ctx context.Context, marketID string) (string, error) {
	market, err := p.market(ctx, marketID)
	if err != nil {
		utils.Log.Errorf("[POLYMARKET] category lookup failed for %s: %v", marketID, err)
		return "Unknown", nil
	}
	if market.Category == "" {
		return "Unknown", nil
	}
	return market.Category, nil
}

// Liquidity degrades to zero on lookup failure, which the min-liquidity
// filter rejects.
func (p *Polymarket) Liquidity(ctx context.Context, marketID string) (float64, error) {
	market, err := p.market(ctx, marketID)
	if err != nil {
		utils.Log.Errorf("[POLYMARKET] liquidity lookup failed for %s: %v", marketID, err)
		return 0, nil
	}

	liquidity, err := strconv.ParseFloat(market.Liquidity, 64)
	if err != nil {
		return 0, nil
	}
	return liquidity, nil
}

func (p *Polymarket) Profile(ctx context.Context, trader string) (model.TraderProfile, error) {
	var payload struct {
		Name        string  `json:"name"`
		Volume      float64 `json:"volume"`
		Profit      float64 `json:"profit"`
		TradeCount  int     `json:"tradeCount"`
		WinRate     float64 `json:"winRate"`
		AvgSize     float64 `json:"avgTradeSize"`
		Categories  []string
		LastTradeAt time.Time
	}

	resp, err := p.data.R().
		SetContext(ctx).
		SetQueryParam("user", trader).
		SetResult(&payload).
		Get("/v1/user-stats")
	if err != nil {
		return model.TraderProfile{}, err
	}
	if resp.IsError() {
		return model.TraderProfile{}, fmt.Errorf("%w: user-stats returned %s", ErrRequestFailed, resp.Status())
	}

	return model.TraderProfile{
		WalletAddress: trader,
		Username:      payload.Name,
		TotalVolume:   payload.Volume,
		TotalProfit:   payload.Profit,
		WinRate:       payload.WinRate,
		AvgTradeSize:  payload.AvgSize,
		TradeCount:    payload.TradeCount,
		Categories:    payload.Categories,
		IsActive:      true,
	}, nil
}

type gammaMarket struct {
	Category  string `json:"category"`
	Liquidity string `json:"liquidity"`
	Question  string `json:"question"`
}

func (p *Polymarket) market(ctx context.Context, marketID string) (gammaMarket, error) {
	var market gammaMarket

	resp, err := p.gamma.R().
		SetContext(ctx).
		SetResult(&market).
		Get("/markets/" + marketID)
	if err != nil {
		return market, err
	}
	if resp.IsError() {
		return market, fmt.Errorf("%w: market returned %s", ErrRequestFailed, resp.Status())
	}
	return market, nil
}

// authHeaders builds the CLOB L2 header set: an HMAC over
// timestamp+method+path+body keyed with the base64 API secret.
func (p *Polymarket) authHeaders(method, path, body string) map[string]string {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	secret, err := base64.URLEncoding.DecodeString(p.creds.Secret)
	if err != nil {
		secret = []byte(p.creds.Secret)
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(timestamp + method + path + body))
	signature := base64.URLEncoding.EncodeToString(mac.Sum(nil))

	return map[string]string{
		"POLY_ADDRESS":    p.creds.Address,
		"POLY_API_KEY":    p.creds.APIKey,
		"POLY_PASSPHRASE": p.creds.Passphrase,
		"POLY_TIMESTAMP":  timestamp,
		"POLY_SIGNATURE":  signature,
	}
}

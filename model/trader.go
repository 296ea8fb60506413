package model

// TraderProfile is read-mostly reference data about a followed trader,
// refreshed periodically by the stats service. The decision path never
// mutates it.
type TraderProfile struct {
	WalletAddress string   `json:"wallet_address"`
	Username      string   `json:"username"`
	TotalVolume   float64  `json:"total_volume"`
	TotalProfit   float64  `json:"total_profit"`
	WinRate       float64  `json:"win_rate"`
	AvgTradeSize  float64  `json:"avg_trade_size"`
	TradeCount    int      `json:"trade_count"`
	Categories    []string `json:"categories"`
	RiskScore     float64  `json:"risk_score"`
	IsActive      bool     `json:"is_active"`
}

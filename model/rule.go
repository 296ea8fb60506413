package model

import (
	"github.com/samber/lo"
)

// CopyRule bounds how one followed trader's trades are replicated.
// One rule per trader address; re-adding a trader replaces the rule.
type CopyRule struct {
	TraderAddress      string   `json:"trader_address" validate:"required"`
	CopyPercentage     float64  `json:"copy_percentage" validate:"gt=0,lte=1"`
	MinCopyAmount      float64  `json:"min_copy_amount" validate:"gte=0"`
	MaxCopyAmount      float64  `json:"max_copy_amount" validate:"gtefield=MinCopyAmount"`
	MaxDailyCopy       float64  `json:"max_daily_copy" validate:"gt=0"`
	CategoriesFilter   []string `json:"categories_filter"`
	MinMarketLiquidity float64  `json:"min_market_liquidity" validate:"gte=0"`
	MaxOddsThreshold   float64  `json:"max_odds_threshold" validate:"gt=0,lte=1"`
	MinTraderAmount    float64  `json:"min_trader_amount" validate:"gte=0"`
	CopySells          bool     `json:"copy_sells"`
	Active             bool     `json:"active"`
}

// AllowsCategory reports whether the rule permits trading in the given
// market category. An empty filter allows every category.
func (r CopyRule) AllowsCategory(category string) bool {
	if len(r.CategoriesFilter) == 0 {
		return true
	}
	return lo.Contains(r.CategoriesFilter, category)
}

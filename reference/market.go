package reference

import "context"

// MarketInfo resolves market metadata used by the copy filters. On failure
// implementations degrade to "Unknown" category and zero liquidity so the
// decision path fails closed.
type MarketInfo interface {
	Category(ctx context.Context, marketID string) (string, error)
	Liquidity(ctx context.Context, marketID string) (float64, error)
}

package reference

import (
	"context"

	"polycopy/model"
)

// Gateway is the venue surface the engine trades through: price discovery,
// order signing/submission and account balance. Implementations must not
// block past their own request timeouts.
type Gateway interface {
	// CanTrade reports whether trading credentials are configured.
	// Without credentials the engine runs in read-only mode.
	CanTrade() bool

	// ReferencePrice returns the current venue-quoted price in (0, 1) used
	// to size a replica order for the given outcome token.
	ReferencePrice(ctx context.Context, tokenID string) (float64, error)

	// SubmitOrder signs and posts a good-till-cancelled order. A venue
	// rejection comes back as Accepted=false with a nil error; errors are
	// reserved for transport failures.
	SubmitOrder(ctx context.Context, tokenID string, side model.SideType, price, size float64) (model.OrderReceipt, error)

	// AvailableBalance returns the currently spendable account balance.
	AvailableBalance(ctx context.Context) (float64, error)
}

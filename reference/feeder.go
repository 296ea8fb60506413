package reference

import (
	"context"

	"polycopy/model"
)

// Feeder produces the stream of observed trades for one followed trader.
// Events must arrive on the channel in observation order; the error channel
// carries transient feed failures without closing the stream.
type Feeder interface {
	TradesSubscription(ctx context.Context, trader string) (chan model.TradeEvent, chan error)
}

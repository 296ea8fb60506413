package reference

import (
	"context"

	"polycopy/model"
)

// Profiler fetches aggregate performance data for a trader. Consumed by the
// stats refresh loop only.
type Profiler interface {
	Profile(ctx context.Context, trader string) (model.TraderProfile, error)
}

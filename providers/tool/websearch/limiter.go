package websearch

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultFetchDelay is the minimum spacing between two page fetches.
const DefaultFetchDelay = 2 * time.Second

// Limiter spaces out page fetches. Wait blocks until the next fetch may
// start or ctx is done.
type Limiter interface {
	Wait(ctx context.Context) error
}

// FixedDelay enforces a minimum interval between fetches. The first fetch
// starts immediately. It is safe for concurrent use and keeps its spacing
// across Pipeline.Search calls.
type FixedDelay struct {
	limiter *rate.Limiter
}

// NewFixedDelay returns a FixedDelay with interval d. A non-positive d
// disables spacing.
func NewFixedDelay(d time.Duration) *FixedDelay {
	if d <= 0 {
		return &FixedDelay{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &FixedDelay{limiter: rate.NewLimiter(rate.Every(d), 1)}
}

func (f *FixedDelay) Wait(ctx context.Context) error {
	return f.limiter.Wait(ctx)
}

type noDelay struct{}

func (noDelay) Wait(ctx context.Context) error { return ctx.Err() }

// NoDelay never waits. Use it in tests.
var NoDelay Limiter = noDelay{}

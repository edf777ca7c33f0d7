package resilience

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces out calls to a shared-quota provider. It replaces ad hoc
// sleeps between leads, batches, and fetches; orchestrators block on
// Wait before each paced step. A zero-interval pacer never blocks,
// which is what tests inject.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer creates a pacer that allows one event per interval. The
// first Wait call passes immediately. A non-positive interval yields a
// pacer that never blocks.
func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next event is allowed or the context ends.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

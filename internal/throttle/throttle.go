// Package throttle serializes access to a shared external-API request
// budget. Every network call in the relevance engine waits on one
// Limiter so the process as a whole stays under the provider's
// calls-per-second cap.
package throttle

import (
	"context"

	"golang.org/x/time/rate"
)

// DefaultPerSecond matches the public Semantic Scholar Graph API budget
// for unauthenticated clients.
const DefaultPerSecond = 1.0

// Limiter hands out time slots at most maxPerSecond times per second.
// Slot reservation is atomic across concurrent callers: each Wait
// reserves a distinct, monotonically non-decreasing slot before
// sleeping, so two in-flight callers never share a slot.
type Limiter struct {
	lim *rate.Limiter
}

// New creates a Limiter allowing maxPerSecond slot starts per second.
// Burst is pinned to 1: concurrent callers must be spaced out, not
// admitted in a burst and then starved.
func New(maxPerSecond float64) *Limiter {
	if maxPerSecond <= 0 {
		maxPerSecond = DefaultPerSecond
	}
	return &Limiter{lim: rate.NewLimiter(rate.Limit(maxPerSecond), 1)}
}

// Wait blocks until the caller's reserved slot arrives, or until ctx is
// done. The wait is bounded by the slot schedule; there is no retry.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.lim.Wait(ctx)
}

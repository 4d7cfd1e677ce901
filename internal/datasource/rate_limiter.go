package datasource

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Upstream source names used as limiter keys.
const (
	SourceScreener  = "screener"
	SourceSecondary = "secondary"
	SourceKite      = "kite"
)

// MultiRateLimiter paces requests per upstream source. Each source allows
// one request per interval with no burst, so consecutive fetches are at
// least interval apart while the first goes out immediately.
type MultiRateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
}

// NewMultiRateLimiter creates a new multi-source rate limiter
func NewMultiRateLimiter() *MultiRateLimiter {
	return &MultiRateLimiter{
		limiters: make(map[string]*rate.Limiter),
	}
}

// AddLimiter registers a pacing interval for source. A non-positive
// interval leaves the source unpaced.
func (mrl *MultiRateLimiter) AddLimiter(source string, interval time.Duration) {
	if interval <= 0 {
		return
	}
	mrl.mu.Lock()
	defer mrl.mu.Unlock()

	mrl.limiters[source] = rate.NewLimiter(rate.Every(interval), 1)
}

// Wait blocks until source may issue its next request or ctx ends.
func (mrl *MultiRateLimiter) Wait(ctx context.Context, source string) error {
	if mrl == nil {
		return nil
	}
	mrl.mu.RLock()
	limiter, ok := mrl.limiters[source]
	mrl.mu.RUnlock()

	if !ok {
		return nil
	}
	return limiter.Wait(ctx)
}

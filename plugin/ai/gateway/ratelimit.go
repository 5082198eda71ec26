package gateway

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per provider.
type RateLimiter struct {
	mu     sync.Mutex
	limits map[string]*rate.Limiter
	every  rate.Limit
	burst  int
}

// NewRateLimiter creates a limiter allowing rps requests per second per provider.
// A non-positive rps disables limiting.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limits: make(map[string]*rate.Limiter),
		every:  limit,
		burst:  burst,
	}
}

// getLimiter gets or creates a limiter for the given provider.
func (rl *RateLimiter) getLimiter(provider string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, ok := rl.limits[provider]; ok {
		return limiter
	}

	limiter := rate.NewLimiter(rl.every, rl.burst)
	rl.limits[provider] = limiter
	return limiter
}

// Wait blocks until a call to provider is allowed or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context, provider string) error {
	return rl.getLimiter(provider).Wait(ctx)
}

package shopify

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per shop so a busy store cannot starve
// the others. Shopify's REST bucket refills at 2 requests per second with a
// burst of 40.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

// NewRateLimiter creates a per-shop limiter. A non-positive rps disables limiting.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

// Wait blocks until a request to shop may proceed or ctx is done
func (l *RateLimiter) Wait(ctx context.Context, shop string) error {
	if l == nil || l.rps <= 0 {
		return nil
	}
	return l.limiter(shop).Wait(ctx)
}

func (l *RateLimiter) limiter(shop string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[shop]
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
		l.limiters[shop] = lim
	}
	return lim
}

package services

import (
	"context"

	"golang.org/x/time/rate"
)

// Default outbound rate towards the delivery API.
const (
	defaultRate  = rate.Limit(5) // requests per second
	defaultBurst = 10
)

// Limiter is a token bucket shared by all calls of one service.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter falls back to the defaults for non-positive values.
func NewLimiter(rateLimit float64, burst int) *Limiter {
	r := rate.Limit(rateLimit)
	if rateLimit <= 0 {
		r = defaultRate
	}
	if burst <= 0 {
		burst = defaultBurst
	}
	return &Limiter{limiter: rate.NewLimiter(r, burst)}
}

// Unlimited never blocks.
func Unlimited() *Limiter {
	return &Limiter{limiter: rate.NewLimiter(rate.Inf, 0)}
}

// Acquire blocks until a token is available or context is done.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}

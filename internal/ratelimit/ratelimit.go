package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter throttles calls against a single upstream host.
type Limiter interface {
	// Wait blocks until the caller may proceed or the context is done.
	Wait(ctx context.Context) error
}

// TokenBucket is a Limiter backed by a token bucket.
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket allows `requests` calls per `per`, with the given burst.
// Example: NewTokenBucket(4, time.Second, 2) -> 4 requests/second, burst of 2.
// A non-positive rate is clamped to one request per interval.
func NewTokenBucket(requests int, per time.Duration, burst int) *TokenBucket {
	if requests < 1 {
		requests = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &TokenBucket{
		limiter: rate.NewLimiter(rate.Every(per/time.Duration(requests)), burst),
	}
}

var _ Limiter = (*TokenBucket)(nil)

func (t *TokenBucket) Wait(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

package client

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedFetcher spaces requests to the public endpoint. It never retries.
type RateLimitedFetcher struct {
	next    Fetcher
	limiter *rate.Limiter
}

// NewRateLimitedFetcher wraps next. rps may be fractional; rps <= 0 disables limiting.
func NewRateLimitedFetcher(next Fetcher, rps float64, burst int) *RateLimitedFetcher {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitedFetcher{
		next:    next,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Fetch waits for the limiter, then forwards to the wrapped Fetcher.
// A canceled wait is reported as ErrFetchFailure like any other transport failure.
func (f *RateLimitedFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %w", ErrFetchFailure, err)
	}
	return f.next.Fetch(ctx, url)
}

// ABOUTME: Token-bucket rate limiting for upstream generation calls
// ABOUTME: Wraps any Generator so batches wait for a token before hitting the model
package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedGenerator delays Generate calls to respect an upstream request budget
type RateLimitedGenerator struct {
	next    Generator
	limiter *rate.Limiter
}

// NewRateLimitedGenerator wraps next with a limiter of perSecond requests.
// A non-positive rate disables limiting and returns next unchanged.
func NewRateLimitedGenerator(next Generator, perSecond float64, burst int) Generator {
	if perSecond <= 0 {
		return next
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitedGenerator{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Generate waits for a token, then delegates
func (r *RateLimitedGenerator) Generate(ctx context.Context, prompts []string, params SamplingParams) ([]string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	return r.next.Generate(ctx, prompts, params)
}

package llm

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter combines a concurrency semaphore with a per-key token-bucket
// rate limiter, adapted from thinktank's internal/ratelimit: bound the
// number of in-flight LLM calls and the call rate per API key independently.
type RateLimiter struct {
	semaphore chan struct{}

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	perMin   int
	burst    int
}

// NewRateLimiter returns a RateLimiter allowing at most maxConcurrent
// in-flight calls and ratePerMin calls per minute per API key. A
// maxConcurrent or ratePerMin of 0 disables that half of the limit.
func NewRateLimiter(maxConcurrent, ratePerMin int) *RateLimiter {
	rl := &RateLimiter{limiters: make(map[string]*rate.Limiter), perMin: ratePerMin}
	if maxConcurrent > 0 {
		rl.semaphore = make(chan struct{}, maxConcurrent)
	}
	rl.burst = 1
	return rl
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	if rl.perMin <= 0 {
		return nil
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	l, ok := rl.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Limit(float64(rl.perMin)/60.0), rl.burst)
		rl.limiters[key] = l
	}
	return l
}

// Acquire blocks until both the concurrency semaphore and the per-key rate
// limiter allow another call, or ctx is cancelled. Callers must call
// Release exactly once for every successful Acquire.
func (rl *RateLimiter) Acquire(ctx context.Context, key string) error {
	if rl.semaphore != nil {
		select {
		case rl.semaphore <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if l := rl.limiterFor(key); l != nil {
		if err := l.Wait(ctx); err != nil {
			rl.Release()
			return err
		}
	}
	return nil
}

// Release returns a concurrency slot acquired by Acquire.
func (rl *RateLimiter) Release() {
	if rl.semaphore != nil {
		<-rl.semaphore
	}
}

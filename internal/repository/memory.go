package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MemoryRateLimiter is a per-process token bucket per key. It refills limit
// tokens per window and holds at most burst tokens.
type MemoryRateLimiter struct {
	limiters sync.Map
	burst    int
	now      func() time.Time
}

func NewMemoryRateLimiter(burst int) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		burst: burst,
		now:   time.Now,
	}
}

func (r *MemoryRateLimiter) getLimiter(key string, limit int, window time.Duration) *rate.Limiter {
	bucket := fmt.Sprintf("%s:%d:%d", key, limit, window)
	if v, ok := r.limiters.Load(bucket); ok {
		if lim, ok := v.(*rate.Limiter); ok {
			return lim
		}
	}

	burst := r.burst
	if burst <= 0 {
		burst = limit
	}

	lim := rate.NewLimiter(rate.Limit(float64(limit)/window.Seconds()), burst)
	actual, loaded := r.limiters.LoadOrStore(bucket, lim)
	if loaded {
		if actualLim, ok := actual.(*rate.Limiter); ok {
			return actualLim
		}
	}
	return lim
}

func (r *MemoryRateLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 || window <= 0 {
		return true, nil
	}
	return r.getLimiter(key, limit, window).AllowN(r.now(), 1), nil
}

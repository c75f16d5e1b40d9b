// Package ratelimiter bounds the call rate against quota-limited upstream APIs.
package ratelimiter

import (
	"sync"
	"time"
)

// RateLimiterInterface reports whether another call fits in the current window.
type RateLimiterInterface interface {
	Allow() bool
}

// RateLimiter enforces a rolling per-interval request budget. Unlike a
// blocking limiter it fails fast: once the budget is spent the caller gets
// false and is expected to fall back to another source instead of waiting.
type RateLimiter struct {
	limit     int           // calls allowed per interval
	interval  time.Duration // window length
	mu        sync.Mutex
	count     int
	lastReset time.Time
}

var _ RateLimiterInterface = (*RateLimiter)(nil)

// NewRateLimiter creates a limiter allowing limit calls per interval.
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		interval:  interval,
		lastReset: time.Now(),
	}
}

// Allow consumes one slot from the current window. It returns false when the
// budget for this window is exhausted.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastReset) >= rl.interval {
		rl.count = 0
		rl.lastReset = now
	}

	if rl.count >= rl.limit {
		return false
	}
	rl.count++
	return true
}

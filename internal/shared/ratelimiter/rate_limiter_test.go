package ratelimiter

import (
	"testing"
	"time"
)

// TestRateLimiter_Allow verifies the fail-fast budget within one window.
func TestRateLimiter_Allow(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow() {
			t.Fatalf("call %d should be allowed", i+1)
		}
	}
	if rl.Allow() {
		t.Fatal("fourth call within the window should be rejected")
	}
}

// TestRateLimiter_WindowReset verifies the counter resets after the interval.
func TestRateLimiter_WindowReset(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, 10*time.Millisecond)

	if !rl.Allow() {
		t.Fatal("first call should be allowed")
	}
	if rl.Allow() {
		t.Fatal("second call inside the window should be rejected")
	}

	time.Sleep(15 * time.Millisecond)

	if !rl.Allow() {
		t.Fatal("call after the window elapsed should be allowed")
	}
}

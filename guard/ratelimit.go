package guard

import (
	"sync"
	"time"
)

// RateLimiter admits at most max requests per sliding window. It fails
// closed: when the window is full the request is denied and not recorded.
//
// The timestamp window is mutex-guarded since callers run on arbitrary
// goroutines.
type RateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	stamps []time.Time
	now    func() time.Time
}

// NewRateLimiter creates a limiter. A nil now selects time.Now; tests
// inject a fake clock.
func NewRateLimiter(window time.Duration, max int, now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}

	return &RateLimiter{
		window: window,
		max:    max,
		stamps: make([]time.Time, 0, max),
		now:    now,
	}
}

// Allow evicts window-expired timestamps, then either denies (window
// full) or records the request and admits it.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	live := rl.stamps[:0]
	for _, ts := range rl.stamps {
		if ts.After(cutoff) {
			live = append(live, ts)
		}
	}
	rl.stamps = live

	if len(rl.stamps) >= rl.max {
		return false
	}
	rl.stamps = append(rl.stamps, now)

	return true
}

// Pending returns the current window occupancy.
func (rl *RateLimiter) Pending() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return len(rl.stamps)
}

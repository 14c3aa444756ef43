// Package limiter throttles repeated login attempts per account number,
// slowing down PIN guessing.
package limiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type AttemptLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	interval time.Duration
	burst    int
}

// NewAttemptLimiter allows burst attempts per key, then one attempt
// per interval.
func NewAttemptLimiter(interval time.Duration, burst int) *AttemptLimiter {
	return &AttemptLimiter{
		limiters: make(map[string]*rate.Limiter),
		interval: interval,
		burst:    burst,
	}
}

// Allow reports whether another attempt for the key may proceed now.
func (l *AttemptLimiter) Allow(key string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(l.interval), l.burst)
		l.limiters[key] = lim
	}
	l.mu.Unlock()

	return lim.Allow()
}

// Reset forgets the key, lifting any throttling. Called after a
// successful login.
func (l *AttemptLimiter) Reset(key string) {
	l.mu.Lock()
	delete(l.limiters, key)
	l.mu.Unlock()
}

// Package ratelimit caps how many spins a wallet may request per time window.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether a keyed action is allowed in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// windowStart truncates now to the start of its fixed window.
func windowStart(now time.Time, window time.Duration) time.Time {
	return now.Truncate(window)
}

// MemoryLimiter is a process-local fixed-window limiter.
type MemoryLimiter struct {
	mu      sync.Mutex
	limit   int64
	window  time.Duration
	now     func() time.Time
	current time.Time
	counts  map[string]int64
}

// NewMemoryLimiter allows limit actions per key per window.
// A non-positive limit disables limiting.
func NewMemoryLimiter(limit int64, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
		counts: make(map[string]int64),
	}
}

// Allow implements Limiter.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// A new window drops all counts from the previous one
	start := windowStart(l.now(), l.window)
	if !start.Equal(l.current) {
		l.current = start
		l.counts = make(map[string]int64)
	}

	if l.counts[key] >= l.limit {
		return false, nil
	}
	l.counts[key]++
	return true, nil
}

var _ Limiter = (*MemoryLimiter)(nil)

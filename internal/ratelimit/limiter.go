// Package ratelimit throttles the unauthenticated auth endpoints per client
// IP so credential stuffing cannot run at line rate.
package ratelimit

import (
	"sync"
	"time"
)

// Result reports the outcome of a single admission check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// SlidingWindow admits up to limit requests per key over a rolling window.
// Timestamps are pruned on every check, so memory stays proportional to the
// number of keys active inside one window.
type SlidingWindow struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	hits   map[string][]time.Time
	now    func() time.Time
}

// NewSlidingWindow constructs a limiter admitting limit requests per window.
func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		limit:  limit,
		window: window,
		hits:   make(map[string][]time.Time),
		now:    time.Now,
	}
}

// Allow records one request for key and reports whether it fits the budget.
func (l *SlidingWindow) Allow(key string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	recent := l.hits[key][:0]
	for _, ts := range l.hits[key] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= l.limit {
		l.hits[key] = recent
		return Result{
			Allowed:   false,
			Limit:     l.limit,
			Remaining: 0,
			ResetAt:   recent[0].Add(l.window),
		}
	}

	recent = append(recent, now)
	l.hits[key] = recent
	return Result{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: l.limit - len(recent),
		ResetAt:   recent[0].Add(l.window),
	}
}

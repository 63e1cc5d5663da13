// Package ratelimit provides a sliding-window call-admission check keyed by
// logical operation name.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter tracks recent call timestamps per operation and admits a call only
// while the trailing-window count stays within budget. It never blocks and
// never queues: callers receiving false must fail fast; retry policy, if any,
// belongs to the caller.
//
// Every admission check appends the current timestamp regardless of the
// outcome, so a refused attempt still counts against the window. Callers must
// not re-check for the same attempt.
type Limiter struct {
	mu    sync.Mutex
	calls map[string][]time.Time
	now   func() time.Time
}

// New creates a limiter using the wall clock.
func New() *Limiter {
	return NewWithClock(time.Now)
}

// NewWithClock creates a limiter with an injectable clock. Intended for
// tests that need deterministic window boundaries.
func NewWithClock(now func() time.Time) *Limiter {
	return &Limiter{
		mu:    sync.Mutex{},
		calls: make(map[string][]time.Time),
		now:   now,
	}
}

// Allow records a call attempt for the named operation and reports whether it
// falls within the budget of maxCalls per trailing window.
func (l *Limiter) Allow(operation string, maxCalls int, window time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-window)

	kept := l.calls[operation][:0]

	for _, ts := range l.calls[operation] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	kept = append(kept, now)
	l.calls[operation] = kept

	return len(kept) <= maxCalls
}

// Package ratelimit implements the per-process fixed-window limiter applied
// to authentication and generation routes. State is local to one instance
// and is not shared across horizontally scaled replicas.
package ratelimit

import (
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// Result describes the outcome of one Allow call.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// FixedWindow counts requests per key inside a fixed time window.
type FixedWindow struct {
	mu      sync.Mutex
	windows map[string]*window

	windowSize time.Duration
	limit      int
	now        func() time.Time
}

// NewFixedWindow builds a limiter allowing limit requests per windowSize.
func NewFixedWindow(windowSize time.Duration, limit int) *FixedWindow {
	return &FixedWindow{
		windows:    make(map[string]*window),
		windowSize: windowSize,
		limit:      limit,
		now:        time.Now,
	}
}

// Allow records one request for key and reports whether it fits the window.
func (l *FixedWindow) Allow(key string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		l.windows[key] = &window{count: 1, resetAt: now.Add(l.windowSize)}
		return Result{Allowed: true, Remaining: l.limit - 1}
	}

	if w.count >= l.limit {
		return Result{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: w.resetAt.Sub(now),
		}
	}

	w.count++
	return Result{Allowed: true, Remaining: l.limit - w.count}
}

// SetClock overrides the time source. Intended for tests.
func (l *FixedWindow) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

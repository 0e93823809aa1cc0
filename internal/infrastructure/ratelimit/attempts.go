// Package ratelimit holds the in-process OTP attempt limiter used when Redis
// is not configured.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/Rishisinghwindows/Destrone/internal/core/ports"
)

// AttemptLimiter keeps a sliding window of failure timestamps per key.
type AttemptLimiter struct {
	mu       sync.Mutex
	failures map[string][]time.Time
	window   time.Duration
	max      int
	now      func() time.Time
	swept    time.Time
}

var _ ports.AttemptLimiter = (*AttemptLimiter)(nil)

// NewAttemptLimiter blocks a key once max failures fall inside window.
func NewAttemptLimiter(max int, window time.Duration, now func() time.Time) *AttemptLimiter {
	if now == nil {
		now = time.Now
	}
	return &AttemptLimiter{
		failures: make(map[string][]time.Time),
		window:   window,
		max:      max,
		now:      now,
		swept:    now(),
	}
}

func (l *AttemptLimiter) Blocked(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prune(key)) >= l.max, nil
}

func (l *AttemptLimiter) Fail(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep()
	l.failures[key] = append(l.prune(key), l.now())
	return nil
}

func (l *AttemptLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.failures, key)
	return nil
}

// prune drops failures older than the window. Callers hold mu.
func (l *AttemptLimiter) prune(key string) []time.Time {
	cutoff := l.now().Add(-l.window)
	kept := l.failures[key][:0]
	for _, t := range l.failures[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(l.failures, key)
		return nil
	}
	l.failures[key] = kept
	return kept
}

// sweep drops every key whose failures all left the window. It runs at most
// once per window so keys that never come back are still evicted. Callers
// hold mu.
func (l *AttemptLimiter) sweep() {
	now := l.now()
	if now.Sub(l.swept) < l.window {
		return
	}
	l.swept = now
	for key := range l.failures {
		l.prune(key)
	}
}

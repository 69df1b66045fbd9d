package tagging

import (
	"context"
	"sync"
	"time"

	"github.com/dakshlabs/examgraph-backend/internal/platform/envutil"
)

// RateLimiter is a sliding-window limiter over classifier calls.
// Acquire blocks until a slot frees or the context ends; call order
// under contention is not guaranteed.
type RateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	calls  []time.Time
	now    func() time.Time
}

func NewRateLimiter(maxCalls int, window time.Duration) *RateLimiter {
	if maxCalls < 1 {
		maxCalls = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		window: window,
		max:    maxCalls,
		now:    time.Now,
	}
}

// NewRateLimiterFromEnv reads CLASSIFIER_RATE_LIMIT_CALLS and
// CLASSIFIER_RATE_LIMIT_WINDOW_SECONDS, defaulting to 5 per 60s.
func NewRateLimiterFromEnv() *RateLimiter {
	return NewRateLimiter(
		envutil.Int("CLASSIFIER_RATE_LIMIT_CALLS", 5),
		time.Duration(envutil.Int("CLASSIFIER_RATE_LIMIT_WINDOW_SECONDS", 60))*time.Second,
	)
}

// Acquire reserves one call slot, sleeping until the oldest windowed
// call ages out when the window is full.
func (r *RateLimiter) Acquire(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.mu.Lock()
		now := r.now()
		r.prune(now)
		if len(r.calls) < r.max {
			r.calls = append(r.calls, now)
			r.mu.Unlock()
			return nil
		}
		wait := r.calls[0].Add(r.window).Sub(now)
		r.mu.Unlock()

		if wait <= 0 {
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// prune drops timestamps older than the window. Caller holds mu.
func (r *RateLimiter) prune(now time.Time) {
	cutoff := now.Add(-r.window)
	i := 0
	for i < len(r.calls) && !r.calls[i].After(cutoff) {
		i++
	}
	if i > 0 {
		r.calls = append(r.calls[:0], r.calls[i:]...)
	}
}

// Pending reports how many calls currently occupy the window.
func (r *RateLimiter) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune(r.now())
	return len(r.calls)
}

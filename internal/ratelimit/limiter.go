// Package ratelimit implements fixed-window request counting keyed by client.
package ratelimit

import (
	"context"
	"time"
)

// Store counts hits per key inside a fixed window.
type Store interface {
	// Hit records one hit for key and returns the count in the current window and when
	// that window ends. The first hit of a window starts it at now.
	Hit(ctx context.Context, key string, window time.Duration, now time.Time) (int, time.Time, error)
}

// Result describes the limiter decision for one request.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the time left until the window resets, rounded up to whole seconds.
func (r Result) RetryAfter(now time.Time) int {
	d := r.ResetAt.Sub(now)
	if d <= 0 {
		return 0
	}
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}

// Limiter allows Limit hits per key per Window.
type Limiter struct {
	Name   string
	Limit  int
	Window time.Duration

	store Store
	now   func() time.Time
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New builds a limiter over store.
func New(name string, store Store, limit int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		Name:   name,
		Limit:  limit,
		Window: window,
		store:  store,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Now returns the limiter's current time.
func (l *Limiter) Now() time.Time {
	return l.now()
}

// Check records a hit for key. When the store fails the request is allowed and the
// error is returned for logging.
func (l *Limiter) Check(ctx context.Context, key string) (Result, error) {
	now := l.now()
	count, resetAt, err := l.store.Hit(ctx, l.Name+":"+key, l.Window, now)
	if err != nil {
		return Result{Allowed: true, Limit: l.Limit, Remaining: l.Limit, ResetAt: now.Add(l.Window)}, err
	}
	remaining := l.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   count <= l.Limit,
		Limit:     l.Limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

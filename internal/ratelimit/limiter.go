// Package ratelimit implements fixed-window request limiting over a pluggable
// counter store.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Store increments the counter for key inside a fixed window of the given
// length. The first increment of a window opens it; the returned resetAt is
// the instant the window closes. Implementations must make the increment
// atomic with respect to concurrent callers on the same key.
type Store interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
}

// Config describes one route group's limit.
type Config struct {
	Name    string
	Window  time.Duration
	Max     int64
	Message string
}

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   time.Time
}

// RetryAfter returns how long the caller should wait before the window resets.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	wait := d.ResetAt.Sub(now)
	if wait < 0 {
		return 0
	}
	return wait
}

type Limiter struct {
	cfg   Config
	store Store
}

func New(cfg Config, store Store) (*Limiter, error) {
	if cfg.Name == "" {
		return nil, errors.New("rate limiter name is required")
	}
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("rate limiter %q: window must be positive", cfg.Name)
	}
	if cfg.Max <= 0 {
		return nil, fmt.Errorf("rate limiter %q: max must be positive", cfg.Name)
	}
	if store == nil {
		return nil, fmt.Errorf("rate limiter %q: store is required", cfg.Name)
	}
	if cfg.Message == "" {
		cfg.Message = "Rate limit exceeded, please try again after " + describeWindow(cfg.Window)
	}
	return &Limiter{cfg: cfg, store: store}, nil
}

func (l *Limiter) Name() string          { return l.cfg.Name }
func (l *Limiter) Message() string       { return l.cfg.Message }
func (l *Limiter) Window() time.Duration { return l.cfg.Window }

// Allow counts one request from key against the limiter's current window.
// Counters are namespaced by limiter name so route groups never share state.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	count, resetAt, err := l.store.Increment(ctx, l.cfg.Name+":"+key, l.cfg.Window)
	if err != nil {
		return Decision{Allowed: true, Limit: l.cfg.Max, Remaining: l.cfg.Max}, fmt.Errorf("rate limiter %q: %w", l.cfg.Name, err)
	}

	remaining := l.cfg.Max - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= l.cfg.Max,
		Limit:     l.cfg.Max,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

func describeWindow(d time.Duration) string {
	switch {
	case d%time.Hour == 0:
		return plural(int64(d/time.Hour), "hour")
	case d%time.Minute == 0:
		return plural(int64(d/time.Minute), "minute")
	default:
		return plural(int64((d+time.Second-1)/time.Second), "second")
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// Package ratelimit guards the administrative login with a lockout counter.
package ratelimit

import (
	"sync"
	"time"

	"dispatch/config"
)

// Lockout is a process-local attempt limiter with a rolling window: every
// Allow call counts as one attempt, reaching the limit within the window
// locks the gate until the window elapses, after which the counter resets.
// State is deliberately not persisted; a restart clears it.
type Lockout struct {
	mu          sync.Mutex
	maxAttempts int
	window      time.Duration
	count       int
	windowStart time.Time
	locked      bool
	now         func() time.Time
}

// Option configures a Lockout.
type Option func(*Lockout)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Lockout) {
		l.now = now
	}
}

// NewLockout creates a lockout limiter from config.
func NewLockout(cfg *config.Config, opts ...Option) *Lockout {
	l := &Lockout{
		maxAttempts: cfg.RateLimit.MaxAttempts,
		window:      cfg.RateLimit.Window,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.windowStart = l.now()

	return l
}

// Allow records one attempt and reports whether it may proceed. While
// locked, attempts fail immediately without counting.
func (l *Lockout) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.windowStart) > l.window {
		l.count = 0
		l.windowStart = now
		l.locked = false
	}

	if l.locked {
		return false
	}

	l.count++
	if l.count >= l.maxAttempts {
		l.locked = true

		return false
	}

	return true
}

// Locked reports the current lockout state without counting an attempt.
func (l *Lockout) Locked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.now().Sub(l.windowStart) > l.window {
		return false
	}

	return l.locked
}

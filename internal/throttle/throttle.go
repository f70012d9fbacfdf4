// Package throttle guards verification paths with sliding-window attempt
// counters that escalate to a timed lockout. Each use site gets its own
// store instance with its own policy.
package throttle

import (
	"context"
	"sync"
	"time"

	"github.com/jainabhi1607/loanease-sub003/domain"
)

// Policy is an N-attempts-per-window-then-lock configuration.
type Policy struct {
	MaxAttempts int
	Window      time.Duration
	Lockout     time.Duration
}

// How long an untouched entry survives before the sweeper evicts it.
const staleAfter = time.Hour

const defaultSweepInterval = time.Minute

type entry struct {
	count       int
	windowStart time.Time
	lockedUntil time.Time
	touched     time.Time
}

// MemoryThrottle implements domain.AttemptThrottle with a process-local map.
// In a horizontally scaled deployment each instance counts independently, so
// the effective global threshold is policy.MaxAttempts times the instance
// count; use the Redis store there instead.
type MemoryThrottle struct {
	mu      sync.Mutex
	entries map[string]*entry
	policy  Policy

	done chan struct{}
	once sync.Once
}

// NewMemoryThrottle creates an in-memory throttle and starts its sweeper.
func NewMemoryThrottle(policy Policy) *MemoryThrottle {
	t := &MemoryThrottle{
		entries: make(map[string]*entry),
		policy:  policy,
		done:    make(chan struct{}),
	}
	go t.sweep(defaultSweepInterval)
	return t
}

// RecordFailure implements domain.AttemptThrottle
func (t *MemoryThrottle) RecordFailure(ctx context.Context, key string) (*domain.ThrottleResult, error) {
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok {
		e = &entry{windowStart: now}
		t.entries[key] = e
	}
	e.touched = now

	if e.lockedUntil.After(now) {
		return &domain.ThrottleResult{Locked: true, LockedUntil: e.lockedUntil}, nil
	}

	// The window slides from the first recorded failure, not a clock
	// boundary.
	if now.Sub(e.windowStart) > t.policy.Window {
		e.count = 0
		e.windowStart = now
	}

	e.count++
	if e.count >= t.policy.MaxAttempts {
		e.lockedUntil = now.Add(t.policy.Lockout)
		e.count = 0
		return &domain.ThrottleResult{Locked: true, LockedUntil: e.lockedUntil}, nil
	}

	return &domain.ThrottleResult{Remaining: t.policy.MaxAttempts - e.count}, nil
}

// CheckLocked implements domain.AttemptThrottle. Read-only so a locked-out
// caller is refused before the credential comparison path runs at all.
func (t *MemoryThrottle) CheckLocked(ctx context.Context, key string) (*domain.ThrottleResult, error) {
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok {
		return &domain.ThrottleResult{Remaining: t.policy.MaxAttempts}, nil
	}
	if e.lockedUntil.After(now) {
		return &domain.ThrottleResult{Locked: true, LockedUntil: e.lockedUntil}, nil
	}
	if now.Sub(e.windowStart) > t.policy.Window {
		return &domain.ThrottleResult{Remaining: t.policy.MaxAttempts}, nil
	}
	return &domain.ThrottleResult{Remaining: t.policy.MaxAttempts - e.count}, nil
}

// Clear implements domain.AttemptThrottle
func (t *MemoryThrottle) Clear(ctx context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, key)
	return nil
}

// Close stops the background sweeper.
func (t *MemoryThrottle) Close() error {
	t.once.Do(func() { close(t.done) })
	return nil
}

func (t *MemoryThrottle) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case now := <-ticker.C:
			t.mu.Lock()
			for key, e := range t.entries {
				if now.Sub(e.touched) > staleAfter && !e.lockedUntil.After(now) {
					delete(t.entries, key)
				}
			}
			t.mu.Unlock()
		}
	}
}

var _ domain.AttemptThrottle = (*MemoryThrottle)(nil)

package pin

import (
	"context"
	"sync"
	"time"
)

// LimiterConfig sets the lockout policy. MaxFailures <= 0 disables lockout.
type LimiterConfig struct {
	MaxFailures   int
	BaseLockout   time.Duration
	MaxLockout    time.Duration
	AttemptExpiry time.Duration
}

func DefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		MaxFailures:   5,
		BaseLockout:   1 * time.Minute,
		MaxLockout:    15 * time.Minute,
		AttemptExpiry: 1 * time.Hour,
	}
}

// AttemptLimiter counts consecutive failed verifications per identity and
// applies exponential backoff once MaxFailures is reached.
type AttemptLimiter struct {
	cfg LimiterConfig
	now func() time.Time

	mu       sync.Mutex
	attempts map[string]*attemptRecord
	gates    map[string]*gate
}

// gate admits one verification per identity at a time.
type gate struct {
	slot chan struct{}
	refs int
}

type attemptRecord struct {
	failures    int
	lastFailure time.Time
	lockedUntil time.Time
}

func NewAttemptLimiter(cfg LimiterConfig) *AttemptLimiter {
	return &AttemptLimiter{
		cfg:      cfg,
		now:      time.Now,
		attempts: make(map[string]*attemptRecord),
		gates:    make(map[string]*gate),
	}
}

func (l *AttemptLimiter) enabled() bool {
	return l != nil && l.cfg.MaxFailures > 0
}

// Check returns the remaining lockout for identityID, zero if it may proceed.
func (l *AttemptLimiter) Check(identityID string) time.Duration {
	if !l.enabled() {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.attempts[identityID]
	if !ok {
		return 0
	}
	now := l.now()
	if now.Sub(rec.lastFailure) > l.cfg.AttemptExpiry {
		delete(l.attempts, identityID)
		return 0
	}
	if now.Before(rec.lockedUntil) {
		return rec.lockedUntil.Sub(now)
	}
	return 0
}

// Attempt is one reserved verification. The outcome must be reported with
// Fail or Succeed before Release; Release alone records nothing.
type Attempt struct {
	l    *AttemptLimiter
	id   string
	g    *gate
	done bool
}

// Acquire reserves the next verification for identityID, waiting while
// another one for the same identity is in flight. When the identity is
// locked it returns the remaining lockout and a nil Attempt.
func (l *AttemptLimiter) Acquire(ctx context.Context, identityID string) (*Attempt, time.Duration, error) {
	if !l.enabled() {
		return &Attempt{}, 0, nil
	}

	l.mu.Lock()
	g, ok := l.gates[identityID]
	if !ok {
		g = &gate{slot: make(chan struct{}, 1)}
		l.gates[identityID] = g
	}
	g.refs++
	l.mu.Unlock()

	select {
	case g.slot <- struct{}{}:
	case <-ctx.Done():
		l.unref(identityID, g)
		return nil, 0, ctx.Err()
	}

	a := &Attempt{l: l, id: identityID, g: g}
	if wait := l.Check(identityID); wait > 0 {
		a.Release()
		return nil, wait, nil
	}
	return a, 0, nil
}

func (l *AttemptLimiter) unref(identityID string, g *gate) {
	l.mu.Lock()
	defer l.mu.Unlock()
	g.refs--
	if g.refs == 0 {
		delete(l.gates, identityID)
	}
}

// Fail records a wrong PIN and returns the lockout it caused, if any.
func (a *Attempt) Fail() time.Duration {
	if a == nil || a.l == nil {
		return 0
	}
	return a.l.RecordFailure(a.id)
}

func (a *Attempt) Succeed() {
	if a == nil || a.l == nil {
		return
	}
	a.l.Reset(a.id)
}

// Release frees the identity for the next verification. It is safe to call
// more than once.
func (a *Attempt) Release() {
	if a == nil || a.l == nil || a.done {
		return
	}
	a.done = true
	<-a.g.slot
	a.l.unref(a.id, a.g)
}

// RecordFailure counts a failure and returns the lockout it caused, if any.
func (l *AttemptLimiter) RecordFailure(identityID string) time.Duration {
	if !l.enabled() {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.attempts[identityID]
	if !ok {
		rec = &attemptRecord{}
		l.attempts[identityID] = rec
	}
	now := l.now()
	rec.failures++
	rec.lastFailure = now

	if rec.failures < l.cfg.MaxFailures {
		return 0
	}
	// baseLockout * 2^(failures - maxFailures), capped
	lockout := l.cfg.BaseLockout
	for i := 0; i < rec.failures-l.cfg.MaxFailures; i++ {
		lockout *= 2
		if lockout > l.cfg.MaxLockout {
			lockout = l.cfg.MaxLockout
			break
		}
	}
	rec.lockedUntil = now.Add(lockout)
	return lockout
}

func (l *AttemptLimiter) Reset(identityID string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, identityID)
}

func (l *AttemptLimiter) sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	now := l.now()
	for id, rec := range l.attempts {
		if now.Sub(rec.lastFailure) > l.cfg.AttemptExpiry {
			delete(l.attempts, id)
			n++
		}
	}
	return n
}

// RunSweeper drops stale records every interval until ctx is done.
func (l *AttemptLimiter) RunSweeper(ctx context.Context, interval time.Duration) {
	if !l.enabled() {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.sweep()
		}
	}
}

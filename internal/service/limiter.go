package service

import (
	"strings"
	"sync"
	"time"
)

// LoginLimiter counts failed logins per email inside a sliding window and
// locks the email out once the limit is reached.
type LoginLimiter struct {
	Max     int
	Window  time.Duration
	Lockout time.Duration
	Now     func() time.Time

	mu      sync.Mutex
	entries map[string]*loginEntry
}

type loginEntry struct {
	failures    []time.Time
	lockedUntil time.Time
}

func NewLoginLimiter(max int, window, lockout time.Duration) *LoginLimiter {
	return &LoginLimiter{Max: max, Window: window, Lockout: lockout}
}

func (l *LoginLimiter) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// Allowed reports whether email may attempt a login, and if not, how long
// it stays locked.
func (l *LoginLimiter) Allowed(email string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.entries[strings.ToLower(email)]
	if e == nil {
		return true, 0
	}
	now := l.now()
	if now.Before(e.lockedUntil) {
		return false, e.lockedUntil.Sub(now)
	}
	return true, 0
}

// Fail records a failed attempt and reports whether it triggered a lockout.
func (l *LoginLimiter) Fail(email string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.entries == nil {
		l.entries = make(map[string]*loginEntry)
	}
	key := strings.ToLower(email)
	e := l.entries[key]
	if e == nil {
		e = &loginEntry{}
		l.entries[key] = e
	}

	now := l.now()
	cutoff := now.Add(-l.Window)
	kept := e.failures[:0]
	for _, t := range e.failures {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	e.failures = append(kept, now)

	if l.Max > 0 && len(e.failures) >= l.Max {
		e.lockedUntil = now.Add(l.Lockout)
		e.failures = e.failures[:0]
		return true
	}
	return false
}

func (l *LoginLimiter) Reset(email string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, strings.ToLower(email))
}

package service

import (
	"sync"
	"time"

	"fitfest/pkg/syncmap"
)

// loginLimiter tracks failed login attempts per email in a sliding window.
// Locked-out attempts fail with the same error as a wrong password so the
// lockout does not leak which emails exist.
type loginLimiter struct {
	attempts    syncmap.Map[string, *attemptWindow]
	maxFailures int
	window      time.Duration
}

type attemptWindow struct {
	mu       sync.Mutex
	failures []time.Time
}

func newLoginLimiter(maxFailures int, window time.Duration) *loginLimiter {
	return &loginLimiter{
		maxFailures: maxFailures,
		window:      window,
	}
}

func (l *loginLimiter) Allow(email string) bool {
	w, ok := l.attempts.Load(email)
	if !ok {
		return true
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune(time.Now().Add(-l.window))
	return len(w.failures) < l.maxFailures
}

func (l *loginLimiter) RecordFailure(email string) {
	w, _ := l.attempts.LoadOrStore(email, &attemptWindow{})
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune(time.Now().Add(-l.window))
	w.failures = append(w.failures, time.Now())
}

func (l *loginLimiter) Reset(email string) {
	l.attempts.Delete(email)
}

// prune drops failures older than the cutoff; callers hold w.mu.
func (w *attemptWindow) prune(cutoff time.Time) {
	kept := w.failures[:0]
	for _, t := range w.failures {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	w.failures = kept
}

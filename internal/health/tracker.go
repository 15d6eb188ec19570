package health

import (
	"sync"
	"time"
)

// Dependency names.
const (
	DependencyBackend    = "backend"
	DependencyCompletion = "completion"
)

// Tracker holds one circuit breaker per dependency. A nil Tracker allows
// everything and records nothing.
type Tracker struct {
	mu       sync.RWMutex
	breakers map[string]*CircuitBreaker

	failureThreshold int
	recoveryInterval time.Duration
}

// NewTracker creates a tracker whose breakers share the given thresholds.
func NewTracker(failureThreshold int, recoveryInterval time.Duration) *Tracker {
	return &Tracker{
		breakers:         make(map[string]*CircuitBreaker),
		failureThreshold: failureThreshold,
		recoveryInterval: recoveryInterval,
	}
}

// Breaker returns (or lazily creates) the circuit breaker for a dependency.
func (t *Tracker) Breaker(name string) *CircuitBreaker {
	t.mu.RLock()
	cb, ok := t.breakers[name]
	t.mu.RUnlock()
	if ok {
		return cb
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// Double-check after acquiring write lock
	if cb, ok := t.breakers[name]; ok {
		return cb
	}
	cb = NewCircuitBreaker(t.failureThreshold, t.recoveryInterval)
	t.breakers[name] = cb
	return cb
}

func (t *Tracker) Allow(name string) bool {
	if t == nil {
		return true
	}
	return t.Breaker(name).Allow()
}

func (t *Tracker) RecordSuccess(name string) {
	if t == nil {
		return
	}
	t.Breaker(name).RecordSuccess()
}

func (t *Tracker) RecordFailure(name string) {
	if t == nil {
		return
	}
	t.Breaker(name).RecordFailure()
}

// Release returns an unanswered trial slot to the dependency's breaker.
func (t *Tracker) Release(name string) {
	if t == nil {
		return
	}
	t.Breaker(name).Release()
}

// Snapshot returns the state of every breaker seen so far.
func (t *Tracker) Snapshot() map[string]string {
	out := make(map[string]string)
	if t == nil {
		return out
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	for name, cb := range t.breakers {
		out[name] = cb.State().String()
	}
	return out
}

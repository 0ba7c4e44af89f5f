// Package resilience provides circuit-breaking and retry middleware shared
// by the accelerated client's protocol fallback and the site providers'
// outbound API calls.
package resilience

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// BreakerState represents the circuit breaker state.
type BreakerState int

const (
	BreakerClosed   BreakerState = iota // Normal operation, calls pass through.
	BreakerOpen                         // Calls rejected immediately.
	BreakerHalfOpen                     // Calls pass as probes; halfOpenMax successes close, one failure reopens.
)

func (s BreakerState) String() string {
	switch s {
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// CircuitBreaker guards calls to one named upstream — a fetch host or a
// site provider's API — tripping open after repeated failures so a single
// bad origin cannot exhaust retries or block calls meant for every other
// origin sharing the same client. Thread-safe: all state transitions use a
// mutex. Unlike a stateless middleware, the guarded name and an optional
// logger live on the breaker itself, so every transition it logs is
// self-describing without a caller having to thread the name through each
// call.
type CircuitBreaker struct {
	mu     sync.Mutex
	name   string
	logger *slog.Logger

	state        BreakerState
	failures     int
	successes    int
	threshold    int           // failures before opening
	resetTimeout time.Duration // how long to stay open before half-open
	halfOpenMax  int           // successes in half-open before closing
	lastFailure  time.Time
	now          func() time.Time // injectable clock for testing
}

// BreakerOption configures a CircuitBreaker.
type BreakerOption func(*CircuitBreaker)

// WithBreakerThreshold sets the failure count that trips the breaker open.
func WithBreakerThreshold(n int) BreakerOption {
	return func(cb *CircuitBreaker) { cb.threshold = n }
}

// WithBreakerResetTimeout sets how long the breaker stays open before
// transitioning to half-open.
func WithBreakerResetTimeout(d time.Duration) BreakerOption {
	return func(cb *CircuitBreaker) { cb.resetTimeout = d }
}

// WithBreakerHalfOpenMax sets how many consecutive successes in half-open
// are needed to close the breaker.
func WithBreakerHalfOpenMax(n int) BreakerOption {
	return func(cb *CircuitBreaker) { cb.halfOpenMax = n }
}

// WithBreakerClock sets a custom clock function (for testing).
func WithBreakerClock(fn func() time.Time) BreakerOption {
	return func(cb *CircuitBreaker) { cb.now = fn }
}

// WithBreakerLogger attaches a logger that receives one line per state
// transition (closed→open, open→half-open, half-open→closed or →open),
// tagged with the breaker's name. A nil logger (the default) disables this.
func WithBreakerLogger(logger *slog.Logger) BreakerOption {
	return func(cb *CircuitBreaker) { cb.logger = logger }
}

// NewCircuitBreaker creates a breaker guarding calls to name, with sensible
// defaults: 5 failures to open, 30s reset timeout, 2 successes to close
// from half-open.
func NewCircuitBreaker(name string, opts ...BreakerOption) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:         name,
		state:        BreakerClosed,
		threshold:    5,
		resetTimeout: 30 * time.Second,
		halfOpenMax:  2,
		now:          time.Now,
	}
	for _, o := range opts {
		o(cb)
	}
	return cb
}

// Name returns the upstream this breaker guards.
func (cb *CircuitBreaker) Name() string { return cb.name }

// State returns the current breaker state.
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.maybeTransition()
	return cb.state
}

// Allow checks whether a call is allowed. Returns false if the breaker is
// open and the reset timeout has not elapsed.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.maybeTransition()
	return cb.state != BreakerOpen
}

// RecordSuccess records a successful call.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	switch cb.state {
	case BreakerHalfOpen:
		cb.successes++
		if cb.successes >= cb.halfOpenMax {
			cb.transitionTo(BreakerClosed)
			cb.failures = 0
			cb.successes = 0
		}
	case BreakerClosed:
		cb.failures = 0
	}
}

// RecordFailure records a failed call.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.lastFailure = cb.now()
	switch cb.state {
	case BreakerClosed:
		cb.failures++
		if cb.failures >= cb.threshold {
			cb.transitionTo(BreakerOpen)
		}
	case BreakerHalfOpen:
		cb.transitionTo(BreakerOpen)
		cb.successes = 0
	}
}

// Reset forces the breaker back to closed state.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.transitionTo(BreakerClosed)
	cb.failures = 0
	cb.successes = 0
}

// maybeTransition checks if an open breaker should move to half-open.
// Must be called with mu held.
func (cb *CircuitBreaker) maybeTransition() {
	if cb.state == BreakerOpen && cb.now().Sub(cb.lastFailure) >= cb.resetTimeout {
		cb.transitionTo(BreakerHalfOpen)
		cb.successes = 0
	}
}

// transitionTo changes state and, if a logger is attached, logs the
// transition. Must be called with mu held.
func (cb *CircuitBreaker) transitionTo(to BreakerState) {
	from := cb.state
	cb.state = to
	if cb.logger == nil || from == to {
		return
	}
	level := slog.LevelInfo
	if to == BreakerOpen {
		level = slog.LevelWarn
	}
	cb.logger.Log(context.Background(), level, "resilience: breaker transition",
		"name", cb.name, "from", from.String(), "to", to.String(), "failures", cb.failures)
}

// ErrCircuitOpen is returned by Guard when the breaker rejects a call.
type ErrCircuitOpen struct {
	Name string
}

func (e *ErrCircuitOpen) Error() string {
	return "resilience: circuit open for " + e.Name
}

// Guard runs fn only if the breaker allows it, recording the outcome under
// the breaker's own name.
func (cb *CircuitBreaker) Guard(fn func() error) error {
	if !cb.Allow() {
		return &ErrCircuitOpen{Name: cb.name}
	}
	err := fn()
	if err != nil && !errors.As(err, new(*ErrCircuitOpen)) {
		cb.RecordFailure()
	} else if err == nil {
		cb.RecordSuccess()
	}
	return err
}

// GuardContext is Guard's context-aware form; ctx is passed through purely
// so call sites can honor cancellation inside fn.
func (cb *CircuitBreaker) GuardContext(ctx context.Context, fn func(context.Context) error) error {
	return cb.Guard(func() error { return fn(ctx) })
}

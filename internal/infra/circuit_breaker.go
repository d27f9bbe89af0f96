package infra

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ── Circuit Breaker ───────────────────────────────────────────────────────────
// Closed → Open → Half-Open breaker guarding an outbound dependency (the SMTP
// relay used for budget alerts). While open every call fails fast, so the
// alert worker stops burning retries against a relay that is down.

// CBState represents the current circuit breaker state.
type CBState int

const (
	CBClosed   CBState = iota // normal, requests flow
	CBOpen                    // tripped, fast-fail all requests
	CBHalfOpen                // probing, requests allowed until the verdict
)

// String returns a human-readable state name (for health endpoints / logs).
func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned when Execute is called while the CB is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig holds tunable parameters. Zero values take defaults.
type CircuitBreakerConfig struct {
	Name             string        // used in logs and /health
	FailureThreshold int           // consecutive failures to trip open (default: 5)
	SuccessThreshold int           // consecutive successes in half-open to close (default: 2)
	OpenTimeout      time.Duration // how long to stay open before probing (default: 60s)
}

// DefaultCBConfig returns the defaults used for the SMTP notifier.
func DefaultCBConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      60 * time.Second,
	}
}

// CircuitBreaker is safe for concurrent use.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig
	now func() time.Time

	mu        sync.Mutex
	state     CBState
	failures  int
	successes int
	openedAt  time.Time
}

// NewCircuitBreaker creates a CB in Closed state.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 60 * time.Second
	}
	if cfg.Name == "" {
		cfg.Name = "default"
	}
	return &CircuitBreaker{cfg: cfg, now: time.Now, state: CBClosed}
}

func (cb *CircuitBreaker) Name() string { return cb.cfg.Name }

// State returns the current state, moving open → half-open once the open
// timeout has elapsed.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentLocked()
}

func (cb *CircuitBreaker) currentLocked() CBState {
	if cb.state == CBOpen && cb.now().Sub(cb.openedAt) >= cb.cfg.OpenTimeout {
		cb.transitionLocked(CBHalfOpen)
	}
	return cb.state
}

// Execute runs fn through the circuit breaker.
// Returns ErrCircuitOpen immediately if the CB is open.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	if cb.currentLocked() == CBOpen {
		cb.mu.Unlock()
		return ErrCircuitOpen
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.onFailureLocked()
		return err
	}
	cb.onSuccessLocked()
	return nil
}

func (cb *CircuitBreaker) onFailureLocked() {
	cb.failures++
	switch cb.state {
	case CBClosed:
		if cb.failures >= cb.cfg.FailureThreshold {
			cb.transitionLocked(CBOpen)
		}
	case CBHalfOpen:
		// probe failed
		cb.transitionLocked(CBOpen)
	}
}

func (cb *CircuitBreaker) onSuccessLocked() {
	switch cb.state {
	case CBClosed:
		cb.failures = 0
	case CBHalfOpen:
		cb.successes++
		if cb.successes >= cb.cfg.SuccessThreshold {
			cb.transitionLocked(CBClosed)
		}
	}
}

func (cb *CircuitBreaker) transitionLocked(to CBState) {
	from := cb.state
	cb.state = to
	cb.failures = 0
	cb.successes = 0
	if to == CBOpen {
		cb.openedAt = cb.now()
	}
	log.Warn().
		Str("breaker", cb.cfg.Name).
		Str("from", from.String()).
		Str("to", to.String()).
		Msg("circuit breaker state change")
}

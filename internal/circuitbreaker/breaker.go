// Package circuitbreaker implements a three-state failure guard used to stop
// hammering an API that is consistently failing.
package circuitbreaker

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State is the breaker position.
type State int

const (
	// StateClosed lets all traffic through.
	StateClosed State = iota
	// StateOpen rejects all traffic until the cool-off expires.
	StateOpen
	// StateHalfOpen lets probe traffic through to test recovery.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	return [...]string{"CLOSED", "OPEN", "HALF_OPEN"}[s]
}

// Config holds breaker thresholds.
type Config struct {
	// FailThreshold is the number of consecutive failures that opens the breaker.
	FailThreshold int
	// SuccessThreshold is the number of consecutive half-open successes that closes it.
	SuccessThreshold int
	// Timeout is the cool-off before an open breaker admits a probe.
	Timeout time.Duration
}

// Breaker is a closed/open/half-open circuit breaker.
// It is safe for concurrent use.
type Breaker struct {
	mu        sync.Mutex
	cfg       Config
	state     State
	failures  int
	successes int
	openedAt  time.Time
	logger    zerolog.Logger
}

// New creates a Breaker in the closed state.
func New(cfg Config, logger zerolog.Logger) *Breaker {
	return &Breaker{cfg: cfg, logger: logger}
}

// Allow reports whether a call may proceed. An open breaker transitions to
// half-open once the cool-off has elapsed and admits the probe.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if time.Since(b.openedAt) < b.cfg.Timeout {
			return false
		}
		b.transition(StateHalfOpen)
		return true
	default:
		return true
	}
}

// Record feeds the outcome of a completed call into the breaker.
func (b *Breaker) Record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		if success {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.cfg.FailThreshold {
			b.openedAt = time.Now()
			b.transition(StateOpen)
		}
	case StateHalfOpen:
		if !success {
			b.openedAt = time.Now()
			b.successes = 0
			b.transition(StateOpen)
			return
		}
		b.successes++
		if b.successes >= b.cfg.SuccessThreshold {
			b.failures = 0
			b.successes = 0
			b.transition(StateClosed)
		}
	}
}

// State returns the current breaker position.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset forces the breaker back to closed with cleared counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.successes = 0
	b.transition(StateClosed)
}

func (b *Breaker) transition(next State) {
	if b.state == next {
		return
	}
	b.logger.Debug().
		Str("from", b.state.String()).
		Str("to", next.String()).
		Msg("circuit breaker state change")
	b.state = next
}

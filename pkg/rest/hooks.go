package rest

import (
	"nakula/pkg/core"
)

// NeverRetry is the default retry policy: every outcome is final.
type NeverRetry struct{}

// ShouldRetry always returns false.
func (NeverRetry) ShouldRetry(_ *core.CallOutcome, _ int) bool {
	return false
}

// RetryTransient retries transport failures, internal timeouts, and 5xx
// server errors up to MaxAttempts total attempts.
type RetryTransient struct {
	// MaxAttempts is the total attempt budget, including the first.
	MaxAttempts int
}

// ShouldRetry implements core.RetryPolicy.
func (p RetryTransient) ShouldRetry(outcome *core.CallOutcome, attempt int) bool {
	if attempt >= p.MaxAttempts || outcome.Success() {
		return false
	}
	switch outcome.Error.Kind {
	case core.KindTransport, core.KindTimeout:
		return true
	case core.KindServer:
		return outcome.Error.Code >= 500 && outcome.Error.Code < 600
	default:
		return false
	}
}

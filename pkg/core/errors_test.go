package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKind_String(t *testing.T) {
	tests := []struct {
		kind     ErrorKind
		expected string
	}{
		{KindUnknown, "UNKNOWN"},
		{KindNoCredentials, "NO_CREDENTIALS"},
		{KindRateLimited, "RATE_LIMITED"},
		{KindValidation, "VALIDATION"},
		{KindServer, "SERVER"},
		{KindTransport, "TRANSPORT"},
		{KindCancelled, "CANCELLED"},
		{KindTimeout, "TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.kind.String())
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	err := NewServerError(-1021, "timestamp outside recv window")
	assert.Equal(t, "[SERVER] (-1021): timestamp outside recv window", err.Error())

	cancelled := NewCancelledError(nil)
	assert.Equal(t, "[CANCELLED]: request cancelled", cancelled.Error())
}

func TestAPIError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewTransportError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "connection refused", err.Message)
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		predicate func(error) bool
		expected  bool
	}{
		{"server error", NewServerError(500, "boom"), IsServerError, true},
		{"rate limited", NewRateLimitedError("slow down"), IsRateLimited, true},
		{"transport", NewTransportError(errors.New("dial")), IsTransportError, true},
		{"timeout", NewTimeoutError(nil), IsTimeout, true},
		{"cancelled", NewCancelledError(nil), IsCancelled, true},
		{"no credentials", NewNoCredentialsError(), IsNoCredentials, true},
		{"wrong kind", NewServerError(500, "boom"), IsRateLimited, false},
		{"plain error", errors.New("plain"), IsServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.predicate(tt.err))
		})
	}
}

func TestErrorPredicates_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("call failed: %w", NewRateLimitedError("bucket empty"))
	assert.True(t, IsRateLimited(wrapped))
	assert.ErrorIs(t, wrapped, ErrRateLimitExceeded)
}

func TestNewNoCredentialsError_Sentinel(t *testing.T) {
	err := NewNoCredentialsError()
	assert.ErrorIs(t, err, ErrNoCredentials)
	assert.Equal(t, KindNoCredentials, err.Kind)
}

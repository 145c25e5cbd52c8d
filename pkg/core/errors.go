package core

import (
	"errors"
	"fmt"
)

// ErrorKind represents the category of a request pipeline failure.
type ErrorKind int

// Error kind constants form the closed set of failure categories
// a call can produce. Every pipeline exit maps to exactly one kind.
const (
	// KindUnknown indicates an unclassified error.
	KindUnknown ErrorKind = iota
	// KindNoCredentials indicates a signed call without a configured authentication provider.
	KindNoCredentials
	// KindRateLimited indicates the call was rejected by a rate limiter before sending.
	KindRateLimited
	// KindValidation indicates an unexpected payload shape or a request construction failure.
	KindValidation
	// KindServer indicates an error reported by the remote API.
	KindServer
	// KindTransport indicates a network-level failure (connection refused, DNS, etc.).
	KindTransport
	// KindCancelled indicates the caller's cancellation signal fired.
	KindCancelled
	// KindTimeout indicates an internal deadline fired before the call completed.
	KindTimeout
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	return [...]string{
		"UNKNOWN",
		"NO_CREDENTIALS",
		"RATE_LIMITED",
		"VALIDATION",
		"SERVER",
		"TRANSPORT",
		"CANCELLED",
		"TIMEOUT",
	}[k]
}

// Sentinel errors for common error conditions.
var (
	// ErrClientClosed is returned when attempting to use a closed client.
	ErrClientClosed = errors.New("client is closed")
	// ErrNoCredentials is returned when a signed call has no authentication provider.
	ErrNoCredentials = errors.New("no credentials configured")
	// ErrCircuitBreakerOpen is returned when the circuit breaker rejects a call.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
	// ErrRateLimitExceeded is returned when a rate limiter denies admission.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// APIError is the uniform failure type produced by the request pipeline.
// It carries the failure category, the numeric code reported by the server
// (or the HTTP status when the payload omitted one), and the original cause.
type APIError struct {
	// Kind categorizes the error for programmatic handling.
	Kind ErrorKind `json:"kind"`
	// Code is the numeric error code. Always non-zero for KindServer.
	Code int `json:"code,omitempty"`
	// Message is the human-readable error description.
	Message string `json:"message"`
	// Err is the underlying cause, if any.
	Err error `json:"-"`
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("[%s] (%d): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("[%s]: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/errors.As chains.
func (e *APIError) Unwrap() error {
	return e.Err
}

// NewServerError creates a server-reported error. Code must be the numeric
// code from the payload, or the HTTP status when the payload has none.
func NewServerError(code int, message string) *APIError {
	return &APIError{Kind: KindServer, Code: code, Message: message}
}

// NewValidationError creates an error for an unexpected payload or a
// request construction failure.
func NewValidationError(message string, cause error) *APIError {
	return &APIError{Kind: KindValidation, Message: message, Err: cause}
}

// NewTransportError creates an error for a network-level failure.
func NewTransportError(cause error) *APIError {
	msg := "request failed"
	if cause != nil {
		msg = cause.Error()
	}
	return &APIError{Kind: KindTransport, Message: msg, Err: cause}
}

// NewRateLimitedError creates an error for a rate limiter rejection.
func NewRateLimitedError(message string) *APIError {
	return &APIError{Kind: KindRateLimited, Message: message, Err: ErrRateLimitExceeded}
}

// NewNoCredentialsError creates an error for a signed call without credentials.
func NewNoCredentialsError() *APIError {
	return &APIError{Kind: KindNoCredentials, Message: ErrNoCredentials.Error(), Err: ErrNoCredentials}
}

// NewCancelledError creates an error for a caller-initiated cancellation.
func NewCancelledError(cause error) *APIError {
	return &APIError{Kind: KindCancelled, Message: "request cancelled", Err: cause}
}

// NewTimeoutError creates an error for an internal deadline expiry.
func NewTimeoutError(cause error) *APIError {
	return &APIError{Kind: KindTimeout, Message: "request timed out", Err: cause}
}

// IsServerError returns true if the error is a server-reported failure.
func IsServerError(err error) bool {
	return errorIsKind(err, KindServer)
}

// IsRateLimited returns true if the error is a rate limiter rejection.
// Rate limit errors should be retried after a delay.
func IsRateLimited(err error) bool {
	return errorIsKind(err, KindRateLimited)
}

// IsTransportError returns true if the error is a network connectivity issue.
// Transport errors are typically retryable.
func IsTransportError(err error) bool {
	return errorIsKind(err, KindTransport)
}

// IsTimeout returns true if the error is an internal deadline expiry.
// Timeouts are typically retryable with a longer deadline.
func IsTimeout(err error) bool {
	return errorIsKind(err, KindTimeout)
}

// IsCancelled returns true if the error is a caller-initiated cancellation.
// Cancelled calls should not be retried.
func IsCancelled(err error) bool {
	return errorIsKind(err, KindCancelled)
}

// IsNoCredentials returns true if the error indicates missing credentials.
func IsNoCredentials(err error) bool {
	return errorIsKind(err, KindNoCredentials)
}

func errorIsKind(err error, kind ErrorKind) bool {
	var e *APIError
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

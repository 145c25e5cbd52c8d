package core

import (
	"context"
	"io"
	"time"
)

// RequestSpec is a transport-ready request produced by the request builder.
// It is owned exclusively by the pipeline for the duration of one attempt.
type RequestSpec struct {
	// ID is the process-unique request identifier.
	ID int64 `json:"id"`
	// Method is the HTTP method.
	Method string `json:"method"`
	// URL is the final target URL including query parameters.
	URL string `json:"url"`
	// Headers are the outgoing headers.
	Headers map[string]string `json:"headers,omitempty"`
	// Body is the serialized request body, empty for body-less requests.
	Body string `json:"body,omitempty"`
}

// TransportResponse is the raw result of one network send.
// Body must be closed by the consumer on every path.
type TransportResponse struct {
	// StatusCode is the HTTP status code returned by the server.
	StatusCode int
	// Headers contains the response headers flattened to single values.
	Headers map[string]string
	// Body is the readable response body stream.
	Body io.ReadCloser
}

// Transport executes transport-ready requests. Implementations must honor
// context cancellation and return network-level failures as plain errors.
type Transport interface {
	// Do sends the request and returns the raw response.
	Do(ctx context.Context, spec *RequestSpec) (*TransportResponse, error)

	// Close releases transport resources.
	Close() error
}

// AuthenticationProvider attaches authentication material to a request.
// Given the full parameter set it returns the final URI parameters, body
// parameters, and headers to use. The pipeline enforces that every original
// parameter key appears in exactly one of the two returned parameter sets.
type AuthenticationProvider interface {
	// Sign processes the request parameters for authentication. rawURL is the
	// target URL with the URI parameters already appended so the provider sees
	// the complete parameter set.
	Sign(method, rawURL string, uriParams, bodyParams Params, signed bool,
		arraySerialization ArraySerialization, position ParameterPosition,
	) (uri Params, body Params, headers map[string]string, err error)

	// KeyID returns the public credential identifier, used to key rate limits.
	KeyID() string
}

// RateLimitBehavior selects what a limiter does when the budget is exhausted.
type RateLimitBehavior int

const (
	// BehaviorFail rejects the call immediately when the budget is exhausted.
	BehaviorFail RateLimitBehavior = iota
	// BehaviorWait delays the call until budget is available or the context fires.
	BehaviorWait
)

// String returns the string representation of the behavior.
func (b RateLimitBehavior) String() string {
	return [...]string{"FAIL", "WAIT"}[b]
}

// Admission describes one proposed request to a rate limiter.
type Admission struct {
	// Path is the endpoint path being called.
	Path string
	// Method is the HTTP method.
	Method string
	// Signed reports whether the call carries authentication.
	Signed bool
	// KeyID identifies the credentials in use, empty for public calls.
	KeyID string
	// Behavior selects fail-fast or wait semantics on an exhausted budget.
	Behavior RateLimitBehavior
	// Weight is the cost of the call in budget units, at least 1.
	Weight int
}

// RateLimiter admits or rejects proposed requests. An error return means the
// call must not proceed; context errors are passed through unchanged.
type RateLimiter interface {
	Admit(ctx context.Context, admission Admission) error
}

// Serializer is the JSON engine seam used by the pipeline.
type Serializer interface {
	// Marshal encodes a value to bytes.
	Marshal(v any) ([]byte, error)
	// Unmarshal decodes buffered bytes into v.
	Unmarshal(data []byte, v any) error
	// Decode reads directly from a stream into v without buffering.
	Decode(r io.Reader, v any) error
}

// ErrorParser detects logical errors hidden inside HTTP 200 responses.
// It is consulted only when the client's manual error parsing is enabled.
type ErrorParser interface {
	// TryParse returns the error embedded in the body, or nil when the body
	// represents a successful response.
	TryParse(body []byte) *APIError
}

// ErrorResponseParser extracts a structured error from a non-success response.
type ErrorResponseParser interface {
	// Parse builds an APIError from the status code and the full body.
	Parse(statusCode int, body []byte) *APIError
}

// RetryPolicy decides whether a finished attempt should be retried.
// It is invoked on every outcome, success included, and is responsible for
// bounding the number of attempts.
type RetryPolicy interface {
	ShouldRetry(outcome *CallOutcome, attempt int) bool
}

// ServerTimeProvider fetches the remote server's current timestamp.
// Used by the time sync coordinator to estimate clock offset.
type ServerTimeProvider interface {
	ServerTime(ctx context.Context) (time.Time, error)
}

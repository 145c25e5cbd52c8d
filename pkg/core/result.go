package core

import (
	"time"
)

// ResponseMeta captures diagnostics about one executed HTTP call.
// It is attached to a Result whenever a response was received, even on
// failure, so callers can inspect what actually went over the wire.
type ResponseMeta struct {
	// StatusCode is the HTTP status code returned by the server.
	StatusCode int `json:"status_code"`
	// Headers contains the response headers as key-value pairs.
	Headers map[string]string `json:"headers,omitempty"`
	// Latency is the wall-clock time spent on the network round trip.
	Latency time.Duration `json:"latency"`
	// RawBody is the response body text. Only retained when the client's
	// OutputRawData option is enabled.
	RawBody string `json:"raw_body,omitempty"`
	// URL is the final request URL including query parameters.
	URL string `json:"url"`
	// Method is the HTTP method used.
	Method string `json:"method"`
	// RequestBody is the outgoing body that was sent.
	RequestBody string `json:"request_body,omitempty"`
	// RequestHeaders are the outgoing headers that were sent.
	RequestHeaders map[string]string `json:"request_headers,omitempty"`
}

// Result is the universal return type of every pipeline operation: either a
// deserialized payload or an APIError, plus response metadata when available.
type Result[T any] struct {
	// Data is the deserialized payload. Only meaningful when Success is true.
	Data T `json:"data"`
	// Error holds the failure, nil on success.
	Error *APIError `json:"error,omitempty"`
	// Response carries diagnostics when a response was received.
	Response *ResponseMeta `json:"response,omitempty"`
}

// CallResult is the payload-less result shape used by Client.Call.
type CallResult = Result[struct{}]

// Ok creates a successful result carrying data and optional metadata.
func Ok[T any](data T, meta *ResponseMeta) *Result[T] {
	return &Result[T]{Data: data, Response: meta}
}

// Fail creates a failed result carrying the error and optional metadata.
func Fail[T any](err *APIError, meta *ResponseMeta) *Result[T] {
	return &Result[T]{Error: err, Response: meta}
}

// Success returns true if the call produced no error.
func (r *Result[T]) Success() bool {
	return r.Error == nil
}

// Outcome returns the type-erased view of the result used by retry policies.
func (r *Result[T]) Outcome() *CallOutcome {
	return &CallOutcome{Error: r.Error, Response: r.Response}
}

// CallOutcome is the payload-independent view of a Result handed to the
// retry-decision hook after every attempt, success included.
type CallOutcome struct {
	Error    *APIError
	Response *ResponseMeta
}

// Success returns true if the attempt produced no error.
func (o *CallOutcome) Success() bool {
	return o.Error == nil
}

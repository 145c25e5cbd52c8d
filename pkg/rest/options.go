package rest

import (
	"nakula/pkg/core"
)

// callOptions holds the per-call knobs resolved before an attempt runs.
type callOptions struct {
	params             core.Params
	signed             bool
	position           *core.ParameterPosition
	arraySerialization *core.ArraySerialization
	weight             int
	headers            map[string]string
	ignoreRateLimit    bool
	expectEmptyBody    bool
	deserializer       core.Serializer
}

// CallOption configures one call.
type CallOption func(*callOptions)

func newCallOptions(opts []CallOption) *callOptions {
	o := &callOptions{weight: 1}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithParams sets the call parameters.
func WithParams(params core.Params) CallOption {
	return func(o *callOptions) { o.params = params }
}

// WithSigned marks the call as requiring authentication.
func WithSigned() CallOption {
	return func(o *callOptions) { o.signed = true }
}

// WithParameterPosition overrides the per-method default parameter placement.
func WithParameterPosition(pos core.ParameterPosition) CallOption {
	return func(o *callOptions) { o.position = &pos }
}

// WithArraySerialization overrides the client's array serialization mode.
func WithArraySerialization(mode core.ArraySerialization) CallOption {
	return func(o *callOptions) { o.arraySerialization = &mode }
}

// WithWeight overrides the rate limit cost of the call. Defaults to 1.
func WithWeight(weight int) CallOption {
	return func(o *callOptions) { o.weight = weight }
}

// WithHeaders adds caller-supplied headers. They override provider headers
// and are never overridden by client-standard headers.
func WithHeaders(headers map[string]string) CallOption {
	return func(o *callOptions) { o.headers = headers }
}

// WithIgnoreRateLimit bypasses the rate limit gate for this call.
func WithIgnoreRateLimit() CallOption {
	return func(o *callOptions) { o.ignoreRateLimit = true }
}

// WithExpectEmptyBody marks the call as one whose successful response carries
// no payload.
func WithExpectEmptyBody() CallOption {
	return func(o *callOptions) { o.expectEmptyBody = true }
}

// WithBody expects a payload on a Call result. Calls made through
// Client.Call expect an empty body by default; this reverses that.
func WithBody() CallOption {
	return func(o *callOptions) { o.expectEmptyBody = false }
}

// WithDeserializer overrides the serializer used to decode this call's
// response payload.
func WithDeserializer(s core.Serializer) CallOption {
	return func(o *callOptions) { o.deserializer = s }
}

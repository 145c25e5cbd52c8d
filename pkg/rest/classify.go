package rest

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"time"

	"nakula/pkg/core"
)

// sendAndClassify executes the transport send and turns the raw outcome into
// a typed Result. The body stream is released on every exit path.
func sendAndClassify[T any](ctx context.Context, c *Client, spec *core.RequestSpec, o *callOptions) *core.Result[T] {
	start := time.Now()
	resp, err := c.transport.Do(ctx, spec)
	latency := time.Since(start)

	if err != nil {
		if c.breaker != nil {
			c.breaker.Record(false)
		}
		return core.Fail[T](classifySendError(ctx, err), nil)
	}
	defer resp.Body.Close()

	meta := &core.ResponseMeta{
		StatusCode:     resp.StatusCode,
		Headers:        resp.Headers,
		Latency:        latency,
		URL:            spec.URL,
		Method:         spec.Method,
		RequestBody:    spec.Body,
		RequestHeaders: spec.Headers,
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if c.breaker != nil {
			c.breaker.Record(false)
		}
		return classifyErrorStatus[T](c, resp, meta)
	}

	serializer := c.serializer
	if o.deserializer != nil {
		serializer = o.deserializer
	}

	// The breaker sees the classified outcome, not the raw status, so errors
	// reported inside 200 bodies still count as failures.
	var res *core.Result[T]
	if c.config.ManualParseError {
		res = classifyManual[T](c, resp, meta, o, serializer)
	} else {
		res = classifyDirect[T](c, resp, meta, o, serializer)
	}
	if c.breaker != nil {
		c.breaker.Record(res.Success())
	}
	return res
}

// classifyErrorStatus handles non-success HTTP statuses: the body is read in
// full, the error-response hook extracts a structured error where possible,
// and the HTTP status substitutes for a missing numeric code.
func classifyErrorStatus[T any](c *Client, resp *core.TransportResponse, meta *core.ResponseMeta) *core.Result[T] {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.Fail[T](core.NewTransportError(err), meta)
	}
	if c.config.OutputRawData {
		meta.RawBody = string(body)
	}

	apiErr := c.parseErrorResponse(resp.StatusCode, body)
	if apiErr == nil {
		apiErr = core.NewServerError(resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if apiErr.Code == 0 {
		apiErr.Code = resp.StatusCode
	}
	return core.Fail[T](apiErr, meta)
}

// classifyManual handles success statuses for APIs that signal errors inside
// HTTP 200 bodies: the full body is read, parsed, and checked through the
// error-detection hook before the payload is deserialized.
func classifyManual[T any](c *Client, resp *core.TransportResponse, meta *core.ResponseMeta, o *callOptions, serializer core.Serializer) *core.Result[T] {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.Fail[T](core.NewTransportError(err), meta)
	}
	if c.config.OutputRawData {
		meta.RawBody = string(body)
	}

	var zero T
	if strings.TrimSpace(string(body)) == "" {
		if o.expectEmptyBody {
			return core.Ok(zero, meta)
		}
		return core.Fail[T](core.NewValidationError("empty response body", nil), meta)
	}

	var probe any
	if err := serializer.Unmarshal(body, &probe); err != nil {
		return core.Fail[T](core.NewValidationError("unexpected response format", err), meta)
	}

	if c.errorParser != nil {
		if apiErr := c.errorParser.TryParse(body); apiErr != nil {
			if apiErr.Kind == core.KindServer && apiErr.Code == 0 {
				apiErr.Code = resp.StatusCode
			}
			return core.Fail[T](apiErr, meta)
		}
	}

	if o.expectEmptyBody {
		return core.Ok(zero, meta)
	}

	var data T
	if err := serializer.Unmarshal(body, &data); err != nil {
		return core.Fail[T](core.NewValidationError("deserialize response", err), meta)
	}
	return core.Ok(data, meta)
}

// classifyDirect handles success statuses for APIs where the status can be
// trusted: the payload is decoded straight from the response stream without
// an intermediate text stage.
func classifyDirect[T any](c *Client, resp *core.TransportResponse, meta *core.ResponseMeta, o *callOptions, serializer core.Serializer) *core.Result[T] {
	var zero T
	if o.expectEmptyBody {
		return core.Ok(zero, meta)
	}

	if c.config.OutputRawData {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return core.Fail[T](core.NewTransportError(err), meta)
		}
		meta.RawBody = string(body)

		var data T
		if err := serializer.Unmarshal(body, &data); err != nil {
			return core.Fail[T](core.NewValidationError("deserialize response", err), meta)
		}
		return core.Ok(data, meta)
	}

	var data T
	if err := serializer.Decode(resp.Body, &data); err != nil {
		return core.Fail[T](core.NewValidationError("deserialize response", err), meta)
	}
	return core.Ok(data, meta)
}

// classifySendError maps transport-level failures onto the error taxonomy.
// A fired caller context yields Cancelled; an internal deadline yields Timeout.
func classifySendError(ctx context.Context, err error) *core.APIError {
	if errors.Is(err, core.ErrClientClosed) {
		return core.NewTransportError(core.ErrClientClosed)
	}
	if ctx.Err() != nil {
		return core.NewCancelledError(ctx.Err())
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return core.NewTimeoutError(err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return core.NewTimeoutError(err)
	}
	return core.NewTransportError(err)
}

// serverErrorPayload is the generic error envelope probed by the default
// error-response parsing.
type serverErrorPayload struct {
	Code    int    `json:"code"`
	Msg     string `json:"msg"`
	Message string `json:"message"`
}

func (c *Client) parseErrorResponse(statusCode int, body []byte) *core.APIError {
	if c.errorResponseParser != nil {
		return c.errorResponseParser.Parse(statusCode, body)
	}

	var payload serverErrorPayload
	if err := c.serializer.Unmarshal(body, &payload); err == nil {
		message := payload.Msg
		if message == "" {
			message = payload.Message
		}
		if payload.Code != 0 || message != "" {
			if message == "" {
				message = strings.TrimSpace(string(body))
			}
			return core.NewServerError(payload.Code, message)
		}
	}
	return core.NewServerError(statusCode, strings.TrimSpace(string(body)))
}

package rest

import (
	"context"
	"errors"

	"nakula/pkg/core"
)

// Call executes a request where the payload, if any, is ignored.
// The result carries only success/failure plus response metadata.
func (c *Client) Call(ctx context.Context, method, uri string, opts ...CallOption) *core.CallResult {
	o := &callOptions{weight: 1, expectEmptyBody: true}
	for _, opt := range opts {
		opt(o)
	}
	return run[struct{}](ctx, c, method, uri, o)
}

// Request executes a request and deserializes the response payload into T.
func Request[T any](ctx context.Context, c *Client, method, uri string, opts ...CallOption) *core.Result[T] {
	return run[T](ctx, c, method, uri, newCallOptions(opts))
}

// run is the retry orchestrator. The retry-decision hook sees every outcome,
// success included, and is responsible for bounding attempts; the loop
// enforces no implicit maximum.
func run[T any](ctx context.Context, c *Client, method, uri string, o *callOptions) *core.Result[T] {
	attempt := 1
	for {
		res := attemptCall[T](ctx, c, method, uri, o)
		if !c.retryPolicy.ShouldRetry(res.Outcome(), attempt) {
			return res
		}
		c.logger.Warn().
			Int("attempt", attempt).
			Str("method", method).
			Str("uri", uri).
			Msg("retrying request")
		attempt++
	}
}

// attemptCall runs one pass of the pipeline: circuit breaker, time sync,
// rate limit gate, credential check, build, send, classify.
func attemptCall[T any](ctx context.Context, c *Client, method, uri string, o *callOptions) *core.Result[T] {
	if c.isClosed() {
		return core.Fail[T](core.NewTransportError(core.ErrClientClosed), nil)
	}

	if c.breaker != nil && !c.breaker.Allow() {
		return core.Fail[T](core.NewServerError(503, core.ErrCircuitBreakerOpen.Error()), nil)
	}

	// Signed calls trigger a time sync. Until the first sync has completed a
	// signed call blocks on it, so no request is ever signed with an unset
	// offset; afterwards calls tolerate a stale-but-present offset and let
	// the sync run detached. The double round trip is reserved for the very
	// first request made on this client, where the connection is cold.
	if o.signed && c.timeSync != nil {
		if !c.timeSync.Synced() {
			if syncRes := c.timeSync.Sync(ctx, c.requestCounter.Load() == 0); !syncRes.Success() {
				return core.Fail[T](syncRes.Error, nil)
			}
		} else {
			go c.timeSync.Sync(context.WithoutCancel(ctx), false)
		}
	}

	// Admission runs strictly before signing so rejected calls never incur
	// signing cost. The first limiter to reject short-circuits.
	if !o.ignoreRateLimit {
		admission := core.Admission{
			Path:     uri,
			Method:   method,
			Signed:   o.signed,
			KeyID:    c.credentialKey(),
			Behavior: c.config.RateLimitBehavior,
			Weight:   o.weight,
		}
		for _, limiter := range c.limiters {
			if err := limiter.Admit(ctx, admission); err != nil {
				return core.Fail[T](classifyAdmissionError(ctx, err), nil)
			}
		}
	}

	if o.signed && c.auth == nil {
		return core.Fail[T](core.NewNoCredentialsError(), nil)
	}

	position := c.config.PositionFor(method)
	if o.position != nil {
		position = *o.position
	}
	arraySerialization := c.config.ArraySerialization
	if o.arraySerialization != nil {
		arraySerialization = *o.arraySerialization
	}

	spec, apiErr := c.buildRequest(method, uri, o, position, arraySerialization, c.idCounter.Add(1))
	if apiErr != nil {
		return core.Fail[T](apiErr, nil)
	}
	c.requestCounter.Add(1)

	return sendAndClassify[T](ctx, c, spec, o)
}

func classifyAdmissionError(ctx context.Context, err error) *core.APIError {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		if ctx.Err() != nil {
			return core.NewCancelledError(ctx.Err())
		}
		return core.NewTimeoutError(err)
	}
	return core.NewRateLimitedError(err.Error())
}

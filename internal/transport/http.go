// Package transport provides the default HTTP transport for the request
// pipeline, built on resty.
package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"resty.dev/v3"

	"nakula/pkg/core"
)

// HTTPTransport is the default core.Transport. It sends transport-ready
// requests produced by the builder and hands back the raw status, headers,
// and body stream without interpreting them.
type HTTPTransport struct {
	client *resty.Client
	logger zerolog.Logger
	mu     sync.RWMutex
	closed bool
}

// New creates an HTTPTransport with the given attempt timeout.
func New(timeout time.Duration, logger zerolog.Logger) *HTTPTransport {
	client := resty.New()
	client.SetTimeout(timeout)

	client.AddRequestMiddleware(func(_ *resty.Client, req *resty.Request) error {
		logger.Debug().
			Str("method", req.Method).
			Str("url", req.URL).
			Msg("http request")
		return nil
	})

	client.AddResponseMiddleware(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug().
			Str("method", resp.Request.Method).
			Str("url", resp.Request.URL).
			Int("status", resp.StatusCode()).
			Msg("http response")
		return nil
	})

	return &HTTPTransport{
		client: client,
		logger: logger,
	}
}

// Do implements core.Transport. The response body is returned as a stream;
// the caller owns closing it on every path.
func (t *HTTPTransport) Do(ctx context.Context, spec *core.RequestSpec) (*core.TransportResponse, error) {
	t.mu.RLock()
	if t.closed {
		t.mu.RUnlock()
		return nil, core.ErrClientClosed
	}
	t.mu.RUnlock()

	req := t.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)

	for k, v := range spec.Headers {
		req.SetHeader(k, v)
	}

	if spec.Body != "" {
		req.SetBody(spec.Body)
	}

	resp, err := req.Execute(spec.Method, spec.URL)
	if err != nil {
		t.logger.Debug().Err(err).
			Int64("request_id", spec.ID).
			Str("method", spec.Method).
			Str("url", spec.URL).
			Msg("http send failed")
		return nil, fmt.Errorf("http request: %w", err)
	}

	headers := make(map[string]string)
	for k, v := range resp.Header() {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	return &core.TransportResponse{
		StatusCode: resp.StatusCode(),
		Headers:    headers,
		Body:       resp.Body,
	}, nil
}

// Close releases the underlying HTTP client resources.
func (t *HTTPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	return t.client.Close()
}

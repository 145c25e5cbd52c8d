// Package rest implements the resilient request pipeline shared by all REST
// API connectors: request construction, clock-skew correction, rate-limit
// admission, signing delegation, response classification, and retry.
package rest

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"nakula/internal/circuitbreaker"
	"nakula/internal/ratelimit"
	"nakula/internal/transport"
	"nakula/pkg/core"
	"nakula/pkg/timesync"
)

// Client executes outbound HTTP calls against one API. It owns the full
// lifecycle of a call and translates every failure mode into a typed Result.
// Clients are safe for concurrent use.
type Client struct {
	config     *core.ClientConfig
	logger     zerolog.Logger
	transport  core.Transport
	serializer core.Serializer

	auth     core.AuthenticationProvider
	limiters []core.RateLimiter
	breaker  *circuitbreaker.Breaker
	timeSync *timesync.Coordinator

	errorParser         core.ErrorParser
	errorResponseParser core.ErrorResponseParser
	retryPolicy         core.RetryPolicy
	serverTime          core.ServerTimeProvider

	// idCounter issues process-unique request identifiers. requestCounter
	// counts successfully built requests; it drives first-request detection
	// for time sync and the TotalRequestsMade accessor.
	idCounter      atomic.Int64
	requestCounter atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithTransport replaces the default HTTP transport.
func WithTransport(t core.Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithSerializer replaces the default sonic serializer.
func WithSerializer(s core.Serializer) Option {
	return func(c *Client) { c.serializer = s }
}

// WithAuthProvider sets the authentication provider used for signed calls.
func WithAuthProvider(p core.AuthenticationProvider) Option {
	return func(c *Client) { c.auth = p }
}

// WithRateLimiters sets the ordered rate limiters consulted before each call.
// Replaces the default gate derived from the config.
func WithRateLimiters(limiters ...core.RateLimiter) Option {
	return func(c *Client) { c.limiters = limiters }
}

// WithRetryPolicy sets the retry-decision hook. The default never retries.
func WithRetryPolicy(p core.RetryPolicy) Option {
	return func(c *Client) { c.retryPolicy = p }
}

// WithErrorParser sets the hook that detects errors hidden in 200 responses.
// Only consulted when the config enables manual error parsing.
func WithErrorParser(p core.ErrorParser) Option {
	return func(c *Client) { c.errorParser = p }
}

// WithErrorResponseParser sets the hook that extracts structured errors from
// non-success responses.
func WithErrorResponseParser(p core.ErrorResponseParser) Option {
	return func(c *Client) { c.errorResponseParser = p }
}

// WithServerTime sets the server timestamp hook used by time sync.
func WithServerTime(p core.ServerTimeProvider) Option {
	return func(c *Client) { c.serverTime = p }
}

// WithLogger replaces the default logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a Client with the provided configuration.
// The configuration is validated before the client is created.
func New(config *core.ClientConfig, opts ...Option) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	logger := zerolog.Nop()
	if config.LogLevel != "" {
		level, err := zerolog.ParseLevel(config.LogLevel)
		if err != nil {
			level = zerolog.InfoLevel
		}
		logger = zerolog.New(os.Stderr).With().
			Timestamp().
			Str("client", config.Name).
			Logger().Level(level)
	}

	c := &Client{
		config: config,
		logger: logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.serializer == nil {
		c.serializer = core.SonicSerializer{}
	}
	if c.transport == nil {
		c.transport = transport.New(config.Timeout, c.logger)
	}
	if c.retryPolicy == nil {
		c.retryPolicy = NeverRetry{}
	}
	if c.limiters == nil && config.RateLimitRequests > 0 {
		c.limiters = []core.RateLimiter{ratelimit.New(config.RateLimitRequests, config.RateLimitPeriod)}
	}
	if config.CircuitBreakerEnabled {
		c.breaker = circuitbreaker.New(circuitbreaker.Config{
			FailThreshold:    config.CircuitBreakerFailThreshold,
			SuccessThreshold: config.CircuitBreakerSuccessThreshold,
			Timeout:          config.CircuitBreakerTimeout,
		}, c.logger)
	}
	if config.TimeSyncEnabled && c.serverTime != nil {
		c.timeSync = timesync.New(c.serverTime, config.TimeSyncInterval, c.logger)
	}

	return c, nil
}

// Close shuts down the client and its transport.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	return c.transport.Close()
}

// TotalRequestsMade returns the number of requests built by this client.
func (c *Client) TotalRequestsMade() int64 {
	return c.requestCounter.Load()
}

// TimeSync returns the client's time sync coordinator, nil when time sync is
// not configured. Authentication providers use it for corrected timestamps.
func (c *Client) TimeSync() *timesync.Coordinator {
	return c.timeSync
}

// Config returns the configuration the client was created with.
func (c *Client) Config() *core.ClientConfig {
	return c.config
}

func (c *Client) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func (c *Client) credentialKey() string {
	if c.auth == nil {
		return ""
	}
	return c.auth.KeyID()
}

package core

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
)

// Credentials holds API authentication material for a connector.
type Credentials struct {
	// APIKey is the public API key identifier.
	APIKey string `json:"api_key"`
	// SecretKey is the private key used for signing requests.
	SecretKey string `json:"secret_key"`
	// Passphrase is an optional additional credential required by some APIs.
	Passphrase string `json:"passphrase,omitempty"`
}

// String renders the credentials with the key masked, safe for logging.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{APIKey:%s}", maskKey(c.APIKey))
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

// ClientConfig contains all configuration options for a REST client.
// It covers networking, parameter placement, response parsing policy,
// rate limiting, time sync, and circuit breaker settings.
type ClientConfig struct {
	// Name identifies the target API, used in logs.
	Name    string `json:"name" validate:"required"`
	BaseURL string `json:"base_url" validate:"required,url"`

	// Timeout is the maximum duration for one HTTP attempt.
	Timeout time.Duration `json:"timeout" validate:"min=1ms"`

	// StandardHeaders are sent with every request unless the caller supplies
	// a header with the same name.
	StandardHeaders map[string]string `json:"standard_headers,omitempty"`

	// OutputRawData retains the raw response body text on result metadata.
	OutputRawData bool `json:"output_raw_data"`

	// ManualParseError marks APIs that signal errors inside HTTP 200 bodies.
	// When set, every success-status body is parsed and checked for an
	// embedded error before deserialization.
	ManualParseError bool `json:"manual_parse_error"`

	// ParameterPositions overrides parameter placement per HTTP method.
	// Methods not listed use the built-in defaults (GET/DELETE in URI,
	// POST/PUT/PATCH in body).
	ParameterPositions map[string]ParameterPosition `json:"parameter_positions,omitempty"`

	ArraySerialization ArraySerialization `json:"array_serialization"`
	BodyFormat         BodyFormat         `json:"body_format"`

	// EmptyBodyContent is sent when parameters belong in the body but none
	// exist, so content type is never omitted.
	EmptyBodyContent string `json:"empty_body_content"`

	// TimeSyncEnabled turns on clock offset correction for signed requests.
	TimeSyncEnabled bool `json:"time_sync_enabled"`
	// TimeSyncInterval is the minimum period between offset recalculations.
	TimeSyncInterval time.Duration `json:"time_sync_interval" validate:"min=0"`

	// RateLimitRequests and RateLimitPeriod configure the default admission
	// gate. A zero request count disables the default gate.
	RateLimitRequests int               `json:"rate_limit_requests" validate:"min=0"`
	RateLimitPeriod   time.Duration     `json:"rate_limit_period" validate:"min=0"`
	RateLimitBehavior RateLimitBehavior `json:"rate_limit_behavior"`

	CircuitBreakerEnabled          bool          `json:"circuit_breaker_enabled"`
	CircuitBreakerFailThreshold    int           `json:"circuit_breaker_fail_threshold"`
	CircuitBreakerSuccessThreshold int           `json:"circuit_breaker_success_threshold"`
	CircuitBreakerTimeout          time.Duration `json:"circuit_breaker_timeout"`

	LogLevel string `json:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// DefaultConfig returns a ClientConfig initialized with sensible defaults for
// the named API. Default values: 10s timeout, JSON body format, "{}" empty
// body, 1h time sync interval, 1200 req/min rate limit, circuit breaker off.
func DefaultConfig(name, baseURL string) *ClientConfig {
	return &ClientConfig{
		Name:    name,
		BaseURL: baseURL,
		Timeout: 10 * time.Second,

		ArraySerialization: ArrayMultipleValues,
		BodyFormat:         BodyFormatJSON,
		EmptyBodyContent:   "{}",

		TimeSyncInterval: time.Hour,

		RateLimitRequests: 1200,
		RateLimitPeriod:   time.Minute,
		RateLimitBehavior: BehaviorWait,

		CircuitBreakerFailThreshold:    5,
		CircuitBreakerSuccessThreshold: 2,
		CircuitBreakerTimeout:          30 * time.Second,

		LogLevel: "info",
	}
}

var validate = validator.New()

// Validate checks the configuration for structural errors.
func (c *ClientConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.TimeSyncEnabled && c.TimeSyncInterval <= 0 {
		return fmt.Errorf("TimeSyncInterval must be positive when time sync is enabled")
	}
	if c.RateLimitRequests > 0 && c.RateLimitPeriod <= 0 {
		return fmt.Errorf("RateLimitPeriod must be positive when rate limiting is enabled")
	}
	if c.CircuitBreakerEnabled {
		if c.CircuitBreakerFailThreshold <= 0 {
			return fmt.Errorf("CircuitBreakerFailThreshold must be positive when enabled")
		}
		if c.CircuitBreakerSuccessThreshold <= 0 {
			return fmt.Errorf("CircuitBreakerSuccessThreshold must be positive when enabled")
		}
		if c.CircuitBreakerTimeout <= 0 {
			return fmt.Errorf("CircuitBreakerTimeout must be positive when enabled")
		}
	}
	return nil
}

// PositionFor resolves the default parameter position for an HTTP method.
func (c *ClientConfig) PositionFor(method string) ParameterPosition {
	if pos, ok := c.ParameterPositions[method]; ok {
		return pos
	}
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return PositionInBody
	default:
		return PositionInURI
	}
}

// WithTimeout sets the request timeout and returns the config for chaining.
func (c *ClientConfig) WithTimeout(timeout time.Duration) *ClientConfig {
	c.Timeout = timeout
	return c
}

// WithManualParseError marks the API as one that hides errors inside HTTP 200
// responses and returns the config for chaining.
func (c *ClientConfig) WithManualParseError() *ClientConfig {
	c.ManualParseError = true
	return c
}

// WithRateLimit sets the default gate's budget and returns the config for chaining.
func (c *ClientConfig) WithRateLimit(requests int, period time.Duration) *ClientConfig {
	c.RateLimitRequests = requests
	c.RateLimitPeriod = period
	return c
}

// WithTimeSync enables clock offset correction with the given recalculation
// interval and returns the config for chaining.
func (c *ClientConfig) WithTimeSync(interval time.Duration) *ClientConfig {
	c.TimeSyncEnabled = true
	c.TimeSyncInterval = interval
	return c
}

// WithCircuitBreaker enables the failure guard and returns the config for chaining.
func (c *ClientConfig) WithCircuitBreaker(failThreshold, successThreshold int, timeout time.Duration) *ClientConfig {
	c.CircuitBreakerEnabled = true
	c.CircuitBreakerFailThreshold = failThreshold
	c.CircuitBreakerSuccessThreshold = successThreshold
	c.CircuitBreakerTimeout = timeout
	return c
}

// WithOutputRawData retains raw body text on result metadata and returns the
// config for chaining.
func (c *ClientConfig) WithOutputRawData() *ClientConfig {
	c.OutputRawData = true
	return c
}

// Package client provides the HTTP core for the Faker API: request
// execution with a fixed per-request timeout, transient-status retry
// with exponential backoff, and error classification.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"personapipe/pkg/logging"
)

// Prometheus metrics for Faker API requests.
var (
	fakerRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "faker_requests_total",
		Help: "Total Faker API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	fakerRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "faker_request_duration_seconds",
		Help:    "Faker API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"endpoint"})

	fakerErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "faker_errors_total",
		Help: "Total Faker API errors by class",
	}, []string{"class"})
)

// DefaultBaseURL is the Faker API root.
const DefaultBaseURL = "https://fakerapi.it/api/v2"

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API root without a trailing slash.
	BaseURL string

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout is the fixed per-request timeout, covering the full
	// request/response cycle of a single attempt.
	Timeout time.Duration

	// Retry is the transient-failure retry policy.
	Retry RetryConfig
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: "personapipe/0.1.0",
		Timeout:   30 * time.Second,
		Retry:     DefaultRetryConfig(),
	}
}

// Client is the Faker API HTTP client. It is safe for concurrent use
// by multiple workers; the underlying http.Client pools connections
// and the client holds no per-call mutable state.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// New creates a new Faker API client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logging.NewLogger("faker-client"),
	}, nil
}

// Get performs a GET request against an API endpoint with the given
// query parameters, retrying transient failures per the retry policy.
// Terminal HTTP error statuses and exhausted retries return an error;
// the caller owns the response body on success.
func (c *Client) Get(ctx context.Context, endpoint string, query url.Values) (*http.Response, error) {
	requestURL := c.config.BaseURL + endpoint
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	startTime := time.Now()
	defer func() {
		fakerRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	var resp *http.Response

	retryErr := retryWithBackoff(ctx, c.config.Retry, c.logger, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.config.UserAgent)
		req.Header.Set("Accept", "application/json")

		r, reqErr := c.httpClient.Do(req)
		if reqErr != nil {
			c.logger.Warn().Err(reqErr).Str("endpoint", endpoint).Msg("HTTP request failed")
			fakerErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			fakerRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			return &FakerError{ErrorClass: ErrorClassNetwork, Message: "request failed", Err: reqErr}
		}

		if r.StatusCode >= 400 {
			class := classifyStatus(r.StatusCode)
			fakerErrorsTotal.WithLabelValues(string(class)).Inc()
			fakerRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", r.StatusCode)).Inc()

			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status_code", r.StatusCode).
				Str("error_class", string(class)).
				Msg("Faker API request error")

			r.Body.Close()
			return &FakerError{
				StatusCode: r.StatusCode,
				ErrorClass: class,
				Message:    r.Status,
			}
		}

		fakerRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", r.StatusCode)).Inc()
		resp = r
		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	return resp, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

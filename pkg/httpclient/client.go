// Package httpclient provides the outbound HTTP transport used by the
// remote update adapters.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-logr/logr"
)

const (
	// DefaultTimeout is the default timeout for a single HTTP request
	DefaultTimeout = 10 * time.Second

	// DefaultMaxTries is the number of attempts made for transient failures
	DefaultMaxTries = 3

	// MaxResponseSize is the maximum allowed response size (10MB)
	MaxResponseSize = 10 * 1024 * 1024

	// UserAgent is the user agent string for HTTP requests
	UserAgent = "pkgupdate/1.0"
)

// Client is an interface for HTTP operations
type Client interface {
	// Get performs an HTTP GET request and returns the response body.
	// Headers in header are added to the request and override the defaults.
	Get(ctx context.Context, url string, header http.Header) ([]byte, error)
}

// Option configures a DefaultClient
type Option func(*DefaultClient)

// WithMaxTries sets how many attempts are made before giving up
func WithMaxTries(n uint) Option {
	return func(c *DefaultClient) {
		if n > 0 {
			c.maxTries = n
		}
	}
}

// WithInitialInterval sets the first retry delay of the exponential backoff
func WithInitialInterval(d time.Duration) Option {
	return func(c *DefaultClient) {
		c.initialInterval = d
	}
}

// WithLogger sets the logger used to report retries
func WithLogger(logger logr.Logger) Option {
	return func(c *DefaultClient) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the underlying *http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *DefaultClient) {
		c.client = hc
	}
}

// DefaultClient is the default HTTP client implementation
type DefaultClient struct {
	client          *http.Client
	maxTries        uint
	initialInterval time.Duration
	logger          logr.Logger
}

var _ Client = &DefaultClient{}

// NewDefaultClient creates a new default HTTP client with the specified timeout.
// If timeout is 0, uses DefaultTimeout.
func NewDefaultClient(timeout time.Duration, opts ...Option) *DefaultClient {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	c := &DefaultClient{
		client:          &http.Client{Timeout: timeout},
		maxTries:        DefaultMaxTries,
		initialInterval: backoff.DefaultInitialInterval,
		logger:          logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs an HTTP GET request, retrying network errors, 429 and 5xx
// responses with exponential backoff.
func (c *DefaultClient) Get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval

	return backoff.Retry(ctx, func() ([]byte, error) {
		return c.get(ctx, url, header)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.V(1).Info("Retrying request", "url", url, "error", err.Error(), "backoff", next.String())
		}),
	)
}

func (c *DefaultClient) get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	for key, values := range header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to execute request: %w", err))
		}
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := NewStatusError(resp.StatusCode, url, resp.Status)
		if !statusErr.Temporary() {
			return nil, backoff.Permanent(statusErr)
		}
		return nil, statusErr
	}

	if resp.ContentLength > MaxResponseSize {
		return nil, backoff.Permanent(fmt.Errorf("response size %d bytes exceeds maximum allowed size of %d bytes",
			resp.ContentLength, MaxResponseSize))
	}

	// +1 to detect if limit exceeded
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, backoff.Permanent(fmt.Errorf("response size exceeds maximum allowed size of %d bytes", MaxResponseSize))
	}

	return body, nil
}

// Package httpclient is the outbound HTTP layer shared by every remote source:
// bounded per-request timeout, User-Agent, capped body size and retries with
// exponential backoff for network errors and 5xx responses.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/MrSnakeDoc/flintmeta/internal/version"
)

const (
	// DefaultTimeout is the default timeout for HTTP requests
	DefaultTimeout = 10 * time.Second

	// MaxResponseSize is the maximum allowed response size (32MB)
	MaxResponseSize = 32 * 1024 * 1024

	defaultInitialInterval = 250 * time.Millisecond
)

// Client is what the sources and the profile builder need from the network.
type Client interface {
	// Get performs a GET request and returns the whole response body.
	Get(ctx context.Context, url string) ([]byte, error)
	// Open performs a GET request and returns the body for streaming.
	// The caller must close it.
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

// DefaultClient is the default HTTP client implementation
type DefaultClient struct {
	client          *http.Client
	retries         uint
	initialInterval time.Duration
	userAgent       string
}

// NewDefaultClient creates a client with the given per-request timeout and
// number of attempts. A zero timeout uses DefaultTimeout, attempts below 1 mean 1.
func NewDefaultClient(timeout time.Duration, attempts int) *DefaultClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if attempts < 1 {
		attempts = 1
	}
	return &DefaultClient{
		client:          &http.Client{Timeout: timeout},
		retries:         uint(attempts),
		initialInterval: defaultInitialInterval,
		userAgent:       version.UserAgent(),
	}
}

// WithInitialInterval overrides the first backoff delay.
func (c *DefaultClient) WithInitialInterval(d time.Duration) *DefaultClient {
	c.initialInterval = d
	return c
}

// Get performs an HTTP GET request
func (c *DefaultClient) Get(ctx context.Context, url string) ([]byte, error) {
	body, err := c.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = body.Close()
	}()

	// +1 to detect if limit exceeded
	data, err := io.ReadAll(io.LimitReader(body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from %s: %w", url, err)
	}
	if int64(len(data)) > MaxResponseSize {
		return nil, fmt.Errorf("response from %s exceeds maximum allowed size of %d bytes", url, MaxResponseSize)
	}
	return data, nil
}

// Open performs an HTTP GET request, retrying transient failures.
func (c *DefaultClient) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval

	return backoff.Retry(ctx, func() (io.ReadCloser, error) {
		return c.do(ctx, url)
	}, backoff.WithBackOff(b), backoff.WithMaxTries(c.retries))
}

func (c *DefaultClient) do(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		httpErr := NewHTTPError(resp.StatusCode, url, resp.Status)
		if retryable(resp.StatusCode) {
			return nil, httpErr
		}
		return nil, backoff.Permanent(httpErr)
	}

	if resp.ContentLength > MaxResponseSize {
		_ = resp.Body.Close()
		return nil, backoff.Permanent(fmt.Errorf("response size %d bytes from %s exceeds maximum allowed size of %d bytes",
			resp.ContentLength, url, MaxResponseSize))
	}

	return resp.Body, nil
}

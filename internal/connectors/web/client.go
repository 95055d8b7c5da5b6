package web

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/custodia-labs/sercha-harvest/internal/core/domain"
)

// Options configures a Client.
type Options struct {
	// UserAgent is sent with every request.
	UserAgent string

	// Timeout bounds each request.
	Timeout time.Duration

	// RequestsPerSecond throttles requests. Zero disables throttling.
	RequestsPerSecond float64
}

// StatusError reports a non-success HTTP status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.URL, e.StatusCode)
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Client wraps resty with throttling and status checking.
type Client struct {
	http    *resty.Client
	limiter *RateLimiter
}

// NewClient creates a client from options, applying defaults.
func NewClient(opts Options) *Client {
	if opts.UserAgent == "" {
		opts.UserAgent = domain.DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = domain.DefaultFetchTimeout
	}

	rc := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent)

	return &Client{
		http:    rc,
		limiter: NewRateLimiter(opts.RequestsPerSecond),
	}
}

// Limiter returns the client's rate limiter.
func (c *Client) Limiter() *RateLimiter {
	return c.limiter
}

// Get issues a GET request. Non-2xx responses return a *StatusError.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		Get(url)
	return c.finish(url, resp, err)
}

// PostForm issues a form-encoded POST. Non-2xx responses return a *StatusError.
func (c *Client) PostForm(ctx context.Context, url string, form, headers map[string]string) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetFormData(form).
		Post(url)
	return c.finish(url, resp, err)
}

func (c *Client) finish(url string, resp *resty.Response, err error) (*Response, error) {
	if err != nil {
		return nil, err
	}

	c.limiter.Observe(resp.StatusCode(), resp.Header())

	out := &Response{
		StatusCode:  resp.StatusCode(),
		ContentType: resp.Header().Get("Content-Type"),
		Body:        resp.Body(),
	}
	if !resp.IsSuccess() {
		return out, &StatusError{URL: url, StatusCode: resp.StatusCode()}
	}
	return out, nil
}

package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/catup/pkg/cache"
	"github.com/matzehuels/catup/pkg/httputil"
	"github.com/matzehuels/catup/pkg/observability"
)

// Client provides shared HTTP functionality for remote API clients.
// It handles caching, retry logic, and common request headers.
type Client struct {
	http    *http.Client
	cache   *cache.Namespace
	headers map[string]string
	hooks   observability.HTTPHooks
	logger  *log.Logger

	attempts   int
	retryDelay time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithHTTPHooks sets hooks notified of every request.
func WithHTTPHooks(h observability.HTTPHooks) ClientOption {
	return func(c *Client) { c.hooks = observability.OrNoopHTTP(h) }
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(l *log.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRetry overrides the retry policy (default 3 attempts, 1s initial delay).
func WithRetry(attempts int, delay time.Duration) ClientOption {
	return func(c *Client) {
		c.attempts = attempts
		c.retryDelay = delay
	}
}

// NewClient creates a Client that memoizes responses in ns and sends
// headers with every request. Pass nil for headers if no default headers
// are needed.
func NewClient(ns *cache.Namespace, headers map[string]string, opts ...ClientOption) *Client {
	c := &Client{
		http:       NewHTTPClient(),
		cache:      ns,
		headers:    headers,
		hooks:      observability.NoopHTTPHooks{},
		logger:     log.New(io.Discard),
		attempts:   3,
		retryDelay: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Logger returns the client's logger.
func (c *Client) Logger() *log.Logger { return c.logger }

// Cached retrieves a value from cache or executes fetch and caches the result.
// The fetch function should populate v; on success, v is stored in the cache.
// Transient failures are retried; permanent ones are recorded and replayed
// by later calls as a [*cache.RecordedError].
func (c *Client) Cached(ctx context.Context, key string, v any, fetch func() error) error {
	raw, err := cache.Memo(ctx, c.cache, key, func(ctx context.Context) (json.RawMessage, error) {
		if err := httputil.Retry(ctx, c.attempts, c.retryDelay, fetch); err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	body, err := c.doRequest(ctx, http.MethodGet, url, nil, headers)
	if err != nil {
		return err
	}
	defer body.Close()
	return decodeJSON(body, v)
}

// PostJSON sends payload as a JSON body and decodes the JSON response into v.
func (c *Client) PostJSON(ctx context.Context, url string, payload, v any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	body, err := c.doRequest(ctx, http.MethodPost, url, data, map[string]string{"Content-Type": "application/json"})
	if err != nil {
		return err
	}
	defer body.Close()
	return decodeJSON(body, v)
}

func decodeJSON(r io.Reader, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, method, url string, payload []byte, headers map[string]string) (io.ReadCloser, error) {
	var reqBody io.Reader = http.NoBody
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	host, path := req.URL.Host, req.URL.Path
	c.hooks.OnRequest(ctx, method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.hooks.OnError(ctx, method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, cache.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	c.hooks.OnResponse(ctx, method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		c.logger.Debug("request failed", "method", method, "url", url, "status", resp.StatusCode)
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests || code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds every request made by the console.
const DefaultTimeout = 15 * time.Second

// TokenSource supplies the bearer token attached to requests.
// An empty token means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// Client is a thin JSON-over-HTTP wrapper around the console REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *zap.Logger
	limiter    *rate.Limiter
	userAgent  string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the fixed per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the request/response logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// New creates a client for baseURL. tokens may be nil.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		tokens:    tokens,
		logger:    zap.NewNop(),
		userAgent: "storesight-console/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Token returns the bearer token currently attached to requests.
func (c *Client) Token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do sends one request. body is JSON encoded when non-nil; a 2xx response is
// decoded into out when out is non-nil. Every failure is an *Error.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	url := c.baseURL + path

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindValidation, Message: "encode request", Err: err}
		}
		reader = bytes.NewReader(buf)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &Error{Kind: KindNetwork, Message: "rate limit wait", Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return &Error{Kind: KindValidation, Message: "create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	authed := false
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
		authed = true
	}

	start := time.Now()
	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("url", url),
		zap.Bool("auth", authed))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("api request failed",
			zap.String("method", method),
			zap.String("url", url),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return &Error{Kind: KindNetwork, Message: fmt.Sprintf("%s %s", method, path), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Status: resp.StatusCode, Message: "read response", Err: err}
	}

	c.logger.Debug("api response",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.Int("bytes", len(raw)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := fromResponse(resp.StatusCode, raw)
		c.logger.Info("api error response",
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
			zap.String("kind", apiErr.Kind.String()),
			zap.String("code", apiErr.Code))
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindServer, Status: resp.StatusCode, Message: "decode response", Err: err}
	}
	return nil
}

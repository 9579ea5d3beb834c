package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campuscash/campuscash-go/pkg/config"
	apperrors "github.com/campuscash/campuscash-go/pkg/errors"
)

// TokenProvider supplies the current bearer token. An empty string means no
// token, in which case the Authorization header is omitted entirely.
type TokenProvider interface {
	Token() string
}

// TokenFunc adapts a plain function into a TokenProvider.
type TokenFunc func() string

// Token implements TokenProvider.
func (f TokenFunc) Token() string { return f() }

// Client is the single chokepoint for all outbound CampusCash API calls. It
// builds URLs from the configured base, attaches the bearer token, enforces a
// per-request timeout, and normalises transport and HTTP errors into
// *apperrors.Error. It never mutates application state.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	tokens  TokenProvider
	logger  *zap.Logger
	metrics *Metrics
}

// Option customises client construction.
type Option func(*Client)

// WithTokenProvider wires the bearer token source.
func WithTokenProvider(tp TokenProvider) Option {
	return func(c *Client) { c.tokens = tp }
}

// WithLogger attaches a logger for request-level diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithHTTPClient overrides the underlying transport, mostly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New constructs a client from configuration.
func New(cfg config.APIConfig, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		http:    &http.Client{},
		logger:  zap.NewNop(),
	}
	if c.timeout <= 0 {
		c.timeout = 10 * time.Second
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Do performs a JSON request against the backend. body is JSON-encoded when
// non-nil; the response body is decoded into dest when dest is non-nil.
func (c *Client) Do(ctx context.Context, method, endpoint string, body, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrInternal.Code, 0, "failed to encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "application/json")

	return c.do(ctx, method, endpoint, headers, reader, dest)
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, endpoint string, dest interface{}) error {
	return c.Do(ctx, http.MethodGet, endpoint, nil, dest)
}

// Post issues a POST request with an optional JSON body.
func (c *Client) Post(ctx context.Context, endpoint string, body, dest interface{}) error {
	return c.Do(ctx, http.MethodPost, endpoint, body, dest)
}

// Put issues a PUT request with an optional JSON body.
func (c *Client) Put(ctx context.Context, endpoint string, body, dest interface{}) error {
	return c.Do(ctx, http.MethodPut, endpoint, body, dest)
}

// Patch issues a PATCH request with an optional JSON body.
func (c *Client) Patch(ctx context.Context, endpoint string, body, dest interface{}) error {
	return c.Do(ctx, http.MethodPatch, endpoint, body, dest)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, endpoint string, dest interface{}) error {
	return c.Do(ctx, http.MethodDelete, endpoint, nil, dest)
}

func (c *Client) do(ctx context.Context, method, endpoint string, headers http.Header, body io.Reader, dest interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternal.Code, 0, "failed to build request")
	}

	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)

	if err != nil {
		norm := c.normaliseTransportError(err)
		c.observe(method, endpoint, 0, duration)
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Duration("duration", duration),
			zap.Error(norm),
		)
		return norm
	}
	defer resp.Body.Close() //nolint:errcheck

	c.observe(method, endpoint, resp.StatusCode, duration)
	c.logger.Debug("request completed",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrNetwork.Code, 0, apperrors.ErrNetwork.Message)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.FromResponse(resp.StatusCode, raw)
	}

	if dest == nil || len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return apperrors.Wrap(err, apperrors.ErrDecode.Code, 0, apperrors.ErrDecode.Message)
	}

	return nil
}

// normaliseTransportError maps transport failures onto the error taxonomy,
// keeping timeouts distinguishable from other network errors.
func (c *Client) normaliseTransportError(err error) *apperrors.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(err, apperrors.ErrTimeout.Code, 0, apperrors.ErrTimeout.Message)
	}
	if errors.Is(err, context.Canceled) {
		return apperrors.Wrap(err, apperrors.ErrNetwork.Code, 0, "request cancelled")
	}
	return apperrors.Wrap(err, apperrors.ErrNetwork.Code, 0, apperrors.ErrNetwork.Message)
}

func (c *Client) observe(method, endpoint string, status int, duration time.Duration) {
	if c.metrics != nil {
		c.metrics.ObserveRequest(method, endpoint, status, duration)
	}
}

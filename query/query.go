package query

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/campuscash/campuscash-go/pkg/errors"
)

// Notifier receives user-visible feedback. This is the single place thrown
// errors are translated into messages; nothing below this layer touches the
// feedback channel.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// NopNotifier discards feedback.
type NopNotifier struct{}

func (NopNotifier) Success(string) {}
func (NopNotifier) Error(string)   {}

// FetchFunc loads fresh data for a query.
type FetchFunc func(ctx context.Context) (interface{}, error)

// Mutation declares a write operation and the cached reads it invalidates on
// success. Mutations are never retried automatically and never invalidate
// anything on failure.
type Mutation struct {
	Name           string
	Invalidates    []Key
	SuccessMessage string
}

// Client runs cached queries and mutations against a Store.
type Client struct {
	store    Store
	retry    RetryPolicy
	ttl      time.Duration
	notifier Notifier
	logger   *zap.Logger

	mu       sync.Mutex
	keyLocks map[string]*sync.Mutex
}

// ClientOption customises the query client.
type ClientOption func(*Client)

// WithRetryPolicy overrides the retry policy for cached reads.
func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(c *Client) { c.retry = p }
}

// WithTTL overrides the default cache TTL.
func WithTTL(ttl time.Duration) ClientOption {
	return func(c *Client) { c.ttl = ttl }
}

// WithNotifier wires the user feedback sink.
func WithNotifier(n Notifier) ClientOption {
	return func(c *Client) { c.notifier = n }
}

// WithQueryLogger attaches a logger.
func WithQueryLogger(l *zap.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient constructs a query client over the given store.
func NewClient(store Store, opts ...ClientOption) *Client {
	c := &Client{
		store:    store,
		retry:    DefaultRetryPolicy(),
		ttl:      30 * time.Second,
		notifier: NopNotifier{},
		logger:   zap.NewNop(),
		keyLocks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the cached value for key, fetching and caching it when
// absent. Refetches of the same key are serialised so the last write wins;
// distinct keys are left free to resolve in any order.
func (c *Client) Fetch(ctx context.Context, key Key, dest interface{}, fn FetchFunc) error {
	lock := c.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	// A nil dest still counts as a cache hit; decode into a raw buffer so
	// the stored payload is not forced through a typed unmarshal.
	target := dest
	if target == nil {
		target = &json.RawMessage{}
	}

	err := c.store.Get(ctx, key.String(), target)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrCacheMiss) {
		c.logger.Warn("cache read failed", zap.String("key", key.String()), zap.Error(err))
	}

	value, err := c.fetchWithRetry(ctx, key, fn)
	if err != nil {
		return err
	}

	if err := c.store.Set(ctx, key.String(), value, c.ttl); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key.String()), zap.Error(err))
	}

	return assign(value, dest)
}

func (c *Client) fetchWithRetry(ctx context.Context, key Key, fn FetchFunc) (interface{}, error) {
	attempt := 0
	for {
		attempt++
		value, err := fn(ctx)
		if err == nil {
			return value, nil
		}

		if !c.retry.ShouldRetry(attempt, err) {
			return nil, err
		}

		delay := c.retry.Backoff(attempt)
		c.logger.Debug("retrying query",
			zap.String("key", key.String()),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil, apperrors.Wrap(ctx.Err(), apperrors.ErrNetwork.Code, 0, "query cancelled")
		case <-time.After(delay):
		}
	}
}

// Invalidate drops the cached values under the given keys. The next Fetch of
// an affected key refetches from the backend.
func (c *Client) Invalidate(ctx context.Context, keys ...Key) {
	for _, key := range keys {
		if err := c.store.DeleteByPattern(ctx, key.Pattern()); err != nil {
			c.logger.Warn("cache invalidation failed", zap.String("key", key.String()), zap.Error(err))
		}
	}
}

// InvalidateAll clears the entire cache. Used on logout so one user's cached
// reads never leak into the next session.
func (c *Client) InvalidateAll(ctx context.Context) {
	if err := c.store.DeleteByPattern(ctx, "*"); err != nil {
		c.logger.Warn("cache clear failed", zap.Error(err))
	}
}

// Mutate runs a write operation: one attempt, invalidation of the declared
// keys only on success, and feedback through the notifier either way. The
// cache itself is never written optimistically.
func (c *Client) Mutate(ctx context.Context, m Mutation, fn FetchFunc) (interface{}, error) {
	runID := uuid.NewString()

	value, err := fn(ctx)
	if err != nil {
		message := apperrors.FromError(err).Message
		c.logger.Warn("mutation failed",
			zap.String("mutation", m.Name),
			zap.String("run_id", runID),
			zap.Error(err),
		)
		c.notifier.Error(message)
		return nil, err
	}

	c.Invalidate(ctx, m.Invalidates...)
	c.logger.Debug("mutation applied",
		zap.String("mutation", m.Name),
		zap.String("run_id", runID),
		zap.Int("invalidated_keys", len(m.Invalidates)),
	)
	if m.SuccessMessage != "" {
		c.notifier.Success(m.SuccessMessage)
	}
	return value, nil
}

func (c *Client) lockFor(key Key) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	canonical := key.String()
	if lock, ok := c.keyLocks[canonical]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	c.keyLocks[canonical] = lock
	return lock
}

// assign copies a fetched value into the caller's destination via the same
// JSON round trip the cache uses, so hits and misses yield identical shapes.
func assign(value, dest interface{}) error {
	if dest == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternal.Code, 0, "failed to encode fetched value")
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return apperrors.Wrap(err, apperrors.ErrDecode.Code, 0, "failed to decode fetched value")
	}
	return nil
}

package query

import (
	"time"

	"github.com/campuscash/campuscash-go/pkg/config"
	apperrors "github.com/campuscash/campuscash-go/pkg/errors"
)

// RetryPolicy decides whether a failed query attempt is tried again. It is a
// pure predicate, independent of the HTTP client, so it can be tested without
// any network mocking. Mutations never consult it.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy mirrors the configuration defaults.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 200 * time.Millisecond, MaxDelay: 5 * time.Second}
}

// RetryPolicyFromConfig builds a policy from configuration.
func RetryPolicyFromConfig(cfg config.RetryConfig) RetryPolicy {
	p := RetryPolicy{MaxAttempts: cfg.MaxAttempts, BaseDelay: cfg.BaseDelay, MaxDelay: cfg.MaxDelay}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 200 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 5 * time.Second
	}
	return p
}

// ShouldRetry reports whether another attempt is warranted after the given
// 1-based attempt failed with err. Client errors (4xx) are never retried:
// the request will not get better by repeating it.
func (p RetryPolicy) ShouldRetry(attempt int, err error) bool {
	if err == nil {
		return false
	}
	if attempt >= p.MaxAttempts {
		return false
	}
	if apperrors.IsClientError(err) {
		return false
	}
	return true
}

// Backoff returns the delay before the given attempt is retried,
// exponentially growing from BaseDelay and capped at MaxDelay.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := p.BaseDelay << uint(attempt-1)
	if delay > p.MaxDelay || delay <= 0 {
		return p.MaxDelay
	}
	return delay
}

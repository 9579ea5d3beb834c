package query

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	apperrors "github.com/campuscash/campuscash-go/pkg/errors"
)

// Store abstracts persistence for cached query payloads. Get returns
// apperrors.ErrCacheMiss when the key is absent or expired.
type Store interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
	Close() error
}

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryStore is the default in-process cache store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get retrieves and unmarshals the cached value into dest.
func (s *MemoryStore) Get(ctx context.Context, key string, dest interface{}) error {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return apperrors.ErrCacheMiss
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return apperrors.ErrCacheMiss
	}

	if err := json.Unmarshal(entry.payload, dest); err != nil {
		return apperrors.Wrap(err, apperrors.ErrDecode.Code, 0, "failed to decode cached value")
	}
	return nil
}

// Set marshals the value and stores it with the given TTL. A non-positive
// TTL means the entry never expires on its own.
func (s *MemoryStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternal.Code, 0, "failed to encode cache value")
	}

	entry := memoryEntry{payload: payload}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
	return nil
}

// DeleteByPattern removes entries matching the pattern. Only the trailing
// "*" glob the invalidation layer produces is supported.
func (s *MemoryStore) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	exact := prefix == pattern

	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.entries {
		if exact && key == pattern {
			delete(s.entries, key)
			continue
		}
		if !exact && strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

// Len reports the number of live entries, for tests and diagnostics.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

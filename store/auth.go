package store

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	apperrors "github.com/campuscash/campuscash-go/pkg/errors"
	"github.com/campuscash/campuscash-go/services"
)

const (
	authSnapshotName = "auth-storage.json"
	// tokenFileName holds the raw token by itself so shell tooling can read
	// it without parsing the snapshot.
	tokenFileName = "auth_token"
)

// authSnapshot is the persisted subset of the auth state. Loading flags are
// transient and deliberately absent.
type authSnapshot struct {
	User            *services.User `json:"user"`
	Token           string         `json:"token"`
	IsAuthenticated bool           `json:"isAuthenticated"`
}

// AuthStore holds the session identity. It persists user, token and the
// authenticated flag across runs; the loading flag never survives a restart.
// It satisfies the token interfaces of the client, service and query layers,
// so one store instance is the single source of truth for the session.
type AuthStore struct {
	mu      sync.Mutex
	backend Backend
	logger  *zap.Logger

	user            *services.User
	token           string
	isAuthenticated bool
	isLoading       bool
}

// NewAuthStore constructs an empty auth store over the given backend. A nil
// backend disables persistence.
func NewAuthStore(backend Backend, logger *zap.Logger) *AuthStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthStore{backend: backend, logger: logger}
}

// Hydrate restores the persisted session. An expired token is discarded
// instead of restored, so a stale session degrades to signed-out rather than
// to a string of 401s.
func (s *AuthStore) Hydrate() error {
	if s.backend == nil {
		return nil
	}

	data, err := s.backend.Read(authSnapshotName)
	if err != nil {
		if apperrors.FromError(err).Code == apperrors.ErrCacheMiss.Code {
			return nil
		}
		return err
	}

	snapshot := authSnapshot{}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		s.logger.Warn("discarding unreadable auth snapshot", zap.Error(err))
		return s.clearPersisted()
	}

	if snapshot.Token != "" && tokenExpired(snapshot.Token) {
		s.logger.Info("discarding expired session token")
		return s.clearPersisted()
	}

	s.mu.Lock()
	s.user = snapshot.User
	s.token = snapshot.Token
	s.isAuthenticated = snapshot.IsAuthenticated && snapshot.Token != ""
	s.mu.Unlock()
	return nil
}

// Login records an authenticated session in a single transition.
func (s *AuthStore) Login(user services.User, token string) {
	s.mu.Lock()
	u := user
	s.user = &u
	s.token = token
	s.isAuthenticated = true
	s.isLoading = false
	s.mu.Unlock()
	s.persist()
}

// Logout resets every session field in a single transition.
func (s *AuthStore) Logout() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.isAuthenticated = false
	s.isLoading = false
	s.mu.Unlock()
	if err := s.clearPersisted(); err != nil {
		s.logger.Warn("failed to clear persisted session", zap.Error(err))
	}
}

// ClearAuth is an alias of Logout for the service layer.
func (s *AuthStore) ClearAuth() { s.Logout() }

// SetToken stores the bearer token.
func (s *AuthStore) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	s.persist()
}

// ClearToken drops the bearer token without touching the rest of the session.
func (s *AuthStore) ClearToken() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	s.persist()
}

// Token returns the current bearer token, empty when signed out.
func (s *AuthStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// SetUser replaces the session identity, e.g. after a profile update.
func (s *AuthStore) SetUser(user *services.User) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	s.persist()
}

// User returns the session identity, nil when signed out.
func (s *AuthStore) User() *services.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// IsAuthenticated reports whether a session is active.
func (s *AuthStore) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isAuthenticated
}

// SetLoading flips the transient loading flag. It is never persisted.
func (s *AuthStore) SetLoading(loading bool) {
	s.mu.Lock()
	s.isLoading = loading
	s.mu.Unlock()
}

// IsLoading reports whether an auth operation is in flight.
func (s *AuthStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoading
}

func (s *AuthStore) persist() {
	if s.backend == nil {
		return
	}

	s.mu.Lock()
	snapshot := authSnapshot{User: s.user, Token: s.token, IsAuthenticated: s.isAuthenticated}
	s.mu.Unlock()

	data, err := marshalSnapshot(snapshot)
	if err != nil {
		s.logger.Warn("failed to encode auth snapshot", zap.Error(err))
		return
	}
	if err := s.backend.Write(authSnapshotName, data); err != nil {
		s.logger.Warn("failed to persist auth snapshot", zap.Error(err))
	}

	if snapshot.Token == "" {
		_ = s.backend.Delete(tokenFileName)
	} else if err := s.backend.Write(tokenFileName, []byte(snapshot.Token)); err != nil {
		s.logger.Warn("failed to persist token file", zap.Error(err))
	}
}

func (s *AuthStore) clearPersisted() error {
	if s.backend == nil {
		return nil
	}
	if err := s.backend.Delete(authSnapshotName); err != nil {
		return err
	}
	return s.backend.Delete(tokenFileName)
}

// tokenExpired inspects the token's exp claim without verifying the
// signature. Verification belongs to the backend; here only the expiry
// matters, and an unparseable token counts as expired.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return true
	}
	if exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

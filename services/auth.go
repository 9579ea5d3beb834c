package services

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuscash/campuscash-go/client"
	apperrors "github.com/campuscash/campuscash-go/pkg/errors"
)

// TokenStore persists the raw bearer token between sessions. The auth
// service is the only service with a side effect beyond the network call.
type TokenStore interface {
	SetToken(token string)
	Token() string
	ClearToken()
}

// AuthService maps authentication operations onto backend endpoints and owns
// token persistence.
type AuthService struct {
	client    *client.Client
	tokens    TokenStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs the auth service.
func NewAuthService(c *client.Client, tokens TokenStore, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{client: c, tokens: tokens, validator: validate, logger: logger}
}

// Login exchanges credentials for a token and user identity.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid login payload")
	}
	resp := &LoginResponse{}
	if err := s.client.Post(ctx, epAuthLogin, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// SignupStudent registers a student account. The caller still logs in
// afterwards; no token is issued here.
func (s *AuthService) SignupStudent(ctx context.Context, req SignupStudentRequest) (*User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid student signup payload")
	}
	user := &User{}
	if err := s.client.Post(ctx, epAuthSignupStudent, req, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SignupCompany registers a company account.
func (s *AuthService) SignupCompany(ctx context.Context, req SignupCompanyRequest) (*User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid company signup payload")
	}
	user := &User{}
	if err := s.client.Post(ctx, epAuthSignupCompany, req, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Me returns the identity behind the current token.
func (s *AuthService) Me(ctx context.Context) (*User, error) {
	user := &User{}
	if err := s.client.Get(ctx, epAuthMe, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetToken persists the bearer token.
func (s *AuthService) SetToken(token string) {
	if s.tokens != nil {
		s.tokens.SetToken(token)
	}
}

// Token returns the persisted bearer token, empty when absent.
func (s *AuthService) Token() string {
	if s.tokens == nil {
		return ""
	}
	return s.tokens.Token()
}

// IsAuthenticated reports whether a token is currently persisted.
func (s *AuthService) IsAuthenticated() bool {
	return s.Token() != ""
}

// Logout clears the persisted token.
func (s *AuthService) Logout() {
	if s.tokens != nil {
		s.tokens.ClearToken()
	}
}

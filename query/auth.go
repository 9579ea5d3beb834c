package query

import (
	"context"

	apperrors "github.com/campuscash/campuscash-go/pkg/errors"
	"github.com/campuscash/campuscash-go/services"
)

// SessionStore receives authentication state transitions. The auth store of
// the state layer implements it.
type SessionStore interface {
	Login(user services.User, token string)
	Logout()
}

// LoginResult is what the login flow hands back to the surface layer: the
// authenticated identity plus where to navigate next.
type LoginResult struct {
	User          services.User
	Token         string
	DashboardPath string
}

// AuthFlows binds the auth service to session state and cache lifecycle.
type AuthFlows struct {
	auth    *services.AuthService
	queries *Client
	session SessionStore
}

// NewAuthFlows constructs the auth flow wrapper.
func NewAuthFlows(auth *services.AuthService, queries *Client, session SessionStore) *AuthFlows {
	return &AuthFlows{auth: auth, queries: queries, session: session}
}

// Login authenticates, persists the token, updates the session store
// atomically, and resolves the role dashboard path. A response carrying an
// unknown role fails the whole flow; no partial auth state is left behind.
func (f *AuthFlows) Login(ctx context.Context, req services.LoginRequest) (*LoginResult, error) {
	value, err := f.queries.Mutate(ctx, Mutation{
		Name:           "auth.login",
		SuccessMessage: "logged in",
	}, func(ctx context.Context) (interface{}, error) {
		resp, err := f.auth.Login(ctx, req)
		if err != nil {
			return nil, err
		}

		path, err := resp.User.Role.DashboardPath()
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, 0, "login returned an unsupported role")
		}

		f.auth.SetToken(resp.Token)
		if f.session != nil {
			f.session.Login(resp.User, resp.Token)
		}

		return &LoginResult{User: resp.User, Token: resp.Token, DashboardPath: path}, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*LoginResult), nil
}

// Logout clears the token and session state and drops every cached read so
// nothing leaks into the next session.
func (f *AuthFlows) Logout(ctx context.Context) {
	_, _ = f.queries.Mutate(ctx, Mutation{
		Name:           "auth.logout",
		SuccessMessage: "logged out",
	}, func(ctx context.Context) (interface{}, error) {
		f.auth.Logout()
		if f.session != nil {
			f.session.Logout()
		}
		return nil, nil
	})
	f.queries.InvalidateAll(ctx)
}

// SignupStudent registers a student and points the caller back at login.
func (f *AuthFlows) SignupStudent(ctx context.Context, req services.SignupStudentRequest) (*services.User, error) {
	value, err := f.queries.Mutate(ctx, Mutation{
		Name:           "auth.signup_student",
		SuccessMessage: "account created, log in to continue",
	}, func(ctx context.Context) (interface{}, error) {
		return f.auth.SignupStudent(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return value.(*services.User), nil
}

// SignupCompany registers a company and points the caller back at login.
func (f *AuthFlows) SignupCompany(ctx context.Context, req services.SignupCompanyRequest) (*services.User, error) {
	value, err := f.queries.Mutate(ctx, Mutation{
		Name:           "auth.signup_company",
		SuccessMessage: "account created, log in to continue",
	}, func(ctx context.Context) (interface{}, error) {
		return f.auth.SignupCompany(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return value.(*services.User), nil
}

// Me returns the identity behind the current token, cached.
func (f *AuthFlows) Me(ctx context.Context) (*services.User, error) {
	user := &services.User{}
	err := f.queries.Fetch(ctx, KeyAuthMe, user, func(ctx context.Context) (interface{}, error) {
		return f.auth.Me(ctx)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

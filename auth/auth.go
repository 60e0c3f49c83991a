// Package auth is the typed authentication surface over the client runtime.
package auth

import (
	"context"

	"github.com/Laisky/errors/v2"
	"github.com/go-playground/validator/v10"

	"github.com/qrshare/qrshare-go/client"
	"github.com/qrshare/qrshare-go/credential"
)

// LoginRequest is the sign-in payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is the data payload of a successful sign-in.
type LoginResult struct {
	User   credential.User `json:"user"`
	Tokens credential.Pair `json:"tokens"`
}

// Service wraps the auth endpoints.
type Service struct {
	api      *client.Client
	validate *validator.Validate
}

func NewService(api *client.Client) *Service {
	return &Service{api: api, validate: validator.New()}
}

// Login signs in and persists the resulting credential pair and profile.
// The call is unauthenticated and a 401 surfaces immediately; there is no
// refresh cycle to run before the first login.
func (s *Service) Login(ctx context.Context, email, password string) (credential.User, error) {
	req := LoginRequest{Email: email, Password: password}
	if err := s.validate.Struct(req); err != nil {
		return credential.User{}, errors.Wrap(err, "validate login request")
	}

	env, err := s.api.Post(ctx, "/auth/login", req, client.WithSkipAuth())
	if err != nil {
		return credential.User{}, err
	}
	result, err := client.DataAs[LoginResult](env)
	if err != nil {
		return credential.User{}, err
	}
	if err := s.api.Store().Login(result.Tokens, result.User); err != nil {
		return credential.User{}, errors.Wrap(err, "persist credentials")
	}
	return result.User, nil
}

// Logout tells the backend to revoke the session, then clears the local
// store. The local clear happens even when the revoke call fails.
func (s *Service) Logout(ctx context.Context) error {
	_, apiErr := s.api.Post(ctx, "/auth/logout", nil)
	if err := s.api.Store().Logout(); err != nil {
		return errors.Wrap(err, "clear credential store")
	}
	return apiErr
}

// Me fetches the authenticated user's profile.
func (s *Service) Me(ctx context.Context) (credential.User, error) {
	env, err := s.api.Get(ctx, "/auth/me")
	if err != nil {
		return credential.User{}, err
	}
	return client.DataAs[credential.User](env)
}

// Package service holds the business rules that sit between the HTTP
// handlers and the repositories.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/movie-club/internal/model"
	"github.com/iliyamo/movie-club/internal/repository"
	"github.com/iliyamo/movie-club/internal/utils"
)

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so callers cannot tell which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountPending     = errors.New("account pending approval")
	ErrAccountInactive    = errors.New("account inactive")
)

// UserStore is the part of the user directory the auth service needs.
type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// AuthService registers accounts and exchanges credentials for tokens.
type AuthService struct {
	Users      UserStore
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int
}

// Register hashes password and creates the account.  The first account
// ever created is an active admin; the rest wait for approval.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (model.User, error) {
	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return model.User{}, repository.ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return model.User{}, err
	}
	hash, err := utils.HashPassword(password, s.BcryptCost)
	if err != nil {
		return model.User{}, err
	}
	return s.Users.Create(ctx, username, email, hash)
}

// Authenticate checks the credentials and, for active accounts only,
// issues an access token.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (model.User, utils.AccessToken, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, utils.AccessToken{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, utils.AccessToken{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, utils.AccessToken{}, ErrInvalidCredentials
	}
	switch u.Status {
	case model.StatusActive:
	case model.StatusPending:
		return model.User{}, utils.AccessToken{}, ErrAccountPending
	default:
		return model.User{}, utils.AccessToken{}, ErrAccountInactive
	}
	tok, err := utils.NewAccessToken(s.Secret, u.ID, s.TokenTTL)
	if err != nil {
		return model.User{}, utils.AccessToken{}, err
	}
	return u, tok, nil
}

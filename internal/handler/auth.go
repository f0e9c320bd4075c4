package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-club/internal/middleware"
	"github.com/iliyamo/movie-club/internal/model"
	"github.com/iliyamo/movie-club/internal/queue"
	"github.com/iliyamo/movie-club/internal/repository"
	"github.com/iliyamo/movie-club/internal/service"
	"github.com/iliyamo/movie-club/internal/utils"
)

// Authenticator registers accounts and exchanges credentials for tokens.
type Authenticator interface {
	Register(ctx context.Context, username, email, password string) (model.User, error)
	Authenticate(ctx context.Context, email, password string) (model.User, utils.AccessToken, error)
}

// TokenRevoker records logged-out tokens.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti, userID string, exp time.Time) error
}

// AuthHandler serves /auth.
type AuthHandler struct {
	Auth   Authenticator
	Tokens TokenRevoker
	Events service.Publisher
}

func NewAuthHandler(a Authenticator, t TokenRevoker, events service.Publisher) *AuthHandler {
	return &AuthHandler{Auth: a, Tokens: t, Events: events}
}

type registerReq struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email,max=255"`
	// max counts runes; the byte limit is checked in Register
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResp struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      model.User `json:"user"`
}

// Register creates an account.  Only the very first account is usable
// right away; later ones wait for an administrator.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if ok, err := decode(c, &req); !ok {
		return err
	}
	if len(req.Password) > utils.MaxPasswordBytes {
		return passwordTooLong(c)
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := requestCtx(c)
	defer cancel()

	u, err := h.Auth.Register(ctx, req.Username, req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	case errors.Is(err, repository.ErrUsernameExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
	case errors.Is(err, utils.ErrPasswordTooLong):
		return passwordTooLong(c)
	default:
		return internalError(c, "register", err)
	}

	ev := queue.NewActivity(queue.UserRegistered, u.ID)
	ev.Username = u.Username
	service.Emit(h.Events, ev)
	return c.JSON(http.StatusCreated, echo.Map{"user": u})
}

func passwordTooLong(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{
		"error":  "validation failed",
		"fields": map[string]string{"password": "must be at most 72 bytes"},
	})
}

// Login answers 401 for bad credentials and 403 with a distinct code for
// accounts that are not active.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if ok, err := decode(c, &req); !ok {
		return err
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	u, tok, err := h.Auth.Authenticate(ctx, strings.TrimSpace(req.Email), req.Password)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials", "code": "invalid_credentials"})
	case errors.Is(err, service.ErrAccountPending):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account pending approval", "code": "account_pending"})
	case errors.Is(err, service.ErrAccountInactive):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account inactive", "code": "account_inactive"})
	default:
		return internalError(c, "login", err)
	}
	return c.JSON(http.StatusOK, loginResp{Token: tok.Token, ExpiresAt: tok.Exp, User: u})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

// Logout revokes the presented token until it expires.
func (h *AuthHandler) Logout(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	claims, hasClaims := middleware.CurrentClaims(c)
	if !ok || !hasClaims || claims.ExpiresAt == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Tokens.Revoke(ctx, claims.ID, u.ID, claims.ExpiresAt.Time); err != nil {
		return internalError(c, "logout", err)
	}
	return c.NoContent(http.StatusNoContent)
}

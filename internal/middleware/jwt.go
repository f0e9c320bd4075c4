package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-club/internal/model"
	"github.com/iliyamo/movie-club/internal/repository"
	"github.com/iliyamo/movie-club/internal/utils"
)

// UserLoader loads the account a token was issued to.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (model.User, error)
}

// RevocationChecker reports whether a token id was revoked by logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Auth holds what the bearer middlewares need to resolve a caller.
// Revoked may be nil.
type Auth struct {
	Secret  string
	Users   UserLoader
	Revoked RevocationChecker
}

var (
	errMissingToken = errors.New("missing bearer token")
	errPending      = errors.New("account pending approval")
	errInactive     = errors.New("account is not active")
)

// resolve turns the Authorization header into a verified, active user.
// Storage failures are returned as is; every other failure means the
// caller is not authenticated.
func (a Auth) resolve(c echo.Context) (model.User, *utils.Claims, error) {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(h, "Bearer ") {
		return model.User{}, nil, errMissingToken
	}
	raw := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	claims, err := utils.ParseAccessToken(a.Secret, raw)
	if err != nil {
		return model.User{}, nil, utils.ErrInvalidToken
	}
	ctx := c.Request().Context()
	if a.Revoked != nil && claims.ID != "" {
		revoked, err := a.Revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return model.User{}, nil, err
		}
		if revoked {
			return model.User{}, nil, utils.ErrInvalidToken
		}
	}
	u, err := a.Users.GetByID(ctx, claims.UserID())
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, nil, utils.ErrInvalidToken
	}
	if err != nil {
		return model.User{}, nil, err
	}
	switch u.Status {
	case model.StatusActive:
	case model.StatusPending:
		return model.User{}, nil, errPending
	default:
		return model.User{}, nil, errInactive
	}
	return u, claims, nil
}

func unauthenticated(err error) bool {
	return errors.Is(err, errMissingToken) || errors.Is(err, utils.ErrInvalidToken) ||
		errors.Is(err, errPending) || errors.Is(err, errInactive)
}

// JWTAuth requires a valid bearer token belonging to an active account.
// The account is loaded once and exposed through CurrentUser.
func JWTAuth(a Auth) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, claims, err := a.resolve(c)
			switch {
			case err == nil:
			case errors.Is(err, errPending):
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error(), "code": "account_pending"})
			case errors.Is(err, errInactive):
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error(), "code": "account_inactive"})
			case unauthenticated(err):
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
			default:
				c.Logger().Errorf("auth: resolve user: %v", err)
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}
			SetIdentity(c, u, claims)
			return next(c)
		}
	}
}

// OptionalJWT resolves the caller when a usable token is present and lets
// anonymous requests through otherwise.
func OptionalJWT(a Auth) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, claims, err := a.resolve(c)
			if err == nil {
				SetIdentity(c, u, claims)
			} else if !unauthenticated(err) {
				c.Logger().Warnf("auth: optional resolve: %v", err)
			}
			return next(c)
		}
	}
}

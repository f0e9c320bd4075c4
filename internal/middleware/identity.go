package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-club/internal/model"
	"github.com/iliyamo/movie-club/internal/utils"
)

// Context keys set by JWTAuth and OptionalJWT.  They live for a single
// request only.
const (
	ctxUser   = "user"
	ctxUserID = "user_id"
	ctxClaims = "claims"
)

// CurrentUser returns the user resolved from the bearer token.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(ctxUser).(model.User)
	return u, ok
}

// CurrentUserID returns the authenticated user's id, or "" for anonymous
// requests.
func CurrentUserID(c echo.Context) string {
	if id, ok := c.Get(ctxUserID).(string); ok {
		return id
	}
	return ""
}

// CurrentClaims returns the verified token claims.
func CurrentClaims(c echo.Context) (*utils.Claims, bool) {
	cl, ok := c.Get(ctxClaims).(*utils.Claims)
	return cl, ok && cl != nil
}

// SetIdentity stores an authenticated user on the context.  JWTAuth uses
// it; handler tests use it to skip token plumbing.
func SetIdentity(c echo.Context, u model.User, claims *utils.Claims) {
	c.Set(ctxUser, u)
	c.Set(ctxUserID, u.ID)
	if claims != nil {
		c.Set(ctxClaims, claims)
	}
}

// userKey identifies the caller for rate limiting.
func userKey(c echo.Context) string {
	if id := CurrentUserID(c); id != "" {
		return id
	}
	return "anon"
}

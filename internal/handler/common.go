package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-club/internal/validate"
)

// dbTimeout bounds the storage work of a single request.
const dbTimeout = 5 * time.Second

// Listing limits accepted by the ?limit= parameter.
const (
	minLimit = 1
	maxLimit = 100
)

var (
	errInvalidLimit   = errors.New("limit must be an integer between 1 and 100")
	errInvalidMovieID = errors.New("invalid movie id")
)

func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// parseLimit reads ?limit=, falling back to def when absent.
func parseLimit(c echo.Context, def int) (int, error) {
	raw := strings.TrimSpace(c.QueryParam("limit"))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < minLimit || n > maxLimit {
		return 0, errInvalidLimit
	}
	return n, nil
}

// movieID parses a TMDB movie id path parameter.  TMDB ids are positive.
func movieID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidMovieID
	}
	return id, nil
}

// decode binds the JSON body into req and runs its validation tags.  When
// it returns false the 400 response has already been written and the
// returned error is the one to hand back to echo.
func decode(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if fields := validate.Map(req); fields != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fields})
	}
	return true, nil
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
}

// internalError logs err and answers with a generic 500.
func internalError(c echo.Context, what string, err error) error {
	c.Logger().Errorf("%s: %v", what, err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-club/internal/tmdb"
)

// MovieSource fetches movie metadata as raw JSON.
type MovieSource interface {
	GetMovie(ctx context.Context, id int64) (json.RawMessage, error)
	SearchMovies(ctx context.Context, query string, page int) (json.RawMessage, error)
}

// MovieHandler proxies TMDB.  Caching is left to the response cache
// middleware in front of it.
type MovieHandler struct{ Movies MovieSource }

func NewMovieHandler(m MovieSource) *MovieHandler { return &MovieHandler{Movies: m} }

// TMDB serves at most 500 result pages.
const maxSearchPage = 500

func (h *MovieHandler) Get(c echo.Context) error {
	id, err := movieID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	body, err := h.Movies.GetMovie(c.Request().Context(), id)
	if err != nil {
		return h.upstreamError(c, err)
	}
	return c.JSONBlob(http.StatusOK, body)
}

func (h *MovieHandler) Search(c echo.Context) error {
	page := 1
	if raw := c.QueryParam("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSearchPage {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "page must be an integer between 1 and 500"})
		}
		page = n
	}
	body, err := h.Movies.SearchMovies(c.Request().Context(), c.QueryParam("query"), page)
	if err != nil {
		return h.upstreamError(c, err)
	}
	return c.JSONBlob(http.StatusOK, body)
}

func (h *MovieHandler) upstreamError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, tmdb.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	case errors.Is(err, tmdb.ErrNotConfigured):
		c.Logger().Error("tmdb: TMDB_API_KEY is not set")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "movie metadata not configured"})
	}
	c.Logger().Errorf("tmdb: %v", err)
	return c.JSON(http.StatusBadGateway, echo.Map{"error": "movie metadata unavailable"})
}

package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-club/internal/middleware"
	"github.com/iliyamo/movie-club/internal/model"
)

// FavoriteStore tracks favorite movies per user.
type FavoriteStore interface {
	IsFavorite(ctx context.Context, userID string, movieID int64) (bool, error)
	Add(ctx context.Context, userID string, movieID int64) (bool, error)
	Remove(ctx context.Context, userID string, movieID int64) error
	ListByUser(ctx context.Context, userID string) ([]model.Favorite, error)
}

type FavoriteHandler struct{ Favorites FavoriteStore }

func NewFavoriteHandler(f FavoriteStore) *FavoriteHandler { return &FavoriteHandler{Favorites: f} }

func (h *FavoriteHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	favs, err := h.Favorites.ListByUser(ctx, middleware.CurrentUserID(c))
	if err != nil {
		return internalError(c, "list favorites", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": favs})
}

func (h *FavoriteHandler) Check(c echo.Context) error {
	id, err := movieID(c, "movieId")
	if err != nil {
		return badRequest(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	ok, err := h.Favorites.IsFavorite(ctx, middleware.CurrentUserID(c), id)
	if err != nil {
		return internalError(c, "check favorite", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"is_favorite": ok})
}

// Add is idempotent: 201 when the favorite is new, 200 when it existed.
func (h *FavoriteHandler) Add(c echo.Context) error {
	id, err := movieID(c, "movieId")
	if err != nil {
		return badRequest(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	inserted, err := h.Favorites.Add(ctx, middleware.CurrentUserID(c), id)
	if err != nil {
		return internalError(c, "add favorite", err)
	}
	status := http.StatusOK
	if inserted {
		status = http.StatusCreated
	}
	return c.JSON(status, echo.Map{"is_favorite": true})
}

func (h *FavoriteHandler) Remove(c echo.Context) error {
	id, err := movieID(c, "movieId")
	if err != nil {
		return badRequest(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Favorites.Remove(ctx, middleware.CurrentUserID(c), id); err != nil {
		return internalError(c, "remove favorite", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"is_favorite": false})
}

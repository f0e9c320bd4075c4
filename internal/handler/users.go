package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-club/internal/middleware"
	"github.com/iliyamo/movie-club/internal/model"
	"github.com/iliyamo/movie-club/internal/repository"
)

// UserDirectory is the admin view of the user table.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (model.User, error)
	List(ctx context.Context, status string) ([]model.User, error)
	UpdateStatus(ctx context.Context, id, status string) (model.User, error)
	Delete(ctx context.Context, id string) error
}

// UnratedLister finds past sessions a user has not rated yet.
type UnratedLister interface {
	UnratedForUser(ctx context.Context, userID string, limit int) ([]model.UnratedMovie, error)
}

// UserHandler serves /users.  Everything except Unrated is admin only.
type UserHandler struct {
	Users   UserDirectory
	Ratings UnratedLister
}

func NewUserHandler(u UserDirectory, r UnratedLister) *UserHandler {
	return &UserHandler{Users: u, Ratings: r}
}

const defaultUnratedLimit = 5

type statusReq struct {
	// inactive is not settable here; rejected accounts are deleted
	Status string `json:"status" validate:"required,oneof=active pending"`
}

// List returns all users, or only those with ?status=.
func (h *UserHandler) List(c echo.Context) error {
	status := c.QueryParam("status")
	if status != "" && !model.ValidStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be one of pending, active, inactive"})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	users, err := h.Users.List(ctx, status)
	if err != nil {
		return internalError(c, "list users", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": users})
}

func (h *UserHandler) Get(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err != nil {
		return internalError(c, "get user", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

// UpdateStatus activates a pending account or puts it back to pending.
func (h *UserHandler) UpdateStatus(c echo.Context) error {
	var req statusReq
	if ok, err := decode(c, &req); !ok {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	u, err := h.Users.UpdateStatus(ctx, c.Param("id"), req.Status)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err != nil {
		return internalError(c, "update user status", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

func (h *UserHandler) Delete(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	err := h.Users.Delete(ctx, c.Param("id"))
	switch {
	case err == nil:
		return c.NoContent(http.StatusNoContent)
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	case errors.Is(err, repository.ErrAdminProtected):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "admin users cannot be deleted"})
	}
	return internalError(c, "delete user", err)
}

// Unrated lists movies from the caller's past sessions still waiting for
// a rating.
func (h *UserHandler) Unrated(c echo.Context) error {
	limit, err := parseLimit(c, defaultUnratedLimit)
	if err != nil {
		return badRequest(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	movies, err := h.Ratings.UnratedForUser(ctx, middleware.CurrentUserID(c), limit)
	if err != nil {
		return internalError(c, "unrated movies", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": movies})
}

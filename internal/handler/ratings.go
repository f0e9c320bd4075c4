package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-club/internal/middleware"
	"github.com/iliyamo/movie-club/internal/model"
	"github.com/iliyamo/movie-club/internal/queue"
	"github.com/iliyamo/movie-club/internal/repository"
	"github.com/iliyamo/movie-club/internal/service"
)

// RatingStore is the rating ledger.
type RatingStore interface {
	Upsert(ctx context.Context, userID string, movieID int64, score int, comment *string) (model.Rating, bool, error)
	ListForMovie(ctx context.Context, movieID int64) ([]model.Rating, error)
	TopRated(ctx context.Context, limit int) ([]model.TopMovie, error)
	Latest(ctx context.Context, limit int) ([]model.Rating, error)
}

type RatingHandler struct {
	Ratings RatingStore
	Events  service.Publisher
}

func NewRatingHandler(r RatingStore, events service.Publisher) *RatingHandler {
	return &RatingHandler{Ratings: r, Events: events}
}

const (
	defaultTopLimit    = 3
	defaultLatestLimit = 5
)

type ratingReq struct {
	Score   *int    `json:"score" validate:"required"`
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

func (h *RatingHandler) ListForMovie(c echo.Context) error {
	id, err := movieID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	ratings, err := h.Ratings.ListForMovie(ctx, id)
	if err != nil {
		return internalError(c, "list ratings", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": ratings})
}

// Submit records the caller's rating, replacing an earlier one.  It
// answers 201 for a first rating and 200 for an update.
func (h *RatingHandler) Submit(c echo.Context) error {
	id, err := movieID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var req ratingReq
	if ok, err := decode(c, &req); !ok {
		return err
	}
	if *req.Score < model.MinScore || *req.Score > model.MaxScore {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "validation failed",
			"fields": map[string]string{"score": fmt.Sprintf("must be between %d and %d", model.MinScore, model.MaxScore)},
		})
	}
	// a blank comment is stored as NULL
	if req.Comment != nil && strings.TrimSpace(*req.Comment) == "" {
		req.Comment = nil
	}
	userID := middleware.CurrentUserID(c)

	ctx, cancel := requestCtx(c)
	defer cancel()

	rating, created, err := h.Ratings.Upsert(ctx, userID, id, *req.Score, req.Comment)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err != nil {
		return internalError(c, "submit rating", err)
	}

	ev := queue.NewActivity(queue.RatingSubmitted, userID)
	ev.MovieID, ev.Score = id, req.Score
	service.Emit(h.Events, ev)

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, rating)
}

// Top returns the best rated movies.
func (h *RatingHandler) Top(c echo.Context) error {
	limit, err := parseLimit(c, defaultTopLimit)
	if err != nil {
		return badRequest(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	top, err := h.Ratings.TopRated(ctx, limit)
	if err != nil {
		return internalError(c, "top rated", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": top})
}

// Latest returns the newest ratings across all movies.
func (h *RatingHandler) Latest(c echo.Context) error {
	limit, err := parseLimit(c, defaultLatestLimit)
	if err != nil {
		return badRequest(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	ratings, err := h.Ratings.Latest(ctx, limit)
	if err != nil {
		return internalError(c, "latest ratings", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": ratings})
}

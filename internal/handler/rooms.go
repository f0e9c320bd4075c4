package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-club/internal/middleware"
	"github.com/iliyamo/movie-club/internal/model"
	"github.com/iliyamo/movie-club/internal/queue"
	"github.com/iliyamo/movie-club/internal/repository"
	"github.com/iliyamo/movie-club/internal/service"
)

// RoomStore manages rooms and memberships.
type RoomStore interface {
	Create(ctx context.Context, ownerID string, movieID int64, sessionAt time.Time, isPrivate bool) (model.RoomDetail, error)
	Get(ctx context.Context, roomID string) (model.RoomDetail, error)
	ListForMovie(ctx context.Context, movieID int64) ([]model.RoomDetail, error)
	Join(ctx context.Context, userID, roomID string) error
	Leave(ctx context.Context, userID, roomID string) error
	DeleteByIDAndOwner(ctx context.Context, roomID, requesterID string) error
	ListUpcoming(ctx context.Context, limit int, userID string) ([]model.UpcomingRoom, error)
}

type RoomHandler struct {
	Rooms  RoomStore
	Events service.Publisher
}

func NewRoomHandler(r RoomStore, events service.Publisher) *RoomHandler {
	return &RoomHandler{Rooms: r, Events: events}
}

const defaultUpcomingLimit = 3

type createRoomReq struct {
	SessionDatetime *time.Time `json:"session_datetime" validate:"required"`
	IsPrivate       bool       `json:"is_private"`
}

// ListForMovie returns every room scheduled for the movie.
func (h *RoomHandler) ListForMovie(c echo.Context) error {
	id, err := movieID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	rooms, err := h.Rooms.ListForMovie(ctx, id)
	if err != nil {
		return internalError(c, "list rooms", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": rooms})
}

// Create schedules a room owned by the caller.
func (h *RoomHandler) Create(c echo.Context) error {
	id, err := movieID(c, "id")
	if err != nil {
		return badRequest(c, err)
	}
	var req createRoomReq
	if ok, err := decode(c, &req); !ok {
		return err
	}
	userID := middleware.CurrentUserID(c)

	ctx, cancel := requestCtx(c)
	defer cancel()

	room, err := h.Rooms.Create(ctx, userID, id, *req.SessionDatetime, req.IsPrivate)
	if err != nil {
		return internalError(c, "create room", err)
	}

	ev := queue.NewActivity(queue.RoomCreated, userID)
	ev.RoomID, ev.MovieID = room.ID, room.TMDBMovieID
	service.Emit(h.Events, ev)
	return c.JSON(http.StatusCreated, room)
}

func (h *RoomHandler) Get(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	room, err := h.Rooms.Get(ctx, c.Param("roomId"))
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	}
	if err != nil {
		return internalError(c, "get room", err)
	}
	return c.JSON(http.StatusOK, room)
}

// Delete removes a room; only its owner may do so.
func (h *RoomHandler) Delete(c echo.Context) error {
	roomID := c.Param("roomId")
	userID := middleware.CurrentUserID(c)

	ctx, cancel := requestCtx(c)
	defer cancel()

	err := h.Rooms.DeleteByIDAndOwner(ctx, roomID, userID)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the owner can delete this room"})
	default:
		return internalError(c, "delete room", err)
	}

	ev := queue.NewActivity(queue.RoomDeleted, userID)
	ev.RoomID = roomID
	service.Emit(h.Events, ev)
	return c.NoContent(http.StatusNoContent)
}

func (h *RoomHandler) Join(c echo.Context) error {
	roomID := c.Param("roomId")
	userID := middleware.CurrentUserID(c)

	ctx, cancel := requestCtx(c)
	defer cancel()

	err := h.Rooms.Join(ctx, userID, roomID)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	case errors.Is(err, repository.ErrAlreadyMember):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already a member"})
	default:
		return internalError(c, "join room", err)
	}

	ev := queue.NewActivity(queue.RoomJoined, userID)
	ev.RoomID = roomID
	service.Emit(h.Events, ev)
	return c.JSON(http.StatusCreated, echo.Map{"room_id": roomID, "user_id": userID, "role": model.MemberRoleMember})
}

func (h *RoomHandler) Leave(c echo.Context) error {
	roomID := c.Param("roomId")
	userID := middleware.CurrentUserID(c)

	ctx, cancel := requestCtx(c)
	defer cancel()

	err := h.Rooms.Leave(ctx, userID, roomID)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	case errors.Is(err, repository.ErrNotMember):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not a member of this room"})
	case errors.Is(err, repository.ErrOwnerCannotLeave):
		return c.JSON(http.StatusConflict, echo.Map{"error": "the owner cannot leave; delete the room instead"})
	default:
		return internalError(c, "leave room", err)
	}

	ev := queue.NewActivity(queue.RoomLeft, userID)
	ev.RoomID = roomID
	service.Emit(h.Events, ev)
	return c.NoContent(http.StatusNoContent)
}

// Upcoming lists future sessions.  Authenticated callers also learn which
// rooms they already belong to.
func (h *RoomHandler) Upcoming(c echo.Context) error {
	limit, err := parseLimit(c, defaultUpcomingLimit)
	if err != nil {
		return badRequest(c, err)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	rooms, err := h.Rooms.ListUpcoming(ctx, limit, middleware.CurrentUserID(c))
	if err != nil {
		return internalError(c, "upcoming rooms", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": rooms})
}

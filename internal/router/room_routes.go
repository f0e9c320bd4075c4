package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-club/internal/handler"
	"github.com/iliyamo/movie-club/internal/middleware"
)

// RegisterRooms mounts /rooms.  The upcoming listing accepts an optional
// bearer token to flag the caller's memberships.
func RegisterRooms(e *echo.Echo, h *handler.RoomHandler, opt Options) {
	jwt := middleware.JWTAuth(opt.Auth)

	e.GET("/rooms/upcoming", h.Upcoming, middleware.OptionalJWT(opt.Auth))
	e.GET("/rooms/:roomId", h.Get)
	e.DELETE("/rooms/:roomId", h.Delete, jwt)
	e.POST("/rooms/:roomId/join", h.Join, jwt)
	e.DELETE("/rooms/:roomId/join", h.Leave, jwt)
}

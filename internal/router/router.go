// Package router wires handlers and middleware onto echo routes.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-club/internal/config"
	"github.com/iliyamo/movie-club/internal/handler"
	"github.com/iliyamo/movie-club/internal/middleware"
)

// Handlers groups every HTTP handler of the API.
type Handlers struct {
	Auth      *handler.AuthHandler
	Users     *handler.UserHandler
	Rooms     *handler.RoomHandler
	Ratings   *handler.RatingHandler
	Favorites *handler.FavoriteHandler
	Movies    *handler.MovieHandler
}

// Options carries the cross-cutting pieces the routes are wrapped with.
type Options struct {
	Auth      middleware.Auth
	Cache     config.CacheConfig
	CacheData middleware.CacheStore
	RateLimit echo.MiddlewareFunc // applied to register and login; may be nil
}

// Register mounts the whole API on e.
func Register(e *echo.Echo, h Handlers, db handler.Pinger, opt Options) {
	RegisterRoutes(e, db)
	RegisterAuth(e, h.Auth, opt)
	RegisterMovies(e, h, opt)
	RegisterRooms(e, h.Rooms, opt)
	RegisterUsers(e, h.Users, opt)
	RegisterFavorites(e, h.Favorites, opt)
}

// RegisterRoutes registers endpoints that need neither a session nor a
// handler struct.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth mounts /auth.  Register and login are rate limited; me and
// logout need a bearer token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, opt Options) {
	var limited []echo.MiddlewareFunc
	if opt.RateLimit != nil {
		limited = append(limited, opt.RateLimit)
	}
	g := e.Group("/auth")
	g.POST("/register", a.Register, limited...)
	g.POST("/login", a.Login, limited...)

	jwt := middleware.JWTAuth(opt.Auth)
	g.GET("/me", a.Me, jwt)
	g.POST("/logout", a.Logout, jwt)
}

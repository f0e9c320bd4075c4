package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-club/internal/handler"
	"github.com/iliyamo/movie-club/internal/middleware"
)

// RegisterUsers mounts the admin user management endpoints and the
// caller's unrated-movies listing.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler, opt Options) {
	jwt := middleware.JWTAuth(opt.Auth)

	e.GET("/users/unrated-movies", h.Unrated, jwt)

	admin := e.Group("/users", jwt, middleware.RequireAdmin())
	admin.GET("", h.List)
	admin.GET("/:id", h.Get)
	admin.PATCH("/:id", h.UpdateStatus)
	admin.DELETE("/:id", h.Delete)
}

// RegisterFavorites mounts /favorites; every route needs a bearer token.
func RegisterFavorites(e *echo.Echo, h *handler.FavoriteHandler, opt Options) {
	g := e.Group("/favorites", middleware.JWTAuth(opt.Auth))
	g.GET("", h.List)
	g.GET("/:movieId", h.Check)
	g.POST("/:movieId", h.Add)
	g.DELETE("/:movieId", h.Remove)
}

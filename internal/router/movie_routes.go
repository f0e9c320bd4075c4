package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-club/internal/middleware"
)

// RegisterMovies mounts the TMDB proxy, ratings and the per-movie room
// listing.  Static segments such as /movies/top win over /movies/:id.
func RegisterMovies(e *echo.Echo, h Handlers, opt Options) {
	jwt := middleware.JWTAuth(opt.Auth)

	e.GET("/movies/top", h.Ratings.Top)
	e.GET("/movies/search", h.Movies.Search,
		middleware.ResponseCache(opt.Cache, opt.CacheData, opt.Cache.SearchTTL))
	e.GET("/movies/:id", h.Movies.Get,
		middleware.ResponseCache(opt.Cache, opt.CacheData, opt.Cache.MovieTTL))

	e.GET("/movies/:id/ratings", h.Ratings.ListForMovie)
	e.POST("/movies/:id/ratings", h.Ratings.Submit, jwt)
	e.GET("/ratings/latest", h.Ratings.Latest)

	e.GET("/movies/:id/rooms", h.Rooms.ListForMovie)
	e.POST("/movies/:id/rooms", h.Rooms.Create, jwt)
}

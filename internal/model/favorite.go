package model

import "time"

// Favorite marks a movie as a user's favorite.
type Favorite struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	TMDBMovieID int64     `json:"tmdb_movie_id"`
	CreatedAt   time.Time `json:"created_at"`
}

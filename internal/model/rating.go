package model

import "time"

// Score bounds, inclusive.
const (
	MinScore = 0
	MaxScore = 10
)

// Rating is a user's score for a movie.  There is at most one rating per
// (UserID, TMDBMovieID); submitting again overwrites Score and Comment.
type Rating struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username,omitempty"`
	TMDBMovieID int64     `json:"tmdb_movie_id"`
	Score       int       `json:"score"`
	Comment     *string   `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
}

// TopMovie aggregates the ratings of one movie.
type TopMovie struct {
	TMDBMovieID   int64   `json:"tmdb_movie_id"`
	AverageRating float64 `json:"average_rating"`
	RatingCount   int     `json:"rating_count"`
}

// UnratedMovie is a movie the user watched in a past session but has not
// rated yet.  RoomID and SessionDatetime refer to the latest such session.
type UnratedMovie struct {
	TMDBMovieID     int64     `json:"tmdb_movie_id"`
	RoomID          string    `json:"room_id"`
	SessionDatetime time.Time `json:"session_datetime"`
}

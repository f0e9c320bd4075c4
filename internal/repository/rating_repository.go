package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/movie-club/internal/model"
)

// RatingRepo stores one rating per (user, movie).
type RatingRepo struct{ DB *sql.DB }

func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{DB: db} }

// Upsert records userID's score for movieID, overwriting score and comment
// of an earlier rating.  created reports whether a new row was inserted.
func (r *RatingRepo) Upsert(ctx context.Context, userID string, movieID int64, score int, comment *string) (rating model.Rating, created bool, err error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO ratings (id, user_id, tmdb_movie_id, score, comment, created_at)
         VALUES (?,?,?,?,?,?)
         ON DUPLICATE KEY UPDATE score=VALUES(score), comment=VALUES(comment)`,
		uuid.NewString(), userID, movieID, score, comment, time.Now().UTC().Truncate(time.Millisecond))
	if err != nil {
		if isMissingReference(err) {
			return model.Rating{}, false, ErrNotFound
		}
		return model.Rating{}, false, err
	}
	// MySQL reports 1 affected row for an insert, 2 for an update and 0 for
	// an update that changed nothing.
	n, _ := res.RowsAffected()
	created = n == 1

	err = r.DB.QueryRowContext(ctx,
		`SELECT r.id, r.user_id, u.username, r.tmdb_movie_id, r.score, r.comment, r.created_at
         FROM ratings r JOIN users u ON u.id = r.user_id
         WHERE r.user_id=? AND r.tmdb_movie_id=?`,
		userID, movieID).Scan(&rating.ID, &rating.UserID, &rating.Username, &rating.TMDBMovieID,
		&rating.Score, &rating.Comment, &rating.CreatedAt)
	if err != nil {
		return model.Rating{}, false, err
	}
	return rating, created, nil
}

// ListForMovie returns every rating of movieID with the author's username,
// newest first.
func (r *RatingRepo) ListForMovie(ctx context.Context, movieID int64) ([]model.Rating, error) {
	return r.list(ctx,
		`SELECT r.id, r.user_id, u.username, r.tmdb_movie_id, r.score, r.comment, r.created_at
         FROM ratings r JOIN users u ON u.id = r.user_id
         WHERE r.tmdb_movie_id=?
         ORDER BY r.created_at DESC`, movieID)
}

// Latest returns the most recent ratings across all movies.
func (r *RatingRepo) Latest(ctx context.Context, limit int) ([]model.Rating, error) {
	return r.list(ctx,
		`SELECT r.id, r.user_id, u.username, r.tmdb_movie_id, r.score, r.comment, r.created_at
         FROM ratings r JOIN users u ON u.id = r.user_id
         ORDER BY r.created_at DESC
         LIMIT ?`, limit)
}

func (r *RatingRepo) list(ctx context.Context, q string, args ...any) ([]model.Rating, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Rating{}
	for rows.Next() {
		var rt model.Rating
		if err := rows.Scan(&rt.ID, &rt.UserID, &rt.Username, &rt.TMDBMovieID, &rt.Score, &rt.Comment, &rt.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

// TopRated returns movies ordered by average score, highest first.  Ties
// are broken by the number of ratings.
func (r *RatingRepo) TopRated(ctx context.Context, limit int) ([]model.TopMovie, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT tmdb_movie_id, AVG(score) AS average_rating, COUNT(*) AS rating_count
         FROM ratings
         GROUP BY tmdb_movie_id
         HAVING COUNT(*) >= 1
         ORDER BY average_rating DESC, rating_count DESC
         LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.TopMovie{}
	for rows.Next() {
		var t model.TopMovie
		if err := rows.Scan(&t.TMDBMovieID, &t.AverageRating, &t.RatingCount); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UnratedForUser lists movies of past sessions userID belongs to that the
// user has not rated yet, one entry per movie, latest session first.
func (r *RatingRepo) UnratedForUser(ctx context.Context, userID string, limit int) ([]model.UnratedMovie, error) {
	const q = `SELECT r.tmdb_movie_id, MAX(r.session_datetime) AS last_session,
                      (SELECT r2.id FROM rooms r2
                         JOIN room_members m2 ON m2.room_id = r2.id AND m2.user_id = ?
                        WHERE r2.tmdb_movie_id = r.tmdb_movie_id AND r2.session_datetime < ?
                        ORDER BY r2.session_datetime DESC LIMIT 1) AS room_id
               FROM rooms r
               JOIN room_members m ON m.room_id = r.id AND m.user_id = ?
               WHERE r.session_datetime < ?
                 AND NOT EXISTS (SELECT 1 FROM ratings rt WHERE rt.user_id = ? AND rt.tmdb_movie_id = r.tmdb_movie_id)
               GROUP BY r.tmdb_movie_id
               ORDER BY last_session DESC
               LIMIT ?`
	now := time.Now().UTC()
	rows, err := r.DB.QueryContext(ctx, q, userID, now, userID, now, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.UnratedMovie{}
	for rows.Next() {
		var u model.UnratedMovie
		if err := rows.Scan(&u.TMDBMovieID, &u.SessionDatetime, &u.RoomID); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

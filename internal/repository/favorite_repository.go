package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/movie-club/internal/model"
)

// FavoriteRepo tracks the movies each user marked as favorite.
type FavoriteRepo struct{ DB *sql.DB }

func NewFavoriteRepo(db *sql.DB) *FavoriteRepo { return &FavoriteRepo{DB: db} }

// IsFavorite reports whether movieID is among userID's favorites.
func (r *FavoriteRepo) IsFavorite(ctx context.Context, userID string, movieID int64) (bool, error) {
	var ok bool
	err := r.DB.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id=? AND tmdb_movie_id=?)",
		userID, movieID).Scan(&ok)
	return ok, err
}

// Add marks movieID as favorite.  Adding twice is not an error; inserted
// tells the two cases apart.
func (r *FavoriteRepo) Add(ctx context.Context, userID string, movieID int64) (inserted bool, err error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO favorites (id, user_id, tmdb_movie_id, created_at) VALUES (?,?,?,?)
         ON DUPLICATE KEY UPDATE id = id`,
		uuid.NewString(), userID, movieID, time.Now().UTC().Truncate(time.Millisecond))
	if err != nil {
		if isMissingReference(err) {
			return false, ErrNotFound
		}
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Remove drops movieID from userID's favorites whether or not it was there.
func (r *FavoriteRepo) Remove(ctx context.Context, userID string, movieID int64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM favorites WHERE user_id=? AND tmdb_movie_id=?", userID, movieID)
	return err
}

// ListByUser returns userID's favorites, most recently added first.
func (r *FavoriteRepo) ListByUser(ctx context.Context, userID string) ([]model.Favorite, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, user_id, tmdb_movie_id, created_at FROM favorites WHERE user_id=? ORDER BY created_at DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Favorite{}
	for rows.Next() {
		var f model.Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.TMDBMovieID, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

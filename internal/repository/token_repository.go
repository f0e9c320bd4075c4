package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo keeps the identifiers (jti) of access tokens revoked by
// logout.  Rows are only needed until the token would have expired anyway.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Revoke records jti as revoked.  Revoking the same token twice is a no-op.
func (r *TokenRepo) Revoke(ctx context.Context, jti, userID string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO revoked_tokens (jti, user_id, expires_at, revoked_at) VALUES (?,?,?,?) ON DUPLICATE KEY UPDATE jti = jti",
		jti, userID, exp.UTC(), time.Now().UTC().Truncate(time.Millisecond))
	return err
}

// IsRevoked reports whether jti was revoked.
func (r *TokenRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var ok bool
	err := r.DB.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE jti=?)", jti).Scan(&ok)
	return ok, err
}

// PurgeExpired deletes revocations whose tokens have expired and returns
// how many rows were removed.
func (r *TokenRepo) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM revoked_tokens WHERE expires_at < ?", time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

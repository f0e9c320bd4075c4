package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/movie-club/internal/model"
)

var (
	ErrEmailExists    = errors.New("email already exists")
	ErrUsernameExists = errors.New("username already exists")
	// ErrAdminProtected is returned when deleting an admin account.
	ErrAdminProtected = errors.New("admin users cannot be deleted")
)

const userColumns = "id, username, email, password_hash, role, status, created_at"

// UserRepo is the user directory backed by the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user.  The very first account becomes an active admin,
// every later one a pending user.  The bootstrap decision and the insert
// share a transaction holding a locking read on the table so two
// concurrent registrations cannot both become admin.
func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash string) (model.User, error) {
	u := model.User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(username),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	var err error
	// Two registrations racing on an empty table deadlock on the gap lock;
	// InnoDB aborts one of them, which then sees the other row.
	for attempt := 0; attempt < 2; attempt++ {
		err = r.createTx(ctx, &u)
		if !isDeadlock(err) {
			break
		}
	}
	if err != nil {
		switch {
		case isDuplicate(err, "uq_users_email"):
			return model.User{}, ErrEmailExists
		case isDuplicate(err, "uq_users_username"):
			return model.User{}, ErrUsernameExists
		}
		return model.User{}, err
	}
	return u, nil
}

func (r *UserRepo) createTx(ctx context.Context, u *model.User) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer rollback(tx, &committed)

	var existing string
	err = tx.QueryRowContext(ctx, "SELECT id FROM users LIMIT 1 FOR UPDATE").Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		u.Role, u.Status = model.RoleAdmin, model.StatusActive
	case err != nil:
		return err
	default:
		u.Role, u.Status = model.RoleUser, model.StatusPending
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO users (id, username, email, password_hash, role, status, created_at) VALUES (?,?,?,?,?,?,?)",
		u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.Status, u.CreatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID fetches a user by id.  Unknown ids yield ErrNotFound.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1",
		strings.ToLower(strings.TrimSpace(email)))
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, q, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// List returns users newest first, optionally filtered by status.
func (r *UserRepo) List(ctx context.Context, status string) ([]model.User, error) {
	q := "SELECT " + userColumns + " FROM users"
	var args []any
	if status != "" {
		q += " WHERE status=?"
		args = append(args, status)
	}
	q += " ORDER BY created_at DESC"

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateStatus sets a user's status and returns the updated row.
func (r *UserRepo) UpdateStatus(ctx context.Context, id, status string) (model.User, error) {
	// MySQL reports zero affected rows when the value is unchanged, so
	// existence is decided by reading the row back.
	if _, err := r.DB.ExecContext(ctx, "UPDATE users SET status=? WHERE id=?", status, id); err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a non-admin user.  Rooms, memberships, ratings and
// favorites of the user cascade.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer rollback(tx, &committed)

	var role string
	err = tx.QueryRowContext(ctx, "SELECT role FROM users WHERE id=? FOR UPDATE", id).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if role == model.RoleAdmin {
		return ErrAdminProtected
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id=?", id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/movie-club/internal/model"
)

var (
	// ErrAlreadyMember is returned when a user joins a room twice.
	ErrAlreadyMember = errors.New("already a member of this room")
	// ErrNotMember is returned when leaving a room the user never joined.
	ErrNotMember = errors.New("not a member of this room")
	// ErrOwnerCannotLeave is returned when the owner tries to leave; owners
	// delete the room instead.
	ErrOwnerCannotLeave = errors.New("the owner cannot leave the room")
)

// memberOrder sorts rosters by an explicit role rank rather than by the
// role's spelling.
const memberOrder = "FIELD(rm.role, 'owner', 'moderator', 'member'), u.username ASC"

// RoomRepo manages viewing rooms and their member rosters.
type RoomRepo struct{ DB *sql.DB }

func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{DB: db} }

// Create inserts a room and its owner membership in one transaction.  If
// either write fails neither is kept.
func (r *RoomRepo) Create(ctx context.Context, ownerID string, movieID int64, sessionAt time.Time, isPrivate bool) (model.RoomDetail, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	room := model.Room{
		ID:              uuid.NewString(),
		OwnerID:         ownerID,
		TMDBMovieID:     movieID,
		SessionDatetime: sessionAt.UTC().Truncate(time.Second),
		IsPrivate:       isPrivate,
		CreatedAt:       now,
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.RoomDetail{}, err
	}
	committed := false
	defer rollback(tx, &committed)

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO rooms (id, owner_id, tmdb_movie_id, session_datetime, is_private, created_at) VALUES (?,?,?,?,?,?)",
		room.ID, room.OwnerID, room.TMDBMovieID, room.SessionDatetime, room.IsPrivate, room.CreatedAt); err != nil {
		if isMissingReference(err) {
			return model.RoomDetail{}, ErrNotFound
		}
		return model.RoomDetail{}, err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO room_members (user_id, room_id, role, joined_at) VALUES (?,?,?,?)",
		ownerID, room.ID, model.MemberRoleOwner, now); err != nil {
		return model.RoomDetail{}, err
	}
	var ownerName string
	if err := tx.QueryRowContext(ctx, "SELECT username FROM users WHERE id=?", ownerID).Scan(&ownerName); err != nil {
		return model.RoomDetail{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.RoomDetail{}, err
	}
	committed = true

	return model.RoomDetail{
		Room:  room,
		Owner: model.UserRef{ID: ownerID, Username: ownerName},
		Members: []model.RoomMember{
			{UserID: ownerID, Username: ownerName, Role: model.MemberRoleOwner, JoinedAt: now},
		},
	}, nil
}

// Get returns a room with its owner and ordered roster.
func (r *RoomRepo) Get(ctx context.Context, roomID string) (model.RoomDetail, error) {
	const q = `SELECT r.id, r.owner_id, r.tmdb_movie_id, r.session_datetime, r.is_private, r.created_at, u.username
               FROM rooms r
               JOIN users u ON u.id = r.owner_id
               WHERE r.id = ?`
	var d model.RoomDetail
	err := r.DB.QueryRowContext(ctx, q, roomID).Scan(
		&d.ID, &d.OwnerID, &d.TMDBMovieID, &d.SessionDatetime, &d.IsPrivate, &d.CreatedAt, &d.Owner.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RoomDetail{}, ErrNotFound
	}
	if err != nil {
		return model.RoomDetail{}, err
	}
	d.Owner.ID = d.OwnerID

	members, err := r.members(ctx, "rm.room_id = ?", roomID)
	if err != nil {
		return model.RoomDetail{}, err
	}
	d.Members = members[roomID]
	if d.Members == nil {
		d.Members = []model.RoomMember{}
	}
	return d, nil
}

// ListForMovie returns every room scheduled for movieID, latest session
// first, each with owner and roster.
func (r *RoomRepo) ListForMovie(ctx context.Context, movieID int64) ([]model.RoomDetail, error) {
	const q = `SELECT r.id, r.owner_id, r.tmdb_movie_id, r.session_datetime, r.is_private, r.created_at, u.username
               FROM rooms r
               JOIN users u ON u.id = r.owner_id
               WHERE r.tmdb_movie_id = ?
               ORDER BY r.session_datetime DESC`
	rows, err := r.DB.QueryContext(ctx, q, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.RoomDetail{}
	for rows.Next() {
		var d model.RoomDetail
		if err := rows.Scan(&d.ID, &d.OwnerID, &d.TMDBMovieID, &d.SessionDatetime, &d.IsPrivate, &d.CreatedAt, &d.Owner.Username); err != nil {
			return nil, err
		}
		d.Owner.ID = d.OwnerID
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	members, err := r.members(ctx, "r.tmdb_movie_id = ?", movieID)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Members = members[out[i].ID]
		if out[i].Members == nil {
			out[i].Members = []model.RoomMember{}
		}
	}
	return out, nil
}

// members loads rosters matching where, grouped by room id.
func (r *RoomRepo) members(ctx context.Context, where string, arg any) (map[string][]model.RoomMember, error) {
	q := `SELECT rm.room_id, rm.user_id, u.username, rm.role, rm.joined_at
          FROM room_members rm
          JOIN rooms r ON r.id = rm.room_id
          JOIN users u ON u.id = rm.user_id
          WHERE ` + where + `
          ORDER BY ` + memberOrder
	rows, err := r.DB.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string][]model.RoomMember{}
	for rows.Next() {
		var roomID string
		var m model.RoomMember
		if err := rows.Scan(&roomID, &m.UserID, &m.Username, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		out[roomID] = append(out[roomID], m)
	}
	return out, rows.Err()
}

// Join adds userID to the room as a plain member.  The (user_id, room_id)
// primary key rejects duplicates even under concurrent joins.
func (r *RoomRepo) Join(ctx context.Context, userID, roomID string) error {
	var one int
	err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM rooms WHERE id=?", roomID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO room_members (user_id, room_id, role, joined_at) VALUES (?,?,?,?)",
		userID, roomID, model.MemberRoleMember, time.Now().UTC().Truncate(time.Millisecond))
	switch {
	case err == nil:
		return nil
	case isDuplicate(err):
		return ErrAlreadyMember
	case isMissingReference(err):
		// room deleted between the check and the insert
		return ErrNotFound
	}
	return err
}

// Leave removes userID from the room.  The owner cannot leave.
func (r *RoomRepo) Leave(ctx context.Context, userID, roomID string) error {
	var ownerID string
	err := r.DB.QueryRowContext(ctx, "SELECT owner_id FROM rooms WHERE id=?", roomID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if ownerID == userID {
		return ErrOwnerCannotLeave
	}
	res, err := r.DB.ExecContext(ctx, "DELETE FROM room_members WHERE user_id=? AND room_id=?", userID, roomID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotMember
	}
	return nil
}

// DeleteByIDAndOwner removes a room owned by requesterID.  Memberships are
// removed by the foreign key cascade.  It returns ErrNotFound for unknown
// rooms and ErrForbidden when the requester is not the owner.
func (r *RoomRepo) DeleteByIDAndOwner(ctx context.Context, roomID, requesterID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer rollback(tx, &committed)

	var ownerID string
	err = tx.QueryRowContext(ctx, "SELECT owner_id FROM rooms WHERE id=? FOR UPDATE", roomID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if ownerID != requesterID {
		return ErrForbidden
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM rooms WHERE id=?", roomID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ListUpcoming returns rooms whose session is still ahead, soonest first,
// with the owner's username and the roster size.  When userID is not empty
// each row also tells whether that user is a member.
func (r *RoomRepo) ListUpcoming(ctx context.Context, limit int, userID string) ([]model.UpcomingRoom, error) {
	q := `SELECT r.id, r.owner_id, r.tmdb_movie_id, r.session_datetime, r.is_private, r.created_at,
                 u.username, COUNT(rm.user_id)`
	args := []any{}
	if userID != "" {
		q += `, EXISTS(SELECT 1 FROM room_members m WHERE m.room_id = r.id AND m.user_id = ?)`
		args = append(args, userID)
	}
	q += `
          FROM rooms r
          JOIN users u ON u.id = r.owner_id
          LEFT JOIN room_members rm ON rm.room_id = r.id
          WHERE r.session_datetime > ?
          GROUP BY r.id, u.username
          ORDER BY r.session_datetime ASC
          LIMIT ?`
	args = append(args, time.Now().UTC(), limit)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.UpcomingRoom{}
	for rows.Next() {
		var ur model.UpcomingRoom
		dest := []any{&ur.ID, &ur.OwnerID, &ur.TMDBMovieID, &ur.SessionDatetime, &ur.IsPrivate, &ur.CreatedAt,
			&ur.OwnerUsername, &ur.MembersCount}
		var member bool
		if userID != "" {
			dest = append(dest, &member)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if userID != "" {
			ur.IsUserMember = &member
		}
		out = append(out, ur)
	}
	return out, rows.Err()
}

package model

import "time"

// Membership roles inside a room.
const (
	MemberRoleOwner     = "owner"
	MemberRoleModerator = "moderator"
	MemberRoleMember    = "member"
)

// Room is a scheduled group viewing of one TMDB movie.  The creator owns
// it; ownership is tracked by OwnerID and mirrored by an owner membership.
type Room struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	TMDBMovieID     int64     `json:"tmdb_movie_id"`
	SessionDatetime time.Time `json:"session_datetime"`
	IsPrivate       bool      `json:"is_private"`
	CreatedAt       time.Time `json:"created_at"`
}

// UserRef is the public projection of a user embedded in other resources.
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// RoomMember is one entry of a room roster.
type RoomMember struct {
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// RoomDetail is a room together with its owner and roster.  Members are
// ordered owner, moderator, member and then by username.
type RoomDetail struct {
	Room
	Owner   UserRef      `json:"owner"`
	Members []RoomMember `json:"members"`
}

// UpcomingRoom is a row of the upcoming sessions listing.  IsUserMember is
// only set when the caller is authenticated.
type UpcomingRoom struct {
	Room
	OwnerUsername string `json:"owner_username"`
	MembersCount  int    `json:"members_count"`
	IsUserMember  *bool  `json:"is_user_member,omitempty"`
}

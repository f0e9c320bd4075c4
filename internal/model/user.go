package model

import "time"

// Account roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account statuses.  New accounts start pending until an admin activates
// them; only active accounts may log in.
const (
	StatusPending  = "pending"
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User represents a row of the `users` table.  PasswordHash never leaves
// the server: it is excluded from JSON output.
//
// Fields:
//
//	ID           – UUID primary key, immutable.
//	Username     – unique display name.
//	Email        – unique, stored lower-cased.
//	PasswordHash – bcrypt hash of the password.
//	Role         – user or admin.
//	Status       – pending, active or inactive.
//	CreatedAt    – creation timestamp (UTC).
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// IsActive reports whether the user may authenticate.
func (u User) IsActive() bool { return u.Status == StatusActive }

// ValidStatus reports whether s is one of the known account statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusActive, StatusInactive:
		return true
	}
	return false
}

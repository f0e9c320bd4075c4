// Package queue defines the activity events exchanged over the message
// broker and the consumer that records them.
package queue

import (
	"fmt"
	"strings"
	"time"
)

// ActivityQueue is the durable queue activity events are routed to.
const ActivityQueue = "movieclub.activity"

// Activity event types.
const (
	UserRegistered  = "user.registered"
	RoomCreated     = "room.created"
	RoomJoined      = "room.joined"
	RoomLeft        = "room.left"
	RoomDeleted     = "room.deleted"
	RatingSubmitted = "rating.submitted"
)

// ActivityEvent is published after a state change has been committed.  It
// carries enough context for the activity log without a database lookup.
type ActivityEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	Username   string    `json:"username,omitempty"`
	RoomID     string    `json:"room_id,omitempty"`
	MovieID    int64     `json:"tmdb_movie_id,omitempty"`
	Score      *int      `json:"score,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewActivity returns an event of type typ for userID stamped with the
// current time.
func NewActivity(typ, userID string) ActivityEvent {
	return ActivityEvent{Type: typ, UserID: userID, OccurredAt: time.Now().UTC()}
}

// Line renders ev as a single log line.
func (ev ActivityEvent) Line() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s | user_id=%s", ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type, ev.UserID)
	if ev.Username != "" {
		fmt.Fprintf(&b, " | username=%q", ev.Username)
	}
	if ev.RoomID != "" {
		fmt.Fprintf(&b, " | room_id=%s", ev.RoomID)
	}
	if ev.MovieID != 0 {
		fmt.Fprintf(&b, " | movie=%d", ev.MovieID)
	}
	if ev.Score != nil {
		fmt.Fprintf(&b, " | score=%d", *ev.Score)
	}
	b.WriteByte('\n')
	return b.String()
}

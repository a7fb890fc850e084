package model

import "time"

const (
	SessionStatusOnline = "online"
	SessionStatusAway   = "away"
	SessionStatusBusy   = "busy"
)

// Session is one editor's presence record. There is at most one session
// per user; heartbeats upsert by user_id.
type Session struct {
	ID          string            `json:"id" bson:"_id"`
	UserID      string            `json:"user_id" bson:"user_id" validate:"required"`
	Username    string            `json:"username" bson:"username" validate:"required"`
	Status      string            `json:"status" bson:"status" validate:"required,oneof=online away busy"`
	LastSeenAt  time.Time         `json:"last_seen_at" bson:"last_seen_at"`
	CurrentPage string            `json:"current_page,omitempty" bson:"current_page,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

// Heartbeat is the client-supplied portion of a presence update.
type Heartbeat struct {
	UserID      string            `json:"user_id" validate:"required"`
	Username    string            `json:"username" validate:"required"`
	Status      string            `json:"status" validate:"omitempty,oneof=online away busy"`
	CurrentPage string            `json:"current_page,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

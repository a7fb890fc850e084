package model

import "time"

// BroadcastUserID is the sentinel recipient meaning "every reader".
const BroadcastUserID = "all"

const (
	NotificationInfo    = "info"
	NotificationSuccess = "success"
	NotificationWarning = "warning"
	NotificationError   = "error"
)

// Notification is a per-user (or broadcast) message. IsRead only ever
// transitions false to true. A zero ExpiresAt means the notification
// never expires on its own and is only removed by retention cleanup.
type Notification struct {
	ID        string         `json:"id" bson:"_id"`
	UserID    string         `json:"user_id" bson:"user_id" validate:"required"`
	Type      string         `json:"type" bson:"type" validate:"required,oneof=info success warning error"`
	Title     string         `json:"title" bson:"title" validate:"required"`
	Message   string         `json:"message" bson:"message" validate:"required"`
	Data      map[string]any `json:"data,omitempty" bson:"data,omitempty"`
	IsRead    bool           `json:"is_read" bson:"is_read"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
	ExpiresAt time.Time      `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
}

// NotificationRequest is the create/broadcast payload. UserID is ignored
// for broadcasts.
type NotificationRequest struct {
	UserID    string         `json:"user_id"`
	Type      string         `json:"type" validate:"required,oneof=info success warning error"`
	Title     string         `json:"title" validate:"required"`
	Message   string         `json:"message" validate:"required"`
	Data      map[string]any `json:"data,omitempty"`
	ExpiresAt time.Time      `json:"expires_at,omitempty"`
}

// Inbox is what a user sees when listing: their notifications plus
// broadcasts, newest first.
type Inbox struct {
	Notifications []*Notification `json:"notifications"`
	UnreadCount   int             `json:"unread_count"`
}

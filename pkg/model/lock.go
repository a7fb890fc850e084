package model

import "time"

// ContentLock grants one editor exclusive edit access over a
// (resource_type, resource_id) pair until expires_at. At most one active
// lock may exist per pair; the lock service enforces this at acquisition
// time, not the store.
type ContentLock struct {
	ID           string    `json:"id" bson:"_id"`
	ResourceType string    `json:"resource_type" bson:"resource_type" validate:"required"`
	ResourceID   string    `json:"resource_id" bson:"resource_id" validate:"required"`
	UserID       string    `json:"user_id" bson:"user_id" validate:"required"`
	Username     string    `json:"username" bson:"username" validate:"required"`
	LockedAt     time.Time `json:"locked_at" bson:"locked_at"`
	ExpiresAt    time.Time `json:"expires_at" bson:"expires_at"`
}

// LockRequest is the acquire payload.
type LockRequest struct {
	ResourceType string `json:"resource_type" validate:"required"`
	ResourceID   string `json:"resource_id" validate:"required"`
	UserID       string `json:"user_id" validate:"required"`
	Username     string `json:"username" validate:"required"`
}

// LockFilter narrows lock listings to one resource type, id or holder.
type LockFilter struct {
	ResourceType string
	ResourceID   string
	UserID       string
}

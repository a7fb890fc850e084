package model

import "time"

// AuditEntry records one mutating operation against the coordination
// subsystem. The audit log is append-only and capped store-wide.
type AuditEntry struct {
	ID         string            `json:"id" bson:"_id"`
	Timestamp  time.Time         `json:"timestamp" bson:"timestamp"`
	User       string            `json:"user" bson:"user" validate:"required"`
	Action     string            `json:"action" bson:"action" validate:"required"`
	Resource   string            `json:"resource" bson:"resource" validate:"required"`
	ResourceID string            `json:"resource_id" bson:"resource_id"`
	Changes    []AuditChange     `json:"changes,omitempty" bson:"changes,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

type AuditChange struct {
	Field    string `json:"field" bson:"field"`
	OldValue any    `json:"old_value" bson:"old_value"`
	NewValue any    `json:"new_value" bson:"new_value"`
}

// AuditFilter narrows audit listings.
type AuditFilter struct {
	User      string
	Action    string
	Resource  string
	StartDate time.Time
	EndDate   time.Time
}

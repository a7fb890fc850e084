package model

import "time"

const (
	StatusScheduled = "scheduled"
	StatusPublished = "published"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Publish action kinds, executed in the order declared on the item.
const (
	ActionDeploy          = "deploy"
	ActionSEOCheck        = "seo_check"
	ActionSocialMedia     = "social_media"
	ActionGenerateSitemap = "generate_sitemap"
	ActionClearCache      = "clear_cache"
)

// ContentDraft is the opaque content-record payload a scheduled item
// carries until publication materializes it in the content store.
type ContentDraft struct {
	Fields map[string]any `json:"fields" bson:"fields"`
	Body   string         `json:"body" bson:"body"`
}

// ScheduledItem is one piece of content waiting in the publish lifecycle.
// published and cancelled are terminal; failed items stay eligible for
// re-processing on the next pass.
type ScheduledItem struct {
	ID                string       `json:"id" bson:"_id"`
	Type              string       `json:"type" bson:"type" validate:"required"`
	Title             string       `json:"title" bson:"title" validate:"required"`
	ScheduledAt       time.Time    `json:"scheduled_at" bson:"scheduled_at" validate:"required,future"`
	Status            string       `json:"status" bson:"status" validate:"required,oneof=scheduled published failed cancelled"`
	CreatedAt         time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at" bson:"updated_at"`
	Author            string       `json:"author" bson:"author" validate:"required"`
	Payload           ContentDraft `json:"payload" bson:"payload"`
	PublishActions    []string     `json:"publish_actions" bson:"publish_actions" validate:"required,min=1,dive,known_action"`
	NotificationsSent bool         `json:"notifications_sent" bson:"notifications_sent"`
	RetryCount        int          `json:"retry_count" bson:"retry_count"`
	LastError         string       `json:"last_error,omitempty" bson:"last_error,omitempty"`
}

// ScheduledItemUpdate is a merge-patch for a scheduled item. Nil/zero
// fields are left unchanged.
type ScheduledItemUpdate struct {
	Title          string        `json:"title,omitempty"`
	ScheduledAt    *time.Time    `json:"scheduled_at,omitempty"`
	Payload        *ContentDraft `json:"payload,omitempty"`
	PublishActions []string      `json:"publish_actions,omitempty" validate:"omitempty,min=1,dive,known_action"`
}

// ScheduledItemFilter narrows listings.
type ScheduledItemFilter struct {
	Status   string
	Type     string
	Upcoming bool
}

// ScheduleStats summarizes the queue for dashboards.
type ScheduleStats struct {
	Total     int `json:"total"`
	Scheduled int `json:"scheduled"`
	Published int `json:"published"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
	Upcoming  int `json:"upcoming"`
}

// ProcessResult reports the outcome of one item within a processing pass.
type ProcessResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

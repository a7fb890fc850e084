package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	notificationerrors "pressroom/internal/notifications/errors"
	"pressroom/internal/notifications/repository"
	"pressroom/pkg/config"
	apperrors "pressroom/pkg/errors"
	"pressroom/pkg/expiry"
	"pressroom/pkg/metrics"
	"pressroom/pkg/model"
)

type NotificationService interface {
	Notify(ctx context.Context, req model.NotificationRequest) (*model.Notification, error)
	Broadcast(ctx context.Context, req model.NotificationRequest) (*model.Notification, error)
	Inbox(ctx context.Context, userID string) (*model.Inbox, error)
	MarkRead(ctx context.Context, id string) (*model.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id string) error
	PurgeOlderThan(ctx context.Context, days int, userID string) (int64, error)
	Cleanup(ctx context.Context, now time.Time) (int64, error)
}

type notificationService struct {
	repo     repository.NotificationRepository
	validate *validator.Validate
	cfg      *config.Config
	metrics  metrics.Collector
}

func NewNotificationService(repo repository.NotificationRepository, cfg *config.Config, collector metrics.Collector) NotificationService {
	return &notificationService{
		repo:     repo,
		validate: validator.New(),
		cfg:      cfg,
		metrics:  collector,
	}
}

func (s *notificationService) Notify(ctx context.Context, req model.NotificationRequest) (*model.Notification, error) {
	if req.UserID == "" {
		return nil, apperrors.InvalidInput("user_id is required")
	}
	return s.create(ctx, req)
}

// Broadcast stores a single record under the sentinel recipient rather
// than fanning out one copy per user. Every inbox read folds it in.
func (s *notificationService) Broadcast(ctx context.Context, req model.NotificationRequest) (*model.Notification, error) {
	req.UserID = model.BroadcastUserID
	return s.create(ctx, req)
}

func (s *notificationService) create(ctx context.Context, req model.NotificationRequest) (*model.Notification, error) {
	if req.Type == "" {
		req.Type = model.NotificationInfo
	}

	if err := s.validate.Struct(&req); err != nil {
		s.cfg.Log.Warn("Notification validation failed",
			"user_id", req.UserID,
			"error", err,
		)
		return nil, apperrors.Validation("Notification validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	// A zero ExpiresAt is stored as-is: the notification never expires
	// on its own and is only removed by retention cleanup or the cap.
	now := time.Now().UTC()
	notification := &model.Notification{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Type:      req.Type,
		Title:     req.Title,
		Message:   req.Message,
		Data:      req.Data,
		IsRead:    false,
		CreatedAt: now,
		ExpiresAt: req.ExpiresAt,
	}

	if err := s.repo.Insert(ctx, notification); err != nil {
		return nil, apperrors.Internal("Failed to create notification", err)
	}

	// Each inbox is capped; the oldest entries give way to the new one.
	trimmed, err := s.repo.TrimForUser(ctx, notification.UserID, s.cfg.NotificationCapPerUser)
	if err != nil {
		s.cfg.Log.Warn("Failed to trim notification inbox",
			"user_id", notification.UserID,
			"error", err,
		)
	} else if trimmed > 0 {
		s.cfg.Log.Debug("Trimmed notification inbox",
			"user_id", notification.UserID,
			"removed", trimmed,
		)
	}

	s.metrics.RecordNotificationCreated()
	s.cfg.Log.Info("Notification created",
		"notification_id", notification.ID,
		"user_id", notification.UserID,
		"type", notification.Type,
	)
	return notification, nil
}

// Inbox degrades to an empty listing when the store cannot be read. A
// user opening their notification panel should never see a hard error
// because of a bad record.
func (s *notificationService) Inbox(ctx context.Context, userID string) (*model.Inbox, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	notifications, err := s.repo.FindForUser(ctx, userID)
	if err != nil {
		s.cfg.Log.Warn("Failed to read notifications, returning empty inbox",
			"user_id", userID,
			"error", err,
		)
		return &model.Inbox{Notifications: []*model.Notification{}}, nil
	}

	now := time.Now().UTC()
	inbox := &model.Inbox{Notifications: make([]*model.Notification, 0, len(notifications))}
	for _, n := range notifications {
		if expiry.Expired(n.ExpiresAt, now) {
			continue
		}
		inbox.Notifications = append(inbox.Notifications, n)
		if !n.IsRead {
			inbox.UnreadCount++
		}
	}
	return inbox, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id string) (*model.Notification, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Notification ID cannot be empty")
	}

	notification, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		if errors.Is(err, notificationerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Notification", id)
		}
		return nil, apperrors.Internal("Failed to mark notification read", err)
	}
	return notification, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, apperrors.InvalidInput("User ID cannot be empty")
	}

	marked, err := s.repo.MarkAllForUser(ctx, userID)
	if err != nil {
		return 0, apperrors.Internal("Failed to mark notifications read", err)
	}

	s.cfg.Log.Debug("Marked notifications read", "user_id", userID, "count", marked)
	return marked, nil
}

func (s *notificationService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Notification ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, notificationerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Notification", id)
		}
		return apperrors.Internal("Failed to delete notification", err)
	}
	return nil
}

func (s *notificationService) PurgeOlderThan(ctx context.Context, days int, userID string) (int64, error) {
	if days == 0 {
		days = s.cfg.NotificationRetentionDays
	}
	if days <= 0 {
		return 0, apperrors.InvalidInput("days must be positive")
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	purged, err := s.repo.DeleteOlderThan(ctx, cutoff, userID)
	if err != nil {
		return 0, apperrors.Internal("Failed to purge old notifications", err)
	}

	s.cfg.Log.Info("Purged old notifications",
		"days", days,
		"user_id", userID,
		"removed", purged,
	)
	return purged, nil
}

func (s *notificationService) Cleanup(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.DeleteExpired(ctx, now)
}

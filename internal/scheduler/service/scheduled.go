package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pressroom/internal/scheduler/actions"
	schedulererrors "pressroom/internal/scheduler/errors"
	"pressroom/internal/scheduler/repository"
	"pressroom/internal/scheduler/validator"
	"pressroom/pkg/config"
	apperrors "pressroom/pkg/errors"
	"pressroom/pkg/kafka"
	"pressroom/pkg/metrics"
	"pressroom/pkg/model"
)

// PublishNotifier announces publication outcomes to every connected
// editor.
type PublishNotifier interface {
	Broadcast(ctx context.Context, req model.NotificationRequest) (*model.Notification, error)
}

// AuditRecorder records mutating scheduler operations on the audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, entry *model.AuditEntry) error
}

// EventEmitter publishes lifecycle events to the message bus. May be
// backed by a no-op when no brokers are configured.
type EventEmitter interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type ScheduledItemService interface {
	Schedule(ctx context.Context, item *model.ScheduledItem) (*model.ScheduledItem, error)
	GetByID(ctx context.Context, id string) (*model.ScheduledItem, error)
	List(ctx context.Context, filter model.ScheduledItemFilter) ([]*model.ScheduledItem, *model.ScheduleStats, error)
	Update(ctx context.Context, id string, update model.ScheduledItemUpdate) (*model.ScheduledItem, error)
	Cancel(ctx context.Context, id string) (*model.ScheduledItem, error)
	ProcessDue(ctx context.Context) ([]model.ProcessResult, error)
}

type scheduledItemService struct {
	repo      repository.ScheduledItemRepository
	validator *validator.ScheduledItemValidator
	runner    actions.Runner
	notifier  PublishNotifier
	auditor   AuditRecorder
	emitter   EventEmitter
	cfg       *config.Config
	metrics   metrics.Collector
}

func NewScheduledItemService(
	repo repository.ScheduledItemRepository,
	v *validator.ScheduledItemValidator,
	runner actions.Runner,
	notifier PublishNotifier,
	auditor AuditRecorder,
	emitter EventEmitter,
	cfg *config.Config,
	collector metrics.Collector,
) ScheduledItemService {
	return &scheduledItemService{
		repo:      repo,
		validator: v,
		runner:    runner,
		notifier:  notifier,
		auditor:   auditor,
		emitter:   emitter,
		cfg:       cfg,
		metrics:   collector,
	}
}

func (s *scheduledItemService) Schedule(ctx context.Context, item *model.ScheduledItem) (*model.ScheduledItem, error) {
	now := time.Now().UTC()
	item.ID = uuid.NewString()
	item.Status = model.StatusScheduled
	item.CreatedAt = now
	item.UpdatedAt = now
	item.NotificationsSent = false
	item.RetryCount = 0
	item.LastError = ""

	if err := s.validator.Validate(item); err != nil {
		s.cfg.Log.Warn("Scheduled item validation failed",
			"title", item.Title,
			"error", err,
		)
		return nil, apperrors.Validation("Scheduled item validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.Insert(ctx, item); err != nil {
		return nil, apperrors.Internal("Failed to create scheduled item", err)
	}

	s.audit(ctx, item.Author, "schedule.create", item)
	s.cfg.Log.Info("Content scheduled",
		"item_id", item.ID,
		"title", item.Title,
		"scheduled_at", item.ScheduledAt,
		"actions", item.PublishActions,
	)
	return item, nil
}

func (s *scheduledItemService) GetByID(ctx context.Context, id string) (*model.ScheduledItem, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("ID cannot be empty")
	}

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, schedulererrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Scheduled item", id)
		}
		return nil, apperrors.Internal("Failed to look up scheduled item", err)
	}
	return item, nil
}

func (s *scheduledItemService) List(ctx context.Context, filter model.ScheduledItemFilter) ([]*model.ScheduledItem, *model.ScheduleStats, error) {
	items, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, nil, apperrors.Internal("Failed to list scheduled items", err)
	}

	now := time.Now().UTC()
	stats := &model.ScheduleStats{Total: len(items)}
	for _, item := range items {
		switch item.Status {
		case model.StatusScheduled:
			stats.Scheduled++
			if item.ScheduledAt.After(now) {
				stats.Upcoming++
			}
		case model.StatusPublished:
			stats.Published++
		case model.StatusFailed:
			stats.Failed++
		case model.StatusCancelled:
			stats.Cancelled++
		}
	}
	return items, stats, nil
}

// Update merge-patches a scheduled or failed item. Published and
// cancelled items are immutable. The future-date rule applies only to
// items that are still scheduled; a failed item may be repointed at any
// date so it qualifies for the next processing pass.
func (s *scheduledItemService) Update(ctx context.Context, id string, update model.ScheduledItemUpdate) (*model.ScheduledItem, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("ID cannot be empty")
	}

	if err := s.validator.ValidateUpdate(&update); err != nil {
		return nil, apperrors.Validation("Scheduled item validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	item, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if item.Status != model.StatusScheduled && item.Status != model.StatusFailed {
		return nil, apperrors.InvalidState(fmt.Sprintf("Cannot update item in status %q", item.Status))
	}

	if item.Status == model.StatusScheduled && update.ScheduledAt != nil {
		if err := s.validator.ValidateFutureDate(*update.ScheduledAt); err != nil {
			return nil, apperrors.Validation("Scheduled item validation failed", map[string]any{
				"error": err.Error(),
			})
		}
	}

	var changes []model.AuditChange
	if update.Title != "" && update.Title != item.Title {
		changes = append(changes, model.AuditChange{Field: "title", OldValue: item.Title, NewValue: update.Title})
		item.Title = update.Title
	}
	if update.ScheduledAt != nil && !update.ScheduledAt.Equal(item.ScheduledAt) {
		changes = append(changes, model.AuditChange{Field: "scheduled_at", OldValue: item.ScheduledAt, NewValue: *update.ScheduledAt})
		item.ScheduledAt = update.ScheduledAt.UTC()
	}
	if update.Payload != nil {
		changes = append(changes, model.AuditChange{Field: "payload"})
		item.Payload = *update.Payload
	}
	if update.PublishActions != nil {
		changes = append(changes, model.AuditChange{Field: "publish_actions", OldValue: item.PublishActions, NewValue: update.PublishActions})
		item.PublishActions = update.PublishActions
	}

	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Replace(ctx, item); err != nil {
		if errors.Is(err, schedulererrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Scheduled item", id)
		}
		return nil, apperrors.Internal("Failed to update scheduled item", err)
	}

	s.auditWithChanges(ctx, item.Author, "schedule.update", item, changes)
	s.cfg.Log.Info("Scheduled item updated", "item_id", id, "fields_changed", len(changes))
	return item, nil
}

// Cancel marks a scheduled or failed item cancelled. Published items are
// already out the door and cancelled ones stay cancelled.
func (s *scheduledItemService) Cancel(ctx context.Context, id string) (*model.ScheduledItem, error) {
	item, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if item.Status == model.StatusPublished || item.Status == model.StatusCancelled {
		return nil, apperrors.InvalidState(fmt.Sprintf("Cannot cancel item in status %q", item.Status))
	}

	item.Status = model.StatusCancelled
	item.UpdatedAt = time.Now().UTC()
	if err := s.repo.Replace(ctx, item); err != nil {
		return nil, apperrors.Internal("Failed to cancel scheduled item", err)
	}

	s.audit(ctx, item.Author, "schedule.cancel", item)
	s.cfg.Log.Info("Scheduled item cancelled", "item_id", id, "title", item.Title)
	return item, nil
}

// ProcessDue runs one publishing pass over everything due. Each item is
// handled in isolation: one failure marks that item failed and the pass
// moves on. Results come back in ascending due-time order.
func (s *scheduledItemService) ProcessDue(ctx context.Context) ([]model.ProcessResult, error) {
	now := time.Now().UTC()
	due, err := s.repo.FindDue(ctx, now)
	if err != nil {
		return nil, apperrors.Internal("Failed to find due items", err)
	}

	results := make([]model.ProcessResult, 0, len(due))
	for _, item := range due {
		results = append(results, s.processOne(ctx, item))
	}

	if len(results) > 0 {
		s.cfg.Log.Info("Processing pass complete", "processed", len(results))
	}
	return results, nil
}

func (s *scheduledItemService) processOne(ctx context.Context, item *model.ScheduledItem) model.ProcessResult {
	result := model.ProcessResult{ID: item.ID, Title: item.Title}

	if err := s.runner.Publish(ctx, item); err != nil {
		return s.markFailed(ctx, item, err, result)
	}

	// The broadcast happens at most once per item even when a failed
	// attempt is retried later: the flag persists across passes. A
	// failed dispatch fails the whole item so the next pass retries it;
	// the publish actions themselves are idempotent.
	if !item.NotificationsSent && s.notifier != nil {
		_, err := s.notifier.Broadcast(ctx, model.NotificationRequest{
			Type:    model.NotificationSuccess,
			Title:   "Content published",
			Message: fmt.Sprintf("%q is now live", item.Title),
			Data:    map[string]any{"item_id": item.ID, "type": item.Type},
		})
		if err != nil {
			return s.markFailed(ctx, item, fmt.Errorf("publish notification: %w", err), result)
		}
	}
	item.NotificationsSent = true

	item.Status = model.StatusPublished
	item.LastError = ""
	item.UpdatedAt = time.Now().UTC()

	if err := s.repo.Replace(ctx, item); err != nil {
		s.cfg.Log.Error("Failed to persist published state",
			"item_id", item.ID,
			"error", err,
		)
		result.Success = false
		result.Error = err.Error()
		return result
	}

	s.metrics.RecordItemPublished()
	s.emit(ctx, kafka.EventContentPublished, item, "")
	s.audit(ctx, item.Author, "schedule.publish", item)
	s.cfg.Log.Info("Content published",
		"item_id", item.ID,
		"title", item.Title,
		"retry_count", item.RetryCount,
	)

	result.Success = true
	return result
}

func (s *scheduledItemService) markFailed(ctx context.Context, item *model.ScheduledItem, cause error, result model.ProcessResult) model.ProcessResult {
	item.Status = model.StatusFailed
	item.RetryCount++
	item.LastError = cause.Error()
	item.UpdatedAt = time.Now().UTC()

	if saveErr := s.repo.Replace(ctx, item); saveErr != nil {
		s.cfg.Log.Error("Failed to persist failure state",
			"item_id", item.ID,
			"error", saveErr,
		)
	}

	s.metrics.RecordItemFailed()
	s.emit(ctx, kafka.EventPublishFailed, item, cause.Error())
	s.cfg.Log.Warn("Publication failed",
		"item_id", item.ID,
		"title", item.Title,
		"retry_count", item.RetryCount,
		"error", cause,
	)

	result.Success = false
	result.Error = cause.Error()
	return result
}

func (s *scheduledItemService) emit(ctx context.Context, eventType string, item *model.ScheduledItem, errMsg string) {
	if s.emitter == nil {
		return
	}

	payload := map[string]any{
		"item_id":      item.ID,
		"type":         item.Type,
		"title":        item.Title,
		"scheduled_at": item.ScheduledAt,
		"retry_count":  item.RetryCount,
	}
	if errMsg != "" {
		payload["error"] = errMsg
	}

	msg, err := kafka.NewMessage().
		WithKey(item.ID).
		WithValue(payload).
		WithEventType(eventType).
		WithSource("scheduler").
		Build()
	if err != nil {
		s.cfg.Log.Warn("Failed to build lifecycle event", "item_id", item.ID, "error", err)
		return
	}

	if err := s.emitter.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to emit lifecycle event",
			"item_id", item.ID,
			"event_type", eventType,
			"error", err,
		)
	}
}

func (s *scheduledItemService) audit(ctx context.Context, user, action string, item *model.ScheduledItem) {
	s.auditWithChanges(ctx, user, action, item, nil)
}

func (s *scheduledItemService) auditWithChanges(ctx context.Context, user, action string, item *model.ScheduledItem, changes []model.AuditChange) {
	if s.auditor == nil {
		return
	}
	entry := &model.AuditEntry{
		User:       user,
		Action:     action,
		Resource:   item.Type,
		ResourceID: item.ID,
		Changes:    changes,
		Metadata:   map[string]string{"title": item.Title},
	}
	if err := s.auditor.Record(ctx, entry); err != nil {
		s.cfg.Log.Warn("Failed to record audit entry", "action", action, "error", err)
	}
}

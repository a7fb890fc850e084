package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	lockerrors "pressroom/internal/locks/errors"
	"pressroom/internal/locks/repository"
	"pressroom/pkg/config"
	apperrors "pressroom/pkg/errors"
	"pressroom/pkg/expiry"
	"pressroom/pkg/metrics"
	"pressroom/pkg/model"
)

// AuditRecorder records mutating lock operations on the audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, entry *model.AuditEntry) error
}

type LockService interface {
	Acquire(ctx context.Context, req model.LockRequest) (*model.ContentLock, error)
	Release(ctx context.Context, lockID string) error
	Extend(ctx context.Context, lockID string) (*model.ContentLock, error)
	List(ctx context.Context, filter model.LockFilter) ([]*model.ContentLock, error)
	Cleanup(ctx context.Context, now time.Time) (int64, error)
}

type lockService struct {
	repo    repository.LockRepository
	cfg     *config.Config
	auditor AuditRecorder
	metrics metrics.Collector
}

func NewLockService(repo repository.LockRepository, cfg *config.Config, auditor AuditRecorder, collector metrics.Collector) LockService {
	return &lockService{
		repo:    repo,
		cfg:     cfg,
		auditor: auditor,
		metrics: collector,
	}
}

// Acquire grants an exclusive lock over the (resource_type, resource_id)
// pair. The check is optimistic read-then-write against the store, not an
// atomic compare-and-swap: two acquires racing within one store round
// trip can both succeed. Accepted for a human-editing-speed workload.
func (s *lockService) Acquire(ctx context.Context, req model.LockRequest) (*model.ContentLock, error) {
	req.ResourceType = strings.TrimSpace(req.ResourceType)
	req.ResourceID = strings.TrimSpace(req.ResourceID)
	req.UserID = strings.TrimSpace(req.UserID)
	req.Username = strings.TrimSpace(req.Username)

	if req.ResourceType == "" || req.ResourceID == "" || req.UserID == "" || req.Username == "" {
		return nil, apperrors.InvalidInput("resource_type, resource_id, user_id and username are required")
	}

	now := time.Now().UTC()

	existing, err := s.repo.FindByResource(ctx, req.ResourceType, req.ResourceID)
	if err != nil {
		return nil, apperrors.Internal("Failed to check existing locks", err)
	}

	for _, l := range existing {
		if l.UserID != req.UserID && !expiry.Expired(l.ExpiresAt, now) {
			s.metrics.RecordLockConflict()
			s.cfg.Log.Info("Lock acquisition rejected",
				"resource_type", req.ResourceType,
				"resource_id", req.ResourceID,
				"requested_by", req.UserID,
				"held_by", l.UserID,
				"held_until", l.ExpiresAt,
			)
			return nil, apperrors.Conflict("Resource is locked by another user").WithDetails(map[string]any{
				"lock": l,
			})
		}
	}

	// Idempotent re-acquire: replace this user's own lock rather than
	// stacking a second record.
	if err := s.repo.DeleteOwned(ctx, req.ResourceType, req.ResourceID, req.UserID); err != nil {
		return nil, apperrors.Internal("Failed to replace existing lock", err)
	}

	lock := &model.ContentLock{
		ID:           uuid.NewString(),
		ResourceType: req.ResourceType,
		ResourceID:   req.ResourceID,
		UserID:       req.UserID,
		Username:     req.Username,
		LockedAt:     now,
		ExpiresAt:    expiry.Deadline(now, s.cfg.LockTTL),
	}

	if err := s.repo.Insert(ctx, lock); err != nil {
		return nil, apperrors.Internal("Failed to create lock", err)
	}

	s.metrics.RecordLockAcquired()
	s.audit(ctx, req.UserID, "lock.acquire", req.ResourceType, req.ResourceID)
	s.cfg.Log.Info("Lock acquired",
		"lock_id", lock.ID,
		"resource_type", lock.ResourceType,
		"resource_id", lock.ResourceID,
		"user_id", lock.UserID,
		"expires_at", lock.ExpiresAt,
	)
	return lock, nil
}

// Release deletes the lock unconditionally. Any caller who knows the
// lock id may release it; requiring the releasing identity to match the
// holder is a known hardening opportunity.
func (s *lockService) Release(ctx context.Context, lockID string) error {
	if lockID == "" {
		return apperrors.InvalidInput("Lock ID cannot be empty")
	}

	lock, err := s.repo.FindByID(ctx, lockID)
	if err != nil {
		if errors.Is(err, lockerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Lock", lockID)
		}
		return apperrors.Internal("Failed to look up lock", err)
	}

	if err := s.repo.Delete(ctx, lockID); err != nil {
		if errors.Is(err, lockerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Lock", lockID)
		}
		return apperrors.Internal("Failed to release lock", err)
	}

	s.audit(ctx, lock.UserID, "lock.release", lock.ResourceType, lock.ResourceID)
	s.cfg.Log.Info("Lock released", "lock_id", lockID)
	return nil
}

func (s *lockService) Extend(ctx context.Context, lockID string) (*model.ContentLock, error) {
	if lockID == "" {
		return nil, apperrors.InvalidInput("Lock ID cannot be empty")
	}

	now := time.Now().UTC()
	lock, err := s.repo.UpdateExpiry(ctx, lockID, expiry.Deadline(now, s.cfg.LockTTL))
	if err != nil {
		if errors.Is(err, lockerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Lock", lockID)
		}
		return nil, apperrors.Internal("Failed to extend lock", err)
	}

	s.cfg.Log.Debug("Lock extended", "lock_id", lockID, "expires_at", lock.ExpiresAt)
	return lock, nil
}

// List returns active locks only; records past their expiry are hidden
// even before the next GC pass removes them.
func (s *lockService) List(ctx context.Context, filter model.LockFilter) ([]*model.ContentLock, error) {
	locks, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal("Failed to list locks", err)
	}

	now := time.Now().UTC()
	active := make([]*model.ContentLock, 0, len(locks))
	for _, l := range locks {
		if !expiry.Expired(l.ExpiresAt, now) {
			active = append(active, l)
		}
	}
	return active, nil
}

func (s *lockService) Cleanup(ctx context.Context, now time.Time) (int64, error) {
	removed, err := s.repo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *lockService) audit(ctx context.Context, user, action, resourceType, resourceID string) {
	if s.auditor == nil {
		return
	}
	entry := &model.AuditEntry{
		User:       user,
		Action:     action,
		Resource:   resourceType,
		ResourceID: resourceID,
	}
	if err := s.auditor.Record(ctx, entry); err != nil {
		s.cfg.Log.Warn("Failed to record audit entry", "action", action, "error", err)
	}
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pressroom/internal/audit/repository"
	"pressroom/pkg/config"
	apperrors "pressroom/pkg/errors"
	"pressroom/pkg/model"
)

type AuditService interface {
	Record(ctx context.Context, entry *model.AuditEntry) error
	List(ctx context.Context, filter model.AuditFilter, limit, offset int) ([]*model.AuditEntry, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
	cfg  *config.Config
}

func NewAuditService(repo repository.AuditRepository, cfg *config.Config) AuditService {
	return &auditService{
		repo: repo,
		cfg:  cfg,
	}
}

// Record appends one entry and keeps the log within its cap. Writers
// treat audit failures as non-fatal, so Record never blocks a domain
// operation for long.
func (s *auditService) Record(ctx context.Context, entry *model.AuditEntry) error {
	if entry.User == "" || entry.Action == "" || entry.Resource == "" {
		return apperrors.InvalidInput("user, action and resource are required")
	}

	entry.ID = uuid.NewString()
	entry.Timestamp = time.Now().UTC()

	if err := s.repo.Insert(ctx, entry); err != nil {
		return apperrors.Internal("Failed to record audit entry", err)
	}

	trimmed, err := s.repo.TrimToCap(ctx, s.cfg.AuditLogCap)
	if err != nil {
		s.cfg.Log.Warn("Failed to trim audit log", "error", err)
	} else if trimmed > 0 {
		s.cfg.Log.Debug("Trimmed audit log", "removed", trimmed)
	}
	return nil
}

func (s *auditService) List(ctx context.Context, filter model.AuditFilter, limit, offset int) ([]*model.AuditEntry, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	type listResult struct {
		entries []*model.AuditEntry
		err     error
	}
	type countResult struct {
		count int64
		err   error
	}

	listCh := make(chan listResult, 1)
	countCh := make(chan countResult, 1)

	go func() {
		entries, err := s.repo.FindAll(ctx, filter, limit, offset)
		listCh <- listResult{entries, err}
	}()
	go func() {
		count, err := s.repo.Count(ctx, filter)
		countCh <- countResult{count, err}
	}()

	lr := <-listCh
	if lr.err != nil {
		return nil, 0, apperrors.Internal("Failed to list audit entries", lr.err)
	}
	cr := <-countCh
	if cr.err != nil {
		return nil, 0, apperrors.Internal("Failed to count audit entries", cr.err)
	}

	return lr.entries, cr.count, nil
}

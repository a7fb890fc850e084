package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pressroom/internal/presence/repository"
	"pressroom/internal/presence/validator"
	"pressroom/pkg/config"
	apperrors "pressroom/pkg/errors"
	"pressroom/pkg/expiry"
	"pressroom/pkg/model"
)

type SessionService interface {
	Heartbeat(ctx context.Context, hb model.Heartbeat) (*model.Session, error)
	GetByUserID(ctx context.Context, userID string) (*model.Session, error)
	ListActive(ctx context.Context) ([]*model.Session, error)
	ListAll(ctx context.Context) ([]*model.Session, error)
	Disconnect(ctx context.Context, userID string) error
	Cleanup(ctx context.Context, now time.Time) (int64, error)
}

type sessionService struct {
	repo      repository.SessionRepository
	validator *validator.SessionValidator
	cfg       *config.Config
}

func NewSessionService(repo repository.SessionRepository, v *validator.SessionValidator, cfg *config.Config) SessionService {
	return &sessionService{
		repo:      repo,
		validator: v,
		cfg:       cfg,
	}
}

// Heartbeat registers or refreshes the caller's presence. The session id
// is stable across refreshes: the repository upserts by user_id and only
// assigns the generated id on first insert.
func (s *sessionService) Heartbeat(ctx context.Context, hb model.Heartbeat) (*model.Session, error) {
	if err := s.validator.ValidateHeartbeat(&hb); err != nil {
		s.cfg.Log.Warn("Heartbeat validation failed",
			"user_id", hb.UserID,
			"error", err,
		)
		return nil, apperrors.Validation("Heartbeat validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if hb.Status == "" {
		hb.Status = model.SessionStatusOnline
	}

	session := &model.Session{
		ID:          uuid.NewString(),
		UserID:      hb.UserID,
		Username:    hb.Username,
		Status:      hb.Status,
		LastSeenAt:  time.Now().UTC(),
		CurrentPage: hb.CurrentPage,
		Metadata:    hb.Metadata,
	}

	stored, err := s.repo.Upsert(ctx, session)
	if err != nil {
		return nil, apperrors.Internal("Failed to record heartbeat", err)
	}

	s.cfg.Log.Debug("Heartbeat recorded",
		"session_id", stored.ID,
		"user_id", stored.UserID,
		"status", stored.Status,
	)
	return stored, nil
}

func (s *sessionService) GetByUserID(ctx context.Context, userID string) (*model.Session, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	session, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("Failed to look up session", err)
	}
	if session == nil {
		return nil, apperrors.NotFoundWithID("Session", userID)
	}

	now := time.Now().UTC()
	if expiry.StaleSince(session.LastSeenAt, s.cfg.PresenceTimeout, now) {
		return nil, apperrors.NotFoundWithID("Session", userID)
	}
	return session, nil
}

// ListActive returns everyone who reports online and whose last
// heartbeat is within the presence timeout. Away and busy editors have
// live sessions but are not listed as online; stale records are hidden
// even before the GC pass removes them from the store.
func (s *sessionService) ListActive(ctx context.Context) ([]*model.Session, error) {
	sessions, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to list sessions", err)
	}

	now := time.Now().UTC()
	active := make([]*model.Session, 0, len(sessions))
	for _, sess := range sessions {
		if sess.Status != model.SessionStatusOnline {
			continue
		}
		if !expiry.StaleSince(sess.LastSeenAt, s.cfg.PresenceTimeout, now) {
			active = append(active, sess)
		}
	}
	return active, nil
}

// ListAll includes stale sessions that the timeout has not yet
// removed. Mostly useful for debugging presence issues.
func (s *sessionService) ListAll(ctx context.Context) ([]*model.Session, error) {
	sessions, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to list sessions", err)
	}
	return sessions, nil
}

// Disconnect removes the user's session immediately rather than waiting
// for the timeout. Unknown users are a no-op so a client closing twice
// does not surface an error.
func (s *sessionService) Disconnect(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.InvalidInput("User ID cannot be empty")
	}

	removed, err := s.repo.DeleteByUserID(ctx, userID)
	if err != nil {
		return apperrors.Internal("Failed to remove session", err)
	}
	if removed > 0 {
		s.cfg.Log.Info("Session disconnected", "user_id", userID)
	}
	return nil
}

func (s *sessionService) Cleanup(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-s.cfg.PresenceTimeout)
	return s.repo.DeleteStale(ctx, cutoff)
}

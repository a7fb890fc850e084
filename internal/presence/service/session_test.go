package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"pressroom/internal/presence/validator"
	"pressroom/pkg/config"
	apperrors "pressroom/pkg/errors"
	"pressroom/pkg/logger"
	"pressroom/pkg/model"
)

// ────────────────────────────────────────────────
// Mock repository for testing
// ────────────────────────────────────────────────

type mockSessionRepository struct {
	upsertFunc         func(ctx context.Context, session *model.Session) (*model.Session, error)
	findByUserIDFunc   func(ctx context.Context, userID string) (*model.Session, error)
	findAllFunc        func(ctx context.Context) ([]*model.Session, error)
	deleteByUserIDFunc func(ctx context.Context, userID string) (int64, error)
	deleteStaleFunc    func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *mockSessionRepository) Upsert(ctx context.Context, session *model.Session) (*model.Session, error) {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, session)
	}
	return session, nil
}

func (m *mockSessionRepository) FindByUserID(ctx context.Context, userID string) (*model.Session, error) {
	if m.findByUserIDFunc != nil {
		return m.findByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockSessionRepository) FindAll(ctx context.Context) ([]*model.Session, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx)
	}
	return nil, nil
}

func (m *mockSessionRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	if m.deleteByUserIDFunc != nil {
		return m.deleteByUserIDFunc(ctx, userID)
	}
	return 0, nil
}

func (m *mockSessionRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.deleteStaleFunc != nil {
		return m.deleteStaleFunc(ctx, cutoff)
	}
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   logger.ERROR,
			Format:  logger.JSON,
			Output:  io.Discard,
			Service: "test",
		}),
		PresenceTimeout: 30 * time.Minute,
	}
}

func newService(repo *mockSessionRepository, cfg *config.Config) SessionService {
	return NewSessionService(repo, validator.NewSessionValidator(cfg.Log), cfg)
}

// ────────────────────────────────────────────────
// Tests for Heartbeat()
// ────────────────────────────────────────────────

func TestHeartbeat_DefaultsToOnline(t *testing.T) {
	cfg := testConfig()
	var upserted *model.Session
	mockRepo := &mockSessionRepository{
		upsertFunc: func(ctx context.Context, session *model.Session) (*model.Session, error) {
			upserted = session
			return session, nil
		},
	}

	svc := newService(mockRepo, cfg)
	sess, err := svc.Heartbeat(context.Background(), model.Heartbeat{
		UserID:   "alice",
		Username: "Alice",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Status != model.SessionStatusOnline {
		t.Errorf("expected default status online, got %s", sess.Status)
	}
	if upserted == nil || upserted.LastSeenAt.IsZero() {
		t.Error("expected last_seen_at to be stamped")
	}
}

func TestHeartbeat_RejectsUnknownStatus(t *testing.T) {
	svc := newService(&mockSessionRepository{}, testConfig())

	_, err := svc.Heartbeat(context.Background(), model.Heartbeat{
		UserID:   "alice",
		Username: "Alice",
		Status:   "sleeping",
	})
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHeartbeat_RejectsMissingIdentity(t *testing.T) {
	svc := newService(&mockSessionRepository{}, testConfig())

	for i, hb := range []model.Heartbeat{
		{Username: "Alice"},
		{UserID: "alice"},
	} {
		_, err := svc.Heartbeat(context.Background(), hb)
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeValidation {
			t.Errorf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestHeartbeat_PreservesStoredSessionID(t *testing.T) {
	mockRepo := &mockSessionRepository{
		upsertFunc: func(ctx context.Context, session *model.Session) (*model.Session, error) {
			// Store already holds a session for this user.
			stored := *session
			stored.ID = "original-session"
			return &stored, nil
		},
	}

	svc := newService(mockRepo, testConfig())
	sess, err := svc.Heartbeat(context.Background(), model.Heartbeat{
		UserID:   "alice",
		Username: "Alice",
		Status:   model.SessionStatusAway,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.ID != "original-session" {
		t.Errorf("expected stored session id to survive refresh, got %s", sess.ID)
	}
	if sess.Status != model.SessionStatusAway {
		t.Errorf("expected refreshed status away, got %s", sess.Status)
	}
}

// ────────────────────────────────────────────────
// Tests for ListActive() and GetByUserID()
// ────────────────────────────────────────────────

func TestListActive_HidesStaleSessions(t *testing.T) {
	now := time.Now().UTC()
	mockRepo := &mockSessionRepository{
		findAllFunc: func(ctx context.Context) ([]*model.Session, error) {
			return []*model.Session{
				{ID: "fresh", UserID: "alice", Status: model.SessionStatusOnline, LastSeenAt: now.Add(-time.Minute)},
				{ID: "stale", UserID: "bob", Status: model.SessionStatusOnline, LastSeenAt: now.Add(-45 * time.Minute)},
			}, nil
		},
	}

	svc := newService(mockRepo, testConfig())
	sessions, err := svc.ListActive(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != "fresh" {
		t.Errorf("expected only the fresh session, got %v", sessions)
	}
}

func TestListActive_OnlyOnlineStatus(t *testing.T) {
	now := time.Now().UTC()
	mockRepo := &mockSessionRepository{
		findAllFunc: func(ctx context.Context) ([]*model.Session, error) {
			return []*model.Session{
				{ID: "s1", UserID: "alice", Status: model.SessionStatusOnline, LastSeenAt: now.Add(-time.Minute)},
				{ID: "s2", UserID: "bob", Status: model.SessionStatusBusy, LastSeenAt: now.Add(-time.Minute)},
				{ID: "s3", UserID: "carol", Status: model.SessionStatusAway, LastSeenAt: now.Add(-time.Minute)},
			}, nil
		},
	}

	svc := newService(mockRepo, testConfig())
	sessions, err := svc.ListActive(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sessions) != 1 || sessions[0].UserID != "alice" {
		t.Errorf("expected only the online session, got %v", sessions)
	}
}

func TestGetByUserID_StaleIsNotFound(t *testing.T) {
	mockRepo := &mockSessionRepository{
		findByUserIDFunc: func(ctx context.Context, userID string) (*model.Session, error) {
			return &model.Session{
				ID:         "stale",
				UserID:     userID,
				LastSeenAt: time.Now().UTC().Add(-time.Hour),
			}, nil
		},
	}

	svc := newService(mockRepo, testConfig())
	_, err := svc.GetByUserID(context.Background(), "bob")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected not found for stale session, got %v", err)
	}
}

// ────────────────────────────────────────────────
// Tests for Disconnect() and Cleanup()
// ────────────────────────────────────────────────

func TestDisconnect_UnknownUserIsNoOp(t *testing.T) {
	mockRepo := &mockSessionRepository{
		deleteByUserIDFunc: func(ctx context.Context, userID string) (int64, error) {
			return 0, nil
		},
	}

	svc := newService(mockRepo, testConfig())
	if err := svc.Disconnect(context.Background(), "ghost"); err != nil {
		t.Fatalf("expected no error for unknown user, got %v", err)
	}
}

func TestCleanup_UsesTimeoutCutoff(t *testing.T) {
	now := time.Now().UTC()
	var gotCutoff time.Time
	mockRepo := &mockSessionRepository{
		deleteStaleFunc: func(ctx context.Context, cutoff time.Time) (int64, error) {
			gotCutoff = cutoff
			return 2, nil
		},
	}

	svc := newService(mockRepo, testConfig())
	removed, err := svc.Cleanup(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removals, got %d", removed)
	}
	want := now.Add(-30 * time.Minute)
	if !gotCutoff.Equal(want) {
		t.Errorf("expected cutoff %v, got %v", want, gotCutoff)
	}
}

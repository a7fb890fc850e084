package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	notificationerrors "pressroom/internal/notifications/errors"
	"pressroom/pkg/config"
	apperrors "pressroom/pkg/errors"
	"pressroom/pkg/logger"
	"pressroom/pkg/metrics"
	"pressroom/pkg/model"
)

// ────────────────────────────────────────────────
// Mock repository for testing
// ────────────────────────────────────────────────

type mockNotificationRepository struct {
	insertFunc         func(ctx context.Context, n *model.Notification) error
	findForUserFunc    func(ctx context.Context, userID string) ([]*model.Notification, error)
	markReadFunc       func(ctx context.Context, id string) (*model.Notification, error)
	markAllForUserFunc func(ctx context.Context, userID string) (int64, error)
	deleteFunc         func(ctx context.Context, id string) error
	trimForUserFunc    func(ctx context.Context, userID string, cap int) (int64, error)
	deleteOlderFunc    func(ctx context.Context, cutoff time.Time, userID string) (int64, error)
	deleteExpiredFunc  func(ctx context.Context, now time.Time) (int64, error)
}

func (m *mockNotificationRepository) Insert(ctx context.Context, n *model.Notification) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, n)
	}
	return nil
}

func (m *mockNotificationRepository) FindForUser(ctx context.Context, userID string) ([]*model.Notification, error) {
	if m.findForUserFunc != nil {
		return m.findForUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockNotificationRepository) MarkRead(ctx context.Context, id string) (*model.Notification, error) {
	if m.markReadFunc != nil {
		return m.markReadFunc(ctx, id)
	}
	return &model.Notification{ID: id, IsRead: true}, nil
}

func (m *mockNotificationRepository) MarkAllForUser(ctx context.Context, userID string) (int64, error) {
	if m.markAllForUserFunc != nil {
		return m.markAllForUserFunc(ctx, userID)
	}
	return 0, nil
}

func (m *mockNotificationRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockNotificationRepository) TrimForUser(ctx context.Context, userID string, cap int) (int64, error) {
	if m.trimForUserFunc != nil {
		return m.trimForUserFunc(ctx, userID, cap)
	}
	return 0, nil
}

func (m *mockNotificationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time, userID string) (int64, error) {
	if m.deleteOlderFunc != nil {
		return m.deleteOlderFunc(ctx, cutoff, userID)
	}
	return 0, nil
}

func (m *mockNotificationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.deleteExpiredFunc != nil {
		return m.deleteExpiredFunc(ctx, now)
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
		NotificationCapPerUser:    100,
		NotificationRetentionDays: 30,
	}
}

// ────────────────────────────────────────────────
// Tests for Notify() and Broadcast()
// ────────────────────────────────────────────────

func TestNotify_DefaultsTypeAndKeepsZeroExpiry(t *testing.T) {
	var inserted *model.Notification
	mockRepo := &mockNotificationRepository{
		insertFunc: func(ctx context.Context, n *model.Notification) error {
			inserted = n
			return nil
		},
	}

	svc := NewNotificationService(mockRepo, testConfig(), metrics.Noop())
	n, err := svc.Notify(context.Background(), model.NotificationRequest{
		UserID:  "alice",
		Title:   "Lock released",
		Message: "Your lock on hello-world expired",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Type != model.NotificationInfo {
		t.Errorf("expected default type info, got %s", n.Type)
	}
	if inserted == nil {
		t.Fatal("notification was not persisted")
	}
	if !n.ExpiresAt.IsZero() {
		t.Errorf("omitted expiry must stay zero (never expires), got %v", n.ExpiresAt)
	}
	if n.IsRead {
		t.Error("new notification must start unread")
	}
}

func TestNotify_KeepsCallerExpiry(t *testing.T) {
	svc := NewNotificationService(&mockNotificationRepository{}, testConfig(), metrics.Noop())

	expires := time.Now().UTC().Add(2 * time.Hour)
	n, err := svc.Notify(context.Background(), model.NotificationRequest{
		UserID:    "alice",
		Title:     "Deploy finished",
		Message:   "Build 42 is live",
		ExpiresAt: expires,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !n.ExpiresAt.Equal(expires) {
		t.Errorf("expected caller expiry %v, got %v", expires, n.ExpiresAt)
	}
}

func TestNotify_RequiresRecipient(t *testing.T) {
	svc := NewNotificationService(&mockNotificationRepository{}, testConfig(), metrics.Noop())

	_, err := svc.Notify(context.Background(), model.NotificationRequest{
		Title:   "x",
		Message: "y",
	})
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestNotify_RejectsUnknownType(t *testing.T) {
	svc := NewNotificationService(&mockNotificationRepository{}, testConfig(), metrics.Noop())

	_, err := svc.Notify(context.Background(), model.NotificationRequest{
		UserID:  "alice",
		Type:    "urgent",
		Title:   "x",
		Message: "y",
	})
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBroadcast_UsesSentinelRecipient(t *testing.T) {
	var inserted *model.Notification
	mockRepo := &mockNotificationRepository{
		insertFunc: func(ctx context.Context, n *model.Notification) error {
			inserted = n
			return nil
		},
	}

	svc := NewNotificationService(mockRepo, testConfig(), metrics.Noop())
	_, err := svc.Broadcast(context.Background(), model.NotificationRequest{
		UserID:  "ignored",
		Type:    model.NotificationWarning,
		Title:   "Maintenance",
		Message: "Editing pauses at midnight",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted.UserID != model.BroadcastUserID {
		t.Errorf("expected broadcast recipient %q, got %q", model.BroadcastUserID, inserted.UserID)
	}
}

func TestNotify_TrimsInboxAtCap(t *testing.T) {
	var trimUser string
	var trimCap int
	mockRepo := &mockNotificationRepository{
		trimForUserFunc: func(ctx context.Context, userID string, cap int) (int64, error) {
			trimUser = userID
			trimCap = cap
			return 1, nil
		},
	}

	svc := NewNotificationService(mockRepo, testConfig(), metrics.Noop())
	_, err := svc.Notify(context.Background(), model.NotificationRequest{
		UserID:  "alice",
		Title:   "x",
		Message: "y",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trimUser != "alice" || trimCap != 100 {
		t.Errorf("expected trim of alice's inbox at 100, got user=%q cap=%d", trimUser, trimCap)
	}
}

// ────────────────────────────────────────────────
// Tests for Inbox()
// ────────────────────────────────────────────────

func TestInbox_CountsUnreadAcrossDirectAndBroadcast(t *testing.T) {
	now := time.Now().UTC()
	mockRepo := &mockNotificationRepository{
		findForUserFunc: func(ctx context.Context, userID string) ([]*model.Notification, error) {
			return []*model.Notification{
				{ID: "n1", UserID: "alice", IsRead: false, CreatedAt: now},
				{ID: "n2", UserID: model.BroadcastUserID, IsRead: false, CreatedAt: now.Add(-time.Minute)},
				{ID: "n3", UserID: "alice", IsRead: true, CreatedAt: now.Add(-2 * time.Minute)},
			}, nil
		},
	}

	svc := NewNotificationService(mockRepo, testConfig(), metrics.Noop())
	inbox, err := svc.Inbox(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inbox.Notifications) != 3 {
		t.Errorf("expected 3 notifications, got %d", len(inbox.Notifications))
	}
	if inbox.UnreadCount != 2 {
		t.Errorf("expected 2 unread, got %d", inbox.UnreadCount)
	}
}

func TestInbox_HidesExpiredNotifications(t *testing.T) {
	now := time.Now().UTC()
	mockRepo := &mockNotificationRepository{
		findForUserFunc: func(ctx context.Context, userID string) ([]*model.Notification, error) {
			return []*model.Notification{
				{ID: "live", UserID: "alice", ExpiresAt: now.Add(time.Hour)},
				{ID: "dead", UserID: "alice", ExpiresAt: now.Add(-time.Hour)},
			}, nil
		},
	}

	svc := NewNotificationService(mockRepo, testConfig(), metrics.Noop())
	inbox, err := svc.Inbox(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inbox.Notifications) != 1 || inbox.Notifications[0].ID != "live" {
		t.Errorf("expected only the live notification, got %v", inbox.Notifications)
	}
}

func TestInbox_StoreFailureYieldsEmptyInbox(t *testing.T) {
	mockRepo := &mockNotificationRepository{
		findForUserFunc: func(ctx context.Context, userID string) ([]*model.Notification, error) {
			return nil, errors.New("corrupt record")
		},
	}

	svc := NewNotificationService(mockRepo, testConfig(), metrics.Noop())
	inbox, err := svc.Inbox(context.Background(), "alice")
	if err != nil {
		t.Fatalf("expected graceful degradation, got %v", err)
	}
	if len(inbox.Notifications) != 0 || inbox.UnreadCount != 0 {
		t.Errorf("expected empty inbox, got %+v", inbox)
	}
}

// ────────────────────────────────────────────────
// Tests for MarkRead(), MarkAllRead(), Delete()
// ────────────────────────────────────────────────

func TestMarkRead_UnknownNotification(t *testing.T) {
	mockRepo := &mockNotificationRepository{
		markReadFunc: func(ctx context.Context, id string) (*model.Notification, error) {
			return nil, notificationerrors.ErrNotFound
		},
	}

	svc := NewNotificationService(mockRepo, testConfig(), metrics.Noop())
	_, err := svc.MarkRead(context.Background(), "missing")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestMarkAllRead_ReportsCount(t *testing.T) {
	mockRepo := &mockNotificationRepository{
		markAllForUserFunc: func(ctx context.Context, userID string) (int64, error) {
			if userID != "alice" {
				t.Errorf("expected alice, got %s", userID)
			}
			return 4, nil
		},
	}

	svc := NewNotificationService(mockRepo, testConfig(), metrics.Noop())
	marked, err := svc.MarkAllRead(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marked != 4 {
		t.Errorf("expected 4 marked, got %d", marked)
	}
}

func TestPurgeOlderThan_ScopesToUserAndCutoff(t *testing.T) {
	var gotCutoff time.Time
	var gotUser string
	mockRepo := &mockNotificationRepository{
		deleteOlderFunc: func(ctx context.Context, cutoff time.Time, userID string) (int64, error) {
			gotCutoff = cutoff
			gotUser = userID
			return 5, nil
		},
	}

	svc := NewNotificationService(mockRepo, testConfig(), metrics.Noop())
	purged, err := svc.PurgeOlderThan(context.Background(), 7, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if purged != 5 {
		t.Errorf("expected 5 purged, got %d", purged)
	}
	if gotUser != "alice" {
		t.Errorf("expected alice scope, got %q", gotUser)
	}
	wantCutoff := time.Now().UTC().AddDate(0, 0, -7)
	if gotCutoff.Sub(wantCutoff) > time.Minute || wantCutoff.Sub(gotCutoff) > time.Minute {
		t.Errorf("expected cutoff near %v, got %v", wantCutoff, gotCutoff)
	}
}

func TestPurgeOlderThan_RejectsNegativeDays(t *testing.T) {
	svc := NewNotificationService(&mockNotificationRepository{}, testConfig(), metrics.Noop())

	_, err := svc.PurgeOlderThan(context.Background(), -7, "")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestPurgeOlderThan_ZeroDaysUsesRetentionDefault(t *testing.T) {
	var gotCutoff time.Time
	mockRepo := &mockNotificationRepository{
		deleteOlderFunc: func(ctx context.Context, cutoff time.Time, userID string) (int64, error) {
			gotCutoff = cutoff
			return 4, nil
		},
	}
	svc := NewNotificationService(mockRepo, testConfig(), metrics.Noop())

	purged, err := svc.PurgeOlderThan(context.Background(), 0, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if purged != 4 {
		t.Errorf("expected 4 purged, got %d", purged)
	}

	want := time.Now().UTC().AddDate(0, 0, -30)
	if gotCutoff.Sub(want) > time.Minute || want.Sub(gotCutoff) > time.Minute {
		t.Errorf("expected cutoff near the 30 day retention window, got %v", gotCutoff)
	}
}

func TestDelete_UnknownNotification(t *testing.T) {
	mockRepo := &mockNotificationRepository{
		deleteFunc: func(ctx context.Context, id string) error {
			return notificationerrors.ErrNotFound
		},
	}

	svc := NewNotificationService(mockRepo, testConfig(), metrics.Noop())
	err := svc.Delete(context.Background(), "missing")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

// ────────────────────────────────────────────────
// Inbox cap outcome over a stateful store
// ────────────────────────────────────────────────

// Drives the create-then-trim path against one stateful store honoring
// the repository contract (newest-first reads, trim keeps the newest
// cap entries) and asserts the resulting inbox: 101 notifications
// leave exactly the 100 most recent, with the oldest dropped.
func TestNotify_InboxNeverExceedsCap(t *testing.T) {
	var stored []*model.Notification
	mockRepo := &mockNotificationRepository{
		insertFunc: func(ctx context.Context, n *model.Notification) error {
			stored = append(stored, n)
			return nil
		},
		trimForUserFunc: func(ctx context.Context, userID string, cap int) (int64, error) {
			var kept []*model.Notification
			excess := 0
			for _, n := range stored {
				if n.UserID == userID {
					excess++
				}
			}
			excess -= cap
			removed := int64(0)
			for _, n := range stored {
				if n.UserID == userID && excess > 0 {
					excess--
					removed++
					continue
				}
				kept = append(kept, n)
			}
			stored = kept
			return removed, nil
		},
		findForUserFunc: func(ctx context.Context, userID string) ([]*model.Notification, error) {
			var out []*model.Notification
			for i := len(stored) - 1; i >= 0; i-- {
				if stored[i].UserID == userID || stored[i].UserID == model.BroadcastUserID {
					out = append(out, stored[i])
				}
			}
			return out, nil
		},
	}

	svc := NewNotificationService(mockRepo, testConfig(), metrics.Noop())
	ctx := context.Background()

	var first, last *model.Notification
	for i := 0; i < 101; i++ {
		n, err := svc.Notify(ctx, model.NotificationRequest{
			UserID:  "alice",
			Title:   fmt.Sprintf("event %d", i),
			Message: "something happened",
		})
		if err != nil {
			t.Fatalf("notify %d failed: %v", i, err)
		}
		if i == 0 {
			first = n
		}
		last = n
	}

	inbox, err := svc.Inbox(ctx, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inbox.Notifications) != 100 {
		t.Fatalf("expected the inbox capped at 100, got %d", len(inbox.Notifications))
	}
	if inbox.Notifications[0].ID != last.ID {
		t.Errorf("expected the newest notification first, got %s", inbox.Notifications[0].Title)
	}
	for _, n := range inbox.Notifications {
		if n.ID == first.ID {
			t.Error("the oldest notification should have been trimmed")
		}
	}
}

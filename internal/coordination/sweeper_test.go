package coordination

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pressroom/pkg/logger"
	"pressroom/pkg/metrics"
)

type fakeCleaner struct {
	calls   int
	removed int64
	err     error
}

func (f *fakeCleaner) Cleanup(ctx context.Context, now time.Time) (int64, error) {
	f.calls++
	return f.removed, f.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   logger.ERROR,
		Format:  logger.JSON,
		Output:  io.Discard,
		Service: "test",
	})
}

func TestSweep_RunsEveryTarget(t *testing.T) {
	locks := &fakeCleaner{removed: 2}
	sessions := &fakeCleaner{removed: 0}

	s := NewSweeper(metrics.Noop(), testLogger())
	s.Register("content_locks", locks)
	s.Register("sessions", sessions)

	s.Sweep(context.Background(), time.Now())
	if locks.calls != 1 || sessions.calls != 1 {
		t.Errorf("expected all targets swept, got %d/%d", locks.calls, sessions.calls)
	}
}

func TestSweep_FailureDoesNotStopOthers(t *testing.T) {
	broken := &fakeCleaner{err: errors.New("store down")}
	healthy := &fakeCleaner{}

	s := NewSweeper(metrics.Noop(), testLogger())
	s.Register("notifications", broken)
	s.Register("sessions", healthy)

	s.Sweep(context.Background(), time.Now())
	if healthy.calls != 1 {
		t.Error("expected healthy target swept despite failure elsewhere")
	}
}

func TestMiddleware_SweepsBeforeRequest(t *testing.T) {
	cleaner := &fakeCleaner{}
	s := NewSweeper(metrics.Noop(), testLogger())
	s.Register("content_locks", cleaner)

	var sweptBeforeHandler bool
	handler := s.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sweptBeforeHandler = cleaner.calls == 1
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/locks", nil))

	if !sweptBeforeHandler {
		t.Error("expected sweep to run before the handler")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected request to proceed, got %d", rec.Code)
	}
}

package expiry

import (
	"testing"
	"time"
)

func TestExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		deadline time.Time
		want     bool
	}{
		{"future deadline", now.Add(time.Minute), false},
		{"past deadline", now.Add(-time.Minute), true},
		{"exactly now", now, true},
		{"zero deadline never expires", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Expired(tt.deadline, now); got != tt.want {
				t.Errorf("Expired(%v, %v) = %v, want %v", tt.deadline, now, got, tt.want)
			}
		})
	}
}

func TestRemaining(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if got := Remaining(now.Add(30*time.Minute), now); got != 30*time.Minute {
		t.Errorf("expected 30m remaining, got %v", got)
	}
	if got := Remaining(now.Add(-time.Second), now); got != 0 {
		t.Errorf("expected 0 for past deadline, got %v", got)
	}
	if got := Remaining(time.Time{}, now); got != 0 {
		t.Errorf("expected 0 for zero deadline, got %v", got)
	}
}

func TestDeadline(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	want := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)

	if got := Deadline(now, 30*time.Minute); !got.Equal(want) {
		t.Errorf("Deadline = %v, want %v", got, want)
	}
}

func TestStaleSince(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if StaleSince(now.Add(-29*time.Minute), 30*time.Minute, now) {
		t.Error("29 minutes old should not be stale with a 30 minute timeout")
	}
	if !StaleSince(now.Add(-31*time.Minute), 30*time.Minute, now) {
		t.Error("31 minutes old should be stale with a 30 minute timeout")
	}
	// Exactly at the timeout is still considered alive.
	if StaleSince(now.Add(-30*time.Minute), 30*time.Minute, now) {
		t.Error("exactly 30 minutes old should not be stale")
	}
}

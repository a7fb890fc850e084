package validator

import (
	"io"
	"strings"
	"testing"
	"time"

	"pressroom/pkg/logger"
	"pressroom/pkg/model"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   logger.ERROR,
		Format:  logger.JSON,
		Output:  io.Discard,
		Service: "test",
	})
}

func validItem() *model.ScheduledItem {
	return &model.ScheduledItem{
		ID:             "item-1",
		Type:           "post",
		Title:          "Launch announcement",
		ScheduledAt:    time.Now().Add(time.Hour),
		Status:         model.StatusScheduled,
		Author:         "alice",
		PublishActions: []string{model.ActionDeploy},
	}
}

func TestValidate_AcceptsCompleteItem(t *testing.T) {
	v := NewScheduledItemValidator(testLogger())
	if err := v.Validate(validItem()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_RejectsPastSchedule(t *testing.T) {
	v := NewScheduledItemValidator(testLogger())

	item := validItem()
	item.ScheduledAt = time.Now().Add(-time.Minute)
	err := v.Validate(item)
	if err == nil {
		t.Fatal("expected error for past scheduled_at")
	}
	if !strings.Contains(err.Error(), "future") {
		t.Errorf("expected future-date message, got %v", err)
	}
}

func TestValidate_RejectsUnknownAction(t *testing.T) {
	v := NewScheduledItemValidator(testLogger())

	item := validItem()
	item.PublishActions = []string{model.ActionDeploy, "launch_rockets"}
	if err := v.Validate(item); err == nil {
		t.Fatal("expected error for unknown publish action")
	}
}

func TestValidate_RejectsEmptyActions(t *testing.T) {
	v := NewScheduledItemValidator(testLogger())

	item := validItem()
	item.PublishActions = nil
	if err := v.Validate(item); err == nil {
		t.Fatal("expected error for empty publish actions")
	}
}

func TestValidate_RejectsMissingRequiredFields(t *testing.T) {
	v := NewScheduledItemValidator(testLogger())

	tests := []struct {
		name   string
		mutate func(*model.ScheduledItem)
	}{
		{"missing type", func(i *model.ScheduledItem) { i.Type = "" }},
		{"missing title", func(i *model.ScheduledItem) { i.Title = "" }},
		{"missing author", func(i *model.ScheduledItem) { i.Author = "" }},
		{"unknown status", func(i *model.ScheduledItem) { i.Status = "pending" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := validItem()
			tt.mutate(item)
			if err := v.Validate(item); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestValidateUpdate_IgnoresUnsetFields(t *testing.T) {
	v := NewScheduledItemValidator(testLogger())
	if err := v.ValidateUpdate(&model.ScheduledItemUpdate{}); err != nil {
		t.Fatalf("empty patch should validate, got %v", err)
	}
}

func TestValidateFutureDate(t *testing.T) {
	v := NewScheduledItemValidator(testLogger())

	if err := v.ValidateFutureDate(time.Now().Add(-time.Hour)); err == nil {
		t.Fatal("expected error for past date")
	}
	if err := v.ValidateFutureDate(time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("future date should validate, got %v", err)
	}
}

func TestValidateUpdate_RejectsUnknownActionInPatch(t *testing.T) {
	v := NewScheduledItemValidator(testLogger())

	err := v.ValidateUpdate(&model.ScheduledItemUpdate{
		PublishActions: []string{"tweet_loudly"},
	})
	if err == nil {
		t.Fatal("expected error for unknown action in patch")
	}
}

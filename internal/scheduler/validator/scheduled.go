package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"pressroom/pkg/logger"
	"pressroom/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type ScheduledItemValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewScheduledItemValidator(log *logger.Logger) *ScheduledItemValidator {
	v := validator.New()

	if err := v.RegisterValidation("future", validateFuture); err != nil {
		log.Fatal("Failed to register 'future' validator", "error", err)
	}
	if err := v.RegisterValidation("known_action", validateKnownAction); err != nil {
		log.Fatal("Failed to register 'known_action' validator", "error", err)
	}

	log.Info("Scheduled item validator initialized successfully")

	return &ScheduledItemValidator{
		validate: v,
		logger:   log,
	}
}

func validateFuture(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return t.After(time.Now())
}

func validateKnownAction(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case model.ActionDeploy,
		model.ActionSEOCheck,
		model.ActionSocialMedia,
		model.ActionGenerateSitemap,
		model.ActionClearCache:
		return true
	}
	return false
}

func (v *ScheduledItemValidator) Validate(item *model.ScheduledItem) error {
	if err := v.validate.Struct(item); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// ValidateUpdate checks only the fields the merge-patch actually sets.
func (v *ScheduledItemValidator) ValidateUpdate(update *model.ScheduledItemUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// ValidateFutureDate checks the future-date rule separately from the
// structural patch validation: whether a reschedule must be in the
// future depends on the item's current status, which only the service
// knows.
func (v *ScheduledItemValidator) ValidateFutureDate(scheduledAt time.Time) error {
	if !scheduledAt.After(time.Now()) {
		return ValidationErrors{{
			Field:   "ScheduledAt",
			Message: "scheduled_at must be in the future",
		}}
	}
	return nil
}

func (v *ScheduledItemValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must contain at least %s element(s)", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "future":
			message = "scheduled_at must be in the future"
		case "known_action":
			message = "publish_actions may only contain deploy, seo_check, social_media, generate_sitemap or clear_cache"
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}

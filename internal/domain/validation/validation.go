// Package validation checks service inputs with go-playground/validator and
// turns failures into VALIDATION application errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/campuspulse/feedback-service/internal/domain/entities"
	apperrors "github.com/campuspulse/feedback-service/pkg/errors"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return field.Name
			}
			return name
		})
		_ = v.RegisterValidation("rating", func(fl validator.FieldLevel) bool {
			return entities.Rating(fl.Field().Int()).Valid()
		})
		_ = v.RegisterValidation("feedback_status", func(fl validator.FieldLevel) bool {
			return entities.FeedbackStatus(fl.Field().String()).Valid()
		})
		instance = v
	})
	return instance
}

// Struct validates s and returns a *errors.AppError describing the first
// failing field, or nil.
func Struct(s interface{}) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.NewInternalError("validation failed", err)
	}
	return apperrors.NewValidationError(message(fieldErrs[0]))
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "rating":
		return fmt.Sprintf("%s must be between %d and %d", field, entities.MinRating, entities.MaxRating)
	case "feedback_status":
		return fmt.Sprintf("%s must be one of: all, %s, %s", field, entities.FeedbackStatusPending, entities.FeedbackStatusResponded)
	case "email":
		return "please fill a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot be more than %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

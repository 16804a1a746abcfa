package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrValidation matches every *ValidationError with errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError rejects a request before any work starts.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// Is makes errors.Is(err, ErrValidation) true.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ErrUnavailable is returned when an optional collaborator is not configured.
var ErrUnavailable = errors.New("pipeline: feature not configured")

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct reports the first failing field of v as a *ValidationError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		msg := fmt.Sprintf("failed on %q", fe.Tag())
		if fe.Tag() == "required" {
			msg = "is required"
		}
		return &ValidationError{Field: field, Message: msg}
	}
	return err
}

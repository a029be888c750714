// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator for structured validation.
// Using a struct allows for dependency injection and easier testing.
type Validator struct {
	v *validator.Validate
}

// New creates a new Validator instance.
// Domain-specific validation rules can be registered using RegisterValidation.
func New() *Validator {
	return &Validator{
		v: validator.New(),
	}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation registers a custom validation function.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}

// FieldError describes a single failing field. Every failing field of a
// request is reported, not just the first.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors converts a validation error into the full list of failing
// fields. The messages map is keyed by struct field name and supplies the
// user-facing message; fields without an entry get a generic message.
// Returns nil if err is not a validator error.
func FieldErrors(err error, messages map[string]string) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	result := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		message, ok := messages[fe.Field()]
		if !ok {
			message = fe.Field() + " is invalid."
		}
		result = append(result, FieldError{Field: fe.Field(), Message: message})
	}
	return result
}

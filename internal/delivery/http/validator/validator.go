// Package validator adapts go-playground/validator to echo's Validator interface.
package validator

import (
	domainerrors "gatehouse/internal/domain/errors"

	"github.com/go-playground/validator/v10"
)

// Validator wraps a validator.Validate instance for echo.
type Validator struct {
	validate *validator.Validate
}

// New creates the request validator.
func New() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate checks struct tags and maps failures onto the validation error
// so the central error handler renders a 400 with field details.
func (v *Validator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}

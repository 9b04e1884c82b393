package common

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct checks `validate` tags on a request struct and returns
// ErrValidation naming the first offending field.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return Errorf("invalid value passed to validator: %w", ErrInternalServer)
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return Errorf("field %q failed rule %q: %w", fieldErrs[0].Field(), fieldErrs[0].Tag(), ErrValidation)
	}
	return Errorf("request validation: %w", ErrValidation)
}

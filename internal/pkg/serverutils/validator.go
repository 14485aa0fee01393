package serverutils

import (
	"strings"

	"subscout-be/internal/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct tag validation and reports the first failing
// field as a validation error.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		first := errs[0]
		return apperror.Invalid(strings.ToLower(first.Field()), "failed on %s", first.Tag())
	}

	return apperror.Invalid("request", "%s", err.Error())
}

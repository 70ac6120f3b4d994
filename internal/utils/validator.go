// internal/utils/validator.go
package utils

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("spec_key", validateSpecKey)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// ValidateVar checks a single value against a tag list such as "min=1".
func ValidateVar(v interface{}, tag string) error {
	return validate.Var(v, tag)
}

// specification option names become JSON keys of the add request
func validateSpecKey(fl validator.FieldLevel) bool {
	key := fl.Field().String()
	if key == "" || len(key) > 64 {
		return false
	}
	switch key {
	case "productId", "product_id", "quantity":
		return false
	}
	return true
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "spec_key":
		return "Specification names must be 1-64 characters and not reuse productId or quantity"
	default:
		return e.Field() + " is invalid"
	}
}

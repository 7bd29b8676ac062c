package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report field names as they appear in JSON bodies
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// Validate checks a struct against its validate tags and returns a
// readable message for the first failing field
func Validate(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return fmt.Errorf("invalid validation error: %w", err)
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return err
	}

	firstErr := validationErrors[0]
	fieldName := firstErr.Field()
	param := firstErr.Param()

	switch firstErr.Tag() {
	case "required":
		return fmt.Errorf("field '%s' is required", fieldName)
	case "email":
		return fmt.Errorf("field '%s' must be a valid email address", fieldName)
	case "min":
		return fmt.Errorf("field '%s' must be at least %s", fieldName, param)
	case "max":
		return fmt.Errorf("field '%s' must be at most %s", fieldName, param)
	case "gt":
		return fmt.Errorf("field '%s' must be greater than %s", fieldName, param)
	case "gte":
		return fmt.Errorf("field '%s' must be greater than or equal to %s", fieldName, param)
	case "oneof":
		return fmt.Errorf("field '%s' must be one of [%s]", fieldName, param)
	case "url":
		return fmt.Errorf("field '%s' must be a valid URL", fieldName)
	case "nefield":
		return fmt.Errorf("field '%s' must differ from '%s'", fieldName, param)
	default:
		return fmt.Errorf("field '%s' validation failed on tag '%s'", fieldName, firstErr.Tag())
	}
}

// GetValidator returns the shared validator instance
func GetValidator() *validator.Validate {
	return validate
}

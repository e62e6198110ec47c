package validate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"albumshop/internal/apperr"
)

var structValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return Password(fl.Field().String())
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		_, ok := Category(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		return Date(fl.Field().String())
	})
	_ = v.RegisterValidation("resid", func(fl validator.FieldLevel) bool {
		_, ok := ID(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("postal", func(fl validator.FieldLevel) bool {
		_, ok := PostalCode(fl.Field().String())
		return ok
	})
	return v
}

// DecodeJSON unmarshals body into dest and validates its struct tags.
// Unknown fields are ignored. Failures are InvalidInput errors whose
// details map json field names to messages.
func DecodeJSON(body []byte, dest any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return apperr.Wrap(apperr.KindInvalidInput, err, "invalid request body").
			WithDetails(map[string]any{"body": "must be a JSON object"})
	}
	return Struct(dest)
}

// Struct validates dest against its `validate` tags.
func Struct(dest any) error {
	if err := structValidator.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
		}
		return apperr.InvalidInput("validation failed").WithDetails(details)
	}
	return apperr.Wrap(apperr.KindInvalidInput, err, "validation failed")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "password":
		return "must be 8-20 characters with upper, lower, digit and symbol"
	case "category":
		return "must be one of female_group, male_group, solo"
	case "isodate":
		return "must be a YYYY-MM-DD date"
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	}
	return "is invalid"
}

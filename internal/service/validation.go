package service

import (
	"encoding/json"
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Payload structs mirror the writable part of each resource. Fields are
// pointers so that "absent" and "zero" stay distinguishable: required fires
// only when the field is missing from the body, while the range rules fire
// on the value that was actually sent.

type UserPayload struct {
	Login    *string `json:"login" validate:"required,min=5,max=50,login_format"`
	Password *string `json:"password" validate:"required,min=5"`
	Name     *string `json:"name" validate:"omitempty,min=5,max=50"`
}

type LoginPayload struct {
	Login    *string `json:"login" validate:"required"`
	Password *string `json:"password" validate:"required"`
}

type TimezonePayload struct {
	City            *string `json:"city" validate:"required,min=1,max=200"`
	GMTDeltaSeconds *int64  `json:"gmt_delta_seconds" validate:"required,gt=-54000,lt=54000"`
}

var loginFormatRegexp = regexp.MustCompile(`^[a-zA-Z][0-9a-zA-Z]+$`)

// Validator decodes JSON request bodies into payload structs and checks the
// declared rules, turning every problem into a field-addressed
// [*ValidationError] suitable for the error responder.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()

	// report fields under their wire names, not Go names
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("login_format", validLoginFormat); err != nil {
		panic(err)
	}

	return &Validator{validate: v}
}

func validLoginFormat(fl validator.FieldLevel) bool {
	return loginFormatRegexp.MatchString(fl.Field().String())
}

// DecodeAndValidate unmarshals the raw body into payload and runs the
// payload's validation rules. An empty body counts as an empty object, so
// every required field reports "is missing". The returned error is always a
// [*ValidationError] when the input is at fault.
func (v *Validator) DecodeAndValidate(body json.RawMessage, payload any) error {
	if len(body) != 0 {
		if err := json.Unmarshal(body, payload); err != nil {
			return decodeError(err)
		}
	}

	if err := v.validate.Struct(payload); err != nil {
		var violations validator.ValidationErrors
		if !errors.As(err, &violations) {
			return err
		}

		verr := &ValidationError{}
		for _, violation := range violations {
			verr.Fields = append(verr.Fields, FieldError{
				Field:   violation.Field(),
				Message: ruleMessage(violation),
			})
		}
		return verr
	}

	return nil
}

// decodeError maps JSON syntax and type mismatches onto the validation
// taxonomy. Type errors are addressed to the offending field; anything else
// is reported against the body as a whole.
func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return NewValidationError(typeErr.Field, "must be of type "+typeErr.Type.String())
	}
	return NewValidationError("body", "must be a valid JSON object")
}

func ruleMessage(violation validator.FieldError) string {
	switch violation.Tag() {
	case "required":
		return "is missing"
	case "min":
		return "must be at least " + violation.Param() + " characters long"
	case "max":
		return "must be shorter than " + violation.Param() + " characters"
	case "gt", "lt":
		return "value out of range"
	case "login_format":
		return "must start with a letter followed by alphanumerics"
	default:
		return "is invalid"
	}
}

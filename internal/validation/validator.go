package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// MaxLabelLength bounds year and group labels accepted from config and
// query strings
const MaxLabelLength = 128

// IsLabel reports whether s can be a year or group key. Keys are opaque and
// compared exactly, so only empty, oversized, invalid UTF-8 and control
// characters are rejected.
func IsLabel(s string) bool {
	if s == "" || len(s) > MaxLabelLength || !utf8.ValidString(s) {
		return false
	}
	return strings.IndexFunc(s, unicode.IsControl) < 0
}

// FieldError describes one failed constraint
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// Errors collects every failed constraint of a struct
type Errors []FieldError

// Error implements the error interface
func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Validator wraps go-playground/validator with the dashboard's custom tags
// registered and JSON field names in messages.
type Validator struct {
	validate *validator.Validate
}

// New creates a validator with the label tag registered
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterValidation("label", func(fl validator.FieldLevel) bool {
		return IsLabel(fl.Field().String())
	})

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "yaml"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	return &Validator{validate: v}
}

// Struct validates s and returns Errors when any constraint fails
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Namespace(),
			Tag:     fe.Tag(),
			Message: formatFieldError(fe),
		})
	}
	return out
}

// Var validates a single value against tag
func (v *Validator) Var(field string, value interface{}, tag string) error {
	err := v.validate.Var(value, tag)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   field,
			Tag:     fe.Tag(),
			Message: formatMessage(field, fe.Tag(), fe.Param()),
		})
	}
	return out
}

func formatFieldError(fe validator.FieldError) string {
	return formatMessage(fe.Field(), fe.Tag(), fe.Param())
}

func formatMessage(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "hexcolor":
		return fmt.Sprintf("%s must be a hex color such as #4e79a7", field)
	case "label":
		return fmt.Sprintf("%s must be 1 to %d characters without control characters", field, MaxLabelLength)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}

// Package validation checks transient credential payloads before they are
// sent anywhere. It wraps go-playground/validator and reports every violated
// rule as a field-level Violation.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/99minutos/agency-portal/internal/core/domain"
)

const minPasswordLength = 8

// Violation is one failed rule on one field.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Error carries every violation found on a payload.
type Error struct {
	Violations []Violation `json:"violations"`
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return strings.Join(msgs, "; ")
}

// Field returns the messages reported for a single field.
func (e *Error) Field(name string) []string {
	var out []string
	for _, v := range e.Violations {
		if v.Field == name {
			out = append(out, v.Message)
		}
	}
	return out
}

// Fields groups messages by field, for form rendering.
func (e *Error) Fields() map[string][]string {
	out := make(map[string][]string, len(e.Violations))
	for _, v := range e.Violations {
		out[v.Field] = append(out[v.Field], v.Message)
	}
	return out
}

// As extracts a validation error from err.
func As(err error) (*Error, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Validator validates credential payloads.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the portal's custom rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	v.RegisterStructValidation(registerRules, domain.RegisterCredentials{})
	return &Validator{v: v}
}

// Validate returns nil or an *Error describing every violated rule.
func (val *Validator) Validate(i any) error {
	err := val.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	out := &Error{Violations: make([]Violation, 0, len(ve))}
	for _, fe := range ve {
		out.Violations = append(out.Violations, Violation{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: message(fe),
		})
	}
	return out
}

// registerRules checks the password policy and the confirmation match.
func registerRules(sl validator.StructLevel) {
	c := sl.Current().Interface().(domain.RegisterCredentials)

	if len([]rune(c.Password)) < minPasswordLength {
		sl.ReportError(c.Password, "password", "Password", "min", fmt.Sprint(minPasswordLength))
	}
	if !strings.ContainsFunc(c.Password, unicode.IsUpper) {
		sl.ReportError(c.Password, "password", "Password", "uppercase", "")
	}
	if !strings.ContainsFunc(c.Password, unicode.IsLower) {
		sl.ReportError(c.Password, "password", "Password", "lowercase", "")
	}
	if !strings.ContainsFunc(c.Password, unicode.IsDigit) {
		sl.ReportError(c.Password, "password", "Password", "digit", "")
	}
	if c.ConfirmPassword != c.Password {
		sl.ReportError(c.ConfirmPassword, "confirm_password", "ConfirmPassword", "eqfield", "password")
	}
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// message converts a single FieldError into a human-readable message.
func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "uppercase":
		return field + " must contain at least one uppercase letter"
	case "lowercase":
		return field + " must contain at least one lowercase letter"
	case "digit":
		return field + " must contain at least one digit"
	case "eqfield":
		return fmt.Sprintf("%s must match %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

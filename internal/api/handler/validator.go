package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/agency-portal/internal/api/metrics"
	"github.com/99minutos/agency-portal/internal/core/validation"
)

// echoValidator wraps validation.Validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validation.Validator
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator(v *validation.Validator) echo.Validator {
	if v == nil {
		v = validation.New()
	}
	return &echoValidator{v: v}
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	return ev.v.Validate(i)
}

// validateForm runs c.Validate and counts rejected payloads per form.
func validateForm(c echo.Context, form string, payload any) error {
	err := c.Validate(payload)
	if _, ok := validation.As(err); ok {
		metrics.ValidationFailuresTotal.WithLabelValues(form).Inc()
	}
	return err
}

package authapi

import (
	"fmt"
	"net/http"

	"github.com/99minutos/agency-portal/internal/core/domain"
)

// StatusError is a non-2xx response from the auth service.
type StatusError struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: auth service returned %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s: auth service returned %d: %s", e.Operation, e.StatusCode, e.Message)
}

// Is lets callers match 401 responses with domain.ErrUnauthorized.
func (e *StatusError) Is(target error) bool {
	return target == domain.ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

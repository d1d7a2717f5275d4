package handler

import (
	"errors"
	"net/http"

	"github.com/99minutos/agency-portal/internal/core/domain"
	"github.com/99minutos/agency-portal/internal/infrastructure/authapi"
)

// UpstreamStatus maps an auth service failure to the status the portal
// answers with and a message safe to show to users. ok is false for errors
// that did not come from the auth service.
func UpstreamStatus(err error) (code int, msg string, ok bool) {
	var se *authapi.StatusError
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "invalid credentials or expired session", true
	case errors.As(err, &se) && se.StatusCode < http.StatusInternalServerError:
		if se.Message == "" {
			return se.StatusCode, "request rejected by the auth service", true
		}
		return se.StatusCode, se.Message, true
	case errors.As(err, &se):
		return http.StatusBadGateway, "auth service error", true
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusBadGateway, "auth service unavailable, try again later", true
	}
	return 0, "", false
}

// failure is UpstreamStatus with a generic fallback, for page handlers.
func failure(err error) (int, string) {
	if code, msg, ok := UpstreamStatus(err); ok {
		return code, msg
	}
	return http.StatusInternalServerError, "something went wrong, try again"
}

package handler

import (
	"github.com/99minutos/agency-portal/internal/core/domain"
	"github.com/99minutos/agency-portal/internal/core/validation"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error      string                 `json:"error"`
	Violations []validation.Violation `json:"violations,omitempty"`
}

// sessionResponse is the session state plus the launcher view derived from it.
type sessionResponse struct {
	domain.SessionState
	View domain.View `json:"view"`
}

// registerResponse wraps the created account like the auth service does.
type registerResponse struct {
	User *domain.Identity `json:"user"`
}

// --- Page models ---

// page carries what the layout needs on every page.
type page struct {
	Title   string
	Error   string
	Refresh bool
}

type homePage struct {
	page
	View domain.View
}

type loginPage struct {
	page
	Username   string
	Registered bool
	Errors     map[string][]string
}

type registerPage struct {
	page
	Form   domain.RegisterCredentials
	Roles  []domain.Role
	Errors map[string][]string
}

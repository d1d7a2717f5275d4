package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/agency-portal/internal/core/domain"
	"github.com/99minutos/agency-portal/internal/core/ports"
	"github.com/99minutos/agency-portal/internal/core/service"
	"github.com/99minutos/agency-portal/internal/core/validation"
)

const registeredLoginURL = "/login?registered=1"

// PortalHandler serves the HTML pages of the portal.
type PortalHandler struct {
	sessions ports.SessionRegistry
	launcher *service.Launcher
	initWait time.Duration
	log      zerolog.Logger
}

func NewPortalHandler(sessions ports.SessionRegistry, launcher *service.Launcher, initWait time.Duration, log zerolog.Logger) *PortalHandler {
	if initWait <= 0 {
		initWait = DefaultInitWait
	}
	return &PortalHandler{sessions: sessions, launcher: launcher, initWait: initWait, log: log}
}

// Home handles GET /. The view is always derived from the session state.
func (h *PortalHandler) Home(c echo.Context) error {
	store, err := sessionFor(c, h.sessions)
	if err != nil {
		return err
	}
	return h.renderHome(c, http.StatusOK, awaitInitialized(c, store, h.initWait), "")
}

func (h *PortalHandler) renderHome(c echo.Context, code int, state domain.SessionState, msg string) error {
	view := h.launcher.View(state)
	return c.Render(code, "home", homePage{
		page: page{Title: "Home", Error: msg, Refresh: view.Kind == domain.ViewChecking},
		View: view,
	})
}

// LoginForm handles GET /login.
func (h *PortalHandler) LoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, "login", loginPage{
		page:       page{Title: "Log in"},
		Registered: c.QueryParam("registered") == "1",
	})
}

// Login handles POST /login.
func (h *PortalHandler) Login(c echo.Context) error {
	var req domain.LoginCredentials
	if err := c.Bind(&req); err != nil {
		return h.renderLogin(c, http.StatusBadRequest, req, "invalid form submission", nil)
	}
	if err := validateForm(c, "login", req); err != nil {
		return h.renderViolations(c, err, func(code int, msg string, fields map[string][]string) error {
			return h.renderLogin(c, code, req, msg, fields)
		})
	}

	store, err := sessionFor(c, h.sessions)
	if err != nil {
		return err
	}
	if err := store.Login(c.Request().Context(), req); err != nil {
		if redirectPending(c, err) {
			return nil
		}
		code, msg := failure(err)
		return h.renderLogin(c, code, req, msg, nil)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *PortalHandler) renderLogin(c echo.Context, code int, req domain.LoginCredentials, msg string, fields map[string][]string) error {
	return c.Render(code, "login", loginPage{
		page:     page{Title: "Log in", Error: msg},
		Username: req.Username,
		Errors:   fields,
	})
}

// Logout handles POST /logout. On success the browser goes back to / and
// the launcher re-evaluates the now empty session.
func (h *PortalHandler) Logout(c echo.Context) error {
	store, err := sessionFor(c, h.sessions)
	if err != nil {
		return err
	}
	if err := store.Logout(c.Request().Context()); err != nil {
		if redirectPending(c, err) {
			return nil
		}
		code, msg := failure(err)
		return h.renderHome(c, code, store.State(), msg)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// RegisterForm handles GET /register.
func (h *PortalHandler) RegisterForm(c echo.Context) error {
	form := domain.RegisterCredentials{}
	form.ApplyDefaults()
	return h.renderRegister(c, http.StatusOK, form, "", nil)
}

// Register handles POST /register. A created account is sent to the login
// page; the session itself is not logged in.
func (h *PortalHandler) Register(c echo.Context) error {
	var req domain.RegisterCredentials
	if err := c.Bind(&req); err != nil {
		return h.renderRegister(c, http.StatusBadRequest, req, "invalid form submission", nil)
	}
	req.ApplyDefaults()
	if err := validateForm(c, "register", req); err != nil {
		return h.renderViolations(c, err, func(code int, msg string, fields map[string][]string) error {
			return h.renderRegister(c, code, req, msg, fields)
		})
	}

	store, err := sessionFor(c, h.sessions)
	if err != nil {
		return err
	}
	if _, err := store.Register(c.Request().Context(), req); err != nil {
		if redirectPending(c, err) {
			return nil
		}
		code, msg := failure(err)
		return h.renderRegister(c, code, req, msg, nil)
	}
	return c.Redirect(http.StatusSeeOther, registeredLoginURL)
}

func (h *PortalHandler) renderRegister(c echo.Context, code int, form domain.RegisterCredentials, msg string, fields map[string][]string) error {
	// Passwords are never echoed back.
	form.Password, form.ConfirmPassword = "", ""
	return c.Render(code, "register", registerPage{
		page:   page{Title: "Register", Error: msg},
		Form:   form,
		Roles:  domain.Roles,
		Errors: fields,
	})
}

// renderViolations re-renders a form with field messages for a validation
// error, or hands anything else to the central error handler.
func (h *PortalHandler) renderViolations(c echo.Context, err error, render func(code int, msg string, fields map[string][]string) error) error {
	ve, ok := validation.As(err)
	if !ok {
		h.log.Error().Err(err).Msg("validator failed")
		return err
	}
	return render(http.StatusUnprocessableEntity, "please fix the highlighted fields", ve.Fields())
}

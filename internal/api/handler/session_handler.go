package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/agency-portal/internal/core/domain"
	"github.com/99minutos/agency-portal/internal/core/ports"
	"github.com/99minutos/agency-portal/internal/core/service"
)

// SessionHandler serves the JSON session API used by script clients.
type SessionHandler struct {
	sessions ports.SessionRegistry
	launcher *service.Launcher
	initWait time.Duration
}

func NewSessionHandler(sessions ports.SessionRegistry, launcher *service.Launcher, initWait time.Duration) *SessionHandler {
	if initWait <= 0 {
		initWait = DefaultInitWait
	}
	return &SessionHandler{sessions: sessions, launcher: launcher, initWait: initWait}
}

func (h *SessionHandler) respond(c echo.Context, code int, state domain.SessionState) error {
	return c.JSON(code, sessionResponse{SessionState: state, View: h.launcher.View(state)})
}

// Get returns the session state, running the first identity check if needed.
//
// @Summary      Current session
// @Description  Returns the session state and the launcher view. While the first identity check is still running the view kind is "checking".
// @Tags         session
// @Produce      json
// @Param        X-Portal-Location  header    string  false  "Path of the view the caller is on"
// @Success      200                {object}  sessionResponse
// @Router       /portal/api/session [get]
func (h *SessionHandler) Get(c echo.Context) error {
	store, err := sessionFor(c, h.sessions)
	if err != nil {
		return err
	}
	return h.respond(c, http.StatusOK, awaitInitialized(c, store, h.initWait))
}

// Login authenticates the session against the auth service.
//
// @Summary      Log in
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        X-Portal-Location  header    string                   false  "Path of the view the caller is on"
// @Param        body               body      domain.LoginCredentials  true   "Credentials"
// @Success      200                {object}  sessionResponse
// @Failure      400                {object}  errorResponse
// @Failure      401                {object}  errorResponse
// @Failure      422                {object}  errorResponse
// @Failure      502                {object}  errorResponse
// @Router       /portal/api/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req domain.LoginCredentials
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := validateForm(c, "login", req); err != nil {
		return err
	}

	store, err := sessionFor(c, h.sessions)
	if err != nil {
		return err
	}
	if err := store.Login(c.Request().Context(), req); err != nil {
		return err
	}
	return h.respond(c, http.StatusOK, store.State())
}

// Logout ends the session.
//
// @Summary      Log out
// @Tags         session
// @Produce      json
// @Param        X-Portal-Location  header    string  false  "Path of the view the caller is on"
// @Success      200                {object}  sessionResponse
// @Failure      401                {object}  errorResponse
// @Failure      502                {object}  errorResponse
// @Router       /portal/api/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	store, err := sessionFor(c, h.sessions)
	if err != nil {
		return err
	}
	if err := store.Logout(c.Request().Context()); err != nil {
		return err
	}
	return h.respond(c, http.StatusOK, store.State())
}

// Register creates an account. The session stays as it was.
//
// @Summary      Register an account
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      domain.RegisterCredentials  true  "Account details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /portal/api/register [post]
func (h *SessionHandler) Register(c echo.Context) error {
	var req domain.RegisterCredentials
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	req.ApplyDefaults()
	if err := validateForm(c, "register", req); err != nil {
		return err
	}

	store, err := sessionFor(c, h.sessions)
	if err != nil {
		return err
	}
	user, err := store.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, registerResponse{User: user})
}

package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/agency-portal/internal/api/middleware"
	"github.com/99minutos/agency-portal/internal/core/domain"
	"github.com/99minutos/agency-portal/internal/core/ports"
	"github.com/99minutos/agency-portal/internal/pkg/navigation"
)

// DefaultInitWait is how long a page waits for the first identity check
// before rendering the checking view.
const DefaultInitWait = 2 * time.Second

// sessionFor resolves the store bound to the request's portal session. The
// SessionCookie middleware must have run; a missing id is a wiring bug
// surfaced as 401 rather than a shared anonymous store.
func sessionFor(c echo.Context, sessions ports.SessionRegistry) (ports.SessionStore, error) {
	sid, _ := c.Get(middleware.ContextKeySessionID).(string)
	if sid == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing portal session")
	}
	return sessions.Store(sid), nil
}

// awaitInitialized triggers the first identity check and waits at most wait
// for it. On timeout the current (loading) state is returned while the check
// keeps running in the background.
func awaitInitialized(c echo.Context, store ports.SessionStore, wait time.Duration) domain.SessionState {
	ctx := c.Request().Context()
	done := make(chan domain.SessionState, 1)
	go func() {
		done <- store.Initialize(context.WithoutCancel(ctx))
	}()

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case state := <-done:
		return state
	case <-timer.C:
	case <-ctx.Done():
	}
	return store.State()
}

// redirectPending reports whether err is an unauthorized failure that a
// status policy already answered by moving the view. Page handlers must not
// render over that redirect; any other failure is shown in place.
func redirectPending(c echo.Context, err error) bool {
	if !errors.Is(err, domain.ErrUnauthorized) {
		return false
	}
	rec, ok := c.Get(middleware.ContextKeyNavigator).(*navigation.Recorder)
	if !ok {
		return false
	}
	_, pending := rec.Pending()
	return pending
}

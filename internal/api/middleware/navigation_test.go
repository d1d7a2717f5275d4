package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/agency-portal/internal/pkg/navigation"
)

func runNavigation(t *testing.T, req *http.Request, handler echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := Navigation("/portal/api")(handler)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func redirectFromContext(c echo.Context) {
	nav, _ := navigation.FromContext(c.Request().Context())
	if nav.Location() != navigation.Root {
		nav.Redirect(navigation.Root)
	}
}

func TestNavigation_PageRedirects(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rec := runNavigation(t, req, func(c echo.Context) error {
		redirectFromContext(c)
		return nil
	})

	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/" {
		t.Fatalf("expected 303 to /, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}

func TestNavigation_FormPostUsesReferer(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Referer", "http://example.com/")
	var location string
	runNavigation(t, req, func(c echo.Context) error {
		nav, _ := navigation.FromContext(c.Request().Context())
		location = nav.Location()
		return c.NoContent(http.StatusOK)
	})

	if location != "/" {
		t.Fatalf("expected location from referer, got %q", location)
	}
}

func TestNavigation_APIReportsHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/portal/api/logout", nil)
	req.Header.Set(HeaderLocation, "/dashboard")
	rec := runNavigation(t, req, func(c echo.Context) error {
		redirectFromContext(c)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if got := rec.Header().Get(HeaderRedirect); got != "/" {
		t.Fatalf("expected redirect header, got %q", got)
	}
}

func TestNavigation_NoRedirectAtRoot(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := runNavigation(t, req, func(c echo.Context) error {
		redirectFromContext(c)
		return c.String(http.StatusOK, "home")
	})

	if rec.Code != http.StatusOK || rec.Header().Get(HeaderRedirect) != "" {
		t.Fatalf("unexpected redirect at root: %d %v", rec.Code, rec.Header())
	}
}

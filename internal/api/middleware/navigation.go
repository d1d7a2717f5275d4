package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/agency-portal/internal/pkg/navigation"
)

const (
	// HeaderLocation lets API callers tell the portal which view they are on.
	HeaderLocation = "X-Portal-Location"
	// HeaderRedirect tells API callers where to navigate.
	HeaderRedirect = "X-Portal-Redirect"

	// ContextKeyNavigator is the echo context key holding the request's *navigation.Recorder.
	ContextKeyNavigator = "navigator"
)

// Navigation attaches a navigation.Recorder for the view the request comes
// from. Redirects recorded while handling the request are reported in
// HeaderRedirect; browser requests outside apiPrefix that have not written a
// response yet get a 303 to the target.
func Navigation(apiPrefix string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			isAPI := strings.HasPrefix(req.URL.Path, apiPrefix)

			rec := navigation.NewRecorder(currentLocation(req, isAPI))
			c.SetRequest(req.WithContext(navigation.WithNavigator(req.Context(), rec)))
			c.Set(ContextKeyNavigator, rec)

			c.Response().Before(func() {
				if target, ok := rec.Pending(); ok {
					c.Response().Header().Set(HeaderRedirect, target)
				}
			})

			err := next(c)

			target, ok := rec.Pending()
			if !ok || isAPI || c.Response().Committed {
				return err
			}
			return c.Redirect(http.StatusSeeOther, target)
		}
	}
}

// currentLocation works out which view issued the request: API callers say
// so explicitly, form posts come from their Referer, page loads are the page.
func currentLocation(req *http.Request, isAPI bool) string {
	if isAPI {
		if loc := req.Header.Get(HeaderLocation); loc != "" {
			return pathOf(loc)
		}
		return navigation.Root
	}
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		if ref := req.Referer(); ref != "" {
			if u, err := url.Parse(ref); err == nil && (u.Host == "" || u.Host == req.Host) {
				return pathOf(u.Path)
			}
		}
	}
	return pathOf(req.URL.Path)
}

func pathOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return navigation.Root
	}
	return u.Path
}

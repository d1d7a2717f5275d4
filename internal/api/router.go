package api

import (
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/agency-portal/docs"
	"github.com/99minutos/agency-portal/internal/api/handler"
	"github.com/99minutos/agency-portal/internal/api/middleware"
	"github.com/99minutos/agency-portal/internal/core/ports"
	"github.com/99minutos/agency-portal/internal/core/service"
	"github.com/99minutos/agency-portal/internal/core/validation"
)

// APIPrefix is where the JSON session API lives.
const APIPrefix = "/portal/api"

// Deps holds everything the router wires into handlers and middleware.
type Deps struct {
	Sessions  ports.SessionRegistry
	Launcher  *service.Launcher
	Validator *validation.Validator
	Cookie    middleware.SessionCookieConfig
	// Checks are the readiness probes, by dependency name.
	Checks   map[string]handler.Check
	InitWait time.Duration
	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) (*echo.Echo, error) {
	renderer, err := handler.NewRenderer()
	if err != nil {
		return nil, err
	}
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator(d.Validator)
	e.Renderer = renderer
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "portal",
		Subsystem:  "http",
		Registerer: d.Registerer,
		Skipper:    infraPath,
	}))
	e.Use(middleware.Navigation(APIPrefix))

	cookie := d.Cookie
	cookie.Skipper = infraPath
	e.Use(middleware.SessionCookie(cookie))

	// --- Portal pages ---
	portal := handler.NewPortalHandler(d.Sessions, d.Launcher, d.InitWait, d.Log)
	e.GET("/", portal.Home)
	e.GET("/login", portal.LoginForm)
	e.POST("/login", portal.Login)
	e.POST("/logout", portal.Logout)
	e.GET("/register", portal.RegisterForm)
	e.POST("/register", portal.Register)

	// --- Session API ---
	sessions := handler.NewSessionHandler(d.Sessions, d.Launcher, d.InitWait)
	api := e.Group(APIPrefix)
	api.GET("/session", sessions.Get)
	api.POST("/login", sessions.Login)
	api.POST("/logout", sessions.Logout)
	api.POST("/register", sessions.Register)

	// --- Health probes and operations (no session required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e, nil
}

func infraPath(c echo.Context) bool {
	p := c.Request().URL.Path
	return strings.HasPrefix(p, "/health") || p == "/metrics" || strings.HasPrefix(p, "/swagger/")
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		Skipper:      infraPath,
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/agency-portal/internal/api/middleware"
	"github.com/99minutos/agency-portal/internal/core/domain"
	"github.com/99minutos/agency-portal/internal/core/ports"
	"github.com/99minutos/agency-portal/internal/core/service"
	"github.com/99minutos/agency-portal/internal/pkg/navigation"
)

type stubStore struct {
	mu    sync.Mutex
	state domain.SessionState
	calls []string

	initFn     func(ctx context.Context) domain.SessionState
	loginFn    func(ctx context.Context, creds domain.LoginCredentials) error
	logoutFn   func(ctx context.Context) error
	registerFn func(ctx context.Context, creds domain.RegisterCredentials) (*domain.Identity, error)
}

func (s *stubStore) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *stubStore) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *stubStore) Initialize(ctx context.Context) domain.SessionState {
	s.record("initialize")
	if s.initFn != nil {
		return s.initFn(ctx)
	}
	return s.State()
}

func (s *stubStore) Login(ctx context.Context, creds domain.LoginCredentials) error {
	s.record("login")
	return s.loginFn(ctx, creds)
}

func (s *stubStore) Logout(ctx context.Context) error {
	s.record("logout")
	return s.logoutFn(ctx)
}

func (s *stubStore) Register(ctx context.Context, creds domain.RegisterCredentials) (*domain.Identity, error) {
	s.record("register")
	return s.registerFn(ctx, creds)
}

func (s *stubStore) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *stubStore) setState(state domain.SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

func (s *stubStore) Subscribe(func(domain.SessionChange)) func() { return func() {} }

type stubRegistry struct {
	store *stubStore
}

func (r stubRegistry) Store(string) ports.SessionStore { return r.store }

func staffIdentity() *domain.Identity {
	return &domain.Identity{ID: 5, Username: "ann", FullName: "Ann Lee", Role: domain.RoleStaff}
}

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator(nil)
	renderer, err := NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	e.Renderer = renderer
	return e
}

// newPageContext builds a request context as the middleware chain would.
func newPageContext(t *testing.T, method, target string, form url.Values) (echo.Context, *httptest.ResponseRecorder, *navigation.Recorder) {
	t.Helper()
	e := newTestEcho(t)

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	nav := navigation.NewRecorder(target)
	req = req.WithContext(navigation.WithNavigator(req.Context(), nav))

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.ContextKeySessionID, "sid-1")
	c.Set(middleware.ContextKeyNavigator, nav)
	return c, rec, nav
}

func newJSONContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := newTestEcho(t)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.ContextKeySessionID, "sid-1")
	return c, rec
}

func testLauncher() *service.Launcher {
	return service.NewLauncher(nil)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/agency-portal/internal/core/domain"
	"github.com/99minutos/agency-portal/internal/core/validation"
	"github.com/99minutos/agency-portal/internal/pkg/navigation"
)

var errNetwork = errors.New("dial tcp: connection refused")

// stubAuthAPI records every remote call. Nil funcs succeed with zero values.
type stubAuthAPI struct {
	mu    sync.Mutex
	calls []string

	loginFn    func(creds domain.LoginCredentials) (*domain.Identity, error)
	meFn       func() (*domain.Identity, error)
	logoutFn   func() error
	registerFn func(creds domain.RegisterCredentials) (*domain.Identity, error)

	// seen, when set, observes the context of every remote call.
	seen func(ctx context.Context, call string)
}

func (s *stubAuthAPI) record(ctx context.Context, call string) {
	if s.seen != nil {
		s.seen(ctx, call)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *stubAuthAPI) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *stubAuthAPI) Login(ctx context.Context, creds domain.LoginCredentials) (*domain.Identity, error) {
	s.record(ctx, "login")
	if s.loginFn == nil {
		return &domain.Identity{}, nil
	}
	return s.loginFn(creds)
}

func (s *stubAuthAPI) Me(ctx context.Context) (*domain.Identity, error) {
	s.record(ctx, "me")
	if s.meFn == nil {
		return nil, domain.ErrUnauthorized
	}
	return s.meFn()
}

func (s *stubAuthAPI) Logout(ctx context.Context) error {
	s.record(ctx, "logout")
	if s.logoutFn == nil {
		return nil
	}
	return s.logoutFn()
}

func (s *stubAuthAPI) Register(ctx context.Context, creds domain.RegisterCredentials) (*domain.Identity, error) {
	s.record(ctx, "register")
	if s.registerFn == nil {
		return &domain.Identity{Username: creds.Username, Role: creds.Role}, nil
	}
	return s.registerFn(creds)
}

func newTestStore(api *stubAuthAPI) *SessionStore {
	return NewSessionStore("sid-1", api, validation.New(), zerolog.Nop())
}

func staffAnn() *domain.Identity {
	return &domain.Identity{ID: 5, Username: "ann", Role: domain.RoleStaff}
}

func TestSessionStore_StartsLoading(t *testing.T) {
	s := newTestStore(&stubAuthAPI{})
	st := s.State()
	if !st.Loading || st.Identity != nil || st.Counter != 0 {
		t.Fatalf("unexpected initial state: %+v", st)
	}
}

func TestSessionStore_Initialize_Success(t *testing.T) {
	api := &stubAuthAPI{meFn: func() (*domain.Identity, error) { return staffAnn(), nil }}
	s := newTestStore(api)

	st := s.Initialize(context.Background())
	if st.Loading {
		t.Fatalf("loading should be cleared")
	}
	if st.Identity == nil || st.Identity.ID != 5 {
		t.Fatalf("unexpected identity: %+v", st.Identity)
	}
	if st.Counter != 0 {
		t.Fatalf("initialize must not change the counter, got %d", st.Counter)
	}
}

func TestSessionStore_Initialize_NetworkFailureLogsOut(t *testing.T) {
	api := &stubAuthAPI{meFn: func() (*domain.Identity, error) { return nil, errNetwork }}
	s := newTestStore(api)

	st := s.Initialize(context.Background())
	if st.Loading || st.Identity != nil || st.Counter != 0 {
		t.Fatalf("expected logged-out state, got %+v", st)
	}
}

func TestSessionStore_Initialize_RunsOnce(t *testing.T) {
	api := &stubAuthAPI{}
	s := newTestStore(api)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Initialize(context.Background())
		}()
	}
	wg.Wait()
	s.Initialize(context.Background())

	if got := api.Calls(); len(got) != 1 || got[0] != "me" {
		t.Fatalf("expected a single identity check, got %v", got)
	}
}

func TestSessionStore_Initialize_IgnoresCancelledContext(t *testing.T) {
	api := &stubAuthAPI{meFn: func() (*domain.Identity, error) { return staffAnn(), nil }}
	s := newTestStore(api)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if st := s.Initialize(ctx); st.Identity == nil {
		t.Fatalf("identity check should complete regardless of caller cancellation")
	}
}

func TestSessionStore_LoadingNeverReturns(t *testing.T) {
	api := &stubAuthAPI{meFn: func() (*domain.Identity, error) { return staffAnn(), nil }}
	s := newTestStore(api)

	var seen []domain.SessionChange
	s.Subscribe(func(c domain.SessionChange) { seen = append(seen, c) })

	s.Initialize(context.Background())
	_ = s.Logout(context.Background())
	_ = s.Login(context.Background(), domain.LoginCredentials{Username: "ann", Password: "Secret123"})
	api.logoutFn = func() error { return errNetwork }
	_ = s.Logout(context.Background())

	if s.State().Loading {
		t.Fatalf("loading came back")
	}
	for _, c := range seen {
		if c.State.Loading {
			t.Fatalf("transition %s published a loading state", c.Kind)
		}
	}
}

func TestSessionStore_Login_Scenario(t *testing.T) {
	api := &stubAuthAPI{}
	s := newTestStore(api)
	s.Initialize(context.Background())

	api.loginFn = func(creds domain.LoginCredentials) (*domain.Identity, error) {
		if creds.Username != "ann" || creds.Password != "Secret123" {
			t.Fatalf("unexpected creds: %+v", creds)
		}
		return &domain.Identity{ID: 99, Username: "stale"}, nil
	}
	api.meFn = func() (*domain.Identity, error) { return staffAnn(), nil }

	if err := s.Login(context.Background(), domain.LoginCredentials{Username: "ann", Password: "Secret123"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	st := s.State()
	if st.Identity == nil || st.Identity.ID != 5 || st.Identity.Role != domain.RoleStaff {
		t.Fatalf("identity should come from the follow-up check, got %+v", st.Identity)
	}
	if st.Counter != 1 {
		t.Fatalf("expected counter 1, got %d", st.Counter)
	}
	want := []string{"me", "login", "me"}
	if got := api.Calls(); len(got) != len(want) || got[1] != "login" || got[2] != "me" {
		t.Fatalf("expected calls %v, got %v", want, got)
	}

	view := NewLauncher(nil).View(st)
	if view.Kind != domain.ViewAuthenticated || len(view.Destinations) != 1 || view.Destinations[0].Name != "Staff App" {
		t.Fatalf("unexpected view: %+v", view)
	}
}

func TestSessionStore_Login_ValidationBeforeRemote(t *testing.T) {
	api := &stubAuthAPI{}
	s := newTestStore(api)

	err := s.Login(context.Background(), domain.LoginCredentials{Username: "ann"})
	ve, ok := validation.As(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Violations) != 1 || ve.Violations[0].Field != "password" || ve.Violations[0].Rule != "required" {
		t.Fatalf("unexpected violations: %+v", ve.Violations)
	}
	if calls := api.Calls(); len(calls) != 0 {
		t.Fatalf("no remote call expected, got %v", calls)
	}
}

func TestSessionStore_Login_FailureLeavesState(t *testing.T) {
	api := &stubAuthAPI{loginFn: func(domain.LoginCredentials) (*domain.Identity, error) {
		return nil, domain.ErrUnauthorized
	}}
	s := newTestStore(api)
	before := s.Initialize(context.Background())

	err := s.Login(context.Background(), domain.LoginCredentials{Username: "ann", Password: "wrong"})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	after := s.State()
	if after.Identity != nil || after.Counter != before.Counter {
		t.Fatalf("state changed on failed login: %+v", after)
	}
}

func TestSessionStore_Login_IdentityReloadFailure(t *testing.T) {
	api := &stubAuthAPI{}
	s := newTestStore(api)
	s.Initialize(context.Background())

	api.meFn = func() (*domain.Identity, error) { return nil, errNetwork }
	err := s.Login(context.Background(), domain.LoginCredentials{Username: "ann", Password: "Secret123"})
	if !errors.Is(err, errNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	if st := s.State(); st.Identity != nil || st.Counter != 0 {
		t.Fatalf("state changed: %+v", st)
	}
}

func TestSessionStore_FirstCheckCarriesNoNavigator(t *testing.T) {
	var mu sync.Mutex
	var got []string
	api := &stubAuthAPI{seen: func(ctx context.Context, call string) {
		_, ok := navigation.FromContext(ctx)
		mu.Lock()
		defer mu.Unlock()
		got = append(got, fmt.Sprintf("%s:%t", call, ok))
	}}
	api.meFn = func() (*domain.Identity, error) {
		if len(api.Calls()) == 1 {
			return nil, domain.ErrUnauthorized
		}
		return staffAnn(), nil
	}
	s := newTestStore(api)

	ctx := navigation.WithNavigator(context.Background(), navigation.NewRecorder("/login"))
	if err := s.Login(ctx, domain.LoginCredentials{Username: "ann", Password: "Secret123"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := s.Logout(ctx); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	want := []string{"me:false", "login:true", "me:true", "logout:true"}
	mu.Lock()
	defer mu.Unlock()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSessionStore_ConcurrentLoginsAreSerialized(t *testing.T) {
	var inFlight, peak atomic.Int32
	entered := make(chan struct{}, 2)
	release := make(chan struct{})

	api := &stubAuthAPI{
		meFn: func() (*domain.Identity, error) { return staffAnn(), nil },
		loginFn: func(domain.LoginCredentials) (*domain.Identity, error) {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			entered <- struct{}{}
			<-release
			return &domain.Identity{}, nil
		},
	}
	s := newTestStore(api)
	s.Initialize(context.Background())

	creds := domain.LoginCredentials{Username: "ann", Password: "Secret123"}
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() { errs <- s.Login(context.Background(), creds) }()
	}

	<-entered
	select {
	case <-entered:
		t.Fatalf("second login reached the auth service while the first was in flight")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)

	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("login failed: %v", err)
		}
	}
	if p := peak.Load(); p != 1 {
		t.Fatalf("expected one login in flight at a time, saw %d", p)
	}
	if st := s.State(); st.Counter != 2 {
		t.Fatalf("expected counter 2, got %d", st.Counter)
	}
	want := []string{"me", "login", "me", "login", "me"}
	if got := api.Calls(); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected calls %v, got %v", want, got)
	}
}

func TestSessionStore_Logout(t *testing.T) {
	api := &stubAuthAPI{meFn: func() (*domain.Identity, error) { return staffAnn(), nil }}
	s := newTestStore(api)
	s.Initialize(context.Background())

	if err := s.Logout(context.Background()); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	st := s.State()
	if st.Identity != nil || st.Counter != 1 {
		t.Fatalf("unexpected state after logout: %+v", st)
	}

	// Logging out an anonymous session still succeeds and still counts.
	if err := s.Logout(context.Background()); err != nil {
		t.Fatalf("second logout failed: %v", err)
	}
	if st := s.State(); st.Identity != nil || st.Counter != 2 {
		t.Fatalf("unexpected state after second logout: %+v", st)
	}
}

func TestSessionStore_Logout_FailureKeepsIdentity(t *testing.T) {
	api := &stubAuthAPI{
		meFn:     func() (*domain.Identity, error) { return staffAnn(), nil },
		logoutFn: func() error { return errNetwork },
	}
	s := newTestStore(api)
	s.Initialize(context.Background())

	if err := s.Logout(context.Background()); !errors.Is(err, errNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	st := s.State()
	if st.Identity == nil || st.Counter != 0 {
		t.Fatalf("identity must survive a failed logout: %+v", st)
	}
}

func TestSessionStore_CounterOnlyMovesOnSuccess(t *testing.T) {
	api := &stubAuthAPI{}
	s := newTestStore(api)
	s.Initialize(context.Background())

	steps := []struct {
		name    string
		run     func() error
		advance bool
	}{
		{"login ok", func() error {
			api.loginFn = nil
			api.meFn = func() (*domain.Identity, error) { return staffAnn(), nil }
			return s.Login(context.Background(), domain.LoginCredentials{Username: "ann", Password: "p"})
		}, true},
		{"logout fails", func() error {
			api.logoutFn = func() error { return errNetwork }
			return s.Logout(context.Background())
		}, false},
		{"logout ok", func() error {
			api.logoutFn = nil
			return s.Logout(context.Background())
		}, true},
		{"login invalid", func() error {
			return s.Login(context.Background(), domain.LoginCredentials{})
		}, false},
		{"login rejected", func() error {
			api.loginFn = func(domain.LoginCredentials) (*domain.Identity, error) { return nil, domain.ErrUnauthorized }
			return s.Login(context.Background(), domain.LoginCredentials{Username: "ann", Password: "p"})
		}, false},
	}

	last := s.State().Counter
	for _, step := range steps {
		err := step.run()
		got := s.State().Counter
		switch {
		case step.advance && (err != nil || got != last+1):
			t.Fatalf("%s: expected counter %d, got %d (err %v)", step.name, last+1, got, err)
		case !step.advance && (err == nil || got != last):
			t.Fatalf("%s: expected counter to stay %d, got %d (err %v)", step.name, last, got, err)
		}
		last = got
	}
}

func TestSessionStore_Register(t *testing.T) {
	api := &stubAuthAPI{registerFn: func(creds domain.RegisterCredentials) (*domain.Identity, error) {
		if creds.Role != domain.RoleAgent {
			t.Fatalf("role should default to agent, got %q", creds.Role)
		}
		return &domain.Identity{ID: 12, Username: creds.Username, Role: creds.Role}, nil
	}}
	s := newTestStore(api)
	s.Initialize(context.Background())
	before := s.State()

	identity, err := s.Register(context.Background(), domain.RegisterCredentials{
		Username:        "bob",
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
		FullName:        "Bob",
		Email:           "bob@example.com",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if identity.ID != 12 {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if after := s.State(); after.Identity != nil || after.Counter != before.Counter {
		t.Fatalf("register must not change the session: %+v", after)
	}
}

func TestSessionStore_Register_WeakPasswordRejectedLocally(t *testing.T) {
	api := &stubAuthAPI{}
	s := newTestStore(api)

	_, err := s.Register(context.Background(), domain.RegisterCredentials{
		Username:        "bob",
		Password:        "abcdefgh",
		ConfirmPassword: "abcdefgh",
		FullName:        "Bob",
		Email:           "bob@example.com",
	})
	ve, ok := validation.As(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Violations) != 2 {
		t.Fatalf("expected two violations, got %+v", ve.Violations)
	}
	if calls := api.Calls(); len(calls) != 0 {
		t.Fatalf("no remote call expected, got %v", calls)
	}
}

func TestSessionStore_SubscribeAndUnsubscribe(t *testing.T) {
	api := &stubAuthAPI{}
	s := newTestStore(api)

	var kinds []domain.TransitionKind
	unsubscribe := s.Subscribe(func(c domain.SessionChange) {
		if c.SessionID != "sid-1" {
			t.Fatalf("unexpected session id %q", c.SessionID)
		}
		kinds = append(kinds, c.Kind)
	})

	s.Initialize(context.Background())
	_ = s.Logout(context.Background())
	unsubscribe()
	_ = s.Logout(context.Background())

	if len(kinds) != 2 || kinds[0] != domain.TransitionInitialized || kinds[1] != domain.TransitionLogout {
		t.Fatalf("unexpected transitions: %v", kinds)
	}
}

func TestSessionStore_StateIsACopy(t *testing.T) {
	api := &stubAuthAPI{meFn: func() (*domain.Identity, error) { return staffAnn(), nil }}
	s := newTestStore(api)
	st := s.Initialize(context.Background())

	st.Identity.Role = domain.RoleAdmin
	if s.State().Identity.Role != domain.RoleStaff {
		t.Fatalf("caller mutated store state")
	}
}

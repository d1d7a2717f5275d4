package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/agency-portal/internal/core/domain"
	"github.com/99minutos/agency-portal/internal/core/ports"
	"github.com/99minutos/agency-portal/internal/core/validation"
	"github.com/99minutos/agency-portal/internal/pkg/navigation"
)

// SessionStore holds the authentication state of one browser session.
//
// Initialize, Login and Logout are serialized: only one auth-affecting
// operation is in flight per store. Once issued, a remote call runs to
// completion even if the caller's context is cancelled; the transport
// timeout is the only bound.
type SessionStore struct {
	id       string
	api      ports.AuthAPI
	validate *validation.Validator
	log      zerolog.Logger

	initOnce sync.Once
	opMu     sync.Mutex

	mu    sync.RWMutex
	state domain.SessionState

	subMu   sync.Mutex
	subs    map[uint64]func(domain.SessionChange)
	nextSub uint64

	lastUsed atomic.Int64
}

// NewSessionStore returns a store in the Loading state.
func NewSessionStore(id string, api ports.AuthAPI, v *validation.Validator, log zerolog.Logger) *SessionStore {
	if v == nil {
		v = validation.New()
	}
	s := &SessionStore{
		id:       id,
		api:      api,
		validate: v,
		log:      log.With().Str("session_id", id).Logger(),
		state:    domain.SessionState{Loading: true},
		subs:     make(map[uint64]func(domain.SessionChange)),
	}
	s.touch()
	return s
}

// ID returns the portal session id the store belongs to.
func (s *SessionStore) ID() string { return s.id }

// Initialize runs the first identity check. Only the first call reaches the
// auth service; later calls wait for it and return the current state. Any
// failure leaves the session logged out.
func (s *SessionStore) Initialize(ctx context.Context) domain.SessionState {
	s.touch()
	s.initOnce.Do(func() {
		s.opMu.Lock()
		defer s.opMu.Unlock()

		identity, err := s.api.Me(context.WithoutCancel(ctx))
		if err != nil {
			s.log.Debug().Err(err).Msg("identity check failed, session is logged out")
			identity = nil
		}

		s.mu.Lock()
		s.state.Identity = identity
		s.state.Loading = false
		snapshot := s.snapshotLocked()
		s.mu.Unlock()

		s.publish(domain.TransitionInitialized, snapshot)
	})
	return s.State()
}

// ensureInitialized runs the first identity check ahead of an auth
// operation. A 401 there only means the session starts logged out; it must
// not redirect the caller away from the page that asked to log in.
func (s *SessionStore) ensureInitialized(ctx context.Context) {
	s.Initialize(navigation.Detach(ctx))
}

// Login validates creds, authenticates against the auth service and then
// reloads the canonical identity. A failure leaves the state untouched.
func (s *SessionStore) Login(ctx context.Context, creds domain.LoginCredentials) error {
	if err := s.validate.Validate(creds); err != nil {
		return err
	}
	s.ensureInitialized(ctx)

	s.opMu.Lock()
	defer s.opMu.Unlock()

	callCtx := context.WithoutCancel(ctx)
	if _, err := s.api.Login(callCtx, creds); err != nil {
		s.log.Info().Err(err).Str("username", creds.Username).Msg("login rejected")
		return fmt.Errorf("login: %w", err)
	}
	identity, err := s.api.Me(callCtx)
	if err != nil {
		return fmt.Errorf("login: load identity: %w", err)
	}

	s.mu.Lock()
	s.state.Identity = identity
	s.state.Counter++
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Info().Int64("user_id", identity.ID).Str("role", string(identity.Role)).Msg("logged in")
	s.publish(domain.TransitionLogin, snapshot)
	return nil
}

// Logout ends the remote session. On failure the identity is kept so the
// caller can retry.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.ensureInitialized(ctx)

	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.api.Logout(context.WithoutCancel(ctx)); err != nil {
		s.log.Warn().Err(err).Msg("logout failed")
		return fmt.Errorf("logout: %w", err)
	}

	s.mu.Lock()
	s.state.Identity = nil
	s.state.Counter++
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.log.Info().Msg("logged out")
	s.publish(domain.TransitionLogout, snapshot)
	return nil
}

// Register creates an account. It never changes the session state; callers
// decide what happens next.
func (s *SessionStore) Register(ctx context.Context, creds domain.RegisterCredentials) (*domain.Identity, error) {
	s.touch()
	creds.ApplyDefaults()
	if err := s.validate.Validate(creds); err != nil {
		return nil, err
	}

	identity, err := s.api.Register(context.WithoutCancel(ctx), creds)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	s.log.Info().Str("username", creds.Username).Str("role", string(creds.Role)).Msg("account registered")
	return identity, nil
}

// State returns a copy of the current state.
func (s *SessionStore) State() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to be called after every state transition.
func (s *SessionStore) Subscribe(fn func(domain.SessionChange)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// IdleSince reports when the store was last used.
func (s *SessionStore) IdleSince() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}

func (s *SessionStore) touch() {
	s.lastUsed.Store(time.Now().UnixNano())
}

func (s *SessionStore) snapshotLocked() domain.SessionState {
	return domain.SessionState{
		Identity: s.state.Identity.Clone(),
		Loading:  s.state.Loading,
		Counter:  s.state.Counter,
	}
}

func (s *SessionStore) publish(kind domain.TransitionKind, state domain.SessionState) {
	s.subMu.Lock()
	fns := make([]func(domain.SessionChange), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	change := domain.SessionChange{SessionID: s.id, Kind: kind, State: state}
	for _, fn := range fns {
		fn(change)
	}
}

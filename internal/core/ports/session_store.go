package ports

import (
	"context"

	"github.com/99minutos/agency-portal/internal/core/domain"
)

// SessionStore is the single source of truth for who is logged in on one
// browser session.
type SessionStore interface {
	Initialize(ctx context.Context) domain.SessionState
	Login(ctx context.Context, creds domain.LoginCredentials) error
	Logout(ctx context.Context) error
	Register(ctx context.Context, creds domain.RegisterCredentials) (*domain.Identity, error)
	State() domain.SessionState
	Subscribe(fn func(domain.SessionChange)) (unsubscribe func())
}

// SessionRegistry hands out the store owned by a portal session id.
type SessionRegistry interface {
	Store(sessionID string) SessionStore
}

// SessionChangeSink receives state transitions in per-session order.
type SessionChangeSink interface {
	Handle(ctx context.Context, change domain.SessionChange) error
}

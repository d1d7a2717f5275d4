package ports

import (
	"context"

	"github.com/99minutos/agency-portal/internal/core/domain"
)

// AuthAPI is the remote authentication service as seen by one browser
// session. Implementations carry that session's cookies on every call.
type AuthAPI interface {
	Login(ctx context.Context, creds domain.LoginCredentials) (*domain.Identity, error)
	Me(ctx context.Context) (*domain.Identity, error)
	Logout(ctx context.Context) error
	Register(ctx context.Context, creds domain.RegisterCredentials) (*domain.Identity, error)
}

// AuthAPIFactory builds an AuthAPI bound to a portal session id.
type AuthAPIFactory func(sessionID string) AuthAPI

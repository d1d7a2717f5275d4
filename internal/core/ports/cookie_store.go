package ports

import (
	"context"
	"net/http"
)

// CookieStore persists the upstream cookies of each portal session.
type CookieStore interface {
	Load(ctx context.Context, sessionID string) ([]*http.Cookie, error)
	Save(ctx context.Context, sessionID string, cookies []*http.Cookie) error
	Delete(ctx context.Context, sessionID string) error
}

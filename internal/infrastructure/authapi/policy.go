package authapi

import (
	"context"
	"net/http"

	"github.com/99minutos/agency-portal/internal/pkg/navigation"
)

// StatusPolicy reacts to the status of every remote response. It runs for
// all calls made through the client, not just the auth ones.
type StatusPolicy interface {
	Apply(ctx context.Context, status int)
}

// Rule pairs a status predicate with the action it triggers.
type Rule struct {
	Match  func(status int) bool
	Action func(ctx context.Context, status int)
}

// Rules applies every matching rule in order.
type Rules []Rule

func (rs Rules) Apply(ctx context.Context, status int) {
	for _, r := range rs {
		if r.Match != nil && r.Match(status) {
			r.Action(ctx, status)
		}
	}
}

// StatusIs matches any of codes.
func StatusIs(codes ...int) func(int) bool {
	return func(status int) bool {
		for _, c := range codes {
			if status == c {
				return true
			}
		}
		return false
	}
}

// RedirectTo sends the navigator in ctx to target unless it is already
// there. Requests without a navigator are left alone. onRedirect, when set,
// is called once per redirect issued.
func RedirectTo(target string, onRedirect func()) func(context.Context, int) {
	return func(ctx context.Context, _ int) {
		nav, ok := navigation.FromContext(ctx)
		if !ok || nav.Location() == target {
			return
		}
		nav.Redirect(target)
		if onRedirect != nil {
			onRedirect()
		}
	}
}

// DefaultPolicy redirects to the application root on 401.
func DefaultPolicy(onRedirect func()) Rules {
	return Rules{{
		Match:  StatusIs(http.StatusUnauthorized),
		Action: RedirectTo(navigation.Root, onRedirect),
	}}
}

// Package navigation tracks where the browser is and where it has been sent
// during one portal request.
package navigation

import (
	"context"
	"sync"
)

// Root is the application entry point.
const Root = "/"

// Navigator exposes the current view location and lets policies move it.
type Navigator interface {
	Location() string
	Redirect(path string)
}

type ctxKey struct{}

// WithNavigator returns a copy of ctx carrying nav.
func WithNavigator(ctx context.Context, nav Navigator) context.Context {
	return context.WithValue(ctx, ctxKey{}, nav)
}

// Detach returns a copy of ctx that carries no navigator, so status
// policies reacting to calls made under it cannot move the view.
func Detach(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, nil)
}

// FromContext returns the navigator stored in ctx, if any.
func FromContext(ctx context.Context) (Navigator, bool) {
	nav, ok := ctx.Value(ctxKey{}).(Navigator)
	return nav, ok
}

// Recorder is a Navigator that records redirects instead of performing them.
// After a redirect the location is the redirect target.
type Recorder struct {
	mu        sync.Mutex
	location  string
	redirects []string
}

func NewRecorder(location string) *Recorder {
	if location == "" {
		location = Root
	}
	return &Recorder{location: location}
}

func (r *Recorder) Location() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.location
}

func (r *Recorder) Redirect(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redirects = append(r.redirects, path)
	r.location = path
}

// Pending returns the last redirect target, if any redirect was issued.
func (r *Recorder) Pending() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.redirects) == 0 {
		return "", false
	}
	return r.redirects[len(r.redirects)-1], true
}

// Redirects returns every redirect issued so far.
func (r *Recorder) Redirects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.redirects...)
}

package authapi

import (
	"github.com/rs/zerolog"

	"github.com/99minutos/agency-portal/internal/core/ports"
)

// NewFactory returns an AuthAPIFactory building one Client per portal
// session, each with its own persistent cookie jar. opts.Jar is ignored.
func NewFactory(opts Options, cookies ports.CookieStore, log zerolog.Logger) (ports.AuthAPIFactory, error) {
	if _, err := New(opts); err != nil {
		return nil, err
	}
	return func(sessionID string) ports.AuthAPI {
		o := opts
		o.Jar = NewPersistentJar(cookies, sessionID, log)
		c, _ := New(o)
		return c
	}, nil
}

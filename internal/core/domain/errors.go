package domain

import "errors"

var (
	// ErrUnauthorized is matched by any remote response signalling that the
	// caller's credentials or session are invalid.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUpstreamUnavailable wraps transport failures talking to the auth service.
	ErrUpstreamUnavailable = errors.New("auth service unavailable")
	ErrInvalidCatalog      = errors.New("invalid destination catalog")
)

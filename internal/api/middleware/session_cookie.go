package middleware

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// ContextKeySessionID is the echo context key holding the portal session id.
const ContextKeySessionID = "session_id"

const issuer = "agency-portal"

// SessionCookieConfig configures SessionCookie.
type SessionCookieConfig struct {
	Skipper echomiddleware.Skipper
	Name    string
	Secret  string
	TTL     time.Duration
	Secure  bool
	// NewID mints session ids. Defaults to random UUIDs.
	NewID func() string
	Now   func() time.Time
}

// SessionCookie binds every request to a portal session id carried in a
// signed HS256 cookie. Requests without a valid cookie get a fresh id and
// a new cookie. The cookie is re-issued once half its lifetime has passed.
func SessionCookie(cfg SessionCookieConfig) echo.MiddlewareFunc {
	if cfg.Skipper == nil {
		cfg.Skipper = echomiddleware.DefaultSkipper
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	key := []byte(cfg.Secret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper(c) {
				return next(c)
			}

			now := cfg.Now()
			sid, expiresAt := "", time.Time{}
			if ck, err := c.Cookie(cfg.Name); err == nil {
				sid, expiresAt = parseSessionToken(ck.Value, key, now)
			}

			if sid == "" || expiresAt.Sub(now) < cfg.TTL/2 {
				if sid == "" {
					sid = cfg.NewID()
				}
				token, err := signSessionToken(sid, key, now, cfg.TTL)
				if err != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, "could not issue session").SetInternal(err)
				}
				c.SetCookie(&http.Cookie{
					Name:     cfg.Name,
					Value:    token,
					Path:     "/",
					MaxAge:   int(cfg.TTL.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set(ContextKeySessionID, sid)
			return next(c)
		}
	}
}

func signSessionToken(sid string, key []byte, now time.Time, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   sid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// parseSessionToken returns the session id and expiry of a valid token, or
// an empty id.
func parseSessionToken(raw string, key []byte, now time.Time) (string, time.Time) {
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return key, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired(), jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return "", time.Time{}
	}
	return claims.Subject, claims.ExpiresAt.Time
}

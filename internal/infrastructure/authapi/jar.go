package authapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/agency-portal/internal/core/ports"
)

const jarTimeout = 2 * time.Second

// PersistentJar is an http.CookieJar for one portal session whose cookies
// live in a CookieStore, so the upstream session survives portal restarts
// and is shared between replicas.
type PersistentJar struct {
	store     ports.CookieStore
	sessionID string
	log       zerolog.Logger
	now       func() time.Time

	mu sync.Mutex
}

func NewPersistentJar(store ports.CookieStore, sessionID string, log zerolog.Logger) *PersistentJar {
	return &PersistentJar{
		store:     store,
		sessionID: sessionID,
		log:       log,
		now:       time.Now,
	}
}

// SetCookies merges cookies received from u into the stored set.
func (j *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	if len(cookies) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), jarTimeout)
	defer cancel()

	j.mu.Lock()
	defer j.mu.Unlock()

	stored, err := j.store.Load(ctx, j.sessionID)
	if err != nil {
		j.log.Warn().Err(err).Str("session_id", j.sessionID).Msg("cookie load failed")
		stored = nil
	}

	now := j.now()
	byKey := make(map[string]*http.Cookie, len(stored)+len(cookies))
	order := make([]string, 0, len(stored)+len(cookies))
	put := func(c *http.Cookie) {
		k := cookieKey(c)
		if _, ok := byKey[k]; !ok {
			order = append(order, k)
		}
		byKey[k] = c
	}
	for _, c := range stored {
		put(c)
	}
	for _, in := range cookies {
		c := normalize(in, u, now)
		if expired(c, now) {
			delete(byKey, cookieKey(c))
			continue
		}
		put(c)
	}

	merged := make([]*http.Cookie, 0, len(byKey))
	for _, k := range order {
		if c, ok := byKey[k]; ok && !expired(c, now) {
			merged = append(merged, c)
		}
	}
	if err := j.store.Save(ctx, j.sessionID, merged); err != nil {
		j.log.Warn().Err(err).Str("session_id", j.sessionID).Msg("cookie save failed")
	}
}

// Cookies returns the cookies to send to u.
func (j *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	ctx, cancel := context.WithTimeout(context.Background(), jarTimeout)
	defer cancel()

	j.mu.Lock()
	stored, err := j.store.Load(ctx, j.sessionID)
	j.mu.Unlock()
	if err != nil {
		j.log.Warn().Err(err).Str("session_id", j.sessionID).Msg("cookie load failed")
		return nil
	}

	now := j.now()
	var out []*http.Cookie
	for _, c := range stored {
		if expired(c, now) || !domainMatch(c.Domain, u.Hostname()) || !pathMatch(c.Path, u.Path) {
			continue
		}
		if c.Secure && u.Scheme != "https" {
			continue
		}
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

func normalize(in *http.Cookie, u *url.URL, now time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     in.Name,
		Value:    in.Value,
		Path:     in.Path,
		Expires:  in.Expires,
		Secure:   in.Secure,
		HttpOnly: in.HttpOnly,
		MaxAge:   in.MaxAge,
	}
	// A stored domain with a leading dot also matches subdomains. Cookies
	// set without a Domain attribute keep the bare host and match it only.
	if d := strings.TrimPrefix(strings.ToLower(in.Domain), "."); d != "" {
		c.Domain = "." + d
	} else {
		c.Domain = strings.ToLower(u.Hostname())
	}
	if c.Path == "" || c.Path[0] != '/' {
		c.Path = "/"
	}
	if in.MaxAge > 0 {
		c.Expires = now.Add(time.Duration(in.MaxAge) * time.Second)
		c.MaxAge = 0
	}
	return c
}

func expired(c *http.Cookie, now time.Time) bool {
	if c.MaxAge < 0 {
		return true
	}
	return !c.Expires.IsZero() && !c.Expires.After(now)
}

func cookieKey(c *http.Cookie) string {
	return c.Domain + ";" + c.Path + ";" + c.Name
}

func domainMatch(domain, host string) bool {
	host = strings.ToLower(host)
	if !strings.HasPrefix(domain, ".") {
		return domain == host
	}
	return host == domain[1:] || strings.HasSuffix(host, domain)
}

func pathMatch(cookiePath, reqPath string) bool {
	if reqPath == "" {
		reqPath = "/"
	}
	if cookiePath == reqPath {
		return true
	}
	if !strings.HasPrefix(reqPath, cookiePath) {
		return false
	}
	return strings.HasSuffix(cookiePath, "/") || reqPath[len(cookiePath)] == '/'
}

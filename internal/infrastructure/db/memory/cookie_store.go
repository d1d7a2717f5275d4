// Package memory holds in-process adapters used when no external store is
// configured.
package memory

import (
	"context"
	"net/http"
	"sync"
	"time"
)

const defaultCookieTTL = 24 * time.Hour

// CookieStore keeps upstream cookies in process memory. They are lost on
// restart. Like the redis store, an entry expires ttl after its last write.
type CookieStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]entry
}

type entry struct {
	cookies   []http.Cookie
	expiresAt time.Time
}

func NewCookieStore(ttl time.Duration) *CookieStore {
	if ttl <= 0 {
		ttl = defaultCookieTTL
	}
	return &CookieStore{ttl: ttl, now: time.Now, sessions: make(map[string]entry)}
}

func (s *CookieStore) Load(_ context.Context, sessionID string) ([]*http.Cookie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return []*http.Cookie{}, nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.sessions, sessionID)
		return []*http.Cookie{}, nil
	}
	out := make([]*http.Cookie, len(e.cookies))
	for i := range e.cookies {
		c := e.cookies[i]
		out[i] = &c
	}
	return out, nil
}

func (s *CookieStore) Save(_ context.Context, sessionID string, cookies []*http.Cookie) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(cookies) == 0 {
		delete(s.sessions, sessionID)
		return nil
	}
	stored := make([]http.Cookie, len(cookies))
	for i, c := range cookies {
		stored[i] = *c
	}
	s.sessions[sessionID] = entry{cookies: stored, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *CookieStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Len returns the number of sessions holding cookies, expired or not.
func (s *CookieStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Prune drops every entry expired at now and returns how many it removed.
func (s *CookieStore) Prune(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for id, e := range s.sessions {
		if !now.Before(e.expiresAt) {
			delete(s.sessions, id)
			pruned++
		}
	}
	return pruned
}

// Start prunes expired entries every interval until ctx is cancelled.
func (s *CookieStore) Start(ctx context.Context, every time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.Prune(now)
			}
		}
	}()
}

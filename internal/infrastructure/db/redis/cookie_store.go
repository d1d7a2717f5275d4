package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCookieTTL = 24 * time.Hour

// CookieStore keeps the upstream cookies of each portal session in Redis.
// Key format: portal:cookies:<session_id>
type CookieStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCookieStore wraps client. Entries expire ttl after their last write.
func NewCookieStore(client *redis.Client, ttl time.Duration) *CookieStore {
	if ttl <= 0 {
		ttl = defaultCookieTTL
	}
	return &CookieStore{client: client, ttl: ttl}
}

type storedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"http_only,omitempty"`
}

// Load returns the cookies saved for sessionID, or none.
func (s *CookieStore) Load(ctx context.Context, sessionID string) ([]*http.Cookie, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cookie load: %w", err)
	}

	var stored []storedCookie
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("cookie decode: %w", err)
	}
	out := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		out = append(out, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		})
	}
	return out, nil
}

// Save replaces the cookies of sessionID. An empty set deletes the key.
func (s *CookieStore) Save(ctx context.Context, sessionID string, cookies []*http.Cookie) error {
	if len(cookies) == 0 {
		return s.Delete(ctx, sessionID)
	}
	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		})
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("cookie encode: %w", err)
	}
	return s.client.Set(ctx, s.key(sessionID), raw, s.ttl).Err()
}

// Delete removes every cookie of sessionID.
func (s *CookieStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}

func (s *CookieStore) key(sessionID string) string {
	return fmt.Sprintf("portal:cookies:%s", sessionID)
}

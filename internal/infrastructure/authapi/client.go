// Package authapi is the HTTP client for the remote authentication service.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/99minutos/agency-portal/internal/core/domain"
)

const (
	apiPrefix      = "/api/v1"
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10
)

// Outcomes reported to Options.Observe.
const (
	OutcomeOK           = "ok"
	OutcomeUnauthorized = "unauthorized"
	OutcomeRejected     = "rejected"
	OutcomeNetwork      = "network_error"
)

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// Jar carries the session cookies; one jar per browser session.
	Jar       http.CookieJar
	Transport http.RoundTripper
	Policy    StatusPolicy
	// Observe is called once per remote call.
	Observe func(operation, outcome string, elapsed time.Duration)
}

// Client talks to the auth service on behalf of one browser session.
type Client struct {
	http    *http.Client
	base    string
	policy  StatusPolicy
	observe func(operation, outcome string, elapsed time.Duration)
}

// New returns a Client rooted at BaseURL + /api/v1.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("authapi: base URL is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	policy := opts.Policy
	if policy == nil {
		policy = Rules(nil)
	}
	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Jar:       opts.Jar,
			Transport: opts.Transport,
		},
		base:    base + apiPrefix,
		policy:  policy,
		observe: opts.Observe,
	}, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phone_number,omitempty"`
	Address         string `json:"address,omitempty"`
	Role            string `json:"account_role"`
}

// Login posts the credentials and returns the user record of the response.
func (c *Client) Login(ctx context.Context, creds domain.LoginCredentials) (*domain.Identity, error) {
	var out userEnvelope
	body := loginRequest{Username: creds.Username, Password: creds.Password}
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login/", body, &out); err != nil {
		return nil, err
	}
	return out.identity(), nil
}

// Me asks who the session belongs to.
func (c *Client) Me(ctx context.Context) (*domain.Identity, error) {
	var out userRecord
	if err := c.do(ctx, "me", http.MethodGet, "/auth/me/", nil, &out); err != nil {
		return nil, err
	}
	if out.UserID == 0 {
		return nil, errMissingUserID
	}
	return out.identity(), nil
}

// Logout ends the remote session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, "logout", http.MethodPost, "/auth/logout/", nil, nil)
}

// Register creates an account and returns the user record of the response.
func (c *Client) Register(ctx context.Context, creds domain.RegisterCredentials) (*domain.Identity, error) {
	var out userEnvelope
	body := registerRequest{
		Username:        creds.Username,
		Password:        creds.Password,
		ConfirmPassword: creds.ConfirmPassword,
		FullName:        creds.FullName,
		Email:           creds.Email,
		PhoneNumber:     creds.PhoneNumber,
		Address:         creds.Address,
		Role:            string(creds.Role),
	}
	if err := c.do(ctx, "register", http.MethodPost, "/auth/register/", body, &out); err != nil {
		return nil, err
	}
	return out.identity(), nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	start := time.Now()

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.report(op, OutcomeNetwork, start)
		return fmt.Errorf("%s: %w: %w", op, domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome := OutcomeRejected
		if resp.StatusCode == http.StatusUnauthorized {
			outcome = OutcomeUnauthorized
		}
		c.report(op, outcome, start)
		c.policy.Apply(ctx, resp.StatusCode)
		return &StatusError{Operation: op, StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}

	c.report(op, OutcomeOK, start)
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func (c *Client) report(op, outcome string, start time.Time) {
	if c.observe != nil {
		c.observe(op, outcome, time.Since(start))
	}
}

// errorMessage pulls a human-readable message out of an error body. The
// auth service answers with {"detail": ...}; other keys are accepted too.
func errorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload map[string]any
	if json.Unmarshal(raw, &payload) == nil {
		for _, key := range []string{"detail", "error", "message"} {
			if s, ok := payload[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return strings.TrimSpace(string(raw))
}

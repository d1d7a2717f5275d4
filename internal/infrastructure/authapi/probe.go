package authapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Probe returns a readiness check that succeeds when the auth service
// answers at all. Any HTTP status counts as reachable; only transport
// failures fail the check.
func Probe(baseURL string, transport http.RoundTripper) func(ctx context.Context) error {
	target := strings.TrimRight(strings.TrimSpace(baseURL), "/") + apiPrefix + "/"
	client := &http.Client{
		Transport: transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
		if err != nil {
			return fmt.Errorf("auth service probe: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("auth service probe: %w", err)
		}
		_ = resp.Body.Close()
		return nil
	}
}

// Package metrics defines and registers all custom Prometheus metrics for the
// agency portal. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/99minutos/agency-portal/internal/core/domain"
)

const namespace = "portal"

// ── Upstream metrics ──────────────────────────────────────────────────────────

// UpstreamRequestsTotal counts calls to the auth service.
// Labels:
//   - operation: "login", "me", "logout" or "register"
//   - outcome: "ok", "unauthorized", "rejected" or "network_error"
var UpstreamRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Total number of auth service calls, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// UpstreamRequestDuration measures auth service latency.
// Label:
//   - operation: see UpstreamRequestsTotal
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of auth service calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)

// UnauthorizedRedirectsTotal counts redirects to the root issued after a 401.
var UnauthorizedRedirectsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unauthorized_redirects_total",
		Help:      "Total number of redirects to the portal root triggered by 401 responses.",
	},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionTransitionsTotal counts session state transitions.
// Labels:
//   - transition: "initialized", "login" or "logout"
//   - authenticated: "true" or "false" after the transition
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session state transitions.",
	},
	[]string{"transition", "authenticated"},
)

// ActiveSessions tracks the number of session stores held in memory.
var ActiveSessions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Current number of portal sessions held in memory.",
	},
)

// ValidationFailuresTotal counts payloads rejected before reaching the auth service.
// Label:
//   - form: "login" or "register"
var ValidationFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validation_failures_total",
		Help:      "Total number of credential payloads rejected by local validation.",
	},
	[]string{"form"},
)

// ObserveUpstream records one auth service call.
func ObserveUpstream(operation, outcome string, elapsed time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(operation, outcome).Inc()
	UpstreamRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// TransitionSink records session transitions; it plugs into the session
// change dispatcher.
type TransitionSink struct{}

func (TransitionSink) Handle(_ context.Context, change domain.SessionChange) error {
	authenticated := "false"
	if change.State.Identity != nil {
		authenticated = "true"
	}
	SessionTransitionsTotal.WithLabelValues(string(change.Kind), authenticated).Inc()
	return nil
}

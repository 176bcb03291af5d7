// Package metrics defines and registers the custom Prometheus metrics for
// the SafeStreet account service. It is the single source of truth for
// metric names, labels, and help strings.
//
// Metrics register with the default registry at import time and are exposed
// through the /metrics endpoint alongside the per-request HTTP metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "safestreet"

// SignupsTotal counts registration attempts by outcome.
// Label:
//   - result: "created", "conflict_email", "conflict_name", "invalid", "error"
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of registration attempts, by outcome.",
	},
	[]string{"result"},
)

// VerificationsTotal counts email verification redemptions by outcome.
// Label:
//   - result: "verified" or "rejected" (invalid/expired link)
var VerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "email_verifications_total",
		Help:      "Total number of verification link redemptions, by outcome.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "invalid_credentials", "unverified", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"result"},
)

// RateLimitedTotal counts requests rejected by the attempt limiter.
// Label:
//   - route: the throttled route (e.g. "/login")
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the attempt limiter.",
	},
	[]string{"route"},
)

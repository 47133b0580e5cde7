// Package metrics defines and registers all custom Prometheus metrics for the
// boilerplate backend. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "webapp"

// SignInsTotal counts sign-in attempts against the Identity Service.
// Label:
//   - result: "success", "invalid_credentials", "rate_limited", or "error"
var SignInsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signins_total",
		Help:      "Total number of sign-in attempts, labelled by result.",
	},
	[]string{"result"},
)

// PromotionsTotal counts role-promotion requests that reached the role
// service (i.e. passed input validation and token verification).
// Labels:
//   - outcome: "success", "forbidden", or "error"
//   - bootstrap: "true" while zero admins existed at evaluation time
var PromotionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "promotions_total",
		Help:      "Total number of role promotion attempts, labelled by outcome.",
	},
	[]string{"outcome", "bootstrap"},
)

// AdminCountChecks counts admin-count lookups. Each one is a full listing
// scan against the Identity Service.
var AdminCountChecks = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admin_count_checks_total",
		Help:      "Total number of admin-count computations (full user scans).",
	},
)

// IdentityRequestDuration measures round-trip time of Identity Service calls.
// Labels:
//   - operation: "verify", "list_users", "update_role", "sign_in", "sign_up", "sign_out"
//   - status: "ok" or "error"
var IdentityRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "identity_request_duration_seconds",
		Help:      "Duration of calls to the external Identity Service.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation", "status"},
)

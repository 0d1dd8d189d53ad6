// Package metrics defines and registers all custom Prometheus metrics for
// the AllerView session gateway. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics register with the default Prometheus registry at import time; the
// router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal_gateway"

// LoginsTotal counts explicit login and registration attempts.
// Labels:
//   - method: "simple_login", "simple_register", or "delegated"
//   - outcome: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login and registration attempts, by method and outcome.",
	},
	[]string{"method", "outcome"},
)

// RestoresTotal counts silent session restorations.
// Label:
//   - outcome: "authenticated" (token resolved), "anonymous" (no token), or
//     "rejected" (token present but refused; it gets cleared)
var RestoresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_restores_total",
		Help:      "Total number of silent session restorations, by outcome.",
	},
	[]string{"outcome"},
)

// GuardDecisionsTotal counts route-guard outcomes per area.
// Labels:
//   - area: the application area the request targeted
//   - decision: "allowed" or "denied"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route-guard decisions, by area and decision.",
	},
	[]string{"area", "decision"},
)

// UpstreamExchangeDuration measures credential-exchange round trips against
// the portal API.
// Label:
//   - operation: "fetch_identity", "register", "login", or "logout"
var UpstreamExchangeDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_exchange_duration_seconds",
		Help:      "Duration of credential exchange calls to the portal API.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"operation"},
)

// AuditQueueDepth tracks the number of audit events waiting in each
// dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

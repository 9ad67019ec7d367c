// Package metrics defines all custom Prometheus metrics for the identity
// service. It is the single source of truth for metric names, labels, and
// help strings. Metrics register themselves with the default registry via
// promauto at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gatehouse"

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "created", "conflict" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "rate_limited" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RefreshesTotal counts refresh token exchanges.
// Label:
//   - result: "success", "invalid", "expired" or "error"
var RefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refreshes_total",
		Help:      "Total number of refresh token exchanges, by result.",
	},
	[]string{"result"},
)

// TokenVerificationsTotal counts access token verifications performed by
// the authentication middleware.
// Label:
//   - result: "valid", "expired", "malformed", "signature" or "empty"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of access token verifications, by result.",
	},
	[]string{"result"},
)

// EventsPublishedTotal counts identity event publish attempts.
// Labels:
//   - topic: the event topic (e.g. "user.registered")
//   - result: "ok" or "error"
var EventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of identity event publish attempts, by topic and result.",
	},
	[]string{"topic", "result"},
)

// Package metrics defines and registers all custom Prometheus metrics for the
// rental API. It is the single source of truth for metric names, labels, and
// help strings.
//
// All metrics register themselves with the default Prometheus registry via
// promauto at package init; the HTTP layer only has to expose the handler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rental"

// ── Identity metrics ──────────────────────────────────────────────────────────

// SignupsTotal counts completed signups.
// Labels:
//   - role: "customer" or "renter"
//   - result: "ok" or "error"
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of signup attempts, by requested role and result.",
	},
	[]string{"role", "result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "ok" or "error" (invalid credentials and unknown email both count as "error")
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// SessionRefreshTotal counts silent access-token refreshes performed by the
// auth middleware.
// Label:
//   - result: "ok" (new access token issued) or "denied" (session revoked or refresh token unusable)
var SessionRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_refresh_total",
		Help:      "Total number of access-token refresh attempts, by result.",
	},
	[]string{"result"},
)

// ── Reservation metrics ───────────────────────────────────────────────────────

// ReservationsCreatedTotal counts newly created reservations.
var ReservationsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservations_created_total",
		Help:      "Total number of reservations created.",
	},
)

// ReservationTransitionsTotal counts status transition attempts.
// Labels:
//   - status: the requested target status (e.g. "accepted")
//   - result: "ok" or "rejected" (transition not allowed from the current status)
var ReservationTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservation_transitions_total",
		Help:      "Total number of reservation status transition attempts, by target status and result.",
	},
	[]string{"status", "result"},
)

// ── Fleet metrics ─────────────────────────────────────────────────────────────

// CarsAddedTotal counts cars added to the fleet.
var CarsAddedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cars_added_total",
		Help:      "Total number of cars added.",
	},
)

// ── Media pipeline metrics ────────────────────────────────────────────────────

// MediaJobsTotal counts media jobs that left the queue.
// Labels:
//   - category: "profile" or "car"
//   - result: "ok" or "error"
var MediaJobsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "media_jobs_total",
		Help:      "Total number of media jobs processed, by category and result.",
	},
	[]string{"category", "result"},
)

// MediaQueueDepth tracks the current number of jobs waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var MediaQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "media_queue_depth",
		Help:      "Current number of media jobs pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

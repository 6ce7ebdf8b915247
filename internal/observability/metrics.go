package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BookingsTotal counts book attempts by outcome (ok, conflict,
	// insufficient_funds, not_found, busy, error).
	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservation_bookings_total",
			Help: "Total number of book operations",
		},
		[]string{"outcome"},
	)

	// CancellationsTotal counts cancel attempts by outcome (ok, conflict,
	// not_owner, not_found, busy, error).
	CancellationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservation_cancellations_total",
			Help: "Total number of cancel operations",
		},
		[]string{"outcome"},
	)

	// LedgerApplyDuration observes the time spent inside the store's atomic
	// seat/balance apply, lock wait excluded.
	LedgerApplyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reservation_ledger_apply_seconds",
			Help:    "Duration of atomic ledger applies",
			Buckets: prometheus.DefBuckets,
		},
	)

	// NotificationFailures counts post-commit notification publishes that
	// errored.  These never fail the booking itself.
	NotificationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reservation_notification_failures_total",
			Help: "Total notification hook failures",
		},
	)
)

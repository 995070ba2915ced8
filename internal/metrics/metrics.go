package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "folio_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "path"},
	)

	// Content metrics
	WorkChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_work_changes_total",
			Help: "Total work create/update/delete operations",
		},
		[]string{"op"}, // "create", "update" or "delete"
	)

	// Contact relay metrics
	ContactMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_contact_messages_total",
			Help: "Total contact messages relayed",
		},
		[]string{"result"}, // "sent" or "failed"
	)

	RelayReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "folio_relay_reconnects_total",
			Help: "Total reconnects after a dropped relay session",
		},
	)

	// Auth metrics
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_login_attempts_total",
			Help: "Total admin login attempts",
		},
		[]string{"result"}, // "success", "unknown_id", "bad_password", "invalid"
	)
)

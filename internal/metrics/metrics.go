// Package metrics exposes Prometheus counters for mail dispatch and
// automation-job outcomes, served at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SendsTotal counts provider dispatch attempts by provider and outcome
	// ("ok" or "error").
	SendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_mailer_sends_total",
			Help: "Provider dispatch attempts by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	// JobsTotal counts automation-job terminal transitions by event type and
	// resulting status ("completed" or "failed").
	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_mailer_jobs_total",
			Help: "Automation job outcomes by event type and status",
		},
		[]string{"event_type", "status"},
	)

	// RetriesTotal counts admin-initiated job retries.
	RetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portal_mailer_job_retries_total",
			Help: "Admin-initiated automation job retries",
		},
	)
)

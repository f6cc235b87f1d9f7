package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the domains module. Tracks pipeline
// outcomes and the latencies of the external registrar and hosting calls.
type Metrics struct {
	RegistrationsStarted   prometheus.Counter
	RegistrationsCompleted prometheus.Counter
	RegistrationsFailed    prometheus.Counter
	DomainsConnected       prometheus.Counter
	DomainsDisconnected    prometheus.Counter
	BindingRetries         prometheus.Counter

	AvailabilityCheckDuration prometheus.Histogram
	RegisterPipelineDuration  prometheus.Histogram
}

// New creates a Metrics instance with all domains module metrics registered.
func New() *Metrics {
	return &Metrics{
		RegistrationsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "zorgsites_domain_registrations_started_total",
			Help: "Total number of domain registration pipelines started",
		}),
		RegistrationsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "zorgsites_domain_registrations_completed_total",
			Help: "Total number of domain registrations that reached active",
		}),
		RegistrationsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "zorgsites_domain_registrations_failed_total",
			Help: "Total number of domain registrations that ended in failed",
		}),
		DomainsConnected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "zorgsites_domains_connected_total",
			Help: "Total number of externally owned domains connected",
		}),
		DomainsDisconnected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "zorgsites_domains_disconnected_total",
			Help: "Total number of domains disconnected",
		}),
		BindingRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "zorgsites_domain_binding_retries_total",
			Help: "Total number of manual hosting binding retries",
		}),
		AvailabilityCheckDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "zorgsites_domain_availability_check_duration_seconds",
			Help:    "Duration of registrar availability checks",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		RegisterPipelineDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "zorgsites_domain_register_pipeline_duration_seconds",
			Help:    "End-to-end duration of the registration pipeline",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// ObserveAvailabilityCheck records the duration of an availability check.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveAvailabilityCheck(start time.Time) {
	m.AvailabilityCheckDuration.Observe(time.Since(start).Seconds())
}

// ObserveRegisterPipeline records the duration of a full registration run.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveRegisterPipeline(start time.Time) {
	m.RegisterPipelineDuration.Observe(time.Since(start).Seconds())
}

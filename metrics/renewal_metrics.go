package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for the renewal counters
const (
	ResultSuccess       = "success"
	ResultInvalid       = "invalid"
	ResultNotFound      = "not_found"
	ResultBadSignature  = "bad_signature"
	ResultDuplicate     = "duplicate"
	ResultUpstreamError = "upstream_error"
	ResultTransient     = "transient"
)

// Post-commit steps
const (
	StepDocument = "document"
	StepEmail    = "email"
)

// RenewalMetrics counts renewal orders, confirmations and their side effects.
// A nil *RenewalMetrics is valid and records nothing.
type RenewalMetrics struct {
	orders            *prometheus.CounterVec
	confirmations     *prometheus.CounterVec
	postCommitFailure *prometheus.CounterVec
	commitDuration    prometheus.Histogram
}

// NewRenewalMetrics registers the renewal collectors on registerer, falling
// back to the default registry when nil.
func NewRenewalMetrics(registerer prometheus.Registerer) *RenewalMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &RenewalMetrics{
		orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "domaindesk_renewal_orders_total",
			Help: "Renewal payment orders requested, by result.",
		}, []string{"result"}),
		confirmations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "domaindesk_renewal_confirmations_total",
			Help: "Renewal confirmations processed, by result.",
		}, []string{"result"}),
		postCommitFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "domaindesk_renewal_post_commit_failures_total",
			Help: "Best-effort steps that failed after a renewal was committed.",
		}, []string{"step"}),
		commitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "domaindesk_renewal_commit_duration_seconds",
			Help:    "Time spent in the renewal commit transaction.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	registerer.MustRegister(m.orders, m.confirmations, m.postCommitFailure, m.commitDuration)
	return m
}

func (m *RenewalMetrics) OrderRequested(result string) {
	if m == nil {
		return
	}
	m.orders.WithLabelValues(result).Inc()
}

func (m *RenewalMetrics) ConfirmationProcessed(result string) {
	if m == nil {
		return
	}
	m.confirmations.WithLabelValues(result).Inc()
}

func (m *RenewalMetrics) PostCommitFailed(step string) {
	if m == nil {
		return
	}
	m.postCommitFailure.WithLabelValues(step).Inc()
}

func (m *RenewalMetrics) ObserveCommit(d time.Duration) {
	if m == nil {
		return
	}
	m.commitDuration.Observe(d.Seconds())
}

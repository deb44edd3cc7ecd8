package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "foodbridge"

// Metrics holds the service counters on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	ExpirySuggestions *prometheus.CounterVec
	PickupValidations *prometheus.CounterVec
	SweeperAttention  *prometheus.CounterVec
	SnapshotUpdates   *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		ExpirySuggestions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expiry_suggestions_total",
			Help:      "Expiry suggestions computed, by eligibility.",
		}, []string{"eligible"}),
		PickupValidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pickup_validations_total",
			Help:      "Pickup slot validations, by result (ok or rejection reason).",
		}, []string{"result"}),
		SweeperAttention: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeper_attention_total",
			Help:      "Donations flagged by the sweeper, by reason.",
		}, []string{"reason"}),
		SnapshotUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_updates_total",
			Help:      "Donation snapshots applied, by display phase.",
		}, []string{"phase"}),
	}
	reg.MustRegister(m.ExpirySuggestions, m.PickupValidations, m.SweeperAttention, m.SnapshotUpdates)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// The helpers below accept a nil receiver so metrics stay optional.

func (m *Metrics) ObserveExpirySuggestion(eligible bool) {
	if m == nil {
		return
	}
	label := "false"
	if eligible {
		label = "true"
	}
	m.ExpirySuggestions.WithLabelValues(label).Inc()
}

func (m *Metrics) ObservePickupValidation(result string) {
	if m == nil {
		return
	}
	m.PickupValidations.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveAttention(reason string) {
	if m == nil {
		return
	}
	m.SweeperAttention.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveSnapshotUpdate(phase string) {
	if m == nil {
		return
	}
	m.SnapshotUpdates.WithLabelValues(phase).Inc()
}

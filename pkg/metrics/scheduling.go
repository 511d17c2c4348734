package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics counts scheduling decisions made by the domain services.
type SchedulingMetrics struct {
	conflicts   *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

// NewSchedulingMetrics registers the scheduling counters. A nil registerer
// yields a no-op recorder.
func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	if reg == nil {
		return &SchedulingMetrics{}
	}
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scheduling",
		Name:      "conflicts_total",
		Help:      "Booking attempts rejected because a resource was already occupied.",
	}, []string{"resource"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scheduling",
		Name:      "status_transitions_total",
		Help:      "Accepted lifecycle transitions by entity and target status.",
	}, []string{"entity", "status"})
	reg.MustRegister(conflicts, transitions)
	return &SchedulingMetrics{conflicts: conflicts, transitions: transitions}
}

// IncConflict records a rejected booking for the resource type.
func (m *SchedulingMetrics) IncConflict(resource string) {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.WithLabelValues(normalizeLabel(resource)).Inc()
}

// IncTransition records an accepted status change.
func (m *SchedulingMetrics) IncTransition(entity, status string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(entity), normalizeLabel(status)).Inc()
}

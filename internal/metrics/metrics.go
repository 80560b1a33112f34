package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics counts state machine outcomes. A nil *SchedulingMetrics
// is valid and records nothing.
type SchedulingMetrics struct {
	transitions    *prometheus.CounterVec
	conflicts      *prometheus.CounterVec
	timeGateDenied *prometheus.CounterVec
	lockWait       prometheus.Histogram
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "scheduling",
			Name:      "transitions_total",
			Help:      "Appointment operations by action and result code",
		}, []string{"action", "result"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "scheduling",
			Name:      "conflicts_total",
			Help:      "Reservations rejected by the slot conflict guard",
		}, []string{"reason"}),
		timeGateDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "scheduling",
			Name:      "time_gate_denials_total",
			Help:      "Clinical actions attempted before the appointment start",
		}, []string{"action"}),
		lockWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "scheduling",
			Name:      "lock_wait_seconds",
			Help:      "Time spent acquiring slot locks",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2, 5},
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.transitions, m.conflicts, m.timeGateDenied, m.lockWait)
	return m
}

// ObserveTransition records one operation; result is "ok" or an error code.
func (m *SchedulingMetrics) ObserveTransition(action, result string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(action, result).Inc()
}

func (m *SchedulingMetrics) ObserveConflict(reason string) {
	if m == nil {
		return
	}
	m.conflicts.WithLabelValues(reason).Inc()
}

func (m *SchedulingMetrics) ObserveTimeGateDenied(action string) {
	if m == nil {
		return
	}
	m.timeGateDenied.WithLabelValues(action).Inc()
}

func (m *SchedulingMetrics) ObserveLockWait(seconds float64) {
	if m == nil {
		return
	}
	m.lockWait.Observe(seconds)
}

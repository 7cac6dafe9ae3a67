package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the authorization flow.
type Metrics struct {
	DialogsRendered  prometheus.Counter
	AutoApprovals    prometheus.Counter
	ConsentGranted   prometheus.Counter
	FlowsCompleted   prometheus.Counter
	FlowFailures     *prometheus.CounterVec
	StateValidations *prometheus.CounterVec
}

// New creates a Metrics instance with all flow metrics registered.
func New() *Metrics {
	return &Metrics{
		DialogsRendered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consent_bridge_dialogs_rendered_total",
			Help: "Total number of consent dialogs rendered",
		}),
		AutoApprovals: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consent_bridge_auto_approvals_total",
			Help: "Total number of flows skipping the dialog via a remembered approval",
		}),
		ConsentGranted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consent_bridge_consent_granted_total",
			Help: "Total number of explicit consent submissions accepted",
		}),
		FlowsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "consent_bridge_flows_completed_total",
			Help: "Total number of flows completed through the upstream callback",
		}),
		FlowFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "consent_bridge_flow_failures_total",
			Help: "Total number of failed flows by reason",
		}, []string{"reason"}),
		StateValidations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "consent_bridge_state_validations_total",
			Help: "Total number of state-token validations by outcome",
		}, []string{"outcome"}),
	}
}

// RecordFailure records a failed flow with its reason label.
func (m *Metrics) RecordFailure(reason string) {
	m.FlowFailures.WithLabelValues(reason).Inc()
}

// RecordStateValidation records a state-token validation outcome.
func (m *Metrics) RecordStateValidation(outcome string) {
	m.StateValidations.WithLabelValues(outcome).Inc()
}

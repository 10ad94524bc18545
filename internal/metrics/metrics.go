// Package metrics counts authentication outcomes for prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "edge_auth"

// Authorization results
const (
	ResultAuthorized   = "authorized"
	ResultUnauthorized = "unauthorized"
	ResultError        = "error"
)

// Callback outcomes
const (
	OutcomeNoop      = "noop"
	OutcomeCancelled = "cancelled"
	OutcomeRejected  = "rejected"
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
)

// Metrics holds the counters. A nil *Metrics records nothing.
type Metrics struct {
	Authorizations *prometheus.CounterVec
	Callbacks      *prometheus.CounterVec
	Logouts        prometheus.Counter
}

// New creates the counters and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Authorizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authorizations_total",
			Help:      "Requests passed through the authorization gate, by result.",
		}, []string{"result"}),
		Callbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "callbacks_total",
			Help:      "Provider callbacks handled, by outcome.",
		}, []string{"outcome"}),
		Logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logouts_total",
			Help:      "Sessions destroyed by logout.",
		}),
	}
	reg.MustRegister(m.Authorizations, m.Callbacks, m.Logouts)
	return m
}

func (m *Metrics) Authorization(result string) {
	if m == nil {
		return
	}
	m.Authorizations.WithLabelValues(result).Inc()
}

func (m *Metrics) Callback(outcome string) {
	if m == nil {
		return
	}
	m.Callbacks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Logout() {
	if m == nil {
		return
	}
	m.Logouts.Inc()
}

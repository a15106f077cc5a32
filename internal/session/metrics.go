package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts session transitions. A nil *Metrics records nothing.
type Metrics struct {
	logins        *prometheus.CounterVec
	renewals      *prometheus.CounterVec
	recoveries    *prometheus.CounterVec
	logouts       *prometheus.CounterVec
	authenticated prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "litelist",
			Subsystem: "session",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		renewals: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "litelist",
			Subsystem: "session",
			Name:      "renewals_total",
			Help:      "Token renewal attempts by result.",
		}, []string{"result"}),
		recoveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "litelist",
			Subsystem: "session",
			Name:      "recoveries_total",
			Help:      "Session recovery attempts at startup by result.",
		}, []string{"result"}),
		logouts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "litelist",
			Subsystem: "session",
			Name:      "logouts_total",
			Help:      "Transitions out of the authenticated state by reason.",
		}, []string{"reason"}),
		authenticated: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "litelist",
			Subsystem: "session",
			Name:      "authenticated",
			Help:      "1 while the session is authenticated.",
		}),
	}
}

func (m *Metrics) login(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

func (m *Metrics) renewal(result string) {
	if m == nil {
		return
	}
	m.renewals.WithLabelValues(result).Inc()
}

func (m *Metrics) recovery(result string) {
	if m == nil {
		return
	}
	m.recoveries.WithLabelValues(result).Inc()
}

func (m *Metrics) loggedOut(reason string) {
	if m == nil {
		return
	}
	m.logouts.WithLabelValues(reason).Inc()
	m.authenticated.Set(0)
}

func (m *Metrics) loggedIn() {
	if m == nil {
		return
	}
	m.authenticated.Set(1)
}

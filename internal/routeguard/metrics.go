package routeguard

import "github.com/prometheus/client_golang/prometheus"

// Decision labels
const (
	DecisionAllow  = "allow"  // protected path, token present
	DecisionDeny   = "deny"   // protected path, no token
	DecisionPublic = "public" // guard did not apply
)

// Metrics counts guard decisions
type Metrics struct {
	decisions *prometheus.CounterVec
}

// NewMetrics registers the guard's collectors with reg. A nil reg leaves
// them unregistered, which is what tests want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "applytrack",
			Subsystem: "routeguard",
			Name:      "decisions_total",
			Help:      "Route guard decisions by outcome.",
		}, []string{"decision"}),
	}
	if reg != nil {
		reg.MustRegister(m.decisions)
	}
	return m
}

func (m *Metrics) observe(decision string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(decision).Inc()
}

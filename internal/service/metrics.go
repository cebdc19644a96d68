package service

import (
	"github.com/prometheus/client_golang/prometheus"

	"fundvote/internal/model"
)

// Vote outcomes as recorded in proposal_votes_total.
const (
	OutcomeApplied  = "applied"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics holds the domain counters of the proposal service.
type Metrics struct {
	votes *prometheus.CounterVec
}

// NewMetrics creates the service counters and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		votes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proposal_votes_total",
				Help: "Votes submitted on proposals, by direction and outcome.",
			},
			[]string{"direction", "outcome"},
		),
	}
	if err := reg.Register(m.votes); err != nil {
		return nil, err
	}
	return m, nil
}

// observe is a no-op on a nil receiver so the service can run without metrics.
func (m *Metrics) observe(dir model.Direction, outcome string) {
	if m == nil {
		return
	}
	m.votes.WithLabelValues(string(dir), outcome).Inc()
}

package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vncsmyrnk/organs/internal/core/ports"
)

// Metrics counts business events. A nil *Metrics records nothing.
type Metrics struct {
	votes        *prometheus.CounterVec
	pollsCreated prometheus.Counter
	pollsDeleted prometheus.Counter
	signUps      prometheus.Counter
	signIns      *prometheus.CounterVec
}

var _ ports.Recorder = (*Metrics)(nil)

// NewMetrics registers the collectors on reg. A nil reg creates unregistered
// collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		votes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "organs_votes_total",
				Help: "vote attempts by outcome",
			},
			[]string{"outcome"},
		),
		pollsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "organs_polls_created_total",
				Help: "polls created",
			},
		),
		pollsDeleted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "organs_polls_deleted_total",
				Help: "polls deleted",
			},
		),
		signUps: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "organs_signups_total",
				Help: "identities registered",
			},
		),
		signIns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "organs_signins_total",
				Help: "sign in attempts by result",
			},
			[]string{"result"},
		),
	}
}

func (m *Metrics) VoteCast(outcome string) {
	if m == nil {
		return
	}
	m.votes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) PollCreated() {
	if m == nil {
		return
	}
	m.pollsCreated.Inc()
}

func (m *Metrics) PollDeleted() {
	if m == nil {
		return
	}
	m.pollsDeleted.Inc()
}

func (m *Metrics) SignedUp() {
	if m == nil {
		return
	}
	m.signUps.Inc()
}

func (m *Metrics) SignedIn(success bool) {
	if m == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	m.signIns.WithLabelValues(result).Inc()
}

// Handler exposes the registry in the prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

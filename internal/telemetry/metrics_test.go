package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.VoteCast("applied")
	m.VoteCast("applied")
	m.VoteCast("already_voted")
	m.PollCreated()
	m.SignedIn(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.votes.WithLabelValues("applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.votes.WithLabelValues("already_voted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pollsCreated))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.pollsDeleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.signIns.WithLabelValues("failure")))

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `organs_votes_total{outcome="applied"} 2`)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.VoteCast("applied")
		m.PollCreated()
		m.PollDeleted()
		m.SignedUp()
		m.SignedIn(true)
	})
}

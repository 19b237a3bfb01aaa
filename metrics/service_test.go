package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewService(reg)

	s.IncPointsReassigned(3)
	s.IncPointsReassigned(2)
	s.IncStatisticsRecomputed(4)
	s.IncBroadcastsSent()
	s.ObserveRecalculationDuration(0.02)
	s.ObserveHTTPRequest("/api/scoreboard", http.MethodGet, http.StatusOK, 0.01)

	assert.Equal(t, 5.0, testutil.ToFloat64(s.PointsReassigned))
	assert.Equal(t, 4.0, testutil.ToFloat64(s.StatisticsRecomputed))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.BroadcastsSent))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.HTTPRequests.WithLabelValues("/api/scoreboard", "GET", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(s.RecalculationSeconds))
}

func TestMetricsHandlerExposesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewService(reg)
	s.IncStatisticsRecomputed(1)

	rec := httptest.NewRecorder()
	NewMetricsHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "poker_club_statistics_recomputed_total 1")
}

func TestMock(t *testing.T) {
	m := NewMock()
	m.IncPointsReassigned(2)
	m.IncStatisticsRecomputed(3)
	m.ObserveRecalculationDuration(1)
	m.IncBroadcastsSent()

	assert.Equal(t, 2, m.PointsReassigned())
	assert.Equal(t, 3, m.StatisticsRecomputed())
	assert.Equal(t, 1, m.Recalculations())
	assert.Equal(t, 1, m.BroadcastsSent())
}

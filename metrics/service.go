package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

type Service struct {
	PointsReassigned     prometheus.Counter
	StatisticsRecomputed prometheus.Counter
	RecalculationSeconds prometheus.Histogram
	BroadcastsSent       prometheus.Counter
	HTTPRequests         *prometheus.CounterVec
	HTTPDuration         *prometheus.HistogramVec
}

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		PointsReassigned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "poker_club_points_reassigned_total",
			Help: "Participations whose points were rewritten by the points assignment.",
		}),
		StatisticsRecomputed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "poker_club_statistics_recomputed_total",
			Help: "Player statistics rows recomputed from participations.",
		}),
		RecalculationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "poker_club_recalculation_duration_seconds",
			Help:    "Duration of a tournament results recalculation batch.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		BroadcastsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "poker_club_live_updates_sent_total",
			Help: "Websocket update messages published to rooms.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "poker_club_http_requests_total",
			Help: "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "poker_club_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	reg.MustRegister(
		s.PointsReassigned,
		s.StatisticsRecomputed,
		s.RecalculationSeconds,
		s.BroadcastsSent,
		s.HTTPRequests,
		s.HTTPDuration,
	)

	return s
}

func (s *Service) IncPointsReassigned(changed int) {
	s.PointsReassigned.Add(float64(changed))
}

func (s *Service) IncStatisticsRecomputed(players int) {
	s.StatisticsRecomputed.Add(float64(players))
}

func (s *Service) ObserveRecalculationDuration(seconds float64) {
	s.RecalculationSeconds.Observe(seconds)
}

func (s *Service) IncBroadcastsSent() {
	s.BroadcastsSent.Inc()
}

func (s *Service) ObserveHTTPRequest(route, method string, status int, seconds float64) {
	s.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	s.HTTPDuration.WithLabelValues(route, method).Observe(seconds)
}

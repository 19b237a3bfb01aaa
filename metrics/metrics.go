package metrics

// Metrics defines the counters the club service reports.
type Metrics interface {
	IncPointsReassigned(changed int)
	IncStatisticsRecomputed(players int)
	ObserveRecalculationDuration(seconds float64)
	IncBroadcastsSent()
	ObserveHTTPRequest(route, method string, status int, seconds float64)
}

package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                   sync.Mutex
	pointsReassigned     int
	statisticsRecomputed int
	recalculations       []float64
	broadcastsSent       int
	httpRequests         int
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{recalculations: make([]float64, 0)}
}

func (m *Mock) IncPointsReassigned(changed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pointsReassigned += changed
}

func (m *Mock) IncStatisticsRecomputed(players int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statisticsRecomputed += players
}

func (m *Mock) ObserveRecalculationDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recalculations = append(m.recalculations, seconds)
}

func (m *Mock) IncBroadcastsSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcastsSent++
}

func (m *Mock) ObserveHTTPRequest(route, method string, status int, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.httpRequests++
}

func (m *Mock) PointsReassigned() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pointsReassigned
}

func (m *Mock) StatisticsRecomputed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statisticsRecomputed
}

// Recalculations returns how many batches were timed.
func (m *Mock) Recalculations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.recalculations)
}

func (m *Mock) BroadcastsSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.broadcastsSent
}

func (m *Mock) HTTPRequests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.httpRequests
}

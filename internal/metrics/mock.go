package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	fetcherRuns         int
	rowsIngested        int
	validationFailures  int
	factsRanked         int
	recomputeRuns       int
	h2hCacheHits        int
	h2hCacheMisses      int
	processingDurations []float64
	slackNotifSent      int
	slackNotifFailed    int
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		processingDurations: make([]float64, 0),
	}
}

var _ Metrics = (*Mock)(nil)

func (m *Mock) IncFetcherRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetcherRuns++
}

func (m *Mock) IncRowsIngested() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rowsIngested++
}

func (m *Mock) IncValidationFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validationFailures++
}

func (m *Mock) IncFactsRanked() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.factsRanked++
}

func (m *Mock) IncRecomputeRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recomputeRuns++
}

func (m *Mock) IncH2HCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.h2hCacheHits++
}

func (m *Mock) IncH2HCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.h2hCacheMisses++
}

func (m *Mock) ObserveProcessingDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processingDurations = append(m.processingDurations, duration)
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// FetcherRuns returns the number of times IncFetcherRuns was called.
func (m *Mock) FetcherRuns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetcherRuns
}

// RowsIngested returns the number of times IncRowsIngested was called.
func (m *Mock) RowsIngested() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rowsIngested
}

// ValidationFailures returns the number of times IncValidationFailures was called.
func (m *Mock) ValidationFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validationFailures
}

// FactsRanked returns the number of times IncFactsRanked was called.
func (m *Mock) FactsRanked() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.factsRanked
}

// RecomputeRuns returns the number of times IncRecomputeRuns was called.
func (m *Mock) RecomputeRuns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recomputeRuns
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}

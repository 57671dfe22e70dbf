package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncFetcherRuns()
	IncRowsIngested()
	IncValidationFailures()
	IncFactsRanked()
	IncRecomputeRuns()
	IncH2HCacheHits()
	IncH2HCacheMisses()
	ObserveProcessingDuration(duration float64)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}

// MetricsStore persists simple named counters so they survive restarts.
type MetricsStore interface {
	Increment(key string)
	GetAll() (map[string]int, error)
}

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

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
		FetcherRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padelpro_feed_fetcher_runs_total",
			Help: "The total number of times the results feed fetcher has run.",
		}),
		RowsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padelpro_rows_ingested_total",
			Help: "The total number of raw match rows accepted by the normalizer.",
		}),
		ValidationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padelpro_validation_failures_total",
			Help: "The total number of raw match rows rejected by the normalizer.",
		}),
		FactsRanked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padelpro_facts_ranked_total",
			Help: "The total number of match facts applied to the ranking accumulator.",
		}),
		RecomputeRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padelpro_recompute_runs_total",
			Help: "The total number of retroactive ranking recomputes performed.",
		}),
		H2HCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padelpro_h2h_cache_hits_total",
			Help: "The total number of head-to-head summaries served from cache.",
		}),
		H2HCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padelpro_h2h_cache_misses_total",
			Help: "The total number of head-to-head summaries computed from scratch.",
		}),
		ProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "padelpro_fact_processing_duration_seconds",
			Help:    "The duration of individual fact processing.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padelpro_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padelpro_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "padelpro_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.FetcherRuns,
		s.RowsIngested,
		s.ValidationFailures,
		s.FactsRanked,
		s.RecomputeRuns,
		s.H2HCacheHits,
		s.H2HCacheMisses,
		s.ProcessingDuration,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncFetcherRuns() {
	s.FetcherRuns.Inc()
}

func (s *Service) IncRowsIngested() {
	s.RowsIngested.Inc()
}

func (s *Service) IncValidationFailures() {
	s.ValidationFailures.Inc()
}

func (s *Service) IncFactsRanked() {
	s.FactsRanked.Inc()
}

func (s *Service) IncRecomputeRuns() {
	s.RecomputeRuns.Inc()
}

func (s *Service) IncH2HCacheHits() {
	s.H2HCacheHits.Inc()
}

func (s *Service) IncH2HCacheMisses() {
	s.H2HCacheMisses.Inc()
}

func (s *Service) ObserveProcessingDuration(duration float64) {
	s.ProcessingDuration.Observe(duration)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}

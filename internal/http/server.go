package http

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/voleai/padelpro/internal/config"
	"github.com/voleai/padelpro/internal/feed"
	"github.com/voleai/padelpro/internal/h2h"
	"github.com/voleai/padelpro/internal/ingest"
	"github.com/voleai/padelpro/internal/leaderboard"
	"github.com/voleai/padelpro/internal/metrics"
	"github.com/voleai/padelpro/internal/notifier"
	"github.com/voleai/padelpro/internal/processor"
	"github.com/voleai/padelpro/internal/pubsub"
	"github.com/voleai/padelpro/internal/ranking"
	"github.com/voleai/padelpro/internal/stats"
)

func NewServer(store stats.Store, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, feedClient feed.ResultsClient, normalizer *ingest.Normalizer, accumulator *ranking.Accumulator, rankingStore ranking.SnapshotStore, aggregator *h2h.Aggregator, standings leaderboard.Cache, notifier notifier.Notifier, processor *processor.Processor, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		FeedClient:     feedClient,
		Normalizer:     normalizer,
		Ranking:        accumulator,
		RankingStore:   rankingStore,
		H2H:            aggregator,
		Leaderboard:    standings,
		Notifier:       notifier,
		Processor:      processor,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.seedSequence()
	server.routes()
	return server
}

// seedSequence initializes the ingestion sequence counter from the highest
// persisted seq, so restarts keep handing out monotonic numbers.
func (s *Server) seedSequence() {
	facts, err := s.Store.GetAllFacts()
	if err != nil {
		log.Error("Failed to seed ingestion sequence, starting from zero", "error", err)
		return
	}
	var max int64
	for _, fact := range facts {
		if fact.Seq > max {
			max = fact.Seq
		}
	}
	s.nextSeq.Store(max)
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an
	// authentication middleware.
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/clear", Chain(s.ClearStoreHandler(), paramsMiddleware))

	// Write side
	s.Router.Handle("POST /ingest", Chain(s.IngestHandler(), paramsMiddleware))
	s.Router.Handle("/fetch", Chain(s.FetchResultsHandler(), paramsMiddleware))
	s.Router.Handle("/process", Chain(s.ProcessFactsHandler(), paramsMiddleware))
	s.Router.Handle("POST /admin/recompute", Chain(s.RecomputeHandler(), paramsMiddleware))

	// Read side
	s.Router.Handle("GET /players", Chain(s.ListPlayersHandler(), paramsMiddleware))
	s.Router.Handle("GET /players/ranking", Chain(s.RankingHandler(), paramsMiddleware))
	s.Router.Handle("GET /players/headtohead/{a}/{b}", Chain(s.HeadToHeadHandler(), paramsMiddleware))
	s.Router.Handle("GET /players/{slug}/evolution", Chain(s.EvolutionHandler(), paramsMiddleware))
	s.Router.Handle("GET /players/{slug}", Chain(s.GetPlayerHandler(), paramsMiddleware))
	s.Router.Handle("GET /pairs", Chain(s.ListPairsHandler(), paramsMiddleware))
	s.Router.Handle("GET /pairs/head-to-head", Chain(s.PairHeadToHeadHandler(), paramsMiddleware))
	s.Router.Handle("GET /pairs/{slug}/evolution", Chain(s.EvolutionHandler(), paramsMiddleware))
	s.Router.Handle("GET /pairs/{slug}", Chain(s.GetPairHandler(), paramsMiddleware))
	s.Router.Handle("GET /matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("GET /matches/{a}/{b}", Chain(s.MatchesBetweenHandler(), paramsMiddleware))
	s.Router.Handle("GET /tournaments", Chain(s.ListTournamentsHandler(), paramsMiddleware))
	s.Router.Handle("GET /analytics/trending", Chain(s.TrendingHandler(), paramsMiddleware))
	s.Router.Handle("GET /search", Chain(s.SearchHandler(), paramsMiddleware))

	// Pub/Sub push endpoints
	s.Router.Handle("POST /pubsub/rank-fact", Chain(s.RankFactPushHandler(), paramsMiddleware))
	s.Router.Handle("POST /pubsub/update-pair-stats", Chain(s.UpdatePairStatsPushHandler(), paramsMiddleware))
	s.Router.Handle("POST /pubsub/notify-movement", Chain(s.NotifyMovementPushHandler(), paramsMiddleware))

	// Slack slash commands
	s.Router.Handle("POST /slack/command/ranking", Chain(s.RankingCommandHandler(), paramsMiddleware, s.slackSignatureMiddleware))
	s.Router.Handle("POST /slack/command/head-to-head", Chain(s.HeadToHeadCommandHandler(), paramsMiddleware, s.slackSignatureMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

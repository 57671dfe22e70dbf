package http

import (
	"net/http"
	"sync/atomic"

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

type Server struct {
	Store          stats.Store
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	FeedClient     feed.ResultsClient
	Normalizer     *ingest.Normalizer
	Ranking        *ranking.Accumulator
	RankingStore   ranking.SnapshotStore
	H2H            *h2h.Aggregator
	Leaderboard    leaderboard.Cache
	Notifier       notifier.Notifier
	Processor      *processor.Processor
	Router         *http.ServeMux

	pubsub pubsub.PubSubClient

	// nextSeq hands out stable ingestion sequence numbers, seeded from the
	// highest persisted seq at startup.
	nextSeq atomic.Int64
}

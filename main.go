package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/voleai/padelpro/internal/config"
	"github.com/voleai/padelpro/internal/database"
	"github.com/voleai/padelpro/internal/feed"
	"github.com/voleai/padelpro/internal/h2h"
	server "github.com/voleai/padelpro/internal/http"
	"github.com/voleai/padelpro/internal/ingest"
	"github.com/voleai/padelpro/internal/leaderboard"
	"github.com/voleai/padelpro/internal/metrics"
	"github.com/voleai/padelpro/internal/notifier/slack"
	"github.com/voleai/padelpro/internal/padel"
	"github.com/voleai/padelpro/internal/pair"
	"github.com/voleai/padelpro/internal/processor"
	"github.com/voleai/padelpro/internal/pubsub"
	"github.com/voleai/padelpro/internal/ranking"
	"github.com/voleai/padelpro/internal/stats"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken, cfg.MigrationsDir)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	statsStore := stats.New(db)
	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	feedClient := feed.NewClient()
	notifier := slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)
	ps := pubsub.New(cfg.ProjectID)

	rankingStore := ranking.NewStore(db)
	accumulator := ranking.New(cfg.Ranking.WindowWeeks, ranking.NewFormula(cfg.Ranking), rankingStore)
	if err := replayRankedFacts(context.Background(), statsStore, accumulator); err != nil {
		log.Fatalf("Failed to rebuild ranking state: %s", err)
	}

	aggregator := h2h.New(statsStore, metricsSvc)
	proc := processor.New(statsStore, accumulator, notifier, metricsSvc, ps)
	normalizer := ingest.NewNormalizer(pair.NewResolver())

	// The standings cache is optional; without Redis the ranking endpoints
	// fall back to the in-memory accumulator.
	var standings leaderboard.Cache
	if cfg.Redis.Addr != "" {
		standings = leaderboard.NewRedisCache(cfg.Redis.Addr)
	}

	s := server.NewServer(
		statsStore,
		metricsSvc,
		metricsHandler,
		cfg,
		feedClient,
		normalizer,
		accumulator,
		rankingStore,
		aggregator,
		standings,
		notifier,
		proc,
		ps,
	)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		// Create a context with a timeout for the shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}

// replayRankedFacts rebuilds the in-memory accumulator from facts that were
// already ranked in a previous run. The replay is deterministic (date, seq
// order) and the snapshot writes are idempotent upserts, so restarting the
// process converges on the same ranking state.
func replayRankedFacts(ctx context.Context, store stats.Store, accumulator *ranking.Accumulator) error {
	facts, err := store.GetAllFacts()
	if err != nil {
		return err
	}

	var ranked []*padel.MatchFact
	for _, fact := range facts {
		if fact.ProcessingStatus != padel.StatusNew {
			ranked = append(ranked, fact)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].Date.Equal(ranked[j].Date) {
			return ranked[i].Date.Before(ranked[j].Date)
		}
		return ranked[i].Seq < ranked[j].Seq
	})

	for _, fact := range ranked {
		accumulator.Register(fact.HomeID, fact.Kind)
		accumulator.Register(fact.AwayID, fact.Kind)
		if err := accumulator.Apply(ctx, fact); err != nil {
			return err
		}
	}
	if len(ranked) > 0 {
		log.Info("Rebuilt ranking state from persisted facts", "facts", len(ranked))
	}
	return nil
}

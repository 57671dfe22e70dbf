package processor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voleai/padelpro/internal/config"
	"github.com/voleai/padelpro/internal/metrics"
	"github.com/voleai/padelpro/internal/notifier"
	"github.com/voleai/padelpro/internal/padel"
	"github.com/voleai/padelpro/internal/processor"
	"github.com/voleai/padelpro/internal/pubsub"
	"github.com/voleai/padelpro/internal/ranking"
	"github.com/voleai/padelpro/internal/stats"
)

type fixture struct {
	store    *stats.MockStore
	ranker   *ranking.Accumulator
	notifier *notifier.Mock
	metrics  *metrics.Mock
	pubsub   *pubsub.MockPubSubClient
	proc     *processor.Processor
}

func newFixture() *fixture {
	formula := ranking.NewFormula(config.RankingConfig{
		WindowWeeks:   52,
		BasePoints:    config.DefaultBasePoints(),
		MinMultiplier: 0.5,
		MaxMultiplier: 2.0,
	})
	f := &fixture{
		store:    stats.NewMock(),
		ranker:   ranking.New(52, formula, nil),
		notifier: notifier.NewMock(),
		metrics:  metrics.NewMock(),
		pubsub:   pubsub.NewMock("test-project"),
	}
	f.proc = processor.New(f.store, f.ranker, f.notifier, f.metrics, f.pubsub)
	return f
}

func pairFact(id string, date time.Time, seq int64, winner string) *padel.MatchFact {
	return &padel.MatchFact{
		ID:               id,
		TournamentID:     "t1",
		Category:         padel.CategoryMajor,
		Date:             date,
		Round:            "Final",
		Seq:              seq,
		Kind:             padel.SubjectPair,
		HomeID:           "chingotto--galan",
		AwayID:           "coello--tapia",
		Sets:             []padel.SetScore{{Home: 6, Away: 4}, {Home: 6, Away: 2}},
		WinnerID:         winner,
		ProcessingStatus: padel.StatusNew,
	}
}

func statuses(store *stats.MockStore, matchID string) []padel.ProcessingStatus {
	var out []padel.ProcessingStatus
	for _, call := range store.UpdateProcessingStatusCalls {
		if call.MatchID == matchID {
			out = append(out, call.Status)
		}
	}
	return out
}

func topics(ps *pubsub.MockPubSubClient) []string {
	var out []string
	for _, call := range ps.SendMessageCalls {
		out = append(out, call.Topic)
	}
	return out
}

func TestProcessFacts(t *testing.T) {
	t.Run("full lifecycle of a new fact", func(t *testing.T) {
		f := newFixture()
		fact := pairFact("m1", time.Now().UTC().Add(-24*time.Hour), 1, "chingotto--galan")
		f.store.GetFactsForProcessingFunc = func() ([]*padel.MatchFact, error) {
			return []*padel.MatchFact{fact}, nil
		}

		f.proc.ProcessFacts(context.Background(), false)

		assert.Equal(t, []padel.ProcessingStatus{
			padel.StatusRanked,
			padel.StatusStatsUpdated,
			padel.StatusNotified,
			padel.StatusCompleted,
		}, statuses(f.store, "m1"))

		// Pair stats are updated by the pubsub push handler, not inline.
		assert.Empty(t, f.store.UpdatePairStatsCalls)

		require.Len(t, f.notifier.SendResultNotificationCalls, 1)
		// First Major win with no rated history pays the base exactly.
		assert.InDelta(t, 100.0, f.notifier.SendResultNotificationCalls[0].PointsAwarded, 1e-9)

		assert.Contains(t, topics(f.pubsub), "rank-fact")
		assert.Contains(t, topics(f.pubsub), "update-pair-stats")
		assert.Contains(t, topics(f.pubsub), "notify-movement")

		assert.Equal(t, 1, f.metrics.FactsRanked())
	})

	t.Run("dry run touches nothing persistent", func(t *testing.T) {
		f := newFixture()
		fact := pairFact("m1", time.Now().UTC().Add(-24*time.Hour), 1, "chingotto--galan")
		f.store.GetFactsForProcessingFunc = func() ([]*padel.MatchFact, error) {
			return []*padel.MatchFact{fact}, nil
		}

		f.proc.ProcessFacts(context.Background(), true)

		assert.Empty(t, f.store.UpdateProcessingStatusCalls)
		assert.Empty(t, f.store.UpdatePairStatsCalls)
		assert.Empty(t, f.pubsub.SendMessageCalls)
		// The in-memory object still walks the full state machine.
		assert.Equal(t, padel.StatusCompleted, fact.ProcessingStatus)
	})

	t.Run("resumes from an intermediate status", func(t *testing.T) {
		f := newFixture()
		fact := pairFact("m1", time.Now().UTC().Add(-24*time.Hour), 1, "chingotto--galan")
		fact.ProcessingStatus = padel.StatusRanked
		f.store.GetFactsForProcessingFunc = func() ([]*padel.MatchFact, error) {
			return []*padel.MatchFact{fact}, nil
		}

		f.proc.ProcessFacts(context.Background(), false)

		assert.Equal(t, []padel.ProcessingStatus{
			padel.StatusStatsUpdated,
			padel.StatusNotified,
			padel.StatusCompleted,
		}, statuses(f.store, "m1"))
		assert.Equal(t, 0, f.metrics.FactsRanked(), "already ranked, must not rank again")
	})

	t.Run("historic fact skips the result notification", func(t *testing.T) {
		f := newFixture()
		fact := pairFact("m1", time.Now().UTC().Add(-30*24*time.Hour), 1, "chingotto--galan")
		f.store.GetFactsForProcessingFunc = func() ([]*padel.MatchFact, error) {
			return []*padel.MatchFact{fact}, nil
		}

		f.proc.ProcessFacts(context.Background(), false)

		assert.Empty(t, f.notifier.SendResultNotificationCalls)
		assert.Equal(t, padel.StatusCompleted, fact.ProcessingStatus)
	})

	t.Run("out-of-order fact stays put for retry", func(t *testing.T) {
		f := newFixture()
		first := pairFact("m1", time.Now().UTC().Add(-24*time.Hour), 2, "chingotto--galan")
		// Earlier date, same subjects: the accumulator must refuse it.
		stale := pairFact("m2", time.Now().UTC().Add(-48*time.Hour), 1, "coello--tapia")
		f.store.GetFactsForProcessingFunc = func() ([]*padel.MatchFact, error) {
			return []*padel.MatchFact{first, stale}, nil
		}

		f.proc.ProcessFacts(context.Background(), false)

		assert.Equal(t, padel.StatusCompleted, first.ProcessingStatus)
		assert.Equal(t, padel.StatusNew, stale.ProcessingStatus)
		assert.Empty(t, statuses(f.store, "m2"))
	})

	t.Run("movement is published once per run", func(t *testing.T) {
		f := newFixture()
		fact := pairFact("m1", time.Now().UTC().Add(-24*time.Hour), 1, "chingotto--galan")
		f.store.GetFactsForProcessingFunc = func() ([]*padel.MatchFact, error) {
			return []*padel.MatchFact{fact}, nil
		}

		f.proc.ProcessFacts(context.Background(), false)

		var movements []notifier.Movement
		for _, call := range f.pubsub.SendMessageCalls {
			if call.Topic == string(pubsub.EventNotifyMovement) {
				movements = call.Data.([]notifier.Movement)
			}
		}
		require.NotEmpty(t, movements)
		assert.Equal(t, "chingotto--galan", movements[0].SubjectID)
		assert.Equal(t, 1, movements[0].Rank)
		assert.InDelta(t, 100.0, movements[0].PointsChange, 1e-9)
	})

	t.Run("no facts is a no-op", func(t *testing.T) {
		f := newFixture()
		f.proc.ProcessFacts(context.Background(), false)

		assert.Empty(t, f.store.UpdateProcessingStatusCalls)
		assert.Empty(t, f.pubsub.SendMessageCalls)
	})
}

func TestUpdatePairStats(t *testing.T) {
	f := newFixture()
	fact := pairFact("m1", time.Now().UTC(), 1, "chingotto--galan")

	f.proc.UpdatePairStats(fact)

	require.Len(t, f.store.UpdatePairStatsCalls, 1)
	assert.Equal(t, "m1", f.store.UpdatePairStatsCalls[0].ID)
}

func TestNotifyMovement(t *testing.T) {
	f := newFixture()
	movements := []notifier.Movement{{SubjectID: "galan", Kind: padel.SubjectPlayer, Points: 100, Rank: 1, PreviousRank: 2}}

	err := f.proc.NotifyMovement(movements, false)

	require.NoError(t, err)
	require.Len(t, f.notifier.SendMovementDigestCalls, 1)
	assert.Equal(t, movements, f.notifier.SendMovementDigestCalls[0])
}

package processor

import (
	"context"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/voleai/padelpro/internal/metrics"
	"github.com/voleai/padelpro/internal/notifier"
	"github.com/voleai/padelpro/internal/padel"
	"github.com/voleai/padelpro/internal/pubsub"
)

// Result notifications are suppressed for facts older than this. Historic
// backfills should move the ranking, not spam the channel.
const notificationWindow = 7 * 24 * time.Hour

// New creates a new Processor.
func New(store Store, ranker Ranker, notifier Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient) *Processor {
	return &Processor{
		store:    store,
		ranking:  ranker,
		pubsub:   pubsub,
		notifier: notifier,
		metrics:  metrics,
	}
}

// ProcessFacts fetches facts that need processing and advances them through
// the state machine. After the run it sends a single ranking movement digest
// covering every subject whose position changed.
func (p *Processor) ProcessFacts(ctx context.Context, dryRun bool) {
	log.Info("Starting fact processing...")
	facts, err := p.store.GetFactsForProcessing()
	if err != nil {
		log.Error("Failed to get facts for processing", "error", err)
		return
	}

	if len(facts) == 0 {
		log.Info("No facts to process.")
		return
	}

	ranksBefore := p.currentRanks()

	log.Info("Found facts to process", "count", len(facts))
	for _, fact := range facts {
		startTime := time.Now()
		p.processFact(ctx, fact, dryRun)
		duration := time.Since(startTime).Milliseconds()
		p.metrics.ObserveProcessingDuration(float64(duration))
	}

	movements := p.movementsSince(ranksBefore)
	if len(movements) > 0 {
		if !dryRun {
			p.pubsub.SendMessage(pubsub.EventNotifyMovement, movements)
		} else {
			log.Info("[Dry Run] Would publish ranking movement", "count", len(movements))
		}
	}
	log.Info("Fact processing finished.", "movements", len(movements))
}

func (p *Processor) processFact(ctx context.Context, fact *padel.MatchFact, dryRun bool) {
	log.Info("Processing fact", "matchID", fact.ID, "initial_status", fact.ProcessingStatus)
	var pointsAwarded float64
	for {
		currentState := fact.ProcessingStatus
		log.Debug("Evaluating fact state", "matchID", fact.ID, "status", currentState)

		switch currentState {
		case padel.StatusNew:
			// Subjects must exist before the accumulator will accept the fact.
			p.ranking.Register(fact.HomeID, fact.Kind)
			p.ranking.Register(fact.AwayID, fact.Kind)

			before, _ := p.ranking.CurrentPoints(fact.WinnerID, fact.Date)
			if err := p.ranking.Apply(ctx, fact); err != nil {
				// Leave the status untouched so the fact is retried on the
				// next run, typically after an admin recompute.
				log.Error("Failed to apply fact to ranking", "error", err, "matchID", fact.ID)
				return
			}
			after, _ := p.ranking.CurrentPoints(fact.WinnerID, fact.Date)
			pointsAwarded = after - before
			p.metrics.IncFactsRanked()
			if !dryRun {
				p.pubsub.SendMessage(pubsub.EventRankFact, pubsub.FactEvent{MatchID: fact.ID, DryRun: dryRun})
			}
			p.updateStatus(fact, padel.StatusRanked, dryRun)

		case padel.StatusRanked:
			log.Info("Fact is ranked. Publishing pair stats update.", "matchID", fact.ID)
			if !dryRun {
				p.pubsub.SendMessage(pubsub.EventUpdatePairStats, fact)
			}
			p.updateStatus(fact, padel.StatusStatsUpdated, dryRun)

		case padel.StatusStatsUpdated:
			// Historic backfills skip the notification but still advance.
			if time.Since(fact.Date) < notificationWindow {
				log.Info("Sending result notification.", "matchID", fact.ID)
				if err := p.notifier.SendResultNotification(fact, pointsAwarded, dryRun); err != nil {
					log.Error("Failed to send result notification", "error", err, "matchID", fact.ID)
				}
			}
			p.updateStatus(fact, padel.StatusNotified, dryRun)

		case padel.StatusNotified:
			log.Info("Fact has been notified. Marking as complete.", "matchID", fact.ID)
			p.updateStatus(fact, padel.StatusCompleted, dryRun)

		case padel.StatusCompleted:
			log.Debug("Fact is complete. No further processing needed.", "matchID", fact.ID)
			return // End of the line for this fact

		default:
			log.Warn("Unknown processing status", "status", currentState, "matchID", fact.ID)
			return // Exit if status is unknown
		}

		// If the status hasn't changed, we're done with this fact for now.
		if fact.ProcessingStatus == currentState {
			log.Debug("Fact state did not change. Finished processing for now.", "matchID", fact.ID, "status", currentState)
			break
		}
	}
	log.Info("Finished processing fact", "matchID", fact.ID, "final_status", fact.ProcessingStatus)
}

// UpdatePairStats folds a ranked fact into the consolidated pair statistics.
// Invoked from the pubsub push handler.
func (p *Processor) UpdatePairStats(fact *padel.MatchFact) {
	log.Debug("Updating pair stats", "matchID", fact.ID)
	p.store.UpdatePairStats(fact)
}

// NotifyMovement sends the ranking movement digest. Invoked from the pubsub
// push handler.
func (p *Processor) NotifyMovement(movements []notifier.Movement, dryRun bool) error {
	log.Debug("Sending ranking movement digest", "count", len(movements))
	return p.notifier.SendMovementDigest(movements, dryRun)
}

func (p *Processor) updateStatus(fact *padel.MatchFact, newStatus padel.ProcessingStatus, dryRun bool) {
	if dryRun {
		log.Info("[Dry Run] Would update fact status", "matchID", fact.ID, "from", fact.ProcessingStatus, "to", newStatus)
		fact.ProcessingStatus = newStatus // Update in-memory for the loop
		return
	}

	err := p.store.UpdateProcessingStatus(fact.ID, newStatus)
	if err != nil {
		log.Error("Failed to update processing status", "error", err, "matchID", fact.ID)
	} else {
		log.Debug("Successfully updated status", "matchID", fact.ID, "from", fact.ProcessingStatus, "to", newStatus)
		fact.ProcessingStatus = newStatus // Keep the in-memory object in sync
	}
}

type rankEntry struct {
	points float64
	rank   int
	kind   padel.SubjectKind
}

// currentRanks snapshots every ranked subject's position across both kinds.
func (p *Processor) currentRanks() map[string]rankEntry {
	now := time.Now().UTC()
	ranks := make(map[string]rankEntry)
	for _, kind := range []padel.SubjectKind{padel.SubjectPlayer, padel.SubjectPair} {
		for _, row := range p.ranking.Standings(kind, now) {
			ranks[row.SubjectID] = rankEntry{points: row.Points, rank: row.Rank, kind: kind}
		}
	}
	return ranks
}

// movementsSince diffs the current standings against a snapshot taken before
// the run. Subjects that entered the standings count as movement too.
func (p *Processor) movementsSince(before map[string]rankEntry) []notifier.Movement {
	var movements []notifier.Movement
	for id, entry := range p.currentRanks() {
		prev, existed := before[id]
		if existed && prev.rank == entry.rank && prev.points == entry.points {
			continue
		}
		prevRank := entry.rank
		if existed {
			prevRank = prev.rank
		}
		movements = append(movements, notifier.Movement{
			SubjectID:    id,
			Kind:         entry.kind,
			Points:       entry.points,
			PointsChange: entry.points - prev.points,
			Rank:         entry.rank,
			PreviousRank: prevRank,
		})
	}
	sort.Slice(movements, func(i, j int) bool {
		if movements[i].Kind != movements[j].Kind {
			return movements[i].Kind < movements[j].Kind
		}
		return movements[i].Rank < movements[j].Rank
	})
	return movements
}

package processor

import (
	"context"
	"time"

	"github.com/voleai/padelpro/internal/notifier"
	"github.com/voleai/padelpro/internal/padel"
	"github.com/voleai/padelpro/internal/ranking"
)

// Store defines the database operations required by the processor.
type Store interface {
	GetFactsForProcessing() ([]*padel.MatchFact, error)
	UpdateProcessingStatus(matchID string, status padel.ProcessingStatus) error
	UpdatePairStats(fact *padel.MatchFact)
}

// Ranker defines the ranking operations required by the processor.
// Satisfied by ranking.Accumulator.
type Ranker interface {
	Register(id string, kind padel.SubjectKind)
	Apply(ctx context.Context, fact *padel.MatchFact) error
	CurrentPoints(subjectID string, asOf time.Time) (float64, error)
	Standings(kind padel.SubjectKind, asOf time.Time) []ranking.StandingRow
}

// Notifier defines the notification operations required by the processor.
// This is now an alias for the main notifier interface for decoupling.
type Notifier interface {
	notifier.Notifier
}

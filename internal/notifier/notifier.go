package notifier

import (
	"github.com/voleai/padelpro/internal/h2h"
	"github.com/voleai/padelpro/internal/padel"
	"github.com/voleai/padelpro/internal/ranking"
)

// Movement is one subject's ranking change after a processed fact, the unit
// of the movement digest.
type Movement struct {
	SubjectID    string
	Kind         padel.SubjectKind
	Points       float64
	PointsChange float64
	Rank         int
	PreviousRank int
}

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For processed results
	SendResultNotification(fact *padel.MatchFact, pointsAwarded float64, dryRun bool) error
	// For ranking movement after a processing run
	SendMovementDigest(movements []Movement, dryRun bool) error
	// For slash commands
	SendStandings(rows []ranking.StandingRow, kind padel.SubjectKind, dryRun bool) error
	SendH2HSummary(summary *h2h.Summary, dryRun bool) error
	SendSubjectNotFound(query string, dryRun bool) error

	// For formatting responses for slash commands
	FormatStandingsResponse(rows []ranking.StandingRow, kind padel.SubjectKind) (any, error)
	FormatH2HResponse(summary *h2h.Summary) (any, error)
	FormatSubjectNotFoundResponse(query string) (any, error)
}

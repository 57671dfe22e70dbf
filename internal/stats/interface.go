package stats

import (
	"context"

	"github.com/voleai/padelpro/internal/padel"
)

// Store defines the interface for the consumer-facing statistics data.
type Store interface {
	UpsertPlayer(p padel.Player) error
	UpsertPlayers(players []padel.Player) error
	IsKnownPlayer(slug string) bool
	GetPlayer(slug string) (*padel.Player, error)
	GetAllPlayers() ([]padel.Player, error)

	UpsertTournament(t padel.Tournament) error
	GetTournaments(year int) ([]padel.Tournament, error)

	UpsertFact(fact *padel.MatchFact) error
	UpsertFacts(facts []*padel.MatchFact) error
	GetFactsForProcessing() ([]*padel.MatchFact, error)
	UpdateProcessingStatus(matchID string, status padel.ProcessingStatus) error
	GetAllFacts() ([]*padel.MatchFact, error)
	FactsBySubject(ctx context.Context, subjectID string) ([]*padel.MatchFact, error)
	FactsBetween(ctx context.Context, a, b string) ([]*padel.MatchFact, error)

	UpdatePairStats(fact *padel.MatchFact)
	GetPairStats(pairSlug string) (*PairStats, error)
	GetAllPairStats() ([]PairStats, error)

	Search(query string) (*SearchResult, error)
	Clear()
	ClearFact(matchID string)
}

package stats

import (
	"context"
	"sync"

	"github.com/voleai/padelpro/internal/padel"
)

// MockStore is a mock implementation of the Store interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	UpsertPlayerFunc           func(p padel.Player) error
	UpsertPlayersFunc          func(players []padel.Player) error
	IsKnownPlayerFunc          func(slug string) bool
	GetPlayerFunc              func(slug string) (*padel.Player, error)
	GetAllPlayersFunc          func() ([]padel.Player, error)
	UpsertTournamentFunc       func(t padel.Tournament) error
	GetTournamentsFunc         func(year int) ([]padel.Tournament, error)
	UpsertFactFunc             func(fact *padel.MatchFact) error
	UpsertFactsFunc            func(facts []*padel.MatchFact) error
	GetFactsForProcessingFunc  func() ([]*padel.MatchFact, error)
	UpdateProcessingStatusFunc func(matchID string, status padel.ProcessingStatus) error
	GetAllFactsFunc            func() ([]*padel.MatchFact, error)
	FactsBySubjectFunc         func(ctx context.Context, subjectID string) ([]*padel.MatchFact, error)
	FactsBetweenFunc           func(ctx context.Context, a, b string) ([]*padel.MatchFact, error)
	UpdatePairStatsFunc        func(fact *padel.MatchFact)
	GetPairStatsFunc           func(pairSlug string) (*PairStats, error)
	GetAllPairStatsFunc        func() ([]PairStats, error)
	SearchFunc                 func(query string) (*SearchResult, error)
	ClearFunc                  func()
	ClearFactFunc              func(matchID string)

	// Call records
	UpsertPlayerCalls           []padel.Player
	UpsertFactCalls             []*padel.MatchFact
	UpsertFactsCalls            [][]*padel.MatchFact
	UpdatePairStatsCalls        []*padel.MatchFact
	UpdateProcessingStatusCalls []struct {
		MatchID string
		Status  padel.ProcessingStatus
	}
	ClearFactCalls []string
	ClearCalls     int
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertPlayerCalls = nil
	m.UpsertFactCalls = nil
	m.UpsertFactsCalls = nil
	m.UpdatePairStatsCalls = nil
	m.UpdateProcessingStatusCalls = nil
	m.ClearFactCalls = nil
	m.ClearCalls = 0
}

func (m *MockStore) UpsertPlayer(p padel.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertPlayerCalls = append(m.UpsertPlayerCalls, p)
	if m.UpsertPlayerFunc != nil {
		return m.UpsertPlayerFunc(p)
	}
	return nil
}

func (m *MockStore) UpsertPlayers(players []padel.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertPlayerCalls = append(m.UpsertPlayerCalls, players...)
	if m.UpsertPlayersFunc != nil {
		return m.UpsertPlayersFunc(players)
	}
	return nil
}

func (m *MockStore) IsKnownPlayer(slug string) bool {
	if m.IsKnownPlayerFunc != nil {
		return m.IsKnownPlayerFunc(slug)
	}
	return true
}

func (m *MockStore) GetPlayer(slug string) (*padel.Player, error) {
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(slug)
	}
	return &padel.Player{Slug: slug}, nil
}

func (m *MockStore) GetAllPlayers() ([]padel.Player, error) {
	if m.GetAllPlayersFunc != nil {
		return m.GetAllPlayersFunc()
	}
	return nil, nil
}

func (m *MockStore) UpsertTournament(t padel.Tournament) error {
	if m.UpsertTournamentFunc != nil {
		return m.UpsertTournamentFunc(t)
	}
	return nil
}

func (m *MockStore) GetTournaments(year int) ([]padel.Tournament, error) {
	if m.GetTournamentsFunc != nil {
		return m.GetTournamentsFunc(year)
	}
	return nil, nil
}

func (m *MockStore) UpsertFact(fact *padel.MatchFact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertFactCalls = append(m.UpsertFactCalls, fact)
	if m.UpsertFactFunc != nil {
		return m.UpsertFactFunc(fact)
	}
	return nil
}

func (m *MockStore) UpsertFacts(facts []*padel.MatchFact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertFactsCalls = append(m.UpsertFactsCalls, facts)
	if m.UpsertFactsFunc != nil {
		return m.UpsertFactsFunc(facts)
	}
	return nil
}

func (m *MockStore) GetFactsForProcessing() ([]*padel.MatchFact, error) {
	if m.GetFactsForProcessingFunc != nil {
		return m.GetFactsForProcessingFunc()
	}
	return nil, nil
}

func (m *MockStore) UpdateProcessingStatus(matchID string, status padel.ProcessingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateProcessingStatusCalls = append(m.UpdateProcessingStatusCalls, struct {
		MatchID string
		Status  padel.ProcessingStatus
	}{matchID, status})
	if m.UpdateProcessingStatusFunc != nil {
		return m.UpdateProcessingStatusFunc(matchID, status)
	}
	return nil
}

func (m *MockStore) GetAllFacts() ([]*padel.MatchFact, error) {
	if m.GetAllFactsFunc != nil {
		return m.GetAllFactsFunc()
	}
	return nil, nil
}

func (m *MockStore) FactsBySubject(ctx context.Context, subjectID string) ([]*padel.MatchFact, error) {
	if m.FactsBySubjectFunc != nil {
		return m.FactsBySubjectFunc(ctx, subjectID)
	}
	return nil, nil
}

func (m *MockStore) FactsBetween(ctx context.Context, a, b string) ([]*padel.MatchFact, error) {
	if m.FactsBetweenFunc != nil {
		return m.FactsBetweenFunc(ctx, a, b)
	}
	return nil, nil
}

func (m *MockStore) UpdatePairStats(fact *padel.MatchFact) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdatePairStatsCalls = append(m.UpdatePairStatsCalls, fact)
	if m.UpdatePairStatsFunc != nil {
		m.UpdatePairStatsFunc(fact)
	}
}

func (m *MockStore) GetPairStats(pairSlug string) (*PairStats, error) {
	if m.GetPairStatsFunc != nil {
		return m.GetPairStatsFunc(pairSlug)
	}
	return &PairStats{PairSlug: pairSlug}, nil
}

func (m *MockStore) GetAllPairStats() ([]PairStats, error) {
	if m.GetAllPairStatsFunc != nil {
		return m.GetAllPairStatsFunc()
	}
	return nil, nil
}

func (m *MockStore) Search(query string) (*SearchResult, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(query)
	}
	return &SearchResult{}, nil
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
	if m.ClearFunc != nil {
		m.ClearFunc()
	}
}

func (m *MockStore) ClearFact(matchID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearFactCalls = append(m.ClearFactCalls, matchID)
	if m.ClearFactFunc != nil {
		m.ClearFactFunc(matchID)
	}
}

var _ Store = (*MockStore)(nil)

package notifier

import (
	"sync"

	"github.com/voleai/padelpro/internal/h2h"
	"github.com/voleai/padelpro/internal/padel"
	"github.com/voleai/padelpro/internal/ranking"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	SendResultNotificationCalls []struct {
		Fact          *padel.MatchFact
		PointsAwarded float64
	}
	SendMovementDigestCalls [][]Movement
	SendStandingsCalls      []struct {
		Rows []ranking.StandingRow
		Kind padel.SubjectKind
	}
	SendH2HSummaryCalls     []*h2h.Summary
	SendSubjectNotFoundCalls []string

	// Spies for format functions
	FormatStandingsResponseFunc       func(rows []ranking.StandingRow, kind padel.SubjectKind) (any, error)
	FormatH2HResponseFunc             func(summary *h2h.Summary) (any, error)
	FormatSubjectNotFoundResponseFunc func(query string) (any, error)
}

var _ Notifier = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = nil
	m.SendMovementDigestCalls = nil
	m.SendStandingsCalls = nil
	m.SendH2HSummaryCalls = nil
	m.SendSubjectNotFoundCalls = nil
}

func (m *Mock) SendResultNotification(fact *padel.MatchFact, pointsAwarded float64, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = append(m.SendResultNotificationCalls, struct {
		Fact          *padel.MatchFact
		PointsAwarded float64
	}{fact, pointsAwarded})
	return nil
}

func (m *Mock) SendMovementDigest(movements []Movement, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMovementDigestCalls = append(m.SendMovementDigestCalls, movements)
	return nil
}

func (m *Mock) SendStandings(rows []ranking.StandingRow, kind padel.SubjectKind, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendStandingsCalls = append(m.SendStandingsCalls, struct {
		Rows []ranking.StandingRow
		Kind padel.SubjectKind
	}{rows, kind})
	return nil
}

func (m *Mock) SendH2HSummary(summary *h2h.Summary, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendH2HSummaryCalls = append(m.SendH2HSummaryCalls, summary)
	return nil
}

func (m *Mock) SendSubjectNotFound(query string, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendSubjectNotFoundCalls = append(m.SendSubjectNotFoundCalls, query)
	return nil
}

func (m *Mock) FormatStandingsResponse(rows []ranking.StandingRow, kind padel.SubjectKind) (any, error) {
	if m.FormatStandingsResponseFunc != nil {
		return m.FormatStandingsResponseFunc(rows, kind)
	}
	return rows, nil
}

func (m *Mock) FormatH2HResponse(summary *h2h.Summary) (any, error) {
	if m.FormatH2HResponseFunc != nil {
		return m.FormatH2HResponseFunc(summary)
	}
	return summary, nil
}

func (m *Mock) FormatSubjectNotFoundResponse(query string) (any, error) {
	if m.FormatSubjectNotFoundResponseFunc != nil {
		return m.FormatSubjectNotFoundResponseFunc(query)
	}
	return query, nil
}

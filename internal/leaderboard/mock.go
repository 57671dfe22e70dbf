package leaderboard

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/voleai/padelpro/internal/padel"
)

// MockCache is an in-memory Cache implementation for tests and for running
// without redis configured.
type MockCache struct {
	mu      sync.Mutex
	entries map[padel.SubjectKind]map[string]scoredEntry
}

type scoredEntry struct {
	points float64
	seq    int64
}

var _ Cache = (*MockCache)(nil)

func NewMock() *MockCache {
	return &MockCache{
		entries: make(map[padel.SubjectKind]map[string]scoredEntry),
	}
}

func (m *MockCache) UpdateStanding(ctx context.Context, kind padel.SubjectKind, subjectID string, points float64, seq int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries[kind] == nil {
		m.entries[kind] = make(map[string]scoredEntry)
	}
	m.entries[kind][subjectID] = scoredEntry{points: points, seq: seq}
	return nil
}

func (m *MockCache) TopN(ctx context.Context, kind padel.SubjectKind, n int64) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ordered := m.orderedLocked(kind)
	if int64(len(ordered)) > n {
		ordered = ordered[:n]
	}
	return ordered, nil
}

func (m *MockCache) Rank(ctx context.Context, kind padel.SubjectKind, subjectID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.orderedLocked(kind) {
		if e.SubjectID == subjectID {
			return e.Rank, nil
		}
	}
	return 0, fmt.Errorf("subject '%s' not in standings", subjectID)
}

func (m *MockCache) Remove(ctx context.Context, kind padel.SubjectKind, subjectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries[kind], subjectID)
	return nil
}

func (m *MockCache) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[padel.SubjectKind]map[string]scoredEntry)
	return nil
}

func (m *MockCache) orderedLocked(kind padel.SubjectKind) []Entry {
	type row struct {
		id string
		scoredEntry
	}
	var rows []row
	for id, e := range m.entries[kind] {
		rows = append(rows, row{id, e})
	}
	sort.Slice(rows, func(i, j int) bool {
		return memberScore(rows[i].points, rows[i].seq) < memberScore(rows[j].points, rows[j].seq)
	})

	out := make([]Entry, len(rows))
	for i, r := range rows {
		out[i] = Entry{SubjectID: r.id, Points: r.points, Rank: i + 1}
	}
	return out
}

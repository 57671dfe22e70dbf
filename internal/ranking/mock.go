package ranking

import (
	"context"
	"sync"
	"time"

	"github.com/voleai/padelpro/internal/padel"
)

// MockStore is an in-memory SnapshotStore for tests.
type MockStore struct {
	mu            sync.Mutex
	Contributions []Contribution
	Snaps         []Snapshot

	SaveContributionErr error
	SaveSnapshotsErr    error
	// FailSaves makes the first N save calls fail, to exercise retries.
	FailSaves int
}

var _ SnapshotStore = (*MockStore)(nil)

func (m *MockStore) SaveContribution(ctx context.Context, c Contribution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSaves > 0 {
		m.FailSaves--
		return context.DeadlineExceeded
	}
	if m.SaveContributionErr != nil {
		return m.SaveContributionErr
	}
	m.Contributions = append(m.Contributions, c)
	return nil
}

func (m *MockStore) SaveSnapshots(ctx context.Context, snaps []Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveSnapshotsErr != nil {
		return m.SaveSnapshotsErr
	}
	m.Snaps = append(m.Snaps, snaps...)
	return nil
}

func (m *MockStore) DeleteFrom(ctx context.Context, subjectID string, from time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	snaps := m.Snaps[:0]
	for _, s := range m.Snaps {
		if s.SubjectID == subjectID && !s.AsOf.Before(from) {
			deleted++
			continue
		}
		snaps = append(snaps, s)
	}
	m.Snaps = snaps

	contribs := m.Contributions[:0]
	for _, c := range m.Contributions {
		if c.SubjectID == subjectID && !c.Date.Before(from) {
			continue
		}
		contribs = append(contribs, c)
	}
	m.Contributions = contribs
	return deleted, nil
}

func (m *MockStore) Evolution(ctx context.Context, subjectID string) ([]Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Snapshot
	for _, s := range m.Snaps {
		if s.SubjectID == subjectID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MockStore) LatestStandings(ctx context.Context, kind padel.SubjectKind, limit int) ([]Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	latest := make(map[string]Snapshot)
	for _, s := range m.Snaps {
		if s.Kind != kind {
			continue
		}
		if cur, ok := latest[s.SubjectID]; !ok || s.Seq > cur.Seq {
			latest[s.SubjectID] = s
		}
	}
	var out []Snapshot
	for _, s := range latest {
		out = append(out, s)
	}
	return out, nil
}

func (m *MockStore) Trending(ctx context.Context, kind padel.SubjectKind, limit int) ([]Snapshot, error) {
	snaps, _ := m.LatestStandings(ctx, kind, limit)
	var out []Snapshot
	for _, s := range snaps {
		if s.PointsChange > 0 {
			out = append(out, s)
		}
	}
	return out, nil
}

package ranking

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/voleai/padelpro/internal/padel"
)

// store persists ranking contributions and snapshots to SQLite. It backs the
// read API's evolution/standings/trending queries.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore creates a new sqlite-backed SnapshotStore.
func NewStore(db *sql.DB) SnapshotStore {
	return &store{db: db}
}

func (s *store) SaveContribution(ctx context.Context, c Contribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ranking_contributions (subject_id, match_id, date, seq, points)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(subject_id, match_id) DO UPDATE SET
			date = excluded.date,
			seq = excluded.seq,
			points = excluded.points;
	`, c.SubjectID, c.MatchID, c.Date.Unix(), c.Seq, c.Points)
	return err
}

func (s *store) SaveSnapshots(ctx context.Context, snaps []Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
		INSERT INTO ranking_snapshots (subject_id, kind, as_of, seq, points, rank, points_change)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(subject_id, seq) DO UPDATE SET
			as_of = excluded.as_of,
			points = excluded.points,
			rank = excluded.rank,
			points_change = excluded.points_change;
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, snap := range snaps {
		if _, err := stmt.Exec(snap.SubjectID, snap.Kind, snap.AsOf.Unix(), snap.Seq, snap.Points, snap.Rank, snap.PointsChange); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *store) DeleteFrom(ctx context.Context, subjectID string, from time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	res, err := tx.Exec("DELETE FROM ranking_snapshots WHERE subject_id = ? AND as_of >= ?", subjectID, from.Unix())
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	deleted, _ := res.RowsAffected()
	if _, err := tx.Exec("DELETE FROM ranking_contributions WHERE subject_id = ? AND date >= ?", subjectID, from.Unix()); err != nil {
		tx.Rollback()
		return 0, err
	}
	return deleted, tx.Commit()
}

// Evolution returns the full snapshot series for a subject, oldest first.
func (s *store) Evolution(ctx context.Context, subjectID string) ([]Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT subject_id, kind, as_of, seq, points, rank, points_change
		FROM ranking_snapshots
		WHERE subject_id = ?
		ORDER BY as_of ASC, seq ASC
	`, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSnapshots(rows)
}

// LatestStandings returns the most recent snapshot per subject of a kind,
// ordered by points.
func (s *store) LatestStandings(ctx context.Context, kind padel.SubjectKind, limit int) ([]Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT subject_id, kind, as_of, seq, points, rank, points_change
		FROM ranking_snapshots
		WHERE kind = ? AND seq IN (
			SELECT MAX(seq) FROM ranking_snapshots WHERE kind = ? GROUP BY subject_id
		)
		ORDER BY points DESC, seq ASC, subject_id ASC
		LIMIT ?
	`, kind, kind, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSnapshots(rows)
}

// Trending returns the subjects with the biggest positive points change in
// their latest snapshot.
func (s *store) Trending(ctx context.Context, kind padel.SubjectKind, limit int) ([]Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT subject_id, kind, as_of, seq, points, rank, points_change
		FROM ranking_snapshots
		WHERE kind = ? AND points_change > 0 AND seq IN (
			SELECT MAX(seq) FROM ranking_snapshots WHERE kind = ? GROUP BY subject_id
		)
		ORDER BY points_change DESC, subject_id ASC
		LIMIT ?
	`, kind, kind, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSnapshots(rows)
}

func scanSnapshots(rows *sql.Rows) ([]Snapshot, error) {
	var snaps []Snapshot
	for rows.Next() {
		var snap Snapshot
		var asOf int64
		if err := rows.Scan(&snap.SubjectID, &snap.Kind, &asOf, &snap.Seq, &snap.Points, &snap.Rank, &snap.PointsChange); err != nil {
			log.Error("Failed to scan snapshot row", "error", err)
			return nil, err
		}
		snap.AsOf = time.Unix(asOf, 0).UTC()
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// withRetry retries transient persistence failures with bounded exponential
// backoff. The pure accumulation math never goes through here.
func withRetry(ctx context.Context, op func() error) error {
	const attempts = 3
	backoff := 50 * time.Millisecond

	var err error
	for i := 0; i < attempts; i++ {
		if err = op(); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if i < attempts-1 {
			log.Warn("Transient persistence failure, retrying", "error", err, "backoff", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
		}
	}
	return err
}

func withRetryCount(ctx context.Context, op func() (int64, error)) (int64, error) {
	var n int64
	err := withRetry(ctx, func() error {
		var err error
		n, err = op()
		return err
	})
	return n, err
}

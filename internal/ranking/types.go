package ranking

import (
	"fmt"
	"time"

	"github.com/voleai/padelpro/internal/padel"
)

// Contribution is the immutable ranking-point event a single match awards to
// a subject. The current total of a subject is a fold over its non-expired
// contributions, never a mutable counter.
type Contribution struct {
	SubjectID string    `json:"subject_id"`
	MatchID   string    `json:"match_id"`
	Date      time.Time `json:"date"`
	Seq       int64     `json:"seq"`
	Points    float64   `json:"points"`
}

// Snapshot is a point-in-time ranking record for a subject. The sequence of
// snapshots per subject is append-only; it is only rewritten by an explicit
// retroactive recompute.
type Snapshot struct {
	SubjectID    string            `json:"subject_id"`
	Kind         padel.SubjectKind `json:"kind"`
	AsOf         time.Time         `json:"as_of"`
	Seq          int64             `json:"seq"`
	Points       float64           `json:"points"`
	Rank         int               `json:"rank"`
	PointsChange float64           `json:"points_change"`
}

// StandingRow is one entry of a derived total ordering at a given date.
type StandingRow struct {
	SubjectID string  `json:"subject_id"`
	Points    float64 `json:"points"`
	Rank      int     `json:"rank"`
}

// RecomputeReport summarizes a retroactive recompute run.
type RecomputeReport struct {
	SubjectID            string `json:"subject_id"`
	SnapshotsInvalidated int    `json:"snapshots_invalidated"`
	SnapshotsRecreated   int    `json:"snapshots_recreated"`
}

// UnknownSubjectError is returned when a fact references a subject that was
// never registered. The caller must register the subject first.
type UnknownSubjectError struct {
	SubjectID string
}

func (e *UnknownSubjectError) Error() string {
	return fmt.Sprintf("unknown ranking subject %q", e.SubjectID)
}

// OutOfOrderIngestError is returned when a fact is strictly in the past
// relative to the subject's last processed position and no recompute was
// requested. Facts are never silently reordered.
type OutOfOrderIngestError struct {
	SubjectID string
	LastDate  time.Time
	LastSeq   int64
	FactDate  time.Time
	FactSeq   int64
}

func (e *OutOfOrderIngestError) Error() string {
	return fmt.Sprintf("out-of-order fact for subject %q: fact at %s (seq %d) is before last processed %s (seq %d)",
		e.SubjectID, e.FactDate.Format("2006-01-02"), e.FactSeq, e.LastDate.Format("2006-01-02"), e.LastSeq)
}

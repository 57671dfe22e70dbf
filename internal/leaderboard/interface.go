package leaderboard

import (
	"context"

	"github.com/voleai/padelpro/internal/padel"
)

// Entry is one standings row served from the cache.
type Entry struct {
	SubjectID string  `json:"subject_id"`
	Points    float64 `json:"points"`
	Rank      int     `json:"rank"`
}

// Cache is a fast standings view kept alongside the authoritative
// accumulator. It is an optimization only: the engine works without it.
type Cache interface {
	UpdateStanding(ctx context.Context, kind padel.SubjectKind, subjectID string, points float64, seq int64) error
	TopN(ctx context.Context, kind padel.SubjectKind, n int64) ([]Entry, error)
	Rank(ctx context.Context, kind padel.SubjectKind, subjectID string) (int, error)
	Remove(ctx context.Context, kind padel.SubjectKind, subjectID string) error
	Reset(ctx context.Context) error
}

package h2h

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/voleai/padelpro/internal/padel"
)

// FactSource provides the completed matches between two subjects. The stats
// store implements this over the persisted fact log.
type FactSource interface {
	// FactsBetween returns every fact whose participant set is exactly
	// {a, b}, in no particular order.
	FactsBetween(ctx context.Context, a, b string) ([]*padel.MatchFact, error)
}

// Filters narrows a head-to-head comparison. Zero values mean "no filter".
type Filters struct {
	Surface  padel.Surface
	Category padel.Category
	From     time.Time
	To       time.Time
	// Limit keeps only the most recent N contributing matches.
	Limit int
}

// canonical renders the filter set as a stable string for cache keying.
func (f Filters) canonical() string {
	parts := []string{
		"surface=" + string(f.Surface),
		"category=" + string(f.Category),
		"limit=" + fmt.Sprint(f.Limit),
	}
	if !f.From.IsZero() {
		parts = append(parts, "from="+f.From.UTC().Format("2006-01-02"))
	}
	if !f.To.IsZero() {
		parts = append(parts, "to="+f.To.UTC().Format("2006-01-02"))
	}
	return strings.Join(parts, "|")
}

// Streak is the current run of consecutive wins in the rivalry.
type Streak struct {
	SubjectID string `json:"subject_id,omitempty"`
	Length    int    `json:"length"`
}

// Summary is a deterministic head-to-head comparison between two subjects.
// Counts are from the perspective of the requested pair; MatchIDs lists the
// contributing matches chronologically.
type Summary struct {
	SubjectA string `json:"subject_a"`
	SubjectB string `json:"subject_b"`

	TotalMatches int `json:"total_matches"`
	WinsA        int `json:"wins_a"`
	WinsB        int `json:"wins_b"`
	SetsA        int `json:"sets_a"`
	SetsB        int `json:"sets_b"`
	GamesA       int `json:"games_a"`
	GamesB       int `json:"games_b"`

	Streak   Streak   `json:"streak"`
	MatchIDs []string `json:"match_ids"`

	// NoHistory marks a rivalry with zero shared matches. Not an error.
	NoHistory bool `json:"no_history"`

	// CacheKey is the SHA-256 over the sorted contributing match IDs and the
	// canonical filter string. Identical inputs always produce identical
	// summaries, so the key doubles as an invalidation handle.
	CacheKey string `json:"cache_key"`
}

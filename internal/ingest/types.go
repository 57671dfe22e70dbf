package ingest

import "fmt"

// RawSetScore is a single set score as delivered by the ETL collaborator,
// team 1 perspective first.
type RawSetScore struct {
	Team1 int `json:"team1"`
	Team2 int `json:"team2"`
}

// RawMatchRow is the loosely-typed match row handed over by the ingestion
// collaborator. The engine does not own the transport; any extra columns the
// upstream attaches land in Extra and are ignored.
type RawMatchRow struct {
	MatchID       string         `json:"match_id,omitempty"`
	TournamentID  string         `json:"tournament_id"`
	Category      string         `json:"category"`
	Surface       string         `json:"surface,omitempty"`
	Date          string         `json:"date"` // YYYY-MM-DD
	Round         string         `json:"round,omitempty"`
	Team1Players  []string       `json:"team1_players"` // one slug for singles, two for doubles
	Team2Players  []string       `json:"team2_players"`
	Sets          []RawSetScore  `json:"sets"`
	WinnerTeam    int            `json:"winner_team"` // 1 or 2
	Walkover      bool           `json:"walkover,omitempty"`
	SuperTieBreak bool           `json:"super_tie_break,omitempty"` // deciding set is a first-to-10 super tie-break
	Extra         map[string]any `json:"-"`
}

// ValidationError names the field of a raw row that violated an invariant.
// Rows failing validation are never retried; the caller gets the detail.
type ValidationError struct {
	MatchID string
	Field   string
	Reason  string
}

func (e *ValidationError) Error() string {
	if e.MatchID == "" {
		return fmt.Sprintf("invalid match row: field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid match row %s: field %q: %s", e.MatchID, e.Field, e.Reason)
}

package feed

import (
	"fmt"
	"strings"

	"github.com/voleai/padelpro/internal/ingest"
)

// ToRawRow converts a fetched result into the normalizer's input shape.
// Feed results carry no tournament tier, so they default to P2 unless the
// caller overrides the category.
func ToRawRow(result MatchResult) (ingest.RawMatchRow, error) {
	if len(result.Teams) != 2 {
		return ingest.RawMatchRow{}, fmt.Errorf("match %s: expected 2 teams, got %d", result.MatchID, len(result.Teams))
	}

	row := ingest.RawMatchRow{
		MatchID:      result.MatchID,
		TournamentID: result.Tournament,
		Category:     "P2",
		Date:         dateOnly(result.StartDate),
		Team1Players: slugify(result.Teams[0].Players),
		Team2Players: slugify(result.Teams[1].Players),
	}

	for _, set := range result.SetScores {
		row.Sets = append(row.Sets, ingest.RawSetScore{Team1: set[0], Team2: set[1]})
	}

	switch {
	case result.Teams[0].Won:
		row.WinnerTeam = 1
	case result.Teams[1].Won:
		row.WinnerTeam = 2
	default:
		return ingest.RawMatchRow{}, fmt.Errorf("match %s: no winning team in feed result", result.MatchID)
	}
	return row, nil
}

func dateOnly(startDate string) string {
	if idx := strings.IndexByte(startDate, 'T'); idx > 0 {
		return startDate[:idx]
	}
	return startDate
}

func slugify(names []string) []string {
	slugs := make([]string, len(names))
	for i, name := range names {
		slug := strings.ToLower(strings.TrimSpace(name))
		slug = strings.Join(strings.Fields(slug), "-")
		slugs[i] = slug
	}
	return slugs
}

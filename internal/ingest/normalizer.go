package ingest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/voleai/padelpro/internal/padel"
	"github.com/voleai/padelpro/internal/pair"
)

// Normalizer validates raw match rows and canonicalizes them into MatchFacts.
// Normalize is a pure function: it mutates no external state.
type Normalizer struct {
	pairs *pair.Resolver
}

func NewNormalizer(pairs *pair.Resolver) *Normalizer {
	return &Normalizer{pairs: pairs}
}

// Normalize turns a raw row into a MatchFact or fails with a *ValidationError
// naming the violated field. seq is the stable ingestion sequence number.
func (n *Normalizer) Normalize(row RawMatchRow, seq int64) (*padel.MatchFact, error) {
	if row.TournamentID == "" {
		return nil, &ValidationError{MatchID: row.MatchID, Field: "tournament_id", Reason: "missing tournament reference"}
	}
	if row.Date == "" {
		return nil, &ValidationError{MatchID: row.MatchID, Field: "date", Reason: "missing date"}
	}
	date, err := time.ParseInLocation("2006-01-02", row.Date, time.UTC)
	if err != nil {
		return nil, &ValidationError{MatchID: row.MatchID, Field: "date", Reason: fmt.Sprintf("not a YYYY-MM-DD date: %q", row.Date)}
	}

	kind, homeID, awayID, err := n.resolveParticipants(row)
	if err != nil {
		return nil, err
	}

	if row.WinnerTeam != 1 && row.WinnerTeam != 2 {
		return nil, &ValidationError{MatchID: row.MatchID, Field: "winner_team", Reason: fmt.Sprintf("winner must be team 1 or 2, got %d", row.WinnerTeam)}
	}

	sets, err := n.validateScoreline(row)
	if err != nil {
		return nil, err
	}

	winnerID := homeID
	if row.WinnerTeam == 2 {
		winnerID = awayID
	}

	id := row.MatchID
	if id == "" {
		id = uuid.NewString()
	}

	return &padel.MatchFact{
		ID:               id,
		TournamentID:     row.TournamentID,
		Category:         padel.Category(row.Category),
		Surface:          normalizeSurface(row.Surface),
		Date:             date,
		Round:            row.Round,
		Seq:              seq,
		Kind:             kind,
		HomeID:           homeID,
		AwayID:           awayID,
		Sets:             sets,
		WinnerID:         winnerID,
		Walkover:         row.Walkover,
		ProcessingStatus: padel.StatusNew,
	}, nil
}

func (n *Normalizer) resolveParticipants(row RawMatchRow) (padel.SubjectKind, string, string, error) {
	if len(row.Team1Players) == 0 || len(row.Team2Players) == 0 {
		return "", "", "", &ValidationError{MatchID: row.MatchID, Field: "players", Reason: "missing participant identifiers"}
	}
	if len(row.Team1Players) != len(row.Team2Players) {
		return "", "", "", &ValidationError{MatchID: row.MatchID, Field: "players", Reason: "teams have different sizes"}
	}

	switch len(row.Team1Players) {
	case 1:
		home, away := row.Team1Players[0], row.Team2Players[0]
		if home == "" || away == "" {
			return "", "", "", &ValidationError{MatchID: row.MatchID, Field: "players", Reason: "empty player slug"}
		}
		if home == away {
			return "", "", "", &ValidationError{MatchID: row.MatchID, Field: "players", Reason: "a player cannot face themselves"}
		}
		return padel.SubjectPlayer, home, away, nil
	case 2:
		home, err := n.pairs.Resolve(row.Team1Players[0], row.Team1Players[1])
		if err != nil {
			return "", "", "", &ValidationError{MatchID: row.MatchID, Field: "team1_players", Reason: err.Error()}
		}
		away, err := n.pairs.Resolve(row.Team2Players[0], row.Team2Players[1])
		if err != nil {
			return "", "", "", &ValidationError{MatchID: row.MatchID, Field: "team2_players", Reason: err.Error()}
		}
		if home.Slug == away.Slug {
			return "", "", "", &ValidationError{MatchID: row.MatchID, Field: "players", Reason: "a pair cannot face itself"}
		}
		return padel.SubjectPair, home.Slug, away.Slug, nil
	default:
		return "", "", "", &ValidationError{MatchID: row.MatchID, Field: "players", Reason: fmt.Sprintf("a side has %d players, want 1 or 2", len(row.Team1Players))}
	}
}

// validateScoreline canonicalizes the set scores and checks the
// match-completion rule (best of 3). Walkover/retirement rows may carry a
// partial scoreline.
func (n *Normalizer) validateScoreline(row RawMatchRow) ([]padel.SetScore, error) {
	if len(row.Sets) > 3 {
		return nil, &ValidationError{MatchID: row.MatchID, Field: "sets", Reason: fmt.Sprintf("%d sets in a best-of-3 match", len(row.Sets))}
	}
	if len(row.Sets) == 0 && !row.Walkover {
		return nil, &ValidationError{MatchID: row.MatchID, Field: "sets", Reason: "empty scoreline without walkover flag"}
	}

	sets := make([]padel.SetScore, 0, len(row.Sets))
	winnerSets, loserSets := 0, 0
	for i, raw := range row.Sets {
		deciding := i == 2 && row.SuperTieBreak
		if err := validSet(raw, deciding); err != nil {
			// A retirement can cut a set short; everything before must still
			// be well-formed, only the final recorded set may be partial.
			if !(row.Walkover && i == len(row.Sets)-1) {
				return nil, &ValidationError{MatchID: row.MatchID, Field: "sets", Reason: fmt.Sprintf("set %d: %s", i+1, err)}
			}
		}
		sets = append(sets, padel.SetScore{Home: raw.Team1, Away: raw.Team2})
		switch {
		case raw.Team1 > raw.Team2 && row.WinnerTeam == 1, raw.Team2 > raw.Team1 && row.WinnerTeam == 2:
			winnerSets++
		case raw.Team1 != raw.Team2:
			loserSets++
		}
	}

	if !row.Walkover {
		if winnerSets != 2 {
			return nil, &ValidationError{MatchID: row.MatchID, Field: "sets", Reason: fmt.Sprintf("winner holds %d sets, a completed best-of-3 needs 2", winnerSets)}
		}
		if loserSets > 1 {
			return nil, &ValidationError{MatchID: row.MatchID, Field: "sets", Reason: "both sides hold 2 sets"}
		}
		// The deciding set must be the winner's.
		last := row.Sets[len(row.Sets)-1]
		if (last.Team1 > last.Team2) != (row.WinnerTeam == 1) {
			return nil, &ValidationError{MatchID: row.MatchID, Field: "sets", Reason: "winner did not take the final set"}
		}
	}
	return sets, nil
}

// validSet checks the padel set win condition: first to 6 with a 2-game
// margin, 7-5, or 7-6 via tie-break. A deciding super tie-break set is first
// to 10, win by 2.
func validSet(s RawSetScore, superTieBreak bool) error {
	if s.Team1 < 0 || s.Team2 < 0 {
		return fmt.Errorf("negative game count %d-%d", s.Team1, s.Team2)
	}
	hi, lo := s.Team1, s.Team2
	if lo > hi {
		hi, lo = lo, hi
	}
	if superTieBreak {
		if hi >= 10 && (hi-lo == 2 || (hi == 10 && hi-lo >= 2)) {
			return nil
		}
		return fmt.Errorf("%d-%d is not a completed super tie-break", s.Team1, s.Team2)
	}
	if hi == 6 && hi-lo >= 2 {
		return nil
	}
	if hi == 7 && (lo == 5 || lo == 6) {
		return nil
	}
	return fmt.Errorf("%d-%d is not a completed set", s.Team1, s.Team2)
}

func normalizeSurface(s string) padel.Surface {
	switch padel.Surface(s) {
	case padel.SurfaceIndoor, padel.SurfaceOutdoor:
		return padel.Surface(s)
	default:
		return padel.SurfaceUnknown
	}
}

package stats

import (
	"database/sql"
	"sync"

	"github.com/voleai/padelpro/internal/padel"
)

// store is the sqlite-backed implementation of Store.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// PairStats is the consolidated record for a canonical pair slug.
type PairStats struct {
	PairSlug      string  `json:"pair_slug"`
	Player1       string  `json:"player1"`
	Player2       string  `json:"player2"`
	MatchesPlayed int     `json:"matches_played"`
	MatchesWon    int     `json:"matches_won"`
	MatchesLost   int     `json:"matches_lost"`
	SetsWon       int     `json:"sets_won"`
	SetsLost      int     `json:"sets_lost"`
	GamesWon      int     `json:"games_won"`
	GamesLost     int     `json:"games_lost"`
	WinPercentage float64 `json:"win_percentage"`
}

// SearchResult groups the matches of a free-text search across entity types.
type SearchResult struct {
	Players     []padel.Player     `json:"players"`
	Pairs       []PairStats        `json:"pairs"`
	Tournaments []padel.Tournament `json:"tournaments"`
}

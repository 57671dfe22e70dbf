package padel

import "time"

// SubjectKind distinguishes the two kinds of ranked subjects.
type SubjectKind string

const (
	SubjectPlayer SubjectKind = "PLAYER"
	SubjectPair   SubjectKind = "PAIR"
)

// Category represents a tournament tier.
type Category string

const (
	CategoryMajor  Category = "MAJOR"
	CategoryP1     Category = "P1"
	CategoryP2     Category = "P2"
	CategoryFinals Category = "FINALS"
)

// Surface represents the court surface a match was played on.
type Surface string

const (
	SurfaceIndoor  Surface = "INDOOR"
	SurfaceOutdoor Surface = "OUTDOOR"
	SurfaceUnknown Surface = "UNKNOWN"
)

// Hand is a player's racket hand.
type Hand string

const (
	HandLeft  Hand = "LEFT"
	HandRight Hand = "RIGHT"
)

// ProcessingStatus defines the internal processing state of an ingested fact.
type ProcessingStatus string

const (
	StatusNew          ProcessingStatus = "NEW"
	StatusRanked       ProcessingStatus = "RANKED"
	StatusStatsUpdated ProcessingStatus = "STATS_UPDATED"
	StatusNotified     ProcessingStatus = "NOTIFIED"
	StatusCompleted    ProcessingStatus = "COMPLETED"
)

// SetScore is the game count of a single set, home perspective first.
type SetScore struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// MatchFact is a normalized, validated match record. It is the only input
// the ranking and H2H machinery ever sees.
type MatchFact struct {
	ID           string           `json:"id"`
	TournamentID string           `json:"tournament_id"`
	Category     Category         `json:"category"`
	Surface      Surface          `json:"surface"`
	Date         time.Time        `json:"date"`
	Round        string           `json:"round"`
	// Seq is a stable ingestion sequence number used to break date ties so
	// replays are deterministic.
	Seq     int64       `json:"seq"`
	Kind    SubjectKind `json:"kind"`
	HomeID  string      `json:"home_id"`
	AwayID  string      `json:"away_id"`
	Sets    []SetScore  `json:"sets"`
	WinnerID string     `json:"winner_id"`
	// Walkover marks a retirement/walkover: the scoreline may be partial but
	// a winner is still recorded.
	Walkover         bool             `json:"walkover"`
	ProcessingStatus ProcessingStatus `json:"processing_status"`
}

// LoserID returns the participant that is not the winner.
func (f *MatchFact) LoserID() string {
	if f.WinnerID == f.HomeID {
		return f.AwayID
	}
	return f.HomeID
}

// Involves reports whether the fact's participant set is exactly {a, b}.
func (f *MatchFact) Involves(a, b string) bool {
	return (f.HomeID == a && f.AwayID == b) || (f.HomeID == b && f.AwayID == a)
}

// SetsWon returns the number of sets won by each side, home first.
func (f *MatchFact) SetsWon() (home, away int) {
	for _, s := range f.Sets {
		if s.Home > s.Away {
			home++
		} else if s.Away > s.Home {
			away++
		}
	}
	return home, away
}

// Player is a static player profile.
type Player struct {
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	Country   string `json:"country"`
	Hand      Hand   `json:"hand"`
	BirthDate string `json:"birth_date"` // YYYY-MM-DD
}

// Tournament metadata. Immutable once a match references it.
type Tournament struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Venue     string   `json:"venue"`
	Category  Category `json:"category"`
	Surface   Surface  `json:"surface"`
	StartDate string   `json:"start_date"` // YYYY-MM-DD
	EndDate   string   `json:"end_date"`   // YYYY-MM-DD
}

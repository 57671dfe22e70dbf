package feed

// SearchParams defines the parameters for listing played matches.
type SearchParams struct {
	TenantIDs     []string
	FromStartDate string
}

// MatchRef is the essential reference to a match from a feed listing.
type MatchRef struct {
	MatchID string
}

// TeamSide is one side of a fetched result.
type TeamSide struct {
	Players []string // display names
	Won     bool
}

// MatchResult is a fully fetched, played match from the partner feed.
type MatchResult struct {
	MatchID    string
	StartDate  string // YYYY-MM-DDTHH:MM:SS
	VenueName  string
	Teams      []TeamSide
	SetScores  [][2]int // team 1 games, team 2 games per set
	Confirmed  bool
	Tournament string
}

// feedMatchResponse defines the structure of the feed's single-match JSON.
type feedMatchResponse struct {
	StartDate     string             `json:"start_date"`
	GameStatus    string             `json:"game_status"`
	ResultsStatus string             `json:"results_status"`
	Teams         []feedTeamResponse `json:"teams"`
	Results       []feedResult       `json:"results"`
	Tenant        feedTenant         `json:"tenant"`
}

type feedTeamResponse struct {
	TeamID     string               `json:"team_id"`
	Players    []feedPlayerResponse `json:"players"`
	TeamResult *string              `json:"team_result"`
}

type feedPlayerResponse struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

type feedResult struct {
	Name   string          `json:"name"`
	Scores []feedTeamScore `json:"scores"`
}

type feedTeamScore struct {
	TeamID string `json:"team_id"`
	Score  int    `json:"score"`
}

type feedTenant struct {
	ID   string `json:"tenant_id"`
	Name string `json:"tenant_name"`
}

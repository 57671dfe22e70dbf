package feed

// ResultsClient defines the interface for pulling played matches from the
// partner results feed. This allows for mock implementations in tests.
type ResultsClient interface {
	ListPlayed(params *SearchParams) ([]MatchRef, error)
	GetResult(matchID string) (MatchResult, error)
}

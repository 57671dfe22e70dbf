package feed

import "sync"

// MockClient is a mock implementation of ResultsClient for testing.
// It is safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	// Spies for method calls
	ListPlayedFunc func(params *SearchParams) ([]MatchRef, error)
	GetResultFunc  func(matchID string) (MatchResult, error)

	// Call records
	ListPlayedCalls []*SearchParams
	GetResultCalls  []string
}

var _ ResultsClient = (*MockClient)(nil)

// NewMock creates a new mock instance.
func NewMock() *MockClient {
	return &MockClient{}
}

func (m *MockClient) ListPlayed(params *SearchParams) ([]MatchRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListPlayedCalls = append(m.ListPlayedCalls, params)
	if m.ListPlayedFunc != nil {
		return m.ListPlayedFunc(params)
	}
	return nil, nil
}

func (m *MockClient) GetResult(matchID string) (MatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetResultCalls = append(m.GetResultCalls, matchID)
	if m.GetResultFunc != nil {
		return m.GetResultFunc(matchID)
	}
	return MatchResult{MatchID: matchID}, nil
}

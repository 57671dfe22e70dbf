package feed

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rafa-garcia/go-playtomic-api/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetResult(t *testing.T) {
	mockJSONResponse := `{
		"start_date": "2025-03-02T18:00:00",
		"game_status": "PLAYED",
		"results_status": "CONFIRMED",
		"tenant": { "tenant_id": "tenant-abc", "tenant_name": "Club Central" },
		"teams": [{
			"team_id": "2",
			"players": [
				{ "user_id": "u3", "name": "Agustin Tapia" },
				{ "user_id": "u4", "name": "Arturo Coello" }
			],
			"team_result": "LOST"
		}, {
			"team_id": "1",
			"players": [
				{ "user_id": "u1", "name": "Ale Galan" },
				{ "user_id": "u2", "name": "Fede Chingotto" }
			],
			"team_result": "WON"
		}],
		"results": [
			{ "name": "Set 1", "scores": [ { "team_id": "1", "score": 6 }, { "team_id": "2", "score": 4 } ] },
			{ "name": "Set 2", "scores": [ { "team_id": "2", "score": 2 }, { "team_id": "1", "score": 6 } ] }
		]
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/matches/match-abc", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, mockJSONResponse)
	}))
	defer server.Close()

	c := APIClient{
		httpClient: server.Client(),
		apiClient:  client.NewClient(), // dummy, not used by GetResult
		BaseURL:    server.URL,
	}

	result, err := c.GetResult("match-abc")
	require.NoError(t, err)

	assert.Equal(t, "match-abc", result.MatchID)
	assert.True(t, result.Confirmed)
	assert.Equal(t, "Club Central", result.VenueName)
	require.Len(t, result.Teams, 2)
	// Teams are reordered by team ID regardless of response order.
	assert.Equal(t, []string{"Ale Galan", "Fede Chingotto"}, result.Teams[0].Players)
	assert.True(t, result.Teams[0].Won)
	assert.False(t, result.Teams[1].Won)
	assert.Equal(t, [][2]int{{6, 4}, {6, 2}}, result.SetScores, "scores aligned to team order")
}

func TestGetResult_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := APIClient{
		httpClient: server.Client(),
		apiClient:  client.NewClient(),
		BaseURL:    server.URL,
	}

	_, err := c.GetResult("missing")
	require.Error(t, err)
}

func TestToRawRow(t *testing.T) {
	result := MatchResult{
		MatchID:    "match-abc",
		StartDate:  "2025-03-02T18:00:00",
		Tournament: "tenant-abc",
		Teams: []TeamSide{
			{Players: []string{"Ale Galan", "Fede Chingotto"}, Won: true},
			{Players: []string{"Agustin Tapia", "Arturo Coello"}},
		},
		SetScores: [][2]int{{6, 4}, {6, 2}},
	}

	row, err := ToRawRow(result)
	require.NoError(t, err)
	assert.Equal(t, "match-abc", row.MatchID)
	assert.Equal(t, "2025-03-02", row.Date)
	assert.Equal(t, []string{"ale-galan", "fede-chingotto"}, row.Team1Players)
	assert.Equal(t, []string{"agustin-tapia", "arturo-coello"}, row.Team2Players)
	assert.Equal(t, 1, row.WinnerTeam)
	require.Len(t, row.Sets, 2)
	assert.Equal(t, 6, row.Sets[0].Team1)
	assert.Equal(t, 4, row.Sets[0].Team2)
}

func TestToRawRow_NoWinner(t *testing.T) {
	result := MatchResult{
		MatchID: "match-abc",
		Teams:   []TeamSide{{Players: []string{"a"}}, {Players: []string{"b"}}},
	}
	_, err := ToRawRow(result)
	require.Error(t, err)
}

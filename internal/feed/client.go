package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rafa-garcia/go-playtomic-api/client"
	"github.com/rafa-garcia/go-playtomic-api/models"
)

// APIClient pulls played padel matches from the partner feed. Listing goes
// through the playtomic API client; individual results use the raw HTTP
// endpoint since the typed client does not expose per-match results.
type APIClient struct {
	httpClient *http.Client
	apiClient  *client.Client
	BaseURL    string
}

// NewClient creates a new results feed client.
func NewClient() ResultsClient {
	return &APIClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiClient: client.NewClient(
			client.WithTimeout(10*time.Second),
			client.WithRetries(3),
		),
		BaseURL: "https://api.playtomic.io",
	}
}

var _ ResultsClient = (*APIClient)(nil)

// ListPlayed fetches references to played matches, paging until exhausted.
func (c *APIClient) ListPlayed(params *SearchParams) ([]MatchRef, error) {
	const pageSize = 300
	var (
		refs []MatchRef
		page = 0
	)

	for {
		externalParams := &models.SearchMatchesParams{
			SportID:       "PADEL",
			HasPlayers:    true,
			Sort:          "start_date,DESC",
			TenantIDs:     params.TenantIDs,
			FromStartDate: params.FromStartDate,
			Size:          pageSize,
			Page:          page,
		}

		log.Debug("Fetching matches from results feed", "params", externalParams)
		matches, err := c.apiClient.GetMatches(context.Background(), externalParams)
		if err != nil {
			return nil, fmt.Errorf("error fetching matches from results feed: %w", err)
		}

		log.Info("Fetched feed page", "count", len(matches), "page", page)
		for _, m := range matches {
			refs = append(refs, MatchRef{MatchID: m.MatchID})
		}

		// If we got less than pageSize, we've reached the last page
		if len(matches) < pageSize {
			break
		}
		page++
	}
	log.Info("Fetched all match references", "count", len(refs))
	return refs, nil
}

// GetResult fetches one played match by ID.
func (c *APIClient) GetResult(matchID string) (MatchResult, error) {
	url := fmt.Sprintf("%s/v1/matches/%s", c.BaseURL, matchID)

	req, err := http.NewRequestWithContext(context.Background(), "GET", url, nil)
	if err != nil {
		return MatchResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "PadelProFeedClient/1.0")

	log.Debug("Requesting match result from feed", "url", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return MatchResult{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Error("Received non-OK HTTP status from feed", "status", resp.StatusCode, "body", string(body))
		return MatchResult{}, fmt.Errorf("received non-OK HTTP status: %d", resp.StatusCode)
	}

	var response feedMatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return MatchResult{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return buildResult(matchID, response), nil
}

func buildResult(matchID string, response feedMatchResponse) MatchResult {
	result := MatchResult{
		MatchID:    matchID,
		StartDate:  response.StartDate,
		VenueName:  response.Tenant.Name,
		Tournament: response.Tenant.ID,
		Confirmed:  response.GameStatus == "PLAYED" && response.ResultsStatus == "CONFIRMED",
	}

	// Team order must be stable so set scores line up side by side.
	teams := append([]feedTeamResponse(nil), response.Teams...)
	sort.Slice(teams, func(i, j int) bool { return teams[i].TeamID < teams[j].TeamID })

	teamIndex := make(map[string]int, len(teams))
	for i, team := range teams {
		teamIndex[team.TeamID] = i
		side := TeamSide{Won: team.TeamResult != nil && *team.TeamResult == "WON"}
		for _, player := range team.Players {
			side.Players = append(side.Players, player.Name)
		}
		result.Teams = append(result.Teams, side)
	}

	for _, set := range response.Results {
		var scores [2]int
		for _, score := range set.Scores {
			if idx, ok := teamIndex[score.TeamID]; ok && idx < 2 {
				scores[idx] = score.Score
			}
		}
		result.SetScores = append(result.SetScores, scores)
	}
	return result
}

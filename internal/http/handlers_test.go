package http

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/voleai/padelpro/internal/config"
	"github.com/voleai/padelpro/internal/database"
	"github.com/voleai/padelpro/internal/feed"
	"github.com/voleai/padelpro/internal/h2h"
	"github.com/voleai/padelpro/internal/ingest"
	"github.com/voleai/padelpro/internal/leaderboard"
	"github.com/voleai/padelpro/internal/metrics"
	"github.com/voleai/padelpro/internal/notifier"
	"github.com/voleai/padelpro/internal/padel"
	"github.com/voleai/padelpro/internal/pair"
	"github.com/voleai/padelpro/internal/processor"
	"github.com/voleai/padelpro/internal/pubsub"
	"github.com/voleai/padelpro/internal/ranking"
	"github.com/voleai/padelpro/internal/stats"
)

const testSlackSigningSecret = "test-signing-secret"

// setupTestServer initializes a new server with a test database and mock clients.
func setupTestServer(t *testing.T, feedClient feed.ResultsClient, n notifier.Notifier, slackSigningSecret string) (*Server, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	store := stats.New(db)
	cfg := config.Config{
		Slack: config.SlackConfig{SigningSecret: slackSigningSecret},
		Ranking: config.RankingConfig{
			WindowWeeks:   52,
			BasePoints:    config.DefaultBasePoints(),
			MinMultiplier: 0.5,
			MaxMultiplier: 2.0,
		},
	}

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	ps := pubsub.NewMock("TEST")
	rankingStore := ranking.NewStore(db)
	accumulator := ranking.New(cfg.Ranking.WindowWeeks, ranking.NewFormula(cfg.Ranking), rankingStore)
	aggregator := h2h.New(store, metricsSvc)
	proc := processor.New(store, accumulator, n, metricsSvc, ps)
	normalizer := ingest.NewNormalizer(pair.NewResolver())

	server := NewServer(store, metricsSvc, metricsHandler, cfg, feedClient, normalizer, accumulator, rankingStore, aggregator, leaderboard.NewMock(), n, proc, ps)

	teardown := func() {
		if dbTeardown != nil {
			dbTeardown()
		}
		db.Close()
	}
	return server, teardown
}

func rawRow(matchID, date string, winner int) ingest.RawMatchRow {
	sets := []ingest.RawSetScore{{Team1: 6, Team2: 4}, {Team1: 6, Team2: 2}}
	if winner == 2 {
		sets = []ingest.RawSetScore{{Team1: 4, Team2: 6}, {Team1: 2, Team2: 6}}
	}
	return ingest.RawMatchRow{
		MatchID:      matchID,
		TournamentID: "t-madrid",
		Category:     "MAJOR",
		Date:         date,
		Round:        "Final",
		Team1Players: []string{"ale-galan", "fede-chingotto"},
		Team2Players: []string{"agustin-tapia", "arturo-coello"},
		Sets:         sets,
		WinnerTeam:   winner,
	}
}

func ingestRows(t *testing.T, server *Server, rows []ingest.RawMatchRow) {
	t.Helper()
	body, err := json.Marshal(rows)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/ingest", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func processAll(t *testing.T, server *Server) {
	t.Helper()
	req := httptest.NewRequest("GET", "/process", nil)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}

// createSlackCommandRequest creates an http.Request suitable for testing Slack
// slash commands, including the signature and timestamp headers.
func createSlackCommandRequest(t *testing.T, targetURL string, form url.Values, signingSecret string) *http.Request {
	t.Helper()

	body := strings.NewReader(form.Encode())
	req := httptest.NewRequest("POST", targetURL, body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	timestamp := time.Now().Unix()
	req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(timestamp, 10))

	bodyBytes, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

	baseString := fmt.Sprintf("v0:%d:%s", timestamp, string(bodyBytes))
	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write([]byte(baseString))
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(h.Sum(nil)))

	return req
}

func TestHealthCheckHandler(t *testing.T) {
	server, teardown := setupTestServer(t, feed.NewMock(), notifier.NewMock(), "")
	defer teardown()

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
}

func TestIngestHandler(t *testing.T) {
	t.Run("persists valid rows and reports invalid ones", func(t *testing.T) {
		server, teardown := setupTestServer(t, feed.NewMock(), notifier.NewMock(), "")
		defer teardown()

		rows := []ingest.RawMatchRow{
			rawRow("m1", "2025-03-02", 1),
			{MatchID: "bad", TournamentID: "t-madrid", Date: "2025-03-02"}, // no players
		}
		body, err := json.Marshal(rows)
		require.NoError(t, err)

		req := httptest.NewRequest("POST", "/ingest", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var report ingestReport
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
		assert.Equal(t, 1, report.Ingested)
		assert.Equal(t, 1, report.Rejected)
		require.Len(t, report.Errors, 1)
		assert.Contains(t, report.Errors[0], "players")

		facts, err := server.Store.GetAllFacts()
		require.NoError(t, err)
		require.Len(t, facts, 1)
		assert.Equal(t, "m1", facts[0].ID)
		assert.Equal(t, padel.StatusNew, facts[0].ProcessingStatus)

		// Participant profiles and the tournament stub come along.
		player, err := server.Store.GetPlayer("ale-galan")
		require.NoError(t, err)
		assert.Equal(t, "Ale Galan", player.Name)
		tournaments, err := server.Store.GetTournaments(2025)
		require.NoError(t, err)
		require.Len(t, tournaments, 1)
		assert.Equal(t, padel.CategoryMajor, tournaments[0].Category)
		assert.Equal(t, padel.SurfaceUnknown, tournaments[0].Surface)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		server, teardown := setupTestServer(t, feed.NewMock(), notifier.NewMock(), "")
		defer teardown()

		req := httptest.NewRequest("POST", "/ingest", strings.NewReader("{not json"))
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("dry run persists nothing", func(t *testing.T) {
		server, teardown := setupTestServer(t, feed.NewMock(), notifier.NewMock(), "")
		defer teardown()

		body, err := json.Marshal([]ingest.RawMatchRow{rawRow("m1", "2025-03-02", 1)})
		require.NoError(t, err)

		req := httptest.NewRequest("POST", "/ingest?dry_run=true", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		facts, err := server.Store.GetAllFacts()
		require.NoError(t, err)
		assert.Empty(t, facts)
	})
}

func TestProcessFactsHandler(t *testing.T) {
	server, teardown := setupTestServer(t, feed.NewMock(), notifier.NewMock(), "")
	defer teardown()

	recent := time.Now().UTC().AddDate(0, 0, -2).Format("2006-01-02")
	ingestRows(t, server, []ingest.RawMatchRow{rawRow("m1", recent, 1)})

	processAll(t, server)

	facts, err := server.Store.GetAllFacts()
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, padel.StatusCompleted, facts[0].ProcessingStatus)

	// The standings cache was synced after the run.
	entries, err := server.Leaderboard.TopN(t.Context(), padel.SubjectPair, 10)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "ale-galan--fede-chingotto", entries[0].SubjectID)
	assert.InDelta(t, 100.0, entries[0].Points, 1e-9)
}

func TestRankingHandler(t *testing.T) {
	server, teardown := setupTestServer(t, feed.NewMock(), notifier.NewMock(), "")
	defer teardown()

	recent := time.Now().UTC().AddDate(0, 0, -2).Format("2006-01-02")
	ingestRows(t, server, []ingest.RawMatchRow{rawRow("m1", recent, 1)})
	processAll(t, server)

	req := httptest.NewRequest("GET", "/players/ranking?kind=PAIR", nil)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var entries []leaderboard.Entry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "ale-galan--fede-chingotto", entries[0].SubjectID)
	assert.Equal(t, 1, entries[0].Rank)
}

func TestHeadToHeadHandler(t *testing.T) {
	t.Run("summarizes shared history", func(t *testing.T) {
		server, teardown := setupTestServer(t, feed.NewMock(), notifier.NewMock(), "")
		defer teardown()

		ingestRows(t, server, []ingest.RawMatchRow{
			rawRow("m1", "2025-03-02", 1),
			rawRow("m2", "2025-04-06", 2),
			rawRow("m3", "2025-05-11", 1),
		})

		req := httptest.NewRequest("GET", "/players/headtohead/ale-galan--fede-chingotto/agustin-tapia--arturo-coello", nil)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var summary h2h.Summary
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
		assert.Equal(t, 3, summary.TotalMatches)
		assert.Equal(t, 2, summary.WinsA)
		assert.Equal(t, 1, summary.WinsB)
		assert.Equal(t, 4, summary.SetsA)
		assert.Equal(t, 2, summary.SetsB)
		assert.Equal(t, h2h.Streak{SubjectID: "ale-galan--fede-chingotto", Length: 1}, summary.Streak)
		assert.False(t, summary.NoHistory)
		assert.NotEmpty(t, summary.CacheKey)
	})

	t.Run("zero shared history is not an error", func(t *testing.T) {
		server, teardown := setupTestServer(t, feed.NewMock(), notifier.NewMock(), "")
		defer teardown()

		req := httptest.NewRequest("GET", "/players/headtohead/nobody/stranger", nil)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var summary h2h.Summary
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
		assert.True(t, summary.NoHistory)
		assert.Zero(t, summary.TotalMatches)
	})

	t.Run("rejects malformed date filter", func(t *testing.T) {
		server, teardown := setupTestServer(t, feed.NewMock(), notifier.NewMock(), "")
		defer teardown()

		req := httptest.NewRequest("GET", "/players/headtohead/a/b?from=March", nil)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestEvolutionHandler(t *testing.T) {
	server, teardown := setupTestServer(t, feed.NewMock(), notifier.NewMock(), "")
	defer teardown()

	recent := time.Now().UTC().AddDate(0, 0, -2).Format("2006-01-02")
	ingestRows(t, server, []ingest.RawMatchRow{rawRow("m1", recent, 1)})
	processAll(t, server)

	req := httptest.NewRequest("GET", "/pairs/ale-galan--fede-chingotto/evolution", nil)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var snaps []ranking.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snaps))
	require.Len(t, snaps, 1)
	assert.InDelta(t, 100.0, snaps[0].Points, 1e-9)
}

func TestRecomputeHandler(t *testing.T) {
	t.Run("recomputes a subject and reports snapshot counts", func(t *testing.T) {
		server, teardown := setupTestServer(t, feed.NewMock(), notifier.NewMock(), "")
		defer teardown()

		recent := time.Now().UTC().AddDate(0, 0, -2).Format("2006-01-02")
		ingestRows(t, server, []ingest.RawMatchRow{rawRow("m1", recent, 1)})
		processAll(t, server)

		body := strings.NewReader(`{"subject_id": "ale-galan--fede-chingotto"}`)
		req := httptest.NewRequest("POST", "/admin/recompute", body)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var report ranking.RecomputeReport
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
		assert.Equal(t, 1, report.SnapshotsInvalidated)
		assert.Equal(t, 1, report.SnapshotsRecreated)
	})

	t.Run("requires a subject", func(t *testing.T) {
		server, teardown := setupTestServer(t, feed.NewMock(), notifier.NewMock(), "")
		defer teardown()

		req := httptest.NewRequest("POST", "/admin/recompute", strings.NewReader(`{}`))
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestFetchResultsHandler(t *testing.T) {
	mockClient := feed.NewMock()
	mockClient.ListPlayedFunc = func(params *feed.SearchParams) ([]feed.MatchRef, error) {
		return []feed.MatchRef{{MatchID: "m1"}, {MatchID: "m2"}}, nil
	}
	mockClient.GetResultFunc = func(matchID string) (feed.MatchResult, error) {
		confirmed := matchID == "m1"
		return feed.MatchResult{
			MatchID:    matchID,
			StartDate:  "2025-03-02T18:00:00",
			Tournament: "t-club",
			Teams: []feed.TeamSide{
				{Players: []string{"Ale Galan", "Fede Chingotto"}, Won: true},
				{Players: []string{"Agustin Tapia", "Arturo Coello"}},
			},
			SetScores: [][2]int{{6, 4}, {6, 2}},
			Confirmed: confirmed,
		}, nil
	}

	server, teardown := setupTestServer(t, mockClient, notifier.NewMock(), "")
	defer teardown()

	req := httptest.NewRequest("GET", "/fetch?days=30", nil)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	facts, err := server.Store.GetAllFacts()
	require.NoError(t, err)
	require.Len(t, facts, 1, "unconfirmed results are skipped")
	assert.Equal(t, "m1", facts[0].ID)
}

func TestSearchHandler(t *testing.T) {
	server, teardown := setupTestServer(t, feed.NewMock(), notifier.NewMock(), "")
	defer teardown()

	ingestRows(t, server, []ingest.RawMatchRow{rawRow("m1", "2025-03-02", 1)})

	t.Run("finds players by fragment", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/search?q=galan", nil)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var result stats.SearchResult
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		require.Len(t, result.Players, 1)
		assert.Equal(t, "ale-galan", result.Players[0].Slug)
	})

	t.Run("requires a query", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/search", nil)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestUpdatePairStatsPushHandler(t *testing.T) {
	server, teardown := setupTestServer(t, feed.NewMock(), notifier.NewMock(), "")
	defer teardown()

	ingestRows(t, server, []ingest.RawMatchRow{rawRow("m1", "2025-03-02", 1)})
	facts, err := server.Store.GetAllFacts()
	require.NoError(t, err)
	require.Len(t, facts, 1)

	payload, err := msgpack.Marshal(facts[0])
	require.NoError(t, err)
	envelope := fmt.Sprintf(`{"message": {"data": %q}}`, base64.StdEncoding.EncodeToString(payload))

	req := httptest.NewRequest("POST", "/pubsub/update-pair-stats", strings.NewReader(envelope))
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	pairStats, err := server.Store.GetPairStats("ale-galan--fede-chingotto")
	require.NoError(t, err)
	assert.Equal(t, 1, pairStats.MatchesPlayed)
	assert.Equal(t, 1, pairStats.MatchesWon)
}

func TestRankingCommandHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	mockNotifier.FormatStandingsResponseFunc = func(rows []ranking.StandingRow, kind padel.SubjectKind) (any, error) {
		return slack.NewBlockMessage(), nil
	}
	server, teardown := setupTestServer(t, feed.NewMock(), mockNotifier, testSlackSigningSecret)
	defer teardown()

	t.Run("responds to a signed request", func(t *testing.T) {
		form := url.Values{}
		form.Set("text", "pairs")
		req := createSlackCommandRequest(t, "/slack/command/ranking", form, testSlackSigningSecret)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("rejects request with invalid signature", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/ranking", url.Values{}, testSlackSigningSecret)
		req.Header.Set("X-Slack-Signature", "v0=invalid-signature")

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestHeadToHeadCommandHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	mockNotifier.FormatH2HResponseFunc = func(summary *h2h.Summary) (any, error) {
		return slack.NewBlockMessage(), nil
	}
	mockNotifier.FormatSubjectNotFoundResponseFunc = func(query string) (any, error) {
		return slack.NewBlockMessage(), nil
	}
	server, teardown := setupTestServer(t, feed.NewMock(), mockNotifier, testSlackSigningSecret)
	defer teardown()

	t.Run("summarizes two subjects", func(t *testing.T) {
		form := url.Values{}
		form.Set("text", "ale-galan--fede-chingotto agustin-tapia--arturo-coello")
		req := createSlackCommandRequest(t, "/slack/command/head-to-head", form, testSlackSigningSecret)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		require.Len(t, mockNotifier.SendSubjectNotFoundCalls, 0)
	})

	t.Run("falls back to not-found for malformed text", func(t *testing.T) {
		form := url.Values{}
		form.Set("text", "just-one-slug")
		req := createSlackCommandRequest(t, "/slack/command/head-to-head", form, testSlackSigningSecret)

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestClearStoreHandler(t *testing.T) {
	server, teardown := setupTestServer(t, feed.NewMock(), notifier.NewMock(), "")
	defer teardown()

	ingestRows(t, server, []ingest.RawMatchRow{rawRow("m1", "2025-03-02", 1)})

	req := httptest.NewRequest("GET", "/clear", nil)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	facts, err := server.Store.GetAllFacts()
	require.NoError(t, err)
	assert.Empty(t, facts)
	players, err := server.Store.GetAllPlayers()
	require.NoError(t, err)
	assert.Empty(t, players)
}

package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"
	"github.com/voleai/padelpro/internal/feed"
	"github.com/voleai/padelpro/internal/h2h"
	"github.com/voleai/padelpro/internal/ingest"
	"github.com/voleai/padelpro/internal/notifier"
	"github.com/voleai/padelpro/internal/padel"
	"github.com/voleai/padelpro/internal/pair"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("matchID")
		if matchID != "" {
			log.Info("Received request to clear a specific fact", "matchID", matchID)
			s.Store.ClearFact(matchID)
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, "Cleared fact %s from store!", matchID)
			return
		}

		log.Info("Received request to clear entire store")
		s.Store.Clear()
		s.H2H.Reset()
		if s.Leaderboard != nil {
			if err := s.Leaderboard.Reset(r.Context()); err != nil {
				log.Error("Failed to reset standings cache", "error", err)
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Store cleared!")
		log.Info("Store cleared successfully")
	}
}

// ingestReport is the response body of /ingest.
type ingestReport struct {
	Ingested int      `json:"ingested"`
	Rejected int      `json:"rejected"`
	Errors   []string `json:"errors,omitempty"`
}

func (s *Server) IngestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rows []ingest.RawMatchRow
		if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
			log.Error("Failed to decode ingest payload", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		isDryRun := isDryRunFromContext(r)

		report := ingestReport{}
		var facts []*padel.MatchFact
		for _, row := range rows {
			fact, err := s.Normalizer.Normalize(row, s.nextSeq.Add(1))
			if err != nil {
				s.Metrics.IncValidationFailures()
				report.Rejected++
				report.Errors = append(report.Errors, err.Error())
				log.Warn("Rejected raw match row", "error", err)
				continue
			}
			s.Metrics.IncRowsIngested()
			report.Ingested++
			facts = append(facts, fact)
		}

		if len(facts) > 0 && !isDryRun {
			if err := s.upsertParticipants(facts); err != nil {
				log.Error("Failed to upsert participants", "error", err)
			}
			if err := s.upsertTournamentStubs(facts); err != nil {
				log.Error("Failed to upsert tournament stubs", "error", err)
			}
			if err := s.Store.UpsertFacts(facts); err != nil {
				log.Error("Failed to bulk upsert facts", "error", err)
				http.Error(w, "Failed to save facts", http.StatusInternalServerError)
				return
			}
		} else if isDryRun {
			log.Info("[Dry Run] Would have upserted facts", "count", len(facts))
		}

		w.Header().Set("Content-Type", "application/json")
		if report.Rejected > 0 && report.Ingested == 0 {
			w.WriteHeader(http.StatusUnprocessableEntity)
		}
		if err := json.NewEncoder(w).Encode(report); err != nil {
			log.Error("Failed to write ingest report", "error", err)
		}
	}
}

// upsertParticipants makes sure every player slug referenced by the facts has
// a profile row, so lookups and search work before a roster import.
func (s *Server) upsertParticipants(facts []*padel.MatchFact) error {
	seen := make(map[string]struct{})
	var players []padel.Player
	add := func(subjectID string) {
		slugs := []string{subjectID}
		if p1, p2, ok := pair.Split(subjectID); ok {
			slugs = []string{p1, p2}
		}
		for _, slug := range slugs {
			if _, dup := seen[slug]; dup {
				continue
			}
			seen[slug] = struct{}{}
			players = append(players, padel.Player{Slug: slug, Name: titleFromSlug(slug)})
		}
	}
	for _, fact := range facts {
		add(fact.HomeID)
		add(fact.AwayID)
	}
	return s.Store.UpsertPlayers(players)
}

// upsertTournamentStubs inserts a minimal tournament row for any referenced
// tournament that does not exist yet. Existing rows are left alone so a
// richer import is never clobbered by a stub.
func (s *Server) upsertTournamentStubs(facts []*padel.MatchFact) error {
	existing, err := s.Store.GetTournaments(0)
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		known[t.ID] = struct{}{}
	}
	for _, fact := range facts {
		if _, ok := known[fact.TournamentID]; ok {
			continue
		}
		known[fact.TournamentID] = struct{}{}
		stub := padel.Tournament{
			ID:        fact.TournamentID,
			Name:      fact.TournamentID,
			Category:  fact.Category,
			Surface:   fact.Surface,
			StartDate: fact.Date.Format("2006-01-02"),
			EndDate:   fact.Date.Format("2006-01-02"),
		}
		if err := s.Store.UpsertTournament(stub); err != nil {
			return err
		}
	}
	return nil
}

func titleFromSlug(slug string) string {
	words := strings.Split(slug, "-")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func (s *Server) FetchResultsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Starting result fetch...")
		s.Metrics.IncFetcherRuns()
		isDryRun := isDryRunFromContext(r)

		daysStr := r.URL.Query().Get("days")
		daysToSubtract := 0
		if daysStr != "" {
			parsedDays, err := strconv.Atoi(daysStr)
			if err == nil && parsedDays > 0 {
				daysToSubtract = parsedDays
				log.Info("Fetching historical results", "days", daysToSubtract)
			} else {
				log.Warn("Invalid 'days' parameter provided. Defaulting to 0.", "days_param", daysStr)
			}
		}
		startDate := time.Now().AddDate(0, 0, -daysToSubtract)

		params := &feed.SearchParams{
			FromStartDate: startDate.Format("2006-01-02") + "T00:00:00",
		}
		if s.Cfg.Feed.TenantID != "" {
			params.TenantIDs = []string{s.Cfg.Feed.TenantID}
		}
		refs, err := s.FeedClient.ListPlayed(params)
		if err != nil {
			log.Error("Error listing played matches from feed", "error", err)
			http.Error(w, "Failed to fetch results", http.StatusInternalServerError)
			return
		}
		log.Info("Found played matches in feed", "count", len(refs))

		var facts []*padel.MatchFact
		fetched, skipped := 0, 0
		for _, ref := range refs {
			result, err := s.FeedClient.GetResult(ref.MatchID)
			if err != nil {
				log.Error("Error fetching result", "matchID", ref.MatchID, "error", err)
				continue
			}
			if !result.Confirmed {
				log.Debug("Skipping unconfirmed result", "matchID", ref.MatchID)
				skipped++
				continue
			}
			row, err := feed.ToRawRow(result)
			if err != nil {
				log.Warn("Skipping unmappable result", "matchID", ref.MatchID, "error", err)
				skipped++
				continue
			}
			fact, err := s.Normalizer.Normalize(row, s.nextSeq.Add(1))
			if err != nil {
				s.Metrics.IncValidationFailures()
				log.Warn("Rejected fetched result", "matchID", ref.MatchID, "error", err)
				skipped++
				continue
			}
			s.Metrics.IncRowsIngested()
			facts = append(facts, fact)
			fetched++
		}

		if len(facts) > 0 {
			if !isDryRun {
				if err := s.upsertParticipants(facts); err != nil {
					log.Error("Failed to upsert participants", "error", err)
				}
				if err := s.upsertTournamentStubs(facts); err != nil {
					log.Error("Failed to upsert tournament stubs", "error", err)
				}
				if err := s.Store.UpsertFacts(facts); err != nil {
					log.Error("Failed to bulk upsert facts", "error", err)
					http.Error(w, "Failed to save facts", http.StatusInternalServerError)
					return
				}
			} else {
				log.Info("[Dry Run] Would have upserted facts", "count", len(facts))
			}
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Result fetch completed.")
		log.Info("Result fetch finished.", "fetched", fetched, "skipped", skipped)
	}
}

func (s *Server) ProcessFactsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Starting fact processing...")
		isDryRun := isDryRunFromContext(r)

		s.Processor.ProcessFacts(r.Context(), isDryRun)
		if !isDryRun {
			s.syncLeaderboard(r.Context())
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Fact processing completed.")
		log.Info("Fact processing finished.")
	}
}

// recomputeRequest is the body of /admin/recompute.
type recomputeRequest struct {
	SubjectID string `json:"subject_id"`
	From      string `json:"from"` // YYYY-MM-DD, zero means everything
}

func (s *Server) RecomputeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recomputeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.SubjectID == "" {
			http.Error(w, "subject_id is required", http.StatusBadRequest)
			return
		}
		var from time.Time
		if req.From != "" {
			parsed, err := time.ParseInLocation("2006-01-02", req.From, time.UTC)
			if err != nil {
				http.Error(w, "from must be a YYYY-MM-DD date", http.StatusBadRequest)
				return
			}
			from = parsed
		}

		log.Info("Starting recompute", "subject", req.SubjectID, "from", req.From)
		s.Metrics.IncRecomputeRuns()
		report, err := s.Ranking.Recompute(r.Context(), req.SubjectID, from)
		if err != nil {
			log.Error("Recompute failed", "subject", req.SubjectID, "error", err)
			http.Error(w, "Recompute failed", http.StatusInternalServerError)
			return
		}
		s.syncLeaderboard(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			log.Error("Failed to write recompute report", "error", err)
		}
	}
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.GetAllPlayers()
		if err != nil {
			http.Error(w, "Failed to get players", http.StatusInternalServerError)
			log.Error("Failed to get players from store", "error", err)
			return
		}
		writeJSON(w, players)
	}
}

func (s *Server) GetPlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := r.PathValue("slug")
		player, err := s.Store.GetPlayer(slug)
		if err != nil {
			http.Error(w, "Player not found", http.StatusNotFound)
			return
		}
		writeJSON(w, player)
	}
}

// RankingHandler serves the current standings. It prefers the redis-backed
// cache when one is configured and falls back to the accumulator.
func (s *Server) RankingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := subjectKindParam(r)
		limit := intParam(r, "limit", 20)

		if s.Leaderboard != nil {
			entries, err := s.Leaderboard.TopN(r.Context(), kind, int64(limit))
			if err == nil && len(entries) > 0 {
				writeJSON(w, entries)
				return
			}
			if err != nil {
				log.Warn("Standings cache unavailable, falling back to accumulator", "error", err)
			}
		}

		rows := s.Ranking.Standings(kind, time.Now().UTC())
		if len(rows) > limit {
			rows = rows[:limit]
		}
		writeJSON(w, rows)
	}
}

func (s *Server) HeadToHeadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, b := r.PathValue("a"), r.PathValue("b")
		s.serveH2H(w, r, a, b)
	}
}

func (s *Server) PairHeadToHeadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := r.URL.Query().Get("slug1")
		b := r.URL.Query().Get("slug2")
		if a == "" || b == "" {
			http.Error(w, "slug1 and slug2 are required", http.StatusBadRequest)
			return
		}
		s.serveH2H(w, r, a, b)
	}
}

func (s *Server) serveH2H(w http.ResponseWriter, r *http.Request, a, b string) {
	filters, err := h2hFiltersFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	summary, err := s.H2H.Summarize(r.Context(), a, b, filters)
	if err != nil {
		log.Error("Failed to build head-to-head summary", "a", a, "b", b, "error", err)
		http.Error(w, "Failed to build head-to-head summary", http.StatusInternalServerError)
		return
	}
	writeJSON(w, summary)
}

func h2hFiltersFromQuery(r *http.Request) (h2h.Filters, error) {
	filters := h2h.Filters{
		Surface:  padel.Surface(r.URL.Query().Get("surface")),
		Category: padel.Category(r.URL.Query().Get("category")),
		Limit:    intParam(r, "limit", 0),
	}
	for name, dst := range map[string]*time.Time{"from": &filters.From, "to": &filters.To} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			return h2h.Filters{}, fmt.Errorf("%s must be a YYYY-MM-DD date", name)
		}
		*dst = parsed
	}
	return filters, nil
}

// EvolutionHandler serves the persisted ranking snapshot series for a subject,
// player or pair.
func (s *Server) EvolutionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := r.PathValue("slug")
		snaps, err := s.RankingStore.Evolution(r.Context(), slug)
		if err != nil {
			log.Error("Failed to load evolution", "subject", slug, "error", err)
			http.Error(w, "Failed to load evolution", http.StatusInternalServerError)
			return
		}
		writeJSON(w, snaps)
	}
}

func (s *Server) ListPairsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pairs, err := s.Store.GetAllPairStats()
		if err != nil {
			http.Error(w, "Failed to get pairs", http.StatusInternalServerError)
			log.Error("Failed to get pair stats from store", "error", err)
			return
		}
		writeJSON(w, pairs)
	}
}

func (s *Server) GetPairHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := r.PathValue("slug")
		stats, err := s.Store.GetPairStats(slug)
		if err != nil {
			http.Error(w, "Pair not found", http.StatusNotFound)
			return
		}
		writeJSON(w, stats)
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if subject := r.URL.Query().Get("subject"); subject != "" {
			facts, err := s.Store.FactsBySubject(r.Context(), subject)
			if err != nil {
				http.Error(w, "Failed to get matches", http.StatusInternalServerError)
				log.Error("Failed to get facts by subject", "subject", subject, "error", err)
				return
			}
			writeJSON(w, facts)
			return
		}
		facts, err := s.Store.GetAllFacts()
		if err != nil {
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			log.Error("Failed to get facts from store", "error", err)
			return
		}
		writeJSON(w, facts)
	}
}

func (s *Server) MatchesBetweenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, b := r.PathValue("a"), r.PathValue("b")
		facts, err := s.Store.FactsBetween(r.Context(), a, b)
		if err != nil {
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			log.Error("Failed to get facts between subjects", "a", a, "b", b, "error", err)
			return
		}
		writeJSON(w, facts)
	}
}

func (s *Server) ListTournamentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year := intParam(r, "year", 0)
		tournaments, err := s.Store.GetTournaments(year)
		if err != nil {
			http.Error(w, "Failed to get tournaments", http.StatusInternalServerError)
			log.Error("Failed to get tournaments from store", "error", err)
			return
		}
		writeJSON(w, tournaments)
	}
}

// TrendingHandler serves the subjects with the biggest recent points change.
func (s *Server) TrendingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := subjectKindParam(r)
		limit := intParam(r, "limit", 10)
		snaps, err := s.RankingStore.Trending(r.Context(), kind, limit)
		if err != nil {
			http.Error(w, "Failed to get trending subjects", http.StatusInternalServerError)
			log.Error("Failed to get trending subjects", "error", err)
			return
		}
		writeJSON(w, snaps)
	}
}

func (s *Server) SearchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		if query == "" {
			http.Error(w, "q is required", http.StatusBadRequest)
			return
		}
		result, err := s.Store.Search(query)
		if err != nil {
			http.Error(w, "Search failed", http.StatusInternalServerError)
			log.Error("Search failed", "query", query, "error", err)
			return
		}
		writeJSON(w, result)
	}
}

// decodePushMessage unwraps a Pub/Sub push delivery: the JSON envelope holds a
// base64-encoded MessagePack payload.
func (s *Server) decodePushMessage(r *http.Request, returnValue any) error {
	var pubsubMsg struct {
		Subscription string `json:"subscription"`
		Message      struct {
			Data string `json:"data"` // base64-encoded message payload
		} `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&pubsubMsg); err != nil {
		return fmt.Errorf("unmarshalling wrapper JSON: %w", err)
	}
	rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
	if err != nil {
		return fmt.Errorf("decoding base64 data: %w", err)
	}
	return s.pubsub.ProcessMessage(rawData, returnValue)
}

func (s *Server) RankFactPushHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var event struct {
			MatchID string `msgpack:"match_id"`
			DryRun  bool   `msgpack:"dry_run"`
		}
		if err := s.decodePushMessage(r, &event); err != nil {
			log.Error("Failed to decode rank-fact message", "error", err)
			http.Error(w, "Invalid message", http.StatusBadRequest)
			return
		}
		log.Debug("Received rank-fact event", "matchID", event.MatchID)
		if !event.DryRun {
			s.syncLeaderboard(r.Context())
		}
		w.Write([]byte("OK"))
	}
}

func (s *Server) UpdatePairStatsPushHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fact := padel.MatchFact{}
		if err := s.decodePushMessage(r, &fact); err != nil {
			log.Error("Failed to decode update-pair-stats message", "error", err)
			http.Error(w, "Invalid message", http.StatusBadRequest)
			return
		}
		s.Processor.UpdatePairStats(&fact)
		w.Write([]byte("OK"))
	}
}

func (s *Server) NotifyMovementPushHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var movements []notifier.Movement
		if err := s.decodePushMessage(r, &movements); err != nil {
			log.Error("Failed to decode notify-movement message", "error", err)
			http.Error(w, "Invalid message", http.StatusBadRequest)
			return
		}
		isDryRun := isDryRunFromContext(r)
		if err := s.Processor.NotifyMovement(movements, isDryRun); err != nil {
			log.Error("Failed to notify ranking movement", "error", err)
			http.Error(w, "Failed to notify ranking movement", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

// RankingCommandHandler returns a handler for the /ranking Slack command.
// An argument of "pairs" switches to the pair standings.
func (s *Server) RankingCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		kind := padel.SubjectPlayer
		if strings.EqualFold(strings.TrimSpace(r.FormValue("text")), "pairs") {
			kind = padel.SubjectPair
		}

		rows := s.Ranking.Standings(kind, time.Now().UTC())
		if len(rows) > 10 {
			rows = rows[:10]
		}
		msg, err := s.Notifier.FormatStandingsResponse(rows, kind)
		if err != nil {
			http.Error(w, "Failed to format standings", http.StatusInternalServerError)
			log.Error("Failed to format standings", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}
		respondWithSlackMsg(w, slackMsg)
	}
}

// HeadToHeadCommandHandler returns a handler for the /headtohead Slack
// command. The command text is two subject slugs separated by whitespace.
func (s *Server) HeadToHeadCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		text := strings.TrimSpace(r.FormValue("text"))
		parts := strings.Fields(text)

		var msg any
		var err error
		if len(parts) != 2 {
			msg, err = s.Notifier.FormatSubjectNotFoundResponse(text)
		} else {
			var summary *h2h.Summary
			summary, err = s.H2H.Summarize(r.Context(), parts[0], parts[1], h2h.Filters{})
			if err != nil {
				log.Error("Failed to build head-to-head summary for command", "error", err)
				http.Error(w, "Failed to build head-to-head summary", http.StatusInternalServerError)
				return
			}
			msg, err = s.Notifier.FormatH2HResponse(summary)
		}
		if err != nil {
			http.Error(w, "Failed to format response", http.StatusInternalServerError)
			log.Error("Failed to format head-to-head response", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}
		respondWithSlackMsg(w, slackMsg)
	}
}

// syncLeaderboard pushes the accumulator's current standings into the redis
// cache. A nil cache makes this a no-op.
func (s *Server) syncLeaderboard(ctx context.Context) {
	if s.Leaderboard == nil {
		return
	}
	now := time.Now().UTC()
	for _, kind := range []padel.SubjectKind{padel.SubjectPlayer, padel.SubjectPair} {
		for _, row := range s.Ranking.Standings(kind, now) {
			if err := s.Leaderboard.UpdateStanding(ctx, kind, row.SubjectID, row.Points, int64(row.Rank)); err != nil {
				log.Error("Failed to update standings cache", "subject", row.SubjectID, "error", err)
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

func subjectKindParam(r *http.Request) padel.SubjectKind {
	if strings.EqualFold(r.URL.Query().Get("kind"), string(padel.SubjectPair)) {
		return padel.SubjectPair
	}
	return padel.SubjectPlayer
}

func intParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

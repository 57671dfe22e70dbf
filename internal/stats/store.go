package stats

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/voleai/padelpro/internal/padel"
	"github.com/voleai/padelpro/internal/pair"
)

// New creates a new sqlite-backed Store.
func New(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

func (s *store) UpsertPlayer(p padel.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertPlayerLocked(p)
}

func (s *store) UpsertPlayers(players []padel.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range players {
		if err := s.upsertPlayerLocked(p); err != nil {
			return err
		}
	}
	return nil
}

func (s *store) upsertPlayerLocked(p padel.Player) error {
	_, err := s.db.Exec(`
		INSERT INTO players (slug, name, country, hand, birth_date)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			name = excluded.name,
			country = excluded.country,
			hand = excluded.hand,
			birth_date = excluded.birth_date;
	`, p.Slug, p.Name, p.Country, p.Hand, p.BirthDate)
	return err
}

func (s *store) IsKnownPlayer(slug string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM players WHERE slug = ?)", slug).Scan(&exists)
	if err != nil {
		log.Error("Failed to check if player exists", "error", err, "slug", slug)
		return false
	}
	return exists
}

func (s *store) GetPlayer(slug string) (*padel.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow("SELECT slug, name, country, hand, birth_date FROM players WHERE slug = ?", slug)
	p, err := scanPlayer(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("player '%s' not found", slug)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return p, nil
}

func (s *store) GetAllPlayers() ([]padel.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT slug, name, country, hand, birth_date FROM players ORDER BY name")
	if err != nil {
		log.Error("Failed to query all players", "error", err)
		return nil, err
	}
	defer rows.Close()

	var players []padel.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

func scanPlayer(scanner interface{ Scan(...any) error }) (*padel.Player, error) {
	var p padel.Player
	var country, hand, birthDate sql.NullString
	if err := scanner.Scan(&p.Slug, &p.Name, &country, &hand, &birthDate); err != nil {
		return nil, err
	}
	p.Country = country.String
	p.Hand = padel.Hand(hand.String)
	p.BirthDate = birthDate.String
	return &p, nil
}

func (s *store) UpsertTournament(t padel.Tournament) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO tournaments (id, name, venue, category, surface, start_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			venue = excluded.venue,
			category = excluded.category,
			surface = excluded.surface,
			start_date = excluded.start_date,
			end_date = excluded.end_date;
	`, t.ID, t.Name, t.Venue, t.Category, t.Surface, t.StartDate, t.EndDate)
	return err
}

// GetTournaments lists tournaments, optionally restricted to a start year.
// year <= 0 means all.
func (s *store) GetTournaments(year int) ([]padel.Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, name, venue, category, surface, start_date, end_date FROM tournaments"
	var args []any
	if year > 0 {
		query += " WHERE start_date LIKE ?"
		args = append(args, fmt.Sprintf("%d-%%", year))
	}
	query += " ORDER BY start_date"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Error("Failed to query tournaments", "error", err)
		return nil, err
	}
	defer rows.Close()

	var tournaments []padel.Tournament
	for rows.Next() {
		var t padel.Tournament
		var venue, endDate sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &venue, &t.Category, &t.Surface, &t.StartDate, &endDate); err != nil {
			log.Error("Failed to scan tournament row", "error", err)
			continue
		}
		t.Venue = venue.String
		t.EndDate = endDate.String
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

// UpsertFact inserts a normalized fact or refreshes an existing row. It is
// "dumb": an existing row keeps its processing status so reprocessing never
// resets the pipeline.
func (s *store) UpsertFact(fact *padel.MatchFact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertFactLocked(fact)
}

func (s *store) UpsertFacts(facts []*padel.MatchFact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, fact := range facts {
		if err := s.upsertFactLocked(fact); err != nil {
			return err
		}
	}
	return nil
}

func (s *store) upsertFactLocked(fact *padel.MatchFact) error {
	setsJSON, err := json.Marshal(fact.Sets)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO matches (id, tournament_id, category, surface, date, round, seq, kind, home_id, away_id, sets_json, winner_id, walkover, processing_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			tournament_id = excluded.tournament_id,
			category = excluded.category,
			surface = excluded.surface,
			date = excluded.date,
			round = excluded.round,
			seq = excluded.seq,
			kind = excluded.kind,
			home_id = excluded.home_id,
			away_id = excluded.away_id,
			sets_json = excluded.sets_json,
			winner_id = excluded.winner_id,
			walkover = excluded.walkover;
	`, fact.ID, fact.TournamentID, fact.Category, fact.Surface, fact.Date.Unix(), fact.Round,
		fact.Seq, fact.Kind, fact.HomeID, fact.AwayID, setsJSON, fact.WinnerID, fact.Walkover, padel.StatusNew)
	return err
}

const factColumns = "id, tournament_id, category, surface, date, round, seq, kind, home_id, away_id, sets_json, winner_id, walkover, processing_status"

// GetFactsForProcessing retrieves all facts that are not yet fully processed,
// oldest first so the pipeline preserves ingestion order.
func (s *store) GetFactsForProcessing() ([]*padel.MatchFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT `+factColumns+`
		FROM matches
		WHERE processing_status != ?
		ORDER BY date ASC, seq ASC
	`, padel.StatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.scanFacts(rows)
}

// UpdateProcessingStatus transitions a fact to a new pipeline state.
func (s *store) UpdateProcessingStatus(matchID string, status padel.ProcessingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("UPDATE matches SET processing_status = ? WHERE id = ?", status, matchID)
	return err
}

func (s *store) GetAllFacts() ([]*padel.MatchFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT " + factColumns + " FROM matches ORDER BY date DESC, seq DESC")
	if err != nil {
		log.Error("Failed to query all facts", "error", err)
		return nil, err
	}
	defer rows.Close()
	return s.scanFacts(rows)
}

// FactsBySubject lists a subject's matches, newest first. A player slug also
// matches the pairs it is part of.
func (s *store) FactsBySubject(ctx context.Context, subjectID string) ([]*padel.MatchFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+factColumns+`
		FROM matches
		WHERE home_id = ? OR away_id = ?
			OR home_id LIKE ? OR home_id LIKE ?
			OR away_id LIKE ? OR away_id LIKE ?
		ORDER BY date DESC, seq DESC
	`, subjectID, subjectID,
		subjectID+pair.Separator+"%", "%"+pair.Separator+subjectID,
		subjectID+pair.Separator+"%", "%"+pair.Separator+subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.scanFacts(rows)
}

// FactsBetween returns every fact whose participant set is exactly {a, b},
// satisfying the head-to-head fact source contract.
func (s *store) FactsBetween(ctx context.Context, a, b string) ([]*padel.MatchFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+factColumns+`
		FROM matches
		WHERE (home_id = ? AND away_id = ?) OR (home_id = ? AND away_id = ?)
		ORDER BY date ASC, seq ASC
	`, a, b, b, a)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.scanFacts(rows)
}

func (s *store) scanFacts(rows *sql.Rows) ([]*padel.MatchFact, error) {
	var facts []*padel.MatchFact
	for rows.Next() {
		fact, err := scanFact(rows)
		if err != nil {
			log.Error("Failed to scan fact row", "error", err)
			continue
		}
		facts = append(facts, fact)
	}
	return facts, rows.Err()
}

func scanFact(scanner interface{ Scan(...any) error }) (*padel.MatchFact, error) {
	var fact padel.MatchFact
	var date int64
	var round, setsJSON sql.NullString

	err := scanner.Scan(
		&fact.ID, &fact.TournamentID, &fact.Category, &fact.Surface, &date, &round,
		&fact.Seq, &fact.Kind, &fact.HomeID, &fact.AwayID, &setsJSON, &fact.WinnerID,
		&fact.Walkover, &fact.ProcessingStatus,
	)
	if err != nil {
		return nil, err
	}

	fact.Date = time.Unix(date, 0).UTC()
	fact.Round = round.String
	if setsJSON.Valid && setsJSON.String != "" {
		if err := json.Unmarshal([]byte(setsJSON.String), &fact.Sets); err != nil {
			log.Error("Failed to unmarshal sets_json", "error", err, "matchID", fact.ID)
		}
	} else {
		fact.Sets = []padel.SetScore{}
	}
	return &fact, nil
}

// UpdatePairStats folds one doubles fact into both pairs' consolidated rows.
func (s *store) UpdatePairStats(fact *padel.MatchFact) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fact.Kind != padel.SubjectPair {
		return
	}

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for pair stats update", "error", err, "matchID", fact.ID)
		return
	}

	homeSets, awaySets := fact.SetsWon()
	var homeGames, awayGames int
	for _, set := range fact.Sets {
		homeGames += set.Home
		awayGames += set.Away
	}

	stmt, err := tx.Prepare(`
		INSERT INTO pair_stats (pair_slug, player1_slug, player2_slug, matches_played, matches_won, matches_lost, sets_won, sets_lost, games_won, games_lost)
		VALUES (?, ?, ?, 1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(pair_slug) DO UPDATE SET
			matches_played = matches_played + 1,
			matches_won = matches_won + excluded.matches_won,
			matches_lost = matches_lost + excluded.matches_lost,
			sets_won = sets_won + excluded.sets_won,
			sets_lost = sets_lost + excluded.sets_lost,
			games_won = games_won + excluded.games_won,
			games_lost = games_lost + excluded.games_lost;
	`)
	if err != nil {
		log.Error("Failed to prepare pair_stats statement", "error", err, "matchID", fact.ID)
		tx.Rollback()
		return
	}
	defer stmt.Close()

	for _, side := range []struct {
		slug            string
		won             bool
		sets, oppSets   int
		games, oppGames int
	}{
		{fact.HomeID, fact.WinnerID == fact.HomeID, homeSets, awaySets, homeGames, awayGames},
		{fact.AwayID, fact.WinnerID == fact.AwayID, awaySets, homeSets, awayGames, homeGames},
	} {
		p1, p2, ok := pair.Split(side.slug)
		if !ok {
			log.Error("Fact carries a non-canonical pair slug", "matchID", fact.ID, "slug", side.slug)
			continue
		}
		won, lost := 0, 1
		if side.won {
			won, lost = 1, 0
		}
		if _, err := stmt.Exec(side.slug, p1, p2, won, lost, side.sets, side.oppSets, side.games, side.oppGames); err != nil {
			log.Error("Failed to execute pair_stats statement", "error", err, "pair", side.slug)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit pair_stats transaction", "error", err)
	}
}

const pairStatsColumns = "pair_slug, player1_slug, player2_slug, matches_played, matches_won, matches_lost, sets_won, sets_lost, games_won, games_lost"

func (s *store) GetPairStats(pairSlug string) (*PairStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow("SELECT "+pairStatsColumns+" FROM pair_stats WHERE pair_slug = ?", pairSlug)
	ps, err := scanPairStats(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("pair '%s' not found", pairSlug)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return ps, nil
}

func (s *store) GetAllPairStats() ([]PairStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT " + pairStatsColumns + " FROM pair_stats ORDER BY matches_won DESC, sets_won DESC, games_won DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []PairStats
	for rows.Next() {
		ps, err := scanPairStats(rows)
		if err != nil {
			log.Error("Failed to scan pair stats row", "error", err)
			continue
		}
		all = append(all, *ps)
	}
	return all, rows.Err()
}

func scanPairStats(scanner interface{ Scan(...any) error }) (*PairStats, error) {
	var ps PairStats
	err := scanner.Scan(
		&ps.PairSlug, &ps.Player1, &ps.Player2,
		&ps.MatchesPlayed, &ps.MatchesWon, &ps.MatchesLost,
		&ps.SetsWon, &ps.SetsLost, &ps.GamesWon, &ps.GamesLost,
	)
	if err != nil {
		return nil, err
	}
	if ps.MatchesPlayed > 0 {
		ps.WinPercentage = (float64(ps.MatchesWon) / float64(ps.MatchesPlayed)) * 100
	}
	return &ps, nil
}

// Search performs a case-insensitive substring search across players, pairs
// and tournaments.
func (s *store) Search(query string) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := &SearchResult{}
	pattern := "%" + strings.TrimSpace(query) + "%"

	playerRows, err := s.db.Query(`
		SELECT slug, name, country, hand, birth_date FROM players
		WHERE name LIKE ? COLLATE NOCASE OR slug LIKE ? COLLATE NOCASE
		ORDER BY name LIMIT 25
	`, pattern, pattern)
	if err != nil {
		return nil, err
	}
	defer playerRows.Close()
	for playerRows.Next() {
		p, err := scanPlayer(playerRows)
		if err != nil {
			continue
		}
		result.Players = append(result.Players, *p)
	}

	pairRows, err := s.db.Query(`
		SELECT `+pairStatsColumns+` FROM pair_stats
		WHERE pair_slug LIKE ? COLLATE NOCASE
		ORDER BY matches_won DESC LIMIT 25
	`, pattern)
	if err != nil {
		return nil, err
	}
	defer pairRows.Close()
	for pairRows.Next() {
		ps, err := scanPairStats(pairRows)
		if err != nil {
			continue
		}
		result.Pairs = append(result.Pairs, *ps)
	}

	tournamentRows, err := s.db.Query(`
		SELECT id, name, venue, category, surface, start_date, end_date FROM tournaments
		WHERE name LIKE ? COLLATE NOCASE OR venue LIKE ? COLLATE NOCASE
		ORDER BY start_date DESC LIMIT 25
	`, pattern, pattern)
	if err != nil {
		return nil, err
	}
	defer tournamentRows.Close()
	for tournamentRows.Next() {
		var t padel.Tournament
		var venue, endDate sql.NullString
		if err := tournamentRows.Scan(&t.ID, &t.Name, &venue, &t.Category, &t.Surface, &t.StartDate, &endDate); err != nil {
			continue
		}
		t.Venue = venue.String
		t.EndDate = endDate.String
		result.Tournaments = append(result.Tournaments, t)
	}

	return result, nil
}

func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for clearing store", "error", err)
		return
	}

	for _, table := range []string{"matches", "pair_stats", "ranking_contributions", "ranking_snapshots", "tournaments", "players", "metrics"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "error", err, "table", table)
			tx.Rollback()
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction for clearing store", "error", err)
	}
}

func (s *store) ClearFact(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("DELETE FROM matches WHERE id = ?", matchID)
	if err != nil {
		log.Error("Failed to clear fact", "error", err, "matchID", matchID)
	}
}

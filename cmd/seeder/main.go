package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/voleai/padelpro/internal/padel"
	"github.com/voleai/padelpro/internal/pair"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := make(map[string]string)
	required := []string{"TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"}

	for _, key := range required {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		} else {
			log.Fatalf("Error: Required environment variable %s is not set.", key)
		}
	}
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	// Connect directly to the primary database
	dbURL := fmt.Sprintf("%s?authToken=%s", cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	db, err := sql.Open("libsql", dbURL)
	if err != nil {
		log.Fatalf("Failed to open primary database: %s", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to primary database: %s", err)
	}

	log.Info("Successfully connected to the primary database.")

	dummyPlayers := []padel.Player{
		{Slug: "seed-player-a", Name: "Seed Player A"},
		{Slug: "seed-player-b", Name: "Seed Player B"},
		{Slug: "seed-player-c", Name: "Seed Player C"},
		{Slug: "seed-player-d", Name: "Seed Player D"},
	}

	for _, p := range dummyPlayers {
		_, err := db.Exec("INSERT OR IGNORE INTO players (slug, name) VALUES (?, ?)", p.Slug, p.Name)
		if err != nil {
			log.Fatalf("Failed to insert dummy player %s: %s", p.Name, err)
		}
	}
	log.Info("Ensured dummy players exist.")

	tournaments := []padel.Tournament{
		{ID: "seed-major", Name: "Seeded Major", Venue: "Seeded Arena", Category: padel.CategoryMajor, Surface: padel.SurfaceIndoor, StartDate: "2025-01-01"},
		{ID: "seed-p2", Name: "Seeded P2", Venue: "Seeded Arena", Category: padel.CategoryP2, Surface: padel.SurfaceOutdoor, StartDate: "2025-06-01"},
	}
	for _, t := range tournaments {
		_, err := db.Exec("INSERT OR IGNORE INTO tournaments (id, name, venue, category, surface, start_date) VALUES (?, ?, ?, ?, ?, ?)",
			t.ID, t.Name, t.Venue, t.Category, t.Surface, t.StartDate)
		if err != nil {
			log.Fatalf("Failed to insert dummy tournament %s: %s", t.Name, err)
		}
	}
	log.Info("Ensured dummy tournaments exist.")

	resolver := pair.NewResolver()
	home, err := resolver.Resolve(dummyPlayers[0].Slug, dummyPlayers[1].Slug)
	if err != nil {
		log.Fatalf("Failed to resolve home pair: %s", err)
	}
	away, err := resolver.Resolve(dummyPlayers[2].Slug, dummyPlayers[3].Slug)
	if err != nil {
		log.Fatalf("Failed to resolve away pair: %s", err)
	}
	homePair := home.Slug
	awayPair := away.Slug

	const batchSize = 100 // Insert 100 matches at a time
	const numMatches = 10000

	log.Info("Preparing to insert dummy matches...", "total", numMatches, "batch_size", batchSize)
	startTime := time.Now()

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("Failed to begin transaction: %s", err)
	}

	valueStrings := make([]string, 0, batchSize)
	valueArgs := make([]interface{}, 0, batchSize*14) // 14 columns per match

	for i := 0; i < numMatches; i++ {
		matchTime := time.Now().Add(-time.Duration(rand.Intn(365*24)) * time.Hour)
		tournament := tournaments[rand.Intn(len(tournaments))]

		sets := []padel.SetScore{{Home: 6, Away: 4}, {Home: 3, Away: 6}, {Home: 6, Away: 2}}
		winner := homePair
		if rand.Intn(2) == 1 {
			sets = []padel.SetScore{{Home: 4, Away: 6}, {Home: 6, Away: 3}, {Home: 2, Away: 6}}
			winner = awayPair
		}
		setsJSON, _ := json.Marshal(sets)

		valueStrings = append(valueStrings, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		valueArgs = append(valueArgs,
			uuid.NewString(),
			tournament.ID,
			tournament.Category,
			tournament.Surface,
			matchTime.Unix(),
			"R32",
			int64(i+1),
			padel.SubjectPair,
			homePair,
			awayPair,
			setsJSON,
			winner,
			false,
			padel.StatusNew,
		)

		if (i+1)%batchSize == 0 || (i+1) == numMatches {
			stmt := fmt.Sprintf(`
				INSERT INTO matches (id, tournament_id, category, surface, date, round, seq, kind,
					home_id, away_id, sets_json, winner_id, walkover, processing_status)
				VALUES %s;`, strings.Join(valueStrings, ","))

			_, err := tx.Exec(stmt, valueArgs...)
			if err != nil {
				tx.Rollback()
				log.Fatalf("Failed to execute batch insert: %s", err)
			}

			// Reset for the next batch
			valueStrings = make([]string, 0, batchSize)
			valueArgs = make([]interface{}, 0, batchSize*14)
			log.Info("Inserted batch", "completed", i+1, "total", numMatches)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit transaction: %s", err)
	}

	duration := time.Since(startTime)
	log.Info("Successfully inserted all dummy matches.", "duration", duration)
}

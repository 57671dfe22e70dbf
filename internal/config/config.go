package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/voleai/padelpro/internal/padel"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}
	getEnvOr := func(key, fallback string) string {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			return value
		}
		return fallback
	}

	cfg := Config{
		DBName:        getEnv("DB_NAME"),
		MigrationsDir: "./migrations",
		Slack: SlackConfig{
			Token:         getEnv("SLACK_BOT_TOKEN"),
			ChannelID:     getEnv("SLACK_CHANNEL_ID"),
			SigningSecret: getEnv("SLACK_SIGNING_SECRET"),
		},
		Port: getEnv("PORT"),
		Turso: TursoConfig{
			PrimaryURL: getEnv("TURSO_PRIMARY_URL"),
			AuthToken:  getEnv("TURSO_AUTH_TOKEN"),
		},
		Redis: RedisConfig{
			Addr: getEnvOr("REDIS_ADDR", ""),
		},
		Feed: FeedConfig{
			TenantID: getEnvOr("FEED_TENANT_ID", ""),
		},
		ProjectID: getEnv("GCP_PROJECT"),
		Ranking:   loadRankingConfig(getEnvOr),
	}
	return cfg
}

func loadRankingConfig(getEnvOr func(key, fallback string) string) RankingConfig {
	cfg := RankingConfig{
		WindowWeeks:   52,
		MinMultiplier: 0.5,
		MaxMultiplier: 2.0,
		BasePoints:    DefaultBasePoints(),
	}

	if weeks, err := strconv.Atoi(getEnvOr("RANKING_WINDOW_WEEKS", "52")); err == nil && weeks > 0 {
		cfg.WindowWeeks = weeks
	}
	if min, err := strconv.ParseFloat(getEnvOr("RANKING_MULT_MIN", "0.5"), 64); err == nil && min > 0 {
		cfg.MinMultiplier = min
	}
	if max, err := strconv.ParseFloat(getEnvOr("RANKING_MULT_MAX", "2.0"), 64); err == nil && max >= cfg.MinMultiplier {
		cfg.MaxMultiplier = max
	}

	// RANKING_BASE_POINTS is a comma-separated CATEGORY:POINTS list,
	// e.g. "MAJOR:100,P1:60,P2:30". Unknown or malformed entries are skipped.
	if raw := getEnvOr("RANKING_BASE_POINTS", ""); raw != "" {
		for _, entry := range strings.Split(raw, ",") {
			parts := strings.SplitN(strings.TrimSpace(entry), ":", 2)
			if len(parts) != 2 {
				log.Warn("Skipping malformed base points entry", "entry", entry)
				continue
			}
			pts, err := strconv.ParseFloat(parts[1], 64)
			if err != nil || pts < 0 {
				log.Warn("Skipping base points entry with invalid value", "entry", entry)
				continue
			}
			cfg.BasePoints[padel.Category(strings.ToUpper(parts[0]))] = pts
		}
	}
	return cfg
}

// DefaultBasePoints is the category base-point table used when no override is
// configured. The coefficients are placeholders pending confirmation from the
// tour; see RankingConfig.
func DefaultBasePoints() map[padel.Category]float64 {
	return map[padel.Category]float64{
		padel.CategoryMajor:  100,
		padel.CategoryFinals: 150,
		padel.CategoryP1:     60,
		padel.CategoryP2:     30,
	}
}

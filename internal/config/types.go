package config

import "github.com/voleai/padelpro/internal/padel"

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	Slack         SlackConfig
	Turso         TursoConfig
	Redis         RedisConfig
	Feed          FeedConfig
	ProjectID     string
	Ranking       RankingConfig
}
type SlackConfig struct {
	Token         string
	ChannelID     string
	SigningSecret string
}
type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
type RedisConfig struct {
	Addr string // empty disables the standings cache
}
type FeedConfig struct {
	TenantID string // venue to pull results from; empty disables /fetch
}

// RankingConfig carries the points-formula coefficients. The exact curve is
// business logic owned by the tour, so everything here is overridable from
// the environment rather than hard-coded.
type RankingConfig struct {
	WindowWeeks   int
	BasePoints    map[padel.Category]float64
	MinMultiplier float64
	MaxMultiplier float64
}

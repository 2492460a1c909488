package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Supported high-score backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"quizboard"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:5000"`
	APIPrefix               string        `env:"API_PREFIX" envDefault:"/api"`
	RequestTimeout          time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Catalog    Catalog
	HighScores HighScores
	Postgres   Postgres
	Redis      Redis
	AI         AI
	CORS       CORS
}

// Catalog points at an optional YAML question catalog; empty means the embedded one.
type Catalog struct {
	Path string `env:"CATALOG_PATH"`
}

// HighScores selects where score entries are persisted.
type HighScores struct {
	Backend  string `env:"HIGHSCORE_BACKEND" envDefault:"file"`
	FilePath string `env:"HIGHSCORE_FILE" envDefault:"high_scores.json"`
}

// Postgres captures connection info for the SQL backend.
type Postgres struct {
	Host     string `env:"PG_HOST" envDefault:"localhost"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER"`
	Password string `env:"PG_PASSWORD"`
	Database string `env:"PG_DATABASE"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
	MaxConns int    `env:"PG_MAX_CONNS" envDefault:"10"`
}

// ConnString renders a libpq keyword/value connection string.
func (p Postgres) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// DSN is ConnString plus pgxpool sizing.
func (p Postgres) DSN() string {
	return fmt.Sprintf("%s pool_max_conns=%d", p.ConnString(), p.MaxConns)
}

// Redis is optional; when Addr is set leaderboard updates fan out over pub/sub.
type Redis struct {
	Addr     string `env:"REDIS_ADDR"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
	Channel  string `env:"LEADERBOARD_CHANNEL" envDefault:"quiz:leaderboard"`
}

// AI configures the completion API used for generated questions.
type AI struct {
	APIKey      string        `env:"OPENAI_API_KEY"`
	BaseURL     string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	Model       string        `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`
	MaxTokens   int           `env:"AI_MAX_TOKENS" envDefault:"200"`
	HTTPTimeout time.Duration `env:"AI_HTTP_TIMEOUT" envDefault:"15s"`
	BatchSize   int           `env:"AI_BATCH_SIZE" envDefault:"25"`
	Concurrency int           `env:"AI_CONCURRENCY" envDefault:"5"`
}

// Enabled reports whether a credential for the completion API is configured.
func (a AI) Enabled() bool {
	return a.APIKey != ""
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that depend on each other and normalizes the API prefix.
func (c *App) Validate() error {
	c.APIPrefix = "/" + strings.Trim(c.APIPrefix, "/")
	switch c.HighScores.Backend {
	case BackendFile:
		if c.HighScores.FilePath == "" {
			return fmt.Errorf("HIGHSCORE_FILE must be set for the file backend")
		}
	case BackendPostgres:
		if c.Postgres.User == "" || c.Postgres.Database == "" {
			return fmt.Errorf("PG_USER and PG_DATABASE must be set for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown HIGHSCORE_BACKEND %q", c.HighScores.Backend)
	}
	if c.AI.BatchSize <= 0 {
		return fmt.Errorf("AI_BATCH_SIZE must be positive")
	}
	return nil
}

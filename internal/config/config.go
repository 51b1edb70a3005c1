package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Storage backends selectable via STORAGE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"platonus-quiz"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Storage  Storage
	Postgres Postgres
	Redis    Redis
	AI       AI
}

// Storage selects where quizzes and attempts are persisted.
type Storage struct {
	Backend string `env:"STORAGE_BACKEND" envDefault:"memory"`
}

// Valid reports whether the configured backend is known.
func (s Storage) Valid() bool {
	switch s.Backend {
	case BackendMemory, BackendRedis, BackendPostgres:
		return true
	}
	return false
}

// Postgres captures connection info for the SQL database. Only read
// when STORAGE_BACKEND=postgres.
type Postgres struct {
	Host     string `env:"PG_HOST" envDefault:"localhost"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER" envDefault:"postgres"`
	Password string `env:"PG_PASSWORD" envDefault:""`
	Database string `env:"PG_DATABASE" envDefault:"platonus"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
}

// ConnString builds the pgx pool connection string.
func (p Postgres) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// Redis holds cache configuration. Only read when STORAGE_BACKEND=redis.
type Redis struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// AI configures the variant generator. A missing key degrades to
// placeholder variants rather than failing authoring.
type AI struct {
	GeminiAPIKey string        `env:"GEMINI_API_KEY"`
	Model        string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	HTTPTimeout  time.Duration `env:"AI_HTTP_TIMEOUT" envDefault:"6s"`
}

// Load parses environment variables into App config.
func Load() (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if !cfg.Storage.Valid() {
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	return cfg, nil
}

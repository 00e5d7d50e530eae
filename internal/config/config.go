// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(NewConfig),
)

// Config holds all application configuration
type Config struct {
	// Server settings
	ServerPort    int    `env:"SERVER_PORT" envDefault:"4100"`
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:"0.0.0.0"`
	Environment   string `env:"ENVIRONMENT" envDefault:"local"`
	Debug         bool   `env:"DEBUG" envDefault:"false"`

	Database DatabaseConfig
	Auth     AuthConfig
	LLM      LLMConfig
	Agent    AgentConfig
	Otel     OtelConfig

	// Server timeouts. Write and idle are long because chat responses are
	// streamed over SSE.
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"600s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"600s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host         string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port         int           `env:"POSTGRES_PORT" envDefault:"5432"`
	User         string        `env:"POSTGRES_USER" envDefault:"mesa"`
	Password     string        `env:"POSTGRES_PASSWORD" envDefault:""`
	Database     string        `env:"POSTGRES_DB" envDefault:"mesa"`
	SSLMode      string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	MaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	MaxIdleTime  time.Duration `env:"DB_MAX_IDLE_TIME" envDefault:"5m"`
	QueryDebug   bool          `env:"DB_QUERY_DEBUG" envDefault:"false"`
}

// DSN returns the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

// AuthConfig holds account token settings. Tokens are HS256 JWTs carrying the
// caller's account id, minted by the auth collaborator.
type AuthConfig struct {
	JWTSecret string        `env:"AUTH_JWT_SECRET"`
	TokenTTL  time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"720h"`
}

// LLMConfig holds Gemini model configuration for the agent loop.
type LLMConfig struct {
	// GCP settings for the Vertex AI backend
	GCPProjectID     string `env:"GCP_PROJECT_ID" envDefault:""`
	VertexAILocation string `env:"VERTEX_AI_LOCATION" envDefault:"global"`

	// API key fallback for the Gemini API backend (local development)
	GoogleAPIKey string `env:"GOOGLE_API_KEY" envDefault:""`

	Model           string        `env:"LLM_MODEL" envDefault:"gemini-2.5-flash"`
	Temperature     float64       `env:"LLM_TEMPERATURE" envDefault:"0.3"`
	MaxOutputTokens int           `env:"LLM_MAX_OUTPUT_TOKENS" envDefault:"8192"`
	Timeout         time.Duration `env:"LLM_TIMEOUT" envDefault:"120s"`

	// Disable LLM network calls (for testing)
	NetworkDisabled bool `env:"LLM_NETWORK_DISABLED" envDefault:"false"`
}

// IsEnabled returns true if the LLM is configured
func (l *LLMConfig) IsEnabled() bool {
	if l.NetworkDisabled {
		return false
	}
	return l.UseVertexAI() || l.GoogleAPIKey != ""
}

// UseVertexAI returns true if GCP credentials should be used
func (l *LLMConfig) UseVertexAI() bool {
	return l.GCPProjectID != "" && l.VertexAILocation != ""
}

// AgentConfig bounds the agent loop and its SQL tool.
type AgentConfig struct {
	// HistoryLimit is the number of prior messages loaded for context.
	HistoryLimit int `env:"AGENT_HISTORY_LIMIT" envDefault:"5"`

	// MaxSteps caps model round-trips (tool call cycles) per request.
	MaxSteps int `env:"AGENT_MAX_STEPS" envDefault:"8"`

	// StreamTimeout bounds the whole agent loop for one request.
	StreamTimeout time.Duration `env:"AGENT_STREAM_TIMEOUT" envDefault:"180s"`

	// SQLTimeout bounds a single execute_sql query.
	SQLTimeout time.Duration `env:"AGENT_SQL_TIMEOUT" envDefault:"15s"`
}

// NewConfig parses configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Vector store backend names.
const (
	BackendPgvector = "pgvector"
	BackendBadger   = "badger"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Conversation memory and cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// OpenAI-compatible API access.
	// OpenAIBaseURL may point at any compatible server (Ollama, vLLM, ...).
	OpenAIAPIKey  string `env:"OPENAI_API_KEY,required"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL" envDefault:""`

	// Models
	EmbeddingModel      string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	EmbeddingDimensions int    `env:"EMBEDDING_DIMENSIONS" envDefault:"1536"`
	ChatModel           string `env:"CHAT_MODEL" envDefault:"gpt-4o-mini"`
	ChatTemperature     float64 `env:"CHAT_TEMPERATURE" envDefault:"0.3"`
	ChatMaxTokens       int    `env:"CHAT_MAX_TOKENS" envDefault:"1024"`

	// Vector store backend: "pgvector" (shared Postgres) or "badger" (embedded, single node)
	VectorBackend string `env:"VECTOR_BACKEND" envDefault:"pgvector"`
	BadgerPath    string `env:"BADGER_PATH" envDefault:"./data/vectors"`

	// Document processing
	ChunkSize      int   `env:"CHUNK_SIZE" envDefault:"1000"`
	ChunkOverlap   int   `env:"CHUNK_OVERLAP" envDefault:"200"`
	MaxUploadSize  int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"`
	IngestWorkers  int   `env:"INGEST_WORKERS" envDefault:"4"`
	EmbedBatchSize int   `env:"EMBED_BATCH_SIZE" envDefault:"64"`

	// Retrieval
	SearchTopK    int     `env:"SEARCH_TOP_K" envDefault:"5"`
	SummaryTopK   int     `env:"SUMMARY_TOP_K" envDefault:"15"`
	MinSimilarity float64 `env:"MIN_SIMILARITY" envDefault:"0.25"`

	// Conversation memory
	ConversationMaxTurns int           `env:"CONVERSATION_MAX_TURNS" envDefault:"10"`
	ConversationTTL      time.Duration `env:"CONVERSATION_TTL" envDefault:"24h"`
	SessionTTL           time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	AnswerCacheTTL       time.Duration `env:"ANSWER_CACHE_TTL" envDefault:"1h"`
	SummaryCacheTTL      time.Duration `env:"SUMMARY_CACHE_TTL" envDefault:"24h"`

	// Auth tokens (opaque, stored in Redis)
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"30m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	// Email (SMTP). When SMTPHost is empty, outgoing mail is logged instead.
	SMTPHost     string `env:"SMTP_HOST" envDefault:""`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME" envDefault:""`
	SMTPPassword string `env:"SMTP_PASSWORD" envDefault:""`
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"no-reply@docchat.local"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPM     int  `env:"RATE_LIMIT_RPM" envDefault:"60"`
	RateLimitBurst   int  `env:"RATE_LIMIT_BURST" envDefault:"10"`
	// Unauthenticated endpoints (login, register) are limited per IP.
	RateLimitIPRPS   int `env:"RATE_LIMIT_IP_RPS" envDefault:"10"`
	RateLimitIPBurst int `env:"RATE_LIMIT_IP_BURST" envDefault:"5"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes for JSON endpoints (default 1MB).
	// Uploads are limited separately by MaxUploadSize.
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks cross-field constraints that env tags cannot express.
func (c *Config) Validate() error {
	if c.VectorBackend != BackendPgvector && c.VectorBackend != BackendBadger {
		return fmt.Errorf("invalid VECTOR_BACKEND %q: must be %q or %q",
			c.VectorBackend, BackendPgvector, BackendBadger)
	}
	if c.ChunkSize < 100 {
		return errors.New("CHUNK_SIZE must be at least 100")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return errors.New("CHUNK_OVERLAP must be non-negative and smaller than CHUNK_SIZE")
	}
	if c.SearchTopK < 1 {
		return errors.New("SEARCH_TOP_K must be at least 1")
	}
	if c.EmbeddingDimensions < 1 {
		return errors.New("EMBEDDING_DIMENSIONS must be positive")
	}
	if c.MinSimilarity < -1 || c.MinSimilarity > 1 {
		return errors.New("MIN_SIMILARITY must be within [-1, 1]")
	}
	if c.IngestWorkers < 1 {
		return errors.New("INGEST_WORKERS must be at least 1")
	}
	return nil
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

package config

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Events   EventsConfig   `mapstructure:"events"`
	Session  SessionConfig  `mapstructure:"session"`
	Grading  GradingConfig  `mapstructure:"grading"`
	Lexicon  LexiconConfig  `mapstructure:"lexicon"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig selects the SQL driver and connection string.
type DatabaseConfig struct {
	// Driver is "postgres" (pgx) or "sqlite" (modernc).
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	URL    string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0"`
}

// CacheConfig controls caching of derived learner context.
type CacheConfig struct {
	Backend           string `mapstructure:"backend" validate:"omitempty,oneof=none memory redis"`
	RedisURL          string `mapstructure:"redis_url" validate:"required_if=Backend redis"`
	ContextTTLSeconds int    `mapstructure:"context_ttl_seconds" validate:"gte=0"`
}

// EventsConfig controls the turn event mirror. An empty channel disables
// Redis publishing; events are still logged.
type EventsConfig struct {
	RedisChannel string `mapstructure:"redis_channel"`
}

// SessionConfig bounds in-memory sessions and history scans.
type SessionConfig struct {
	TTLMinutes   int `mapstructure:"ttl_minutes" validate:"gt=0"`
	HistoryLimit int `mapstructure:"history_limit" validate:"gt=0,lte=100"`
}

// GradingConfig overrides answer scoring thresholds. Zero values keep the
// built-in defaults; a negative fuzzy threshold disables fuzzy matching.
type GradingConfig struct {
	CorrectThreshold float64 `mapstructure:"correct_threshold" validate:"gte=0,lte=1"`
	PartialThreshold float64 `mapstructure:"partial_threshold" validate:"gte=0,lte=1"`
	MaxConcepts      int     `mapstructure:"max_concepts" validate:"gte=0"`
	MinConceptLength int     `mapstructure:"min_concept_length" validate:"gte=0"`
	FuzzyThreshold   float64 `mapstructure:"fuzzy_threshold" validate:"lte=1"`

	MinFragmentConcepts int `mapstructure:"min_fragment_concepts" validate:"gte=0"`
}

// LexiconConfig points at an optional YAML phrase table override.
type LexiconConfig struct {
	File string `mapstructure:"file"`
}

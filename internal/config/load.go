package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, so server.port is
// read from TUTOR_SERVER_PORT.
const EnvPrefix = "TUTOR"

// Load reads configuration from defaults, an optional config.yaml in the
// working directory, and TUTOR_* environment variables, in increasing order
// of precedence. The result is validated before it is returned.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only affects keys viper already knows about; bind the
	// ones without defaults explicitly so Unmarshal sees them.
	for _, key := range []string{"database.url", "auth.jwt_secret", "cache.redis_url", "events.redis_channel", "lexicon.file"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if c.Events.RedisChannel != "" && c.Cache.RedisURL == "" {
		return errors.New("config validation failed: events.redis_channel requires cache.redis_url")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.context_ttl_seconds", 300)
	v.SetDefault("session.ttl_minutes", 120)
	v.SetDefault("session.history_limit", 10)
	v.SetDefault("grading.correct_threshold", 0.0)
	v.SetDefault("grading.partial_threshold", 0.0)
	v.SetDefault("grading.max_concepts", 0)
	v.SetDefault("grading.min_concept_length", 0)
	v.SetDefault("grading.fuzzy_threshold", 0.0)
	v.SetDefault("grading.min_fragment_concepts", 0)
}

package config

import (
	"errors"
	"strings"
	"time"

	"campaign/internal/models"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Admin     AdminConfig
	Session   SessionConfig
	LogLevel  string
	Prizes    []models.PrizeVariant
	Locations []models.Location
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
}

// AdminConfig holds the single admin identity
type AdminConfig struct {
	Email           string
	Password        string
	JWTSecret       string
	TokenTTLMinutes int
}

// SessionConfig selects and tunes the session store
type SessionConfig struct {
	Backend              string
	DSN                  string
	IdleTimeoutMinutes   int
	SweepIntervalMinutes int
}

// TokenTTL is the lifetime of an admin token.
func (a AdminConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLMinutes) * time.Minute
}

// IdleTimeout is how long an untouched session survives.
func (s SessionConfig) IdleTimeout() time.Duration {
	return time.Duration(s.IdleTimeoutMinutes) * time.Minute
}

// SweepInterval is how often idle sessions are swept.
func (s SessionConfig) SweepInterval() time.Duration {
	return time.Duration(s.SweepIntervalMinutes) * time.Minute
}

// Verbose reports whether debug logging was requested.
func (c *Config) Verbose() bool {
	return strings.EqualFold(c.LogLevel, "debug")
}

// Load loads configuration from config.yaml in the given paths and from environment variables.
// Nested keys map to env vars with "_" in place of "." (SERVER_PORT, ADMIN_EMAIL, ...).
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.Session.Backend != "memory" && cfg.Session.Backend != "sqlite" {
		return nil, errors.New("Session.Backend must be memory or sqlite")
	}
	if cfg.Session.SweepIntervalMinutes <= 0 || cfg.Session.IdleTimeoutMinutes <= 0 {
		return nil, errors.New("Session sweep interval and idle timeout must be positive")
	}
	return &cfg, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("Server.Port", "8080")
	v.SetDefault("LogLevel", "info")
	v.SetDefault("Admin.Email", "admin@twix.com")
	v.SetDefault("Admin.Password", "twix123")
	v.SetDefault("Admin.JWTSecret", "change-me")
	v.SetDefault("Admin.TokenTTLMinutes", 60)
	v.SetDefault("Session.Backend", "memory")
	v.SetDefault("Session.DSN", "campaign.db")
	v.SetDefault("Session.IdleTimeoutMinutes", 60)
	v.SetDefault("Session.SweepIntervalMinutes", 10)
}

// Package config provides configuration management for the analytics engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Sentiment SentimentConfig `mapstructure:"sentiment"`
	Narrative NarrativeConfig `mapstructure:"narrative"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	UI        UIConfig        `mapstructure:"ui"`
}

// DatabaseConfig holds SQLite configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig holds HTTP API configuration.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// SchedulerConfig holds the background recompute loop configuration.
type SchedulerConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

// SentimentConfig holds the Redis sentiment cache configuration. The cache
// is populated by the platform's sentiment collaborator; this side only
// reads it.
type SentimentConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// NarrativeConfig holds LLM narrative generation configuration.
type NarrativeConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// UIConfig holds CLI output configuration.
type UIConfig struct {
	ColorEnabled bool `mapstructure:"color_enabled"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/tradecoach"
	}
	return filepath.Join(home, ".config", "tradecoach")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config.toml: %w", err)
		}
		// First run: write the template so the next edit has a starting point
		if err := createTemplateConfig(configDir); err != nil {
			return nil, fmt.Errorf("creating config template: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("database.path", filepath.Join(configDir, "tradecoach.db"))

	v.SetDefault("server.addr", ":8090")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.interval", "1h")

	v.SetDefault("sentiment.enabled", false)
	v.SetDefault("sentiment.addr", "localhost:6379")
	v.SetDefault("sentiment.password", "")
	v.SetDefault("sentiment.db", 0)

	v.SetDefault("narrative.enabled", false)
	v.SetDefault("narrative.api_key", "")
	v.SetDefault("narrative.model", "gpt-4o-mini")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "tradecoach.log"))
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 7)
	v.SetDefault("logging.max_age_days", 30)

	v.SetDefault("ui.color_enabled", true)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Narrative.APIKey = v
		cfg.Narrative.Enabled = true
	}
	if v := os.Getenv("TRADECOACH_DB"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("TRADECOACH_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Sentiment.Addr = v
		cfg.Sentiment.Enabled = true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Sentiment.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Sentiment.DB = db
		}
	}
	if v := os.Getenv("TRADECOACH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Scheduler.Enabled && c.Scheduler.Interval < time.Minute {
		return fmt.Errorf("scheduler.interval must be at least 1m, got %s", c.Scheduler.Interval)
	}
	if c.Narrative.Enabled && c.Narrative.APIKey == "" {
		return fmt.Errorf("narrative.api_key required when narrative generation is enabled")
	}
	if c.Sentiment.Enabled && c.Sentiment.Addr == "" {
		return fmt.Errorf("sentiment.addr required when the sentiment cache is enabled")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}
	return nil
}

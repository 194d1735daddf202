package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env     string `mapstructure:"ENV"`
	DataDir string `mapstructure:"DATA_DIR"`
	DBPath  string `mapstructure:"DB_PATH"`

	GeminiAPIKey      string  `mapstructure:"GEMINI_API_KEY"`
	GeminiModel       string  `mapstructure:"GEMINI_MODEL"`
	GeminiTemperature float64 `mapstructure:"GEMINI_TEMPERATURE"`
	GeminiMaxTokens   int     `mapstructure:"GEMINI_MAX_TOKENS"`

	SessionDurationMinutes int `mapstructure:"SESSION_DURATION_MINUTES"`

	RequestIntervalMS int `mapstructure:"REQUEST_INTERVAL_MS"`
	MaxRetries        int `mapstructure:"MAX_RETRIES"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	home, _ := os.UserHomeDir()

	// Defaults
	v.SetDefault("ENV", "development")
	v.SetDefault("DATA_DIR", filepath.Join(home, ".therapy"))
	v.SetDefault("DB_PATH", "")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-pro")
	v.SetDefault("GEMINI_TEMPERATURE", 0.7)
	v.SetDefault("GEMINI_MAX_TOKENS", 8192)
	v.SetDefault("SESSION_DURATION_MINUTES", 50)
	v.SetDefault("REQUEST_INTERVAL_MS", 1000)
	v.SetDefault("MAX_RETRIES", 3)
	v.SetDefault("LOG_LEVEL", "info")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("ENV")
	v.BindEnv("DATA_DIR")
	v.BindEnv("DB_PATH")
	v.BindEnv("GEMINI_API_KEY")
	v.BindEnv("GEMINI_MODEL")
	v.BindEnv("GEMINI_TEMPERATURE")
	v.BindEnv("GEMINI_MAX_TOKENS")
	v.BindEnv("SESSION_DURATION_MINUTES")
	v.BindEnv("REQUEST_INTERVAL_MS")
	v.BindEnv("MAX_RETRIES")
	v.BindEnv("LOG_LEVEL")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "therapy.db")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return strings.EqualFold(c.Env, "development")
}

// SessionDuration returns the configured session length.
func (c *Config) SessionDuration() time.Duration {
	return time.Duration(c.SessionDurationMinutes) * time.Minute
}

// RequestInterval returns the minimum gap enforced between AI calls.
func (c *Config) RequestInterval() time.Duration {
	return time.Duration(c.RequestIntervalMS) * time.Millisecond
}

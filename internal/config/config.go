package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Unclassified-error policies accepted by the unclassified_errors key.
const (
	UnclassifiedNotify = "notify"
	UnclassifiedSilent = "silent"
)

// DevServerConfig holds configuration for the development backend.
type DevServerConfig struct {
	Addr        string `mapstructure:"addr"`
	MaxActive   int    `mapstructure:"max_active"`
	TokenID     string `mapstructure:"token_id"`
	TokenSecret string `mapstructure:"token_secret"`
}

// Config holds all runtime configuration for a haus session.
// Values are populated from .haus.yaml, HAUS_* env vars, and CLI flags.
type Config struct {
	BackendURL         string          `mapstructure:"backend_url"`
	RequestTimeout     time.Duration   `mapstructure:"request_timeout"`
	UnclassifiedErrors string          `mapstructure:"unclassified_errors"`
	IdentityFile       string          `mapstructure:"identity_file"`
	HistoryDB          string          `mapstructure:"history_db"`
	TelemetryDir       string          `mapstructure:"telemetry_dir"`
	Verbose            bool            `mapstructure:"verbose"`
	DevServer          DevServerConfig `mapstructure:"devserver"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	stateDir := defaultStateDir()

	viper.SetDefault("backend_url", "http://localhost:3000")
	viper.SetDefault("request_timeout", time.Duration(0))
	viper.SetDefault("unclassified_errors", UnclassifiedNotify)
	viper.SetDefault("identity_file", filepath.Join(stateDir, "identity.toml"))
	viper.SetDefault("history_db", filepath.Join(stateDir, "history.db"))
	viper.SetDefault("telemetry_dir", filepath.Join(".haus", "telemetry"))
	viper.SetDefault("verbose", false)
	viper.SetDefault("devserver.addr", ":3000")
	viper.SetDefault("devserver.max_active", 20)
	viper.SetDefault("devserver.token_id", "")
	viper.SetDefault("devserver.token_secret", "")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting in cfg.
func (c Config) Validate() error {
	switch c.UnclassifiedErrors {
	case UnclassifiedNotify, UnclassifiedSilent:
	default:
		return fmt.Errorf("config: unclassified_errors must be %q or %q, got %q",
			UnclassifiedNotify, UnclassifiedSilent, c.UnclassifiedErrors)
	}
	if c.BackendURL == "" {
		return fmt.Errorf("config: backend_url is required")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("config: request_timeout must not be negative, got %s", c.RequestTimeout)
	}
	if c.DevServer.MaxActive <= 0 {
		return fmt.Errorf("config: devserver.max_active must be positive, got %d", c.DevServer.MaxActive)
	}
	return nil
}

// defaultStateDir returns ~/.haus, falling back to ./.haus when the home
// directory cannot be resolved.
func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".haus"
	}
	return filepath.Join(home, ".haus")
}

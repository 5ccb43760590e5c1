package model

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	// ListenAddr is the host:port the API server binds to.
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
}

// StoreConfig selects and configures the task record store backend.
type StoreConfig struct {
	// Backend is "sqlite" or "memory".
	Backend string `mapstructure:"backend" yaml:"backend"`

	// Path is the SQLite database file (ignored for the memory backend).
	Path string `mapstructure:"path" yaml:"path"`
}

// AuthConfig holds credential-verification and session settings.
type AuthConfig struct {
	// TokenSecret is the HMAC key used to verify bearer tokens issued by
	// the identity provider.
	TokenSecret string `mapstructure:"token_secret" yaml:"token_secret"`

	// TokenIssuer is the expected issuer claim on bearer tokens.
	TokenIssuer string `mapstructure:"token_issuer" yaml:"token_issuer"`

	// SessionTTLHours is the rolling session cookie lifetime.
	SessionTTLHours int `mapstructure:"session_ttl_hours" yaml:"session_ttl_hours"`

	// PruneIntervalSec is how often expired sessions are swept.
	PruneIntervalSec int `mapstructure:"prune_interval_sec" yaml:"prune_interval_sec"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	// Level is "debug", "info", "warn", or "error".
	Level string `mapstructure:"level" yaml:"level"`

	// Development switches to the human-readable console encoder.
	Development bool `mapstructure:"development" yaml:"development"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Store  StoreConfig  `mapstructure:"store" yaml:"store"`
	Auth   AuthConfig   `mapstructure:"auth" yaml:"auth"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

// SessionTTL returns the configured session lifetime as a duration.
func (c *AppConfig) SessionTTL() time.Duration {
	return time.Duration(c.Auth.SessionTTLHours) * time.Hour
}

// PruneInterval returns the configured session sweep interval as a duration.
func (c *AppConfig) PruneInterval() time.Duration {
	return time.Duration(c.Auth.PruneIntervalSec) * time.Second
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/taskpilot/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "taskpilot", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{ListenAddr: ":8080"},
		Store:  StoreConfig{Backend: "memory"},
		Auth: AuthConfig{
			TokenIssuer:      "taskpilot",
			SessionTTLHours:  24,
			PruneIntervalSec: 300,
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("store.backend", "memory")
	v.SetDefault("auth.token_issuer", "taskpilot")
	v.SetDefault("auth.session_ttl_hours", 24)
	v.SetDefault("auth.prune_interval_sec", 300)
	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Store.Backend == "sqlite" && cfg.Store.Path == "" {
		return nil, fmt.Errorf("config %s: store.path is required for the sqlite backend", path)
	}

	return cfg, nil
}

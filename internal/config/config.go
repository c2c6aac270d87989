// Package config loads server settings from an optional YAML file and
// applies environment variable overrides on top.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Admin     AdminConfig     `yaml:"admin"`
	Display   DisplayConfig   `yaml:"display"`
	Proofs    ProofsConfig    `yaml:"proofs"`
	Quotes    QuotesConfig    `yaml:"quotes"`
	Snapshots SnapshotsConfig `yaml:"snapshots"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	FrontendPath    string        `yaml:"frontend_path"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// Requests per second allowed per client on write actions.
	ActionRPS   float64 `yaml:"action_rps"`
	ActionBurst int     `yaml:"action_burst"`
}

type DatabaseConfig struct {
	Path     string `yaml:"path"`
	LogLevel string `yaml:"log_level"` // silent, error, warn, info
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// AdminConfig holds the fixed allow-list of administrator emails.
type AdminConfig struct {
	Emails []string `yaml:"emails"`
}

type DisplayConfig struct {
	Currency        string `yaml:"currency"`
	AmountFraction  int    `yaml:"amount_fraction"`
	PercentFraction int    `yaml:"percent_fraction"`
}

type ProofsConfig struct {
	Dir         string `yaml:"dir"`
	MaxSizeByte int    `yaml:"max_size_bytes"`
}

type QuotesConfig struct {
	Enabled        bool          `yaml:"enabled"`
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"api_key"`
	RefreshEvery   time.Duration `yaml:"refresh_every"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	CacheSize      int           `yaml:"cache_size"`
	RequestsPerMin int           `yaml:"requests_per_minute"`
	Timeout        time.Duration `yaml:"timeout"`
}

type SnapshotsConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Hour          int           `yaml:"hour"`
	CheckInterval time.Duration `yaml:"check_interval"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			CORSOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
			ShutdownTimeout: 30 * time.Second,
			ActionRPS:       5,
			ActionBurst:     10,
		},
		Database: DatabaseConfig{
			Path:     "./fundtracker.db",
			LogLevel: "warn",
		},
		Log: LogConfig{Level: "info"},
		Display: DisplayConfig{
			Currency:        "INR",
			AmountFraction:  0,
			PercentFraction: 2,
		},
		Proofs: ProofsConfig{
			Dir:         "./data/proofs",
			MaxSizeByte: 10 << 20,
		},
		Quotes: QuotesConfig{
			RefreshEvery:   15 * time.Minute,
			CacheTTL:       5 * time.Minute,
			CacheSize:      256,
			RequestsPerMin: 30,
			Timeout:        10 * time.Second,
		},
		Snapshots: SnapshotsConfig{
			Enabled:       true,
			Hour:          23,
			CheckInterval: 15 * time.Minute,
		},
	}
}

// Load reads the YAML file at path (if it exists), then applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("FRONTEND_DIST_PATH"); v != "" {
		cfg.Server.FrontendPath = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("ADMIN_EMAILS"); v != "" {
		cfg.Admin.Emails = splitList(v)
	}
	if v := os.Getenv("PROOFS_DIR"); v != "" {
		cfg.Proofs.Dir = v
	}
	if v := os.Getenv("QUOTE_API_URL"); v != "" {
		cfg.Quotes.BaseURL = v
		cfg.Quotes.Enabled = true
	}
	if v := os.Getenv("QUOTE_API_KEY"); v != "" {
		cfg.Quotes.APIKey = v
	}
	if v := os.Getenv("SNAPSHOT_HOUR"); v != "" {
		if hour, err := strconv.Atoi(v); err == nil {
			cfg.Snapshots.Hour = hour
		}
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks that the configuration can be used to start the server.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if c.Server.ActionRPS <= 0 {
		return fmt.Errorf("server action_rps must be positive, got %f", c.Server.ActionRPS)
	}
	if c.Server.ActionBurst < 1 {
		return fmt.Errorf("server action_burst must be at least 1, got %d", c.Server.ActionBurst)
	}
	if c.Display.AmountFraction < 0 || c.Display.PercentFraction < 0 {
		return fmt.Errorf("display fractions cannot be negative")
	}
	if c.Snapshots.Hour < 0 || c.Snapshots.Hour > 23 {
		return fmt.Errorf("snapshots hour must be between 0 and 23, got %d", c.Snapshots.Hour)
	}
	if c.Quotes.Enabled {
		if c.Quotes.BaseURL == "" {
			return fmt.Errorf("quotes base_url is required when quotes are enabled")
		}
		if c.Quotes.RequestsPerMin <= 0 {
			return fmt.Errorf("quotes requests_per_minute must be positive, got %d", c.Quotes.RequestsPerMin)
		}
		if c.Quotes.CacheSize <= 0 {
			return fmt.Errorf("quotes cache_size must be positive, got %d", c.Quotes.CacheSize)
		}
	}
	for _, email := range c.Admin.Emails {
		if !strings.Contains(email, "@") {
			return fmt.Errorf("admin email %q is not an email address", email)
		}
	}
	return nil
}

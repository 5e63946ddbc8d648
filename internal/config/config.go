// Package config loads CLI configuration from a YAML file, a .env file, and
// environment variables, with the standard APCA_* variables taking highest
// priority.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPaperURL and DefaultLiveURL are the Alpaca trading endpoints used
// when the config file does not override them.
const (
	DefaultPaperURL = "https://paper-api.alpaca.markets"
	DefaultLiveURL  = "https://api.alpaca.markets"
)

// Config is the top-level configuration for the alpaca-cli tool.
type Config struct {
	Alpaca  Alpaca  `yaml:"alpaca"`
	Storage Storage `yaml:"storage"`
	Trading Trading `yaml:"trading"`
	Logging Logging `yaml:"logging"`

	// Source records where the API key came from, for `config show`.
	Source string `yaml:"-"`
}

// Alpaca holds credentials and endpoints for the brokerage API.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
	PaperURL  string `yaml:"paper_endpoint"`
	LiveURL   string `yaml:"live_endpoint"`
}

// Storage holds paths for local persistence.
type Storage struct {
	JournalPath string `yaml:"journal_path"`
}

// Trading defines execution guard parameters.
type Trading struct {
	// MaxPositionPct caps a single order's notional as a fraction of
	// equity. 0 disables the check.
	MaxPositionPct float64 `yaml:"max_position_pct"`
}

// Logging configures the application logger.
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".alpaca-cli.yaml"
	}
	return filepath.Join(home, ".alpaca-cli.yaml")
}

// Load reads the YAML configuration at path (a missing file is not an
// error: env-only setups are common), loads a .env file from the working
// directory when present, and applies environment overrides.
func Load(path string) (*Config, error) {
	// Ignore a missing .env; it is a convenience, not a requirement.
	_ = godotenv.Load()

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
		if cfg.Alpaca.APIKey != "" {
			cfg.Source = "config file"
		}
	case os.IsNotExist(err):
		// Defaults + env only.
	default:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Alpaca.PaperURL == "" {
		cfg.Alpaca.PaperURL = DefaultPaperURL
	}
	if cfg.Alpaca.LiveURL == "" {
		cfg.Alpaca.LiveURL = DefaultLiveURL
	}
	if cfg.Alpaca.BaseURL == "" {
		cfg.Alpaca.BaseURL = cfg.Alpaca.PaperURL
	}
	if cfg.Storage.JournalPath == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			cfg.Storage.JournalPath = filepath.Join(home, ".alpaca-cli.journal.db")
		} else {
			cfg.Storage.JournalPath = ".alpaca-cli.journal.db"
		}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set. The canonical
// APCA_* names used by the brokerage SDK take highest priority.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
		cfg.Source = "environment"
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_BASE_URL"); v != "" {
		cfg.Alpaca.BaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
		cfg.Source = "environment"
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
	if v := os.Getenv("APCA_API_BASE_URL"); v != "" {
		cfg.Alpaca.BaseURL = v
	}
}

// IsPaper reports whether the active endpoint is the paper-trading API.
func (c *Config) IsPaper() bool {
	return strings.Contains(c.Alpaca.BaseURL, "paper")
}

// Validate fails when credentials are absent, with a message explaining how
// to supply them.
func (c *Config) Validate() error {
	if c.Alpaca.APIKey == "" || c.Alpaca.APISecret == "" {
		return fmt.Errorf("API credentials not found; set APCA_API_KEY_ID and APCA_API_SECRET_KEY, or add alpaca.api_key / alpaca.api_secret to %s", DefaultPath())
	}
	return nil
}

// SetMode switches BaseURL to the paper or live endpoint and writes the
// config file back to path.
func (c *Config) SetMode(path, mode string) error {
	switch strings.ToLower(mode) {
	case "paper":
		c.Alpaca.BaseURL = c.Alpaca.PaperURL
	case "live":
		c.Alpaca.BaseURL = c.Alpaca.LiveURL
	default:
		return fmt.Errorf("unknown mode %q, want paper or live", mode)
	}
	return c.Save(path)
}

// Save writes the configuration as YAML to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

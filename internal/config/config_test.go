package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ALPACA_API_KEY", "ALPACA_API_SECRET", "ALPACA_BASE_URL",
		"APCA_API_KEY_ID", "APCA_API_SECRET_KEY", "APCA_API_BASE_URL",
		"LOG_LEVEL",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
alpaca:
  api_key: file-key
  api_secret: file-secret
  base_url: https://paper-api.alpaca.markets
trading:
  max_position_pct: 0.25
logging:
  level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Alpaca.APIKey != "file-key" {
		t.Errorf("APIKey = %q, want %q", cfg.Alpaca.APIKey, "file-key")
	}
	if cfg.Trading.MaxPositionPct != 0.25 {
		t.Errorf("MaxPositionPct = %v, want 0.25", cfg.Trading.MaxPositionPct)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if !cfg.IsPaper() {
		t.Error("IsPaper() = false, want true")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Alpaca.BaseURL != DefaultPaperURL {
		t.Errorf("BaseURL = %q, want %q", cfg.Alpaca.BaseURL, DefaultPaperURL)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
alpaca:
  api_key: file-key
  api_secret: file-secret
`)
	t.Setenv("ALPACA_API_KEY", "env-key")
	t.Setenv("APCA_API_KEY_ID", "apca-key")
	t.Setenv("APCA_API_SECRET_KEY", "apca-secret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Alpaca.APIKey != "apca-key" {
		t.Errorf("APIKey = %q, want %q (APCA_* wins)", cfg.Alpaca.APIKey, "apca-key")
	}
	if cfg.Alpaca.APISecret != "apca-secret" {
		t.Errorf("APISecret = %q, want %q", cfg.Alpaca.APISecret, "apca-secret")
	}
	if cfg.Source != "environment" {
		t.Errorf("Source = %q, want %q", cfg.Source, "environment")
	}
}

func TestValidateMissingCredentials(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	err = cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	if !strings.Contains(err.Error(), "APCA_API_KEY_ID") {
		t.Errorf("Validate() error %q should mention APCA_API_KEY_ID", err)
	}
}

func TestSetMode(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
alpaca:
  api_key: k
  api_secret: s
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := cfg.SetMode(path, "live"); err != nil {
		t.Fatalf("SetMode(live) error = %v", err)
	}
	if cfg.Alpaca.BaseURL != DefaultLiveURL {
		t.Errorf("BaseURL = %q, want %q", cfg.Alpaca.BaseURL, DefaultLiveURL)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() after save error = %v", err)
	}
	if reloaded.Alpaca.BaseURL != DefaultLiveURL {
		t.Errorf("reloaded BaseURL = %q, want %q", reloaded.Alpaca.BaseURL, DefaultLiveURL)
	}

	if err := cfg.SetMode(path, "margin"); err == nil {
		t.Error("SetMode(margin) = nil, want error")
	}
}

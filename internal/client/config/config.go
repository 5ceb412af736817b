package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the kinsync client.
//
// Fields:
//   - ServerURL: base URL of the sync server.
//   - Token: bearer JWT sent with every request.
//   - WorkspaceID: tenant the device syncs into, sent as X-Workspace-Id.
//   - ClientID: device id; generated and stored locally when empty.
//   - DatabasePath: sqlite file holding the outbox and client metadata.
//   - OnlineCheckInterval: how often watch mode probes server reachability.
//   - RequestTimeout: per-request HTTP timeout.
//   - LogLevel: slog level name.
type Config struct {
	ServerURL           string
	Token               string
	WorkspaceID         string
	ClientID            string
	DatabasePath        string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:3000"
	c.DatabasePath = defaultDatabasePath()
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "warn"
}

func defaultDatabasePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "kinsync.db"
	}
	return filepath.Join(dir, "kinsync", "kinsync.db")
}

// Load applies defaults, then the JSON file at jsonPath (skipped when empty),
// then the environment.
func Load(jsonPath string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, jsonPath); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// positive rejects zero and negative durations.
func positive(name string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("invalid %s: %s is not a positive duration", name, d)
	}
	return nil
}

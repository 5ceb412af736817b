package config

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/kinsync/internal/timex"
	"github.com/goccy/go-json"
)

// JsonConfig is the on-disk shape of the client config file.
type JsonConfig struct {
	ServerURL           string         `json:"server_url"`
	Token               string         `json:"token"`
	WorkspaceID         string         `json:"workspace_id"`
	ClientID            string         `json:"client_id"`
	DatabasePath        string         `json:"database_path"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	LogLevel            string         `json:"log_level"`
}

// parseJson overlays cfg with the values present in the file. Keys missing
// from the file keep their current value.
func parseJson(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("error parsing config %s: %w", path, err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.Token, jc.Token)
	setString(&cfg.WorkspaceID, jc.WorkspaceID)
	setString(&cfg.ClientID, jc.ClientID)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	setString(&cfg.LogLevel, jc.LogLevel)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

package config

import (
	"fmt"
	"os"
	"time"
)

// Environment variables read by parseEnv.
const (
	EnvServerURL           = "KINSYNC_SERVER_URL"
	EnvToken               = "KINSYNC_TOKEN"
	EnvWorkspaceID         = "KINSYNC_WORKSPACE_ID"
	EnvClientID            = "KINSYNC_CLIENT_ID"
	EnvDatabasePath        = "KINSYNC_DATABASE_PATH"
	EnvOnlineCheckInterval = "KINSYNC_ONLINE_CHECK_INTERVAL"
	EnvRequestTimeout      = "KINSYNC_REQUEST_TIMEOUT"
	EnvLogLevel            = "KINSYNC_LOG_LEVEL"
)

func parseEnv(cfg *Config) error {
	setString(&cfg.ServerURL, os.Getenv(EnvServerURL))
	setString(&cfg.Token, os.Getenv(EnvToken))
	setString(&cfg.WorkspaceID, os.Getenv(EnvWorkspaceID))
	setString(&cfg.ClientID, os.Getenv(EnvClientID))
	setString(&cfg.DatabasePath, os.Getenv(EnvDatabasePath))
	setString(&cfg.LogLevel, os.Getenv(EnvLogLevel))

	if err := envDuration(&cfg.OnlineCheckInterval, EnvOnlineCheckInterval); err != nil {
		return err
	}
	return envDuration(&cfg.RequestTimeout, EnvRequestTimeout)
}

func envDuration(dst *time.Duration, name string) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if err := positive(name, d); err != nil {
		return err
	}
	*dst = d
	return nil
}

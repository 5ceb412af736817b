package config

import "github.com/spf13/pflag"

// Flag names registered by AddFlags.
const (
	FlagConfig    = "config"
	FlagServer    = "server"
	FlagToken     = "token"
	FlagWorkspace = "workspace"
	FlagClientID  = "client-id"
	FlagDatabase  = "db"
	FlagInterval  = "interval"
	FlagTimeout   = "timeout"
	FlagLogLevel  = "log-level"
)

// AddFlags registers the client's persistent flags on fs. Defaults are left
// empty so that only explicitly set flags override the config file.
func AddFlags(fs *pflag.FlagSet) {
	fs.StringP(FlagConfig, "c", "", "path to JSON config file (or $KINSYNC_CONFIG)")
	fs.StringP(FlagServer, "a", "", "sync server base URL")
	fs.String(FlagToken, "", "bearer token")
	fs.StringP(FlagWorkspace, "w", "", "workspace id")
	fs.String(FlagClientID, "", "device id")
	fs.String(FlagDatabase, "", "path to the local sqlite database")
	fs.DurationP(FlagInterval, "i", 0, "online check interval")
	fs.Duration(FlagTimeout, 0, "request timeout")
	fs.StringP(FlagLogLevel, "v", "", "log level (debug, info, warn, error)")
}

// ApplyFlags copies every flag the user actually set into cfg.
func ApplyFlags(fs *pflag.FlagSet, cfg *Config) error {
	strs := map[string]*string{
		FlagServer:    &cfg.ServerURL,
		FlagToken:     &cfg.Token,
		FlagWorkspace: &cfg.WorkspaceID,
		FlagClientID:  &cfg.ClientID,
		FlagDatabase:  &cfg.DatabasePath,
		FlagLogLevel:  &cfg.LogLevel,
	}
	for name, dst := range strs {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	if fs.Changed(FlagInterval) {
		d, err := fs.GetDuration(FlagInterval)
		if err != nil {
			return err
		}
		if err := positive(FlagInterval, d); err != nil {
			return err
		}
		cfg.OnlineCheckInterval = d
	}
	if fs.Changed(FlagTimeout) {
		d, err := fs.GetDuration(FlagTimeout)
		if err != nil {
			return err
		}
		if err := positive(FlagTimeout, d); err != nil {
			return err
		}
		cfg.RequestTimeout = d
	}
	return nil
}

package cli

import (
	"context"
	"os"

	"github.com/dmitrijs2005/kinsync/internal/client/config"
	"github.com/dmitrijs2005/kinsync/internal/flagx"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	cfg *config.Config
}

// withApp builds an App for the duration of fn.
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, app *App) error) error {
	app, err := NewApp(cmd.Context(), o.cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(cmd.Context(), app)
}

// NewRootCommand creates the kinsync client command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "kinsync",
		Short:         "Offline-first sync client",
		Long:          "Queue contact, journal and action item changes locally and sync them with a kinsync server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString(config.FlagConfig)
			if path == "" {
				path = os.Getenv(flagx.ConfigEnvVar)
			}

			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if err := config.ApplyFlags(cmd.Flags(), cfg); err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}

	config.AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewEnqueueCommand(opts))
	cmd.AddCommand(NewContactCommand(opts))
	cmd.AddCommand(NewJournalCommand(opts))
	cmd.AddCommand(NewActionCommand(opts))
	cmd.AddCommand(NewFlushCommand(opts))
	cmd.AddCommand(NewPullCommand(opts))
	cmd.AddCommand(NewStateCommand(opts))
	cmd.AddCommand(NewOutboxCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewPingCommand(opts))
	cmd.AddCommand(NewAttachCommand(opts))
	cmd.AddCommand(NewTokenCommand())

	return cmd
}

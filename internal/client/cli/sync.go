package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/kinsync/internal/client/models"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func NewFlushCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Deliver queued changes to the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App) error {
				report, err := app.outbox.Flush(ctx)
				fmt.Fprintf(cmd.OutOrStdout(), "delivered %d of %d, %d remaining\n",
					report.Delivered, report.Attempted, report.Remaining)
				return err
			})
		},
	}
}

func NewPullCommand(opts *rootOptions) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Fetch changes made on other devices since the last pull",
		Long: `Fetch changes made on other devices since the last pull.

Each ledger entry is printed as one JSON line on stdout. The cursor is saved
after every page, so an interrupted pull resumes where it stopped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App) error {
				enc := json.NewEncoder(cmd.OutOrStdout())
				report, err := app.sync.PullAll(ctx, func(_ context.Context, entries []models.LedgerEntry) error {
					if quiet {
						return nil
					}
					for _, e := range entries {
						if err := enc.Encode(e); err != nil {
							return err
						}
					}
					return nil
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "pulled %d entries in %d pages, cursor %q\n",
					report.Entries, report.Pages, report.Cursor)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only advance the cursor")

	return cmd
}

type stateView struct {
	ClientID    string            `json:"client_id"`
	LocalCursor string            `json:"local_cursor"`
	Pending     int               `json:"pending"`
	Server      *models.SyncState `json:"server"`
}

func NewStateCommand(opts *rootOptions) *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show this device's sync position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App) error {
				cursor, err := app.sync.Cursor(ctx)
				if err != nil {
					return err
				}
				pending, err := app.outbox.Pending(ctx)
				if err != nil {
					return err
				}

				view := stateView{
					ClientID:    app.sync.ClientID(),
					LocalCursor: cursor,
					Pending:     len(pending),
				}
				if !local {
					if view.Server, err = app.sync.State(ctx); err != nil {
						return err
					}
				}
				return printJSON(cmd.OutOrStdout(), view)
			})
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "do not contact the server")

	return cmd
}

func NewOutboxCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Inspect queued changes",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List queued items in delivery order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App) error {
				items, err := app.outbox.Pending(ctx)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tKIND\tMETHOD\tURL\tCREATED")
				for _, it := range items {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
						it.ID, it.Kind, it.Method, it.URL, it.CreatedAt.Format(time.RFC3339))
				}
				return tw.Flush()
			})
		},
	})

	return cmd
}

func NewPingCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check whether the server is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App) error {
				if err := app.api.Ping(ctx); err != nil {
					fmt.Fprintln(cmd.OutOrStdout(), "offline")
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "online")
				return nil
			})
		},
	}
}

func NewWatchCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Flush the outbox whenever the server becomes reachable",
		Long: `Probe the server every --interval and flush the outbox each time it
comes back online. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App) error {
				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()

				app.logger.Info(ctx, "watching", "server", app.config.ServerURL, "interval", app.config.OnlineCheckInterval)
				app.watcher.Run(ctx, app.config.OnlineCheckInterval)
				return nil
			})
		},
	}
}

package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/kinsync/internal/netx"
	"github.com/spf13/cobra"
)

func NewAttachCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attach",
		Short: "Upload and fetch attachments",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a file and print its storage key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, app *App) error {
				task, err := app.api.RequestUpload(ctx)
				if err != nil {
					return err
				}
				contentType := mime.TypeByExtension(filepath.Ext(args[0]))
				if err := netx.UploadToS3PresignedURL(ctx, task.URL, data, contentType); err != nil {
					return err
				}
				if err := app.api.CompleteUpload(ctx, task.Key); err != nil {
					return fmt.Errorf("uploaded but not confirmed: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), task.Key)
				return err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "url <key>",
		Short: "Print a temporary download URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App) error {
				url, err := app.api.DownloadURL(ctx, args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), url)
				return err
			})
		},
	})

	return cmd
}

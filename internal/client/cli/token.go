package cli

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/kinsync/internal/server/auth"
	"github.com/spf13/cobra"
)

// NewTokenCommand mints a bearer token for local development. It needs the
// server's signing secret.
func NewTokenCommand() *cobra.Command {
	var user, secret string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := auth.GenerateToken(user, []byte(secret), ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "user id")
	cmd.Flags().StringVarP(&secret, "secret", "s", "", "server signing secret")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("secret")

	return cmd
}

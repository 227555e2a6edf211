package cmd

import (
	"fmt"

	"github.com/Togather-Foundation/eventos/internal/auth"
	"github.com/spf13/cobra"
)

func newTokenCommand() *cobra.Command {
	var (
		userID   int64
		username string
	)

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for local testing",
		Long: `Sign a bearer token with the configured JWT_SECRET. The user is not looked
up, so the token is only useful against a database where the id exists.

Example:
  server token --user-id 1 --username alice`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return fmt.Errorf("--user-id must be > 0")
			}
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			if cfg.Environment == "production" {
				return fmt.Errorf("refusing to mint tokens in production")
			}

			manager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer)
			token, err := manager.Generate(userID, username)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, token)
			fmt.Fprintf(out, "\ncurl -H 'Authorization: Bearer %s' http://localhost:%d/me\n", token, cfg.Server.Port)
			return nil
		},
	}

	tokenCmd.Flags().Int64Var(&userID, "user-id", 0, "user id to place in the token subject")
	tokenCmd.Flags().StringVar(&username, "username", "", "username claim")
	return tokenCmd
}

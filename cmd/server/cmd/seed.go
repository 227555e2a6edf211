package cmd

import (
	"fmt"

	"github.com/Togather-Foundation/eventos/internal/config"
	"github.com/Togather-Foundation/eventos/internal/domain/licenses"
	"github.com/Togather-Foundation/eventos/internal/storage/postgres"
	"github.com/spf13/cobra"
)

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default license types",
		Long:  `Insert the Creative Commons license types. A populated table is left untouched.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			logger := config.NewLogger(cfg.Logging)

			pool, err := postgres.NewPool(cmd.Context(), cfg.Database)
			if err != nil {
				return fmt.Errorf("database connection failed: %w", err)
			}
			defer pool.Close()

			repo, err := postgres.NewRepository(pool)
			if err != nil {
				return err
			}
			inserted, err := licenses.NewService(repo.Licenses(), logger).Seed(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d license type(s)\n", inserted)
			return nil
		},
	}
}

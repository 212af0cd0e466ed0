package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"pingate-bank/web/internal/config"
	"pingate-bank/web/internal/store/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations to the postgres credential store",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.DatabaseURL == "" {
			return errors.New("migrate needs a database url (BANKWEB_DATABASE_URL or DATABASE_URL)")
		}
		if cfg.StoreBackend != config.StorePostgres {
			logger.Info("store backend is not postgres; migrating the configured database anyway", "store", cfg.StoreBackend)
		}

		pg, err := postgres.NewStore(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to init postgres store: %w", err)
		}
		defer pg.Close()

		if err := pg.Migrate(cmd.Context()); err != nil {
			return err
		}
		v, err := pg.MigrationVersion(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", v)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

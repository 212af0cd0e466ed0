package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"pingate-bank/web/internal/config"
	"pingate-bank/web/internal/store"
	"pingate-bank/web/internal/store/bolt"
	"pingate-bank/web/internal/store/memory"
	"pingate-bank/web/internal/store/postgres"
)

// openStore opens the configured credential store. Postgres schemas are
// migrated before use.
func openStore(ctx context.Context, c config.Config) (store.Store, error) {
	switch c.StoreBackend {
	case config.StorePostgres:
		pg, err := postgres.NewStore(c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to init postgres store: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, fmt.Errorf("failed to migrate postgres store: %w", err)
		}
		logger.Info("using postgres store")
		return pg, nil

	case config.StoreBolt:
		if dir := filepath.Dir(c.BoltPath); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		b, err := bolt.NewStoreFromFile(c.BoltPath, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to open bolt store: %w", err)
		}
		logger.Info("using bolt store", "path", c.BoltPath)
		return b, nil

	default:
		logger.Info("using memory store")
		return memory.NewStore(), nil
	}
}

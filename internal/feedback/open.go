package feedback

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/lionsmanic/gyn-cancer-staging/internal/database"
	"github.com/lionsmanic/gyn-cancer-staging/internal/domain"
)

// Open builds the store selected by cfg.Driver. The postgres driver applies
// pending migrations before returning.
func Open(ctx context.Context, cfg domain.FeedbackConfig, logger *logrus.Logger) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		store, err := NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		logger.WithField("path", cfg.Path).Debug("Opened SQLite feedback store")
		return store, nil

	case "postgres":
		runner, err := database.NewMigrationRunner(cfg.URL, logger)
		if err != nil {
			return nil, err
		}
		migrateErr := runner.Up()
		if err := runner.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close migration runner")
		}
		if migrateErr != nil {
			return nil, migrateErr
		}

		db, err := database.Open(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		store, err := NewPostgresStore(ctx, db.SQL())
		if err != nil {
			db.Close()
			return nil, err
		}
		store.onClose = db.Close
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported feedback driver %q", cfg.Driver)
	}
}

package app

import (
	"fmt"

	"github.com/yungbote/forum-backend/internal/data/db"
	"github.com/yungbote/forum-backend/internal/platform/logger"
)

// Migrate creates or updates the forum tables and exits.
func Migrate(cfg Config) error {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	store, err := db.Open(cfg.DBOptions(), log)
	if err != nil {
		return fmt.Errorf("init db: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.AutoMigrateAll(); err != nil {
		return fmt.Errorf("db automigrate: %w", err)
	}
	log.Info("Migration complete", "driver", store.Driver())
	return nil
}

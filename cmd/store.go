package cmd

import (
	"context"
	"fmt"
	"time"

	"taskflow/domain/task"
	"taskflow/infrastructure/persistence/memory"
	"taskflow/infrastructure/persistence/relational"
	"taskflow/infrastructure/persistence/retry"
	"taskflow/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const startupPingTimeout = 5 * time.Second

// initStore opens the store named by database.type. The returned *gorm.DB is
// nil for the in-memory store.
func (b *AppBuilder) initStore() (task.Repository, *gorm.DB, error) {
	if !b.cfg.UsesDatabase() {
		logger.Info("Using in-memory task store")
		return memory.NewTaskRepository(), nil, nil
	}

	logger.Info("Using relational task store", zap.String("driver", b.cfg.Database.Type))

	db, err := relational.NewConfig(&b.cfg.Database).Connect()
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupPingTimeout)
	defer cancel()
	if err := relational.Ping(ctx, db); err != nil {
		closeDB(db)
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if b.cfg.Database.AutoMigrate {
		if err := relational.AutoMigrate(db); err != nil {
			closeDB(db)
			return nil, nil, err
		}
		logger.Info("Database schema migrated")
	}

	repo := relational.NewTaskRepository(db, retry.FromAppConfig(b.cfg.Database.Retry))
	return repo, db, nil
}

func closeDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

package commands

import (
	"context"
	"fmt"

	"github.com/taskmaster/todo/internal/adapters/repository/memory"
	"github.com/taskmaster/todo/internal/adapters/repository/mongodb"
	"github.com/taskmaster/todo/internal/adapters/repository/postgres"
	"github.com/taskmaster/todo/internal/infrastructure/config"
	"github.com/taskmaster/todo/internal/infrastructure/database"
	"github.com/taskmaster/todo/internal/infrastructure/logger"
	"github.com/taskmaster/todo/internal/ports"
)

// openStore connects the configured store driver. The returned close func
// releases the connection.
func openStore(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) (ports.Repositories, func() error, error) {
	switch cfg.Store.Driver {
	case config.StoreMongo:
		m, err := database.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return ports.Repositories{}, nil, err
		}
		if err := mongodb.EnsureIndexes(ctx, m.Database); err != nil {
			_ = m.Close()
			return ports.Repositories{}, nil, fmt.Errorf("failed to ensure indexes: %w", err)
		}
		repos := mongodb.NewRepositories(m.Database)
		repos.Health = m
		appLogger.Infow("Connected to MongoDB", "database", cfg.Mongo.Database)
		return repos, m.Close, nil

	case config.StorePostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return ports.Repositories{}, nil, err
		}
		if cfg.Database.AutoMigrate {
			applied, err := postgres.Migrate(db.DB.DB, postgres.MigrateUp, 0)
			if err != nil {
				_ = db.Close()
				return ports.Repositories{}, nil, err
			}
			appLogger.Infow("Database migrations checked", "applied", applied)
		}
		repos := postgres.NewRepositories(db.DB)
		repos.Health = db
		appLogger.Infow("Connected to PostgreSQL", "host", cfg.Database.Host, "database", cfg.Database.Name)
		return repos, db.Close, nil

	case config.StoreMemory:
		appLogger.Warn("Using in-memory store; data is lost on restart")
		return memory.NewStore().Repositories(), func() error { return nil }, nil
	}

	return ports.Repositories{}, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/artci/feedback-api/internal/config"
	"github.com/artci/feedback-api/internal/repository"
	"github.com/artci/feedback-api/internal/service"
	dbbuilder "github.com/artci/feedback-api/pkg/database"
)

const mongoConnectTimeout = 10 * time.Second

// Store is an opened record store and the function that releases it.
type Store struct {
	Repository service.FeedbackRepository
	Close      func() error
}

// OpenStore connects the backend named by cfg.DBDriver and prepares its
// schema. Callers must call Close.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Store, error) {
	switch cfg.DBDriver {
	case "mongo", "mongodb":
		client, err := dbbuilder.NewMongo(ctx, cfg.DBPath, mongoConnectTimeout)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		logger.Info("MongoDB client initialized", zap.String("database", cfg.MongoDB))
		return &Store{
			Repository: repository.NewMongoFeedbackRepository(client.Database(cfg.MongoDB)),
			Close:      func() error { return client.Disconnect(context.Background()) },
		}, nil
	}

	dialect, err := repository.DialectFor(cfg.DBDriver)
	if err != nil {
		return nil, err
	}
	if dialect == repository.SQLite && cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := dbbuilder.New(ctx,
		dbbuilder.WithDriver(dialect.String()),
		dbbuilder.WithDataSource(cfg.DBPath),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	repo := repository.NewFeedbackRepository(db, dialect)
	if err := repo.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("driver", dialect.String()))

	return &Store{Repository: repo, Close: db.Close}, nil
}

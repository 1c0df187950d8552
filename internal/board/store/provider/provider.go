// Package provider builds the configured board data source.
package provider

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/apper-canvas/holodevboard/internal/board/fixtures"
	"github.com/apper-canvas/holodevboard/internal/board/store"
	"github.com/apper-canvas/holodevboard/internal/board/store/cache"
	"github.com/apper-canvas/holodevboard/internal/board/store/memory"
	"github.com/apper-canvas/holodevboard/internal/board/store/mongostore"
	"github.com/apper-canvas/holodevboard/internal/board/store/remote"
	"github.com/apper-canvas/holodevboard/internal/board/store/sqlstore"
	"github.com/apper-canvas/holodevboard/internal/common/config"
	"github.com/apper-canvas/holodevboard/internal/common/logger"
	"github.com/apper-canvas/holodevboard/internal/db"
)

// Provide opens the repository for cfg.Source.Driver, wraps it with the
// Redis cache when one is configured and seeds it with fixtures when empty.
// The returned cleanup closes everything that was opened.
func Provide(ctx context.Context, cfg *config.Config, log *logger.Logger) (store.Repository, func() error, error) {
	repo, err := open(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Cache.RedisURL != "" {
		rdb, err := cache.Open(ctx, cfg.Cache.RedisURL)
		if err != nil {
			_ = repo.Close()
			return nil, nil, err
		}
		repo = cache.New(repo, rdb, cfg.Cache.TTL, log)
		log.Info("Redis list cache enabled", zap.Duration("ttl", cfg.Cache.TTL))
	}

	if err := seed(ctx, cfg, repo, log); err != nil {
		_ = repo.Close()
		return nil, nil, err
	}
	return repo, repo.Close, nil
}

func open(ctx context.Context, cfg *config.Config, log *logger.Logger) (store.Repository, error) {
	switch cfg.Source.Driver {
	case config.DriverMemory:
		log.Info("Using in-memory data source", zap.Duration("latency", cfg.Source.Latency))
		return memory.New(memory.WithLatency(cfg.Source.Latency)), nil
	case config.DriverSQLite, config.DriverPostgres:
		pool, err := db.Provide(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		repo, err := sqlstore.NewOwned(pool)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.DriverMongo:
		repo, err := mongostore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		log.Info("Connected to MongoDB", zap.String("database", cfg.Mongo.Database))
		return repo, nil
	case config.DriverRemote:
		log.Info("Using remote data source", zap.String("base_url", cfg.Remote.BaseURL))
		return remote.New(remote.Config{
			BaseURL:         cfg.Remote.BaseURL,
			APIKey:          cfg.Remote.APIKey,
			Timeout:         cfg.Remote.Timeout,
			BreakerTimeout:  cfg.Remote.BreakerTimeout,
			BreakerFailures: cfg.Remote.BreakerFailures,
		}, log), nil
	default:
		return nil, fmt.Errorf("unsupported source driver: %s", cfg.Source.Driver)
	}
}

// seed imports fixtures into an empty repository. The memory driver is
// always seeded; persistent drivers only when source.seed is set.
func seed(ctx context.Context, cfg *config.Config, repo store.Repository, log *logger.Logger) error {
	if cfg.Source.Driver != config.DriverMemory && !cfg.Source.Seed {
		return nil
	}
	seeder, ok := repo.(store.Seeder)
	if !ok {
		log.Debug("Data source does not support seeding", zap.String("driver", cfg.Source.Driver))
		return nil
	}
	data, err := fixtures.LoadOrDefault(cfg.Source.Fixtures)
	if err != nil {
		return err
	}
	imported, err := fixtures.SeedIfEmpty(ctx, seeder, data)
	if err != nil {
		return err
	}
	if imported {
		log.Info("Seeded data source with fixtures",
			zap.Int("boards", len(data.Boards)),
			zap.Int("tasks", len(data.Tasks)))
	}
	return nil
}
